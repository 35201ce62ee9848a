package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a currency value as reported by the API.  Decimal fields arrive
// either as JSON strings ("150.00") or as numbers depending on the
// serializer, and occasionally as null; all three decode into an Amount.
type Amount float64

// Float64 returns the amount as a float64.
func (a Amount) Float64() float64 { return float64(a) }

// UnmarshalJSON accepts a number, a numeric string, an empty string or null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("amount %q: %w", s, err)
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(f)
	return nil
}

// MarshalJSON always emits a plain number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(a), 'f', -1, 64)), nil
}

// String formats the amount with two decimals, e.g. "450.00".
func (a Amount) String() string { return strconv.FormatFloat(float64(a), 'f', 2, 64) }

// FormatRand renders the amount the way guests see it: "R 1,234.50".
func FormatRand(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var out []byte
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i])
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return "R " + sign + string(out) + frac
}
