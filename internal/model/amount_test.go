package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		description string
		input       string
		want        float64
	}{
		{"decimal string", `"150.00"`, 150},
		{"number", `499.995`, 499.995},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
		{"thousands separator", `"1,250.50"`, 1250.5},
	}
	for _, test := range tests {
		var a Amount
		require.NoErrorf(t, json.Unmarshal([]byte(test.input), &a), test.description)
		assert.InDeltaf(t, test.want, a.Float64(), 1e-9, test.description)
	}
}

func TestAmountUnmarshalRejectsGarbage(t *testing.T) {
	var a Amount
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &a))
	assert.Error(t, json.Unmarshal([]byte(`true`), &a))
}

func TestReservationDecodesStringDecimals(t *testing.T) {
	body := `{"id":7,"reference_code":"PPX1","status":"confirmed","total_amount":"500.00","amount_paid":"150.00","reservation_fee":"50.00","quantity":3}`
	var r Reservation
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	assert.Equal(t, StatusConfirmed, r.Status)
	assert.Equal(t, 500.0, r.TotalAmount.Float64())
	assert.Equal(t, 150.0, r.AmountPaid.Float64())
	assert.Equal(t, 3, r.Quantity)
}

func TestFormatRand(t *testing.T) {
	assert.Equal(t, "R 0.00", FormatRand(0))
	assert.Equal(t, "R 450.00", FormatRand(450))
	assert.Equal(t, "R 1,234.50", FormatRand(1234.5))
	assert.Equal(t, "R 1,000,000.00", FormatRand(1e6))
	assert.Equal(t, "R -12.30", FormatRand(-12.3))
}

func TestEventMinPrice(t *testing.T) {
	e := Event{TicketTypes: []TicketType{{ID: 1, Price: 350}, {ID: 2, Price: 150}, {ID: 3, Price: 900}}}
	assert.Equal(t, 150.0, e.MinPrice())
	assert.Equal(t, 0.0, Event{}.MinPrice())

	tt, ok := e.TicketByID(3)
	assert.True(t, ok)
	assert.Equal(t, Amount(900), tt.Price)
	_, ok = e.TicketByID(42)
	assert.False(t, ok)
}
