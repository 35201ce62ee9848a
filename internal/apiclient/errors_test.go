package apiclient

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorMatchesSentinels(t *testing.T) {
	err := fmt.Errorf("load dashboard: %w", &APIError{Method: "GET", Path: "/analytics/dashboard/", Status: 403})
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, 403, StatusOf(err))
	assert.Equal(t, 0, StatusOf(errors.New("boom")))
}

func TestDetailFromBody(t *testing.T) {
	tests := []struct {
		description string
		body        string
		want        string
	}{
		{"detail field", `{"detail":"Not enough tickets"}`, "Not enough tickets"},
		{"message field", `{"message":"Closed"}`, "Closed"},
		{"json string", `"plain"`, "plain"},
		{"field errors", `{"quantity":["Ensure this value is less than or equal to 10."],"guest_email":["Enter a valid email address."]}`,
			"guest_email: Enter a valid email address.\nquantity: Ensure this value is less than or equal to 10."},
		{"text body", `Bad Gateway`, "Bad Gateway"},
		{"html body", `<html>oops</html>`, ""},
		{"empty", ``, ""},
	}
	for _, test := range tests {
		assert.Equalf(t, test.want, detailFromBody([]byte(test.body)), test.description)
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Sold out", Message(&APIError{Status: 400, Detail: "Sold out"}))
	assert.Equal(t, "Bad Gateway", Message(&APIError{Status: 502}))
	assert.Contains(t, Message(fmt.Errorf("x: %w", ErrSessionExpired)), "session has expired")
	assert.Contains(t, Message(ErrTimeout), "too long")
	assert.Equal(t, "", Message(nil))
}
