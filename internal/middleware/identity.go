package middleware

// identity.go defines helpers shared across middleware files. The rate
// limiter keys authenticated traffic by session rather than by address.

import (
    "github.com/labstack/echo/v4"
)

// sessionKey returns the session id of an authenticated request, or "anon".
func sessionKey(c echo.Context) string {
    if !Authenticated(c) {
        return "anon"
    }
    if s := SessionFrom(c); s != nil && s.ID != "" {
        return s.ID
    }
    return "anon"
}
