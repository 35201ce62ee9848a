package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parliamentplating/reservations-web/internal/model"
)

// AccessClaims are the fields the web tier reads from an API access token.
// The token is issued and verified by the API; here it is only decoded to
// decide which navigation to offer, never to authorise anything.
type AccessClaims struct {
	Role      string
	ExpiresAt time.Time
}

// Claims reads role and expiry from an access token without verifying
// its signature.
func Claims(token string) (AccessClaims, bool) {
	if token == "" {
		return AccessClaims{}, false
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return AccessClaims{}, false
	}
	var c AccessClaims
	if r, ok := mc["role"].(string); ok {
		c.Role = r
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, true
}

// Expired reports whether the token's exp is in the past.  Tokens without
// exp count as expired.
func (c AccessClaims) Expired(now time.Time) bool {
	return c.ExpiresAt.IsZero() || !now.Before(c.ExpiresAt)
}

// IsAdmin reports whether the role may open the back-office.
func (c AccessClaims) IsAdmin() bool {
	return c.Role == model.RoleAdmin || c.Role == model.RoleOrganizer
}
