package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/parliamentplating/reservations-web/internal/apiclient"
)

// ErrInvalidCookie is returned for cookies that fail signature or expiry checks.
var ErrInvalidCookie = errors.New("invalid session cookie")

// Session is the explicit session context handed to the API client and to
// handlers.  It replaces the browser's global token storage.
type Session struct {
	ID      string
	store   Store
	expired atomic.Bool
}

// Tokens implements apiclient.TokenStore.
func (s *Session) Tokens(ctx context.Context) (apiclient.Tokens, error) {
	return s.store.Get(ctx, s.ID)
}

// SetAccess implements apiclient.TokenStore.
func (s *Session) SetAccess(ctx context.Context, access string) error {
	return s.store.SetAccess(ctx, s.ID, access)
}

// Clear implements apiclient.TokenStore.  It also marks the session as
// expired so the response can drop the cookie.
func (s *Session) Clear(ctx context.Context) error {
	s.expired.Store(true)
	return s.store.Delete(ctx, s.ID)
}

// Expired reports whether the tokens were cleared during this request.
func (s *Session) Expired() bool { return s.expired.Load() }

// Authenticated reports whether the session holds an access token.
func (s *Session) Authenticated(ctx context.Context) bool {
	t, err := s.Tokens(ctx)
	return err == nil && t.Access != ""
}

// Manager creates sessions and signs the cookie that names them.
type Manager struct {
	Store      Store
	Secret     []byte
	CookieName string
	TTL        time.Duration
}

// New starts a session with a fresh id and stores the token pair.
func (m *Manager) New(ctx context.Context, t apiclient.Tokens) (*Session, error) {
	sid := uuid.NewString()
	if err := m.Store.Set(ctx, sid, t, m.TTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &Session{ID: sid, store: m.Store}, nil
}

// Bind returns the session for an id that was taken from a valid cookie.
func (m *Manager) Bind(sid string) *Session {
	return &Session{ID: sid, store: m.Store}
}

// Destroy removes a session's tokens.
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	return m.Store.Delete(ctx, s.ID)
}

type cookieClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Sign returns the cookie value for a session: an HS256 JWT carrying the id.
func (m *Manager) Sign(s *Session, now time.Time) (string, error) {
	claims := cookieClaims{
		SID: s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
}

// Parse verifies a cookie value and returns the session id it names.
func (m *Manager) Parse(raw string) (string, error) {
	var claims cookieClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCookie
		}
		return m.Secret, nil
	})
	if err != nil || !tok.Valid || claims.SID == "" {
		return "", ErrInvalidCookie
	}
	return claims.SID, nil
}

type ctxKey struct{}

// WithContext stores the session in ctx.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithContext, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// MarkExpired is installed as the API client's session-expired callback.  It
// flags the request's session so middleware can drop the cookie; tokens have
// already been cleared by the client.
func MarkExpired(ctx context.Context) {
	if s := FromContext(ctx); s != nil {
		s.expired.Store(true)
	}
}
