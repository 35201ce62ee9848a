package middleware // middleware provides shared request processing for handlers

import (
    "net/http"
    "net/url"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/parliamentplating/reservations-web/internal/session"
)

// Context keys set by LoadSession.
const (
    CtxSession       = "session"
    CtxRole          = "role"
    CtxAuthenticated = "authenticated"
)

// LoadSession resolves the session cookie into a *session.Session.  The
// session is stored in the Echo context and in the request context, where
// the API client's expiry callback finds it.  When the API client clears the
// session's tokens during the request, the cookie is removed from the
// response.  A missing or invalid cookie leaves the request anonymous.
func LoadSession(mgr *session.Manager) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ck, err := c.Cookie(mgr.CookieName)
            if err != nil || ck.Value == "" {
                return next(c)
            }
            sid, err := mgr.Parse(ck.Value)
            if err != nil {
                // Tampered or expired cookie: drop it and continue anonymously.
                ClearSessionCookie(c, mgr)
                return next(c)
            }

            s := mgr.Bind(sid)
            req := c.Request()
            c.SetRequest(req.WithContext(session.WithContext(req.Context(), s)))
            c.Set(CtxSession, s)

            if tok, err := s.Tokens(req.Context()); err == nil && tok.Access != "" {
                c.Set(CtxAuthenticated, true)
                if cl, ok := session.Claims(tok.Access); ok {
                    c.Set(CtxRole, cl.Role)
                }
            } else if err != nil {
                c.Logger().Warnf("[session] load tokens for %s: %v", sid, err)
            }

            c.Response().Before(func() {
                if s.Expired() {
                    ClearSessionCookie(c, mgr)
                }
            })
            return next(c)
        }
    }
}

// SessionFrom returns the request's session or nil.
func SessionFrom(c echo.Context) *session.Session {
    s, _ := c.Get(CtxSession).(*session.Session)
    return s
}

// Authenticated reports whether the session holds an access token.
func Authenticated(c echo.Context) bool {
    ok, _ := c.Get(CtxAuthenticated).(bool)
    return ok
}

// RequireSession rejects anonymous requests with 401 and the login redirect
// the page should follow.
func RequireSession() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !Authenticated(c) {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "error":    "authentication required",
                    "redirect": LoginRedirect(c.Request().URL.RequestURI()),
                })
            }
            return next(c)
        }
    }
}

// LoginRedirect is the login page URL that returns to path afterwards.
func LoginRedirect(path string) string {
    return "/login?redirect=" + url.QueryEscape(path)
}

// SetSessionCookie signs s and writes the cookie.
func SetSessionCookie(c echo.Context, mgr *session.Manager, s *session.Session) error {
    now := time.Now()
    val, err := mgr.Sign(s, now)
    if err != nil {
        return err
    }
    c.SetCookie(&http.Cookie{
        Name:     mgr.CookieName,
        Value:    val,
        Path:     "/",
        Expires:  now.Add(mgr.TTL),
        HttpOnly: true,
        Secure:   c.IsTLS(),
        SameSite: http.SameSiteLaxMode,
    })
    return nil
}

// ClearSessionCookie expires the cookie in the browser.
func ClearSessionCookie(c echo.Context, mgr *session.Manager) {
    c.SetCookie(&http.Cookie{
        Name:     mgr.CookieName,
        Value:    "",
        Path:     "/",
        MaxAge:   -1,
        Expires:  time.Unix(0, 0),
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    })
}
