package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/parliamentplating/reservations-web/internal/activity"
    "github.com/parliamentplating/reservations-web/internal/apiclient"
    "github.com/parliamentplating/reservations-web/internal/middleware"
    "github.com/parliamentplating/reservations-web/internal/model"
    "github.com/parliamentplating/reservations-web/internal/session"
)

type authView struct {
    User     model.User `json:"user"`
    IsAdmin  bool       `json:"is_admin"`
    Redirect string     `json:"redirect,omitempty"`
}

func isAdmin(role string) bool {
    return session.AccessClaims{Role: role}.IsAdmin()
}

// startSession replaces any current session with one holding the new token
// pair and writes the cookie.
func (h *Handler) startSession(c echo.Context, res model.AuthResponse) error {
    ctx := c.Request().Context()
    if old := middleware.SessionFrom(c); old != nil {
        if err := h.Sessions.Destroy(ctx, old); err != nil {
            c.Logger().Warnf("destroy previous session: %v", err)
        }
    }
    s, err := h.Sessions.New(ctx, apiclient.Tokens{Access: res.Access, Refresh: res.Refresh})
    if err != nil {
        return err
    }
    return middleware.SetSessionCookie(c, h.Sessions, s)
}

// Login: exchange credentials with the API and start a session.
func (h *Handler) Login(c echo.Context) error {
    var req model.LoginRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if err := c.Validate(&req); err != nil {
        return fail(c, err)
    }

    res, err := h.Client.For(nil).Login(c.Request().Context(), req)
    if err != nil {
        return fail(c, err)
    }
    if err := h.startSession(c, res); err != nil {
        c.Logger().Errorf("start session: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start session"})
    }

    admin := isAdmin(res.User.Role)
    fallback := "/"
    if admin {
        fallback = "/admin/dashboard"
    }
    return c.JSON(http.StatusOK, authView{
        User:     res.User,
        IsAdmin:  admin,
        Redirect: safeRedirect(c.QueryParam("redirect"), fallback),
    })
}

// Register: create an attendee account.  When the API returns tokens the
// guest is logged in straight away, otherwise sent to the login page.
func (h *Handler) Register(c echo.Context) error {
    var req model.RegisterRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if err := c.Validate(&req); err != nil {
        return fail(c, err)
    }

    res, err := h.Client.For(nil).Register(c.Request().Context(), req)
    if err != nil {
        return fail(c, err)
    }
    h.track(c, activity.New(activity.UserRegistration, c.Request().URL.Path))

    if res.Access == "" {
        return c.JSON(http.StatusCreated, authView{User: res.User, Redirect: "/login"})
    }
    if err := h.startSession(c, res); err != nil {
        c.Logger().Errorf("start session: %v", err)
        return c.JSON(http.StatusCreated, authView{User: res.User, Redirect: "/login"})
    }
    return c.JSON(http.StatusCreated, authView{
        User:     res.User,
        IsAdmin:  isAdmin(res.User.Role),
        Redirect: safeRedirect(c.QueryParam("redirect"), "/"),
    })
}

// Logout blacklists the refresh token (best effort), drops the session and
// expires the cookie.
func (h *Handler) Logout(c echo.Context) error {
    ctx := c.Request().Context()
    if s := middleware.SessionFrom(c); s != nil {
        if tok, err := s.Tokens(ctx); err == nil && tok.Refresh != "" {
            if err := h.Client.For(nil).Logout(ctx, tok.Refresh); err != nil {
                c.Logger().Warnf("logout at API: %v", err)
            }
        }
        if err := h.Sessions.Destroy(ctx, s); err != nil {
            c.Logger().Warnf("destroy session: %v", err)
        }
    }
    middleware.ClearSessionCookie(c, h.Sessions)
    return c.JSON(http.StatusOK, echo.Map{"redirect": "/"})
}

// Me returns the session user's profile.
func (h *Handler) Me(c echo.Context) error {
    u, err := h.api(c).Me(c.Request().Context())
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, authView{User: u, IsAdmin: isAdmin(u.Role)})
}

// UpdateMe edits the user's own name and phone number.  Role and
// verification can only be changed by an admin.
func (h *Handler) UpdateMe(c echo.Context) error {
    var upd model.ProfileUpdate
    if err := bindValid(c, &upd); err != nil {
        return fail(c, err)
    }
    upd.Role = nil
    upd.IsVerified = nil
    u, err := h.api(c).UpdateMe(c.Request().Context(), upd)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, authView{User: u, IsAdmin: isAdmin(u.Role)})
}
