package handler

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/parliamentplating/reservations-web/internal/activity"
    "github.com/parliamentplating/reservations-web/internal/model"
)

func sessionCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
    for _, c := range rec.Result().Cookies() {
        if c.Name == name {
            return c
        }
    }
    return nil
}

func TestLogin(t *testing.T) {
    tests := []struct {
        description string
        target      string
        body        string
        role        string
        status      int
        redirect    string
        cookie      bool
    }{
        {description: "attendee goes home", target: "/login", body: `{"email":" Guest@Example.com ","password":"secret123"}`, role: model.RoleAttendee, status: http.StatusOK, redirect: "/", cookie: true},
        {description: "admin goes to the dashboard", target: "/login", body: `{"email":"admin@example.com","password":"secret123"}`, role: model.RoleAdmin, status: http.StatusOK, redirect: "/admin/dashboard", cookie: true},
        {description: "redirect back to the page", target: "/login?redirect=%2Fevents%2Fwine-night", body: `{"email":"guest@example.com","password":"secret123"}`, role: model.RoleAttendee, status: http.StatusOK, redirect: "/events/wine-night", cookie: true},
        {description: "offsite redirect is ignored", target: "/login?redirect=%2F%2Fevil.example", body: `{"email":"guest@example.com","password":"secret123"}`, role: model.RoleAttendee, status: http.StatusOK, redirect: "/", cookie: true},
        {description: "invalid email", target: "/login", body: `{"email":"guest","password":"secret123"}`, status: http.StatusUnprocessableEntity},
        {description: "missing password", target: "/login", body: `{"email":"guest@example.com"}`, status: http.StatusUnprocessableEntity},
    }

    for _, test := range tests {
        env := newTestEnv(t)
        env.e.POST("/login", env.h.Login)
        var email string
        env.api.on(http.MethodPost, "/auth/login/", func(w http.ResponseWriter, r *http.Request) {
            var req model.LoginRequest
            _ = decodeBody(r, &req)
            email = req.Email
            writeJSON(w, http.StatusOK, model.AuthResponse{
                User:    model.User{ID: 1, Email: req.Email, Role: test.role},
                Access:  accessToken(t, test.role),
                Refresh: "refresh",
            })
        })

        rec := env.do(jsonRequest(http.MethodPost, test.target, test.body))
        require.Equalf(t, test.status, rec.Code, "%s: %s", test.description, rec.Body.String())
        ck := sessionCookie(rec, "pppa_session")
        assert.Equalf(t, test.cookie, ck != nil, test.description)
        if test.status != http.StatusOK {
            assert.Zerof(t, env.api.called(http.MethodPost, "/auth/login/"), test.description)
            continue
        }
        assert.Equalf(t, test.redirect, decode(t, rec)["redirect"], test.description)
        assert.NotContainsf(t, email, " ", test.description)
        assert.Truef(t, ck.HttpOnly, test.description)
    }
}

func TestLoginBadCredentials(t *testing.T) {
    env := newTestEnv(t)
    env.e.POST("/login", env.h.Login)
    env.api.reply(http.MethodPost, "/auth/login/", http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})

    rec := env.do(jsonRequest(http.MethodPost, "/login", `{"email":"guest@example.com","password":"wrong-pass"}`))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Equal(t, "No active account found with the given credentials", decode(t, rec)["error"])
    assert.Nil(t, sessionCookie(rec, "pppa_session"))
}

func TestRegister(t *testing.T) {
    tests := []struct {
        description string
        tokens      bool
        redirect    string
        cookie      bool
    }{
        {description: "logged in straight away", tokens: true, redirect: "/", cookie: true},
        {description: "sent to login when no tokens come back", redirect: "/login"},
    }
    for _, test := range tests {
        env := newTestEnv(t)
        env.e.POST("/register", env.h.Register)
        res := model.AuthResponse{User: model.User{ID: 2, Email: "new@example.com", Role: model.RoleAttendee}}
        if test.tokens {
            res.Access, res.Refresh = accessToken(t, model.RoleAttendee), "refresh"
        }
        env.api.reply(http.MethodPost, "/auth/register/", http.StatusCreated, res)

        rec := env.do(jsonRequest(http.MethodPost, "/register", `{"email":"new@example.com","full_name":"New Guest","password":"longenough"}`))
        require.Equalf(t, http.StatusCreated, rec.Code, "%s: %s", test.description, rec.Body.String())
        assert.Equalf(t, test.redirect, decode(t, rec)["redirect"], test.description)
        assert.Equalf(t, test.cookie, sessionCookie(rec, "pppa_session") != nil, test.description)
        assert.Equalf(t, activity.UserRegistration, env.activity.next(t).Name, test.description)
    }
}

func TestRegisterValidation(t *testing.T) {
    env := newTestEnv(t)
    env.e.POST("/register", env.h.Register)

    rec := env.do(jsonRequest(http.MethodPost, "/register", `{"email":"new@example.com","full_name":"","password":"short","phone_number":"0821234567"}`))
    require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
    fields := decode(t, rec)["fields"].(map[string]any)
    assert.Contains(t, fields, "full_name")
    assert.Contains(t, fields, "password")
    assert.Contains(t, fields, "phone_number")
    assert.Zero(t, env.api.called(http.MethodPost, "/auth/register/"))
}

func TestLogoutClearsCookie(t *testing.T) {
    env := newTestEnv(t)
    env.e.POST("/logout", env.h.Logout)
    env.api.reply(http.MethodPost, "/auth/logout/", http.StatusOK, map[string]string{})

    req := jsonRequest(http.MethodPost, "/logout", "")
    env.login(t, req, model.RoleAttendee)
    rec := env.do(req)
    require.Equal(t, http.StatusOK, rec.Code)
    ck := sessionCookie(rec, "pppa_session")
    require.NotNil(t, ck)
    assert.Empty(t, ck.Value)
    assert.Equal(t, 1, env.api.called(http.MethodPost, "/auth/logout/"))
}

func TestMeWithExpiredRefreshClearsSession(t *testing.T) {
    env := newTestEnv(t)
    env.e.GET("/me", env.h.Me)
    env.api.reply(http.MethodGet, "/auth/me/", http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
    env.api.reply(http.MethodPost, "/auth/token/refresh/", http.StatusUnauthorized, map[string]string{"detail": "Token is blacklisted"})

    req := jsonRequest(http.MethodGet, "/me", "")
    env.login(t, req, model.RoleAttendee)
    rec := env.do(req)
    require.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Equal(t, "/login?redirect=%2Fme", decode(t, rec)["redirect"])
    ck := sessionCookie(rec, "pppa_session")
    require.NotNil(t, ck, "expired session drops the cookie")
    assert.Empty(t, ck.Value)
}

func TestUpdateMeCannotChangeRole(t *testing.T) {
    env := newTestEnv(t)
    env.e.PATCH("/me", env.h.UpdateMe)
    var sent map[string]any
    env.api.on(http.MethodPatch, "/auth/me/", func(w http.ResponseWriter, r *http.Request) {
        _ = decodeBody(r, &sent)
        writeJSON(w, http.StatusOK, model.User{ID: 1, FullName: "Renamed", Role: model.RoleAttendee})
    })

    req := jsonRequest(http.MethodPatch, "/me", `{"full_name":"Renamed","role":"admin","is_verified":true}`)
    env.login(t, req, model.RoleAttendee)
    rec := env.do(req)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    assert.Equal(t, map[string]any{"full_name": "Renamed"}, sent)
}
