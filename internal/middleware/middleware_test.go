package middleware

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/parliamentplating/reservations-web/internal/apiclient"
    "github.com/parliamentplating/reservations-web/internal/config"
    "github.com/parliamentplating/reservations-web/internal/session"
)

func newRedis(t *testing.T) *redis.Client {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return rdb
}

func accessToken(t *testing.T, role string) string {
    t.Helper()
    raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "role": role,
        "exp":  time.Now().Add(time.Hour).Unix(),
    }).SignedString([]byte("api"))
    require.NoError(t, err)
    return raw
}

func newManager() *session.Manager {
    return &session.Manager{Store: session.NewMemoryStore(), Secret: []byte("cookie-secret"), CookieName: "pppa_session", TTL: time.Hour}
}

// loggedIn returns a request carrying a valid cookie for a session with role.
func loggedIn(t *testing.T, mgr *session.Manager, role, target string) *http.Request {
    t.Helper()
    s, err := mgr.New(context.Background(), apiclient.Tokens{Access: accessToken(t, role), Refresh: "r"})
    require.NoError(t, err)
    val, err := mgr.Sign(s, time.Now())
    require.NoError(t, err)
    req := httptest.NewRequest(http.MethodGet, target, nil)
    req.AddCookie(&http.Cookie{Name: mgr.CookieName, Value: val})
    return req
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestAdminGate(t *testing.T) {
    mgr := newManager()
    e := echo.New()
    e.Use(LoadSession(mgr))
    e.GET("/admin/dashboard", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, RequireAdmin())

    tests := []struct {
        description string
        req         *http.Request
        status      int
    }{
        {"anonymous", httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), http.StatusUnauthorized},
        {"attendee", loggedIn(t, mgr, "attendee", "/admin/dashboard"), http.StatusForbidden},
        {"organizer", loggedIn(t, mgr, "organizer", "/admin/dashboard"), http.StatusOK},
        {"admin", loggedIn(t, mgr, "admin", "/admin/dashboard"), http.StatusOK},
    }
    for _, tt := range tests {
        t.Run(tt.description, func(t *testing.T) {
            rec := serve(e, tt.req)
            assert.Equal(t, tt.status, rec.Code)
            if tt.status == http.StatusUnauthorized {
                assert.Contains(t, rec.Body.String(), `/login?redirect=%2Fadmin%2Fdashboard`)
            }
        })
    }
}

func TestInvalidCookieIsDropped(t *testing.T) {
    mgr := newManager()
    e := echo.New()
    e.Use(LoadSession(mgr))
    e.GET("/me", func(c echo.Context) error { return c.String(http.StatusOK, "x") }, RequireSession())

    req := httptest.NewRequest(http.MethodGet, "/me", nil)
    req.AddCookie(&http.Cookie{Name: mgr.CookieName, Value: "garbage"})
    rec := serve(e, req)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestExpiredSessionClearsCookie(t *testing.T) {
    mgr := newManager()
    e := echo.New()
    e.Use(LoadSession(mgr))
    e.GET("/profile", func(c echo.Context) error {
        // what the API client does when the refresh token is rejected
        _ = SessionFrom(c).Clear(c.Request().Context())
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
    })

    rec := serve(e, loggedIn(t, mgr, "attendee", "/profile"))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Contains(t, rec.Header().Get("Set-Cookie"), "pppa_session=;")
}

func rlConfig() config.RateLimitConfig {
    return config.RateLimitConfig{
        Enabled:        true,
        Capacity:       2,
        RefillTokens:   1,
        RefillInterval: time.Minute,
        TTL:            10 * time.Minute,
        KeyStrategy:    "ip_route",
        Prefix:         "test:rl",
    }
}

func TestTokenBucket(t *testing.T) {
    tests := []struct {
        description string
        rdb         func(t *testing.T) *redis.Client
    }{
        {"in-process fallback", func(*testing.T) *redis.Client { return nil }},
        {"redis script", newRedis},
    }
    for _, tt := range tests {
        t.Run(tt.description, func(t *testing.T) {
            e := echo.New()
            e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(rlConfig(), tt.rdb(t)))

            for i := 0; i < 2; i++ {
                rec := serve(e, httptest.NewRequest(http.MethodPost, "/login", nil))
                require.Equal(t, http.StatusNoContent, rec.Code)
                assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
            }
            rec := serve(e, httptest.NewRequest(http.MethodPost, "/login", nil))
            assert.Equal(t, http.StatusTooManyRequests, rec.Code)
            assert.NotEmpty(t, rec.Header().Get("Retry-After"))
        })
    }
}

func TestBuildRateKey(t *testing.T) {
    mgr := newManager()
    tests := []struct {
        description string
        strategy    string
        auth        bool
        want        string
    }{
        {"ip and route", config.RateKeyIPRoute, false, "test:rl:public:ip:192.0.2.1:route:GET /profile"},
        {"ip only", config.RateKeyIP, false, "test:rl:public:ip:192.0.2.1"},
        {"auth scope", config.RateKeyIPRoute, true, "test:rl:auth:ip:192.0.2.1:route:GET /profile"},
        {"anonymous session route", config.RateKeySessionRoute, false, "test:rl:public:ip:192.0.2.1:route:GET /profile"},
    }

    for _, tt := range tests {
        t.Run(tt.description, func(t *testing.T) {
            cfg := rlConfig()
            cfg.Scope = config.ScopePublic
            cfg.KeyStrategy = tt.strategy
            if tt.auth {
                cfg = cfg.ForAuth()
            }
            e := echo.New()
            e.Use(LoadSession(mgr))
            e.GET("/profile", func(c echo.Context) error { return c.String(http.StatusOK, buildRateKey(cfg, c)) })

            rec := serve(e, httptest.NewRequest(http.MethodGet, "/profile", nil))
            assert.Equal(t, tt.want, rec.Body.String())
        })
    }

    t.Run("signed-in session route", func(t *testing.T) {
        cfg := rlConfig()
        cfg.KeyStrategy = config.RateKeySessionRoute
        e := echo.New()
        e.Use(LoadSession(mgr))
        e.GET("/profile", func(c echo.Context) error { return c.String(http.StatusOK, buildRateKey(cfg, c)) })

        rec := serve(e, loggedIn(t, mgr, "attendee", "/profile"))
        assert.Regexp(t, `^test:rl:session:[^:]+:route:GET /profile$`, rec.Body.String())
    })
}

func cacheConfig() config.CacheConfig {
    return config.CacheConfig{
        Enabled:     true,
        Methods:     map[string]bool{http.MethodGet: true},
        TTL:         time.Minute,
        KeyStrategy: "route_query",
        Prefix:      "test:cache",
    }
}

func TestResponseCache(t *testing.T) {
    rdb := newRedis(t)
    rc := NewResponseCache(cacheConfig(), rdb)
    calls := 0
    e := echo.New()
    e.GET("/events/:slug", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"slug": c.Param("slug")})
    }, rc.Middleware())

    rec := serve(e, httptest.NewRequest(http.MethodGet, "/events/harvest", nil))
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    rec = serve(e, httptest.NewRequest(http.MethodGet, "/events/harvest", nil))
    assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
    assert.JSONEq(t, `{"slug":"harvest"}`, rec.Body.String())
    assert.Equal(t, 1, calls)

    rec = serve(e, httptest.NewRequest(http.MethodGet, "/events/gin", nil))
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "different slug, different key")
    assert.JSONEq(t, `{"slug":"gin"}`, rec.Body.String())

    require.NoError(t, rc.Purge(context.Background()))
    rec = serve(e, httptest.NewRequest(http.MethodGet, "/events/harvest", nil))
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    assert.Equal(t, 3, calls)
}

func TestResponseCacheDisabledWithoutRedis(t *testing.T) {
    rc := NewResponseCache(cacheConfig(), nil)
    e := echo.New()
    e.GET("/events", func(c echo.Context) error { return c.String(http.StatusOK, "x") }, rc.Middleware())
    rec := serve(e, httptest.NewRequest(http.MethodGet, "/events", nil))
    assert.Empty(t, rec.Header().Get("X-Cache"))
    assert.NoError(t, rc.Purge(context.Background()))
}

func TestPayloadRoundTrip(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
    require.NoError(t, err)
    status, got, body, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "application/json", got.Get("Content-Type"))
    assert.Equal(t, `{"a":1}`, string(body))

    _, _, _, ok = decodePayload([]byte{1, 2})
    assert.False(t, ok)
}
