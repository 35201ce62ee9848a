package config

import (
    "strings"
    "time"
)

// Bucket key strategies.  Anything else falls back to RateKeyIPRoute.
const (
    RateKeyIP           = "ip"
    RateKeyIPRoute      = "ip_route"
    RateKeySessionRoute = "session_route" // anonymous callers are keyed by IP
)

// Limiter scopes.  Each scope has its own buckets.
const (
    ScopePublic = "public"
    ScopeAuth   = "auth"
)

// RateLimitConfig configures the token bucket on the mutating routes.
// Reservation creation and proof upload share the public bucket; login and
// register get a smaller one.  Without Redis the same numbers drive an
// in-process limiter.
type RateLimitConfig struct {
    Enabled        bool
    Scope          string
    Capacity       int
    AuthCapacity   int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Scope:          ScopePublic,
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 20),
        AuthCapacity:   envInt("RATE_LIMIT_AUTH_CAPACITY", 5),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", RateKeyIPRoute),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "pppa:rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    // RATE_LIMIT_BURST and RATE_LIMIT_REFILL_EVERY are the short forms.
    if b := envInt("RATE_LIMIT_BURST", 0); b > 0 {
        cfg.Capacity = b
    }
    if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
        cfg.RefillTokens = 1
        cfg.RefillInterval = every
    }
    return cfg.normalize()
}

// ForAuth returns the settings of the login and register bucket.
func (c RateLimitConfig) ForAuth() RateLimitConfig {
    c.Scope = ScopeAuth
    c.Capacity = c.AuthCapacity
    return c.normalize()
}

func (c RateLimitConfig) normalize() RateLimitConfig {
    c.Capacity = max(c.Capacity, 1)
    c.AuthCapacity = max(c.AuthCapacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    // A bucket must outlive a full refill or it resets early.
    c.TTL = max(c.TTL, 5*c.RefillInterval)

    switch s := strings.ToLower(c.KeyStrategy); s {
    case RateKeyIP, RateKeyIPRoute, RateKeySessionRoute:
        c.KeyStrategy = s
    default:
        c.KeyStrategy = RateKeyIPRoute
    }
    return c
}
