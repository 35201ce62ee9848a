package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/parliamentplating/reservations-web/internal/config"
)

var limiterScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

// decision is the outcome of one bucket check.
type decision struct {
    allowed   bool
    remaining int64
    retryMs   int64
}

// NewTokenBucket limits requests per key.  With Redis the bucket is shared
// by all web instances; without it (or when a script call fails) an
// in-process limiter with the same capacity and refill rate is used.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }
    local := newLocalLimiter(cfg)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            now := time.Now()

            var d decision
            ok := false
            if rdb != nil {
                d, ok = redisDecide(c, cfg, rdb, key, now)
            }
            if !ok {
                d = local.decide(key, now)
            }

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))

            if !d.allowed {
                secs := int(math.Ceil(float64(d.retryMs) / 1000.0))
                secs = max(secs, 0)
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                if cfg.Debug {
                    c.Logger().Infof("[ratelimit] block key=%s remaining=%d retry=%dms", key, d.remaining, d.retryMs)
                }
                return c.JSON(http.StatusTooManyRequests, map[string]any{
                    "error":       "too_many_requests",
                    "message":     "Too many requests. Please wait a moment and try again.",
                    "retry_after": secs,
                })
            }

            if cfg.Debug {
                c.Response().Header().Set("X-RateLimit-Key", key)
            }
            return next(c)
        }
    }
}

func redisDecide(c echo.Context, cfg config.RateLimitConfig, rdb *redis.Client, key string, now time.Time) (decision, bool) {
    args := []interface{}{
        now.UnixMilli(),
        cfg.Capacity,
        cfg.RefillTokens,
        cfg.RefillInterval.Milliseconds(),
        int64(cfg.TTL / time.Second),
    }
    vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
    if err != nil {
        if cfg.Debug {
            c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
        }
        return decision{}, false
    }
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        if cfg.Debug {
            c.Logger().Warnf("[ratelimit] unexpected script result for key=%s: %#v", key, vals)
        }
        return decision{}, false
    }
    d := decision{remaining: asInt64(arr[1]), retryMs: asInt64(arr[2])}
    if i, ok := arr[0].(int64); ok {
        d.allowed = i == 1
    } else {
        d.allowed = fmt.Sprint(arr[0]) == "1"
    }
    return d, true
}

// localLimiter keeps one rate.Limiter per key in memory.
type localLimiter struct {
    mu      sync.Mutex
    buckets map[string]*localBucket
    limit   rate.Limit
    burst   int
    ttl     time.Duration
}

type localBucket struct {
    lim  *rate.Limiter
    seen time.Time
}

func newLocalLimiter(cfg config.RateLimitConfig) *localLimiter {
    every := cfg.RefillInterval / time.Duration(cfg.RefillTokens)
    return &localLimiter{
        buckets: map[string]*localBucket{},
        limit:   rate.Every(every),
        burst:   cfg.Capacity,
        ttl:     cfg.TTL,
    }
}

func (l *localLimiter) decide(key string, now time.Time) decision {
    l.mu.Lock()
    defer l.mu.Unlock()

    if len(l.buckets) > 10000 {
        for k, b := range l.buckets {
            if now.Sub(b.seen) > l.ttl {
                delete(l.buckets, k)
            }
        }
    }
    b, ok := l.buckets[key]
    if !ok {
        b = &localBucket{lim: rate.NewLimiter(l.limit, l.burst)}
        l.buckets[key] = b
    }
    b.seen = now

    r := b.lim.ReserveN(now, 1)
    if !r.OK() {
        return decision{}
    }
    if delay := r.DelayFrom(now); delay > 0 {
        r.CancelAt(now)
        return decision{retryMs: delay.Milliseconds()}
    }
    remaining := max(int64(b.lim.TokensAt(now)), 0)
    return decision{allowed: true, remaining: remaining}
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

// buildRateKey names the bucket for a request:
// <prefix>:<scope>:ip:<ip>[:route:<method path>] or, for signed-in callers
// under session_route, <prefix>:<scope>:session:<sid>:route:<method path>.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    parts := []string{cfg.Prefix}
    if cfg.Scope != "" {
        parts = append(parts, cfg.Scope)
    }
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()

    switch cfg.KeyStrategy {
    case config.RateKeyIP:
        parts = append(parts, "ip", ip)
    case config.RateKeySessionRoute:
        if sid := sessionKey(c); sid != "anon" {
            parts = append(parts, "session", sid, "route", route)
        } else {
            parts = append(parts, "ip", ip, "route", route)
        }
    default:
        parts = append(parts, "ip", ip, "route", route)
    }
    return strings.Join(parts, ":")
}
