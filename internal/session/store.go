// Package session keeps the API token pair of each browser session on the
// server.  The browser only holds a signed cookie naming the session; the
// tokens live in Redis (or memory when Redis is unavailable) under the fixed
// fields "access_token" and "refresh_token".
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parliamentplating/reservations-web/internal/apiclient"
)

const (
	fieldAccess  = "access_token"
	fieldRefresh = "refresh_token"
)

// Store persists token pairs by session id.  A missing session yields empty
// tokens, not an error.
type Store interface {
	Get(ctx context.Context, sid string) (apiclient.Tokens, error)
	Set(ctx context.Context, sid string, t apiclient.Tokens, ttl time.Duration) error
	SetAccess(ctx context.Context, sid, access string) error
	Delete(ctx context.Context, sid string) error
}

// RedisStore keeps each session in a hash with a TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "pppa:session"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(sid string) string { return s.prefix + ":" + sid }

func (s *RedisStore) Get(ctx context.Context, sid string) (apiclient.Tokens, error) {
	vals, err := s.rdb.HMGet(ctx, s.key(sid), fieldAccess, fieldRefresh).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apiclient.Tokens{}, nil
		}
		return apiclient.Tokens{}, err
	}
	var t apiclient.Tokens
	if len(vals) == 2 {
		t.Access, _ = vals[0].(string)
		t.Refresh, _ = vals[1].(string)
	}
	return t, nil
}

func (s *RedisStore) Set(ctx context.Context, sid string, t apiclient.Tokens, ttl time.Duration) error {
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.key(sid), fieldAccess, t.Access, fieldRefresh, t.Refresh)
	if ttl > 0 {
		pipe.Expire(ctx, s.key(sid), ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// SetAccess replaces the access token and keeps the remaining TTL.
func (s *RedisStore) SetAccess(ctx context.Context, sid, access string) error {
	return s.rdb.HSet(ctx, s.key(sid), fieldAccess, access).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, s.key(sid)).Err()
}

// MemoryStore is used when Redis is unreachable and in tests.  Sessions do
// not survive a restart.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memEntry
	now   func() time.Time
}

type memEntry struct {
	tokens  apiclient.Tokens
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]memEntry{}, now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, sid string) (apiclient.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[sid]
	if !ok {
		return apiclient.Tokens{}, nil
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.items, sid)
		return apiclient.Tokens{}, nil
	}
	return e.tokens, nil
}

func (s *MemoryStore) Set(_ context.Context, sid string, t apiclient.Tokens, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memEntry{tokens: t}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.items[sid] = e
	return nil
}

func (s *MemoryStore) SetAccess(_ context.Context, sid, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.items[sid]
	e.tokens.Access = access
	s.items[sid] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, sid)
	return nil
}
