package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parliamentplating/reservations-web/internal/apiclient"
)

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	st := NewRedisStore(rdb, "")
	ctx := context.Background()

	tok, err := st.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, tok.Access)

	require.NoError(t, st.Set(ctx, "s1", apiclient.Tokens{Access: "a", Refresh: "r"}, time.Hour))
	assert.Equal(t, "a", mr.HGet("pppa:session:s1", "access_token"))
	assert.True(t, mr.TTL("pppa:session:s1") > 0)

	require.NoError(t, st.SetAccess(ctx, "s1", "a2"))
	tok, err = st.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, apiclient.Tokens{Access: "a2", Refresh: "r"}, tok)

	mr.FastForward(2 * time.Hour)
	tok, err = st.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, tok.Refresh)

	require.NoError(t, st.Set(ctx, "s2", apiclient.Tokens{Access: "x"}, 0))
	require.NoError(t, st.Delete(ctx, "s2"))
	assert.False(t, mr.Exists("pppa:session:s2"))
}
