package checkpoint

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steven3002/feedpager-go/feed"
)

// Run with: FEEDPAGER_REDIS_ADDR=localhost:6379 go test ./checkpoint
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("FEEDPAGER_REDIS_ADDR")
	if addr == "" {
		t.Skip("set FEEDPAGER_REDIS_ADDR to run")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx).Err())

	s := NewRedisStore(rdb, time.Minute)
	key := "test:" + uuid.NewString()
	defer rdb.Del(ctx, DefaultPrefix+key)

	_, ok, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := feed.CursorState{Token: "c7", HasMore: true}
	require.NoError(t, s.Save(ctx, key, want))
	got, ok, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	ttl, err := rdb.TTL(ctx, DefaultPrefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
