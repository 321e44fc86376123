package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/steven3002/feedpager-go/feed"
)

// DefaultPrefix namespaces checkpoint keys.
const DefaultPrefix = "feedpager:cursor:"

// RedisStore keeps states as JSON strings. Entries expire after TTL; zero
// keeps them forever.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: DefaultPrefix, ttl: ttl}
}

func (r *RedisStore) key(k string) string { return r.prefix + k }

func (r *RedisStore) Load(ctx context.Context, key string) (feed.CursorState, bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return feed.CursorState{}, false, nil
	}
	if err != nil {
		return feed.CursorState{}, false, fmt.Errorf("load checkpoint %q: %w", key, err)
	}
	var st feed.CursorState
	if err := json.Unmarshal(raw, &st); err != nil {
		return feed.CursorState{}, false, fmt.Errorf("decode checkpoint %q: %w", key, err)
	}
	return st, true, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, state feed.CursorState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(key), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save checkpoint %q: %w", key, err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
