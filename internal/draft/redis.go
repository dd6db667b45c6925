package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	lowimpl "github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a redis-backed draft outlives its last write.
const DefaultTTL = 2 * time.Hour

// RedisStore keeps drafts under "<app>_draft:<session>:<key>" and refreshes
// the TTL on every write.
type RedisStore struct {
	client lowimpl.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore scopes keys to sessionID. A zero ttl uses DefaultTTL.
func NewRedisStore(client lowimpl.UniversalClient, app, sessionID string, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis store: nil client")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("redis store: empty session id")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		prefix: app + "_draft:" + sessionID + ":",
		ttl:    ttl,
	}, nil
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*lowimpl.Client, error) {
	opts, err := lowimpl.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return lowimpl.NewClient(opts), nil
}

// Key returns the fully qualified redis key for key.
func (r *RedisStore) Key(key string) string {
	return r.prefix + key
}

func (r *RedisStore) Read(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.Key(key)).Result()
	if errors.Is(err, lowimpl.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisStore) Write(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.Key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.Key(key)).Err(); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
