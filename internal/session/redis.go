package session

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

const credentialKey = "session:credential"

// RedisStore keeps the credential in Redis, for deployments where the engine
// runs as a long-lived agent next to a Redis instance.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the given address or redis:// URL.
func NewRedisStore(addr string) (*RedisStore, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// NewRedisStoreWithClient wraps an existing client; used in tests.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, credentialKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, token string) error {
	return s.client.Set(ctx, credentialKey, token, 0).Err()
}

func (s *RedisStore) Remove(ctx context.Context) error {
	return s.client.Del(ctx, credentialKey).Err()
}
