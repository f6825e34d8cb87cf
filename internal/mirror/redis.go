package mirror

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists mirror values in Redis so pending gallery state
// survives process restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects a Store to the given Redis instance.
func NewRedisStore(addr, password string, database int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       database,
		}),
	}
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	value, err := s.client.Get(context.Background(), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisStore) Set(key, value string) error {
	// Mirror entries are cleared explicitly on save or discard, never by TTL.
	return s.client.Set(context.Background(), key, value, 0).Err()
}

func (s *RedisStore) Remove(key string) error {
	return s.client.Del(context.Background(), key).Err()
}

// Ping verifies connectivity at startup.
func (s *RedisStore) Ping() error {
	return s.client.Ping(context.Background()).Err()
}
