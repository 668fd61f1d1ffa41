package store

import (
	"context"
	"errors"

	"tracker-makedarun/internal/config"

	"github.com/redis/go-redis/v9"
)

// Keys under the makedarun namespace. The offline run collection and the
// auth token are the only durable state the client owns.
const (
	KeyOfflineRuns = "makedarun:offline_runs"
	KeyToken       = "makedarun:token"
)

var ErrNotFound = errors.New("store: key not found")

// KV is the durable key-value boundary used by the queue and the API client.
// Both *Redis and test fakes satisfy it.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (s *Redis) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
