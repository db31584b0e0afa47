package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSlots stores each slot as a plain Redis string without expiry.
type RedisSlots struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisSlots wraps an existing client.
func NewRedisSlots(client *redis.Client) *RedisSlots {
	return &RedisSlots{client: client, timeout: 2 * time.Second}
}

func (r *RedisSlots) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotNotFound
	}
	return b, err
}

func (r *RedisSlots) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisSlots) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Del(ctx, key).Err()
}
