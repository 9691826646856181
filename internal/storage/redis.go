package storage

import (
	"context"
	"fmt"

	"github.com/angelmondragon/minimarket-client/pkg/redis"
)

type redisClient interface {
	Set(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
	StateKey(profile, key string) string
}

// RedisStore keeps profile state under mm:state:<profile>:<key>.
type RedisStore struct {
	client  redisClient
	profile string
}

func NewRedisStore(client redisClient, profile string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if err := validateKey(profile); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return &RedisStore{client: client, profile: profile}, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return r.client.Set(ctx, r.client.StateKey(r.profile, key), value)
}

func (r *RedisStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	value, err := r.client.Get(ctx, r.client.StateKey(r.profile, key))
	if redis.IsMiss(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return r.client.Del(ctx, r.client.StateKey(r.profile, key))
}
