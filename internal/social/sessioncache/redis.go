package sessioncache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/go-redis/redis/v8"
)

// Redis stores sessions as JSON blobs with a native key TTL.
type Redis struct {
	client *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedis(cfg RedisConfig) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, userID string) (domain.Session, error) {
	raw, err := r.client.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, ErrMiss
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("sessioncache: get: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Session{}, fmt.Errorf("sessioncache: decode: %w", err)
	}
	return s, nil
}

func (r *Redis) Set(ctx context.Context, s domain.Session, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("sessioncache: encode: %w", err)
	}
	if err := r.client.Set(ctx, Key(s.UserID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("sessioncache: set: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, Key(userID)).Err(); err != nil {
		return fmt.Errorf("sessioncache: delete: %w", err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error { return r.client.Close() }
