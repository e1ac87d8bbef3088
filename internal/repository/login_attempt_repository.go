package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginAttemptRepository counts failed logins per submitted login name.
type LoginAttemptRepository interface {
	Failures(ctx context.Context, loginName string) (int64, error)
	RecordFailure(ctx context.Context, loginName string, window time.Duration) (int64, error)
	Reset(ctx context.Context, loginName string) error
}

type redisLoginAttemptRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewLoginAttemptRepository returns a Redis-backed counter.
func NewLoginAttemptRepository(client redis.UniversalClient) LoginAttemptRepository {
	return &redisLoginAttemptRepository{client: client, prefix: "auth:login_failures:"}
}

func (r *redisLoginAttemptRepository) key(loginName string) string {
	return r.prefix + loginName
}

func (r *redisLoginAttemptRepository) Failures(ctx context.Context, loginName string) (int64, error) {
	n, err := r.client.Get(ctx, r.key(loginName)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get: %w", err)
	}
	return n, nil
}

// RecordFailure increments the counter and restarts its window.
func (r *redisLoginAttemptRepository) RecordFailure(ctx context.Context, loginName string, window time.Duration) (int64, error) {
	if window <= 0 {
		window = time.Minute
	}
	key := r.key(loginName)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	return incr.Val(), nil
}

func (r *redisLoginAttemptRepository) Reset(ctx context.Context, loginName string) error {
	if err := r.client.Del(ctx, r.key(loginName)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
