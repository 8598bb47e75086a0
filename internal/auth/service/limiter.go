package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter throttles failed second-factor proofs per user.
type AttemptLimiter interface {
	// Check returns ErrTooManyAttempts while the user is locked out.
	Check(ctx context.Context, userID int64) error
	// RecordFailure counts one failed proof.
	RecordFailure(ctx context.Context, userID int64) error
	// Reset clears the counter after a successful proof.
	Reset(ctx context.Context, userID int64) error
}

// NoopLimiter never limits. Used when no Redis is configured.
type NoopLimiter struct{}

func (NoopLimiter) Check(context.Context, int64) error         { return nil }
func (NoopLimiter) RecordFailure(context.Context, int64) error { return nil }
func (NoopLimiter) Reset(context.Context, int64) error         { return nil }

// RedisLimiter keeps a fixed-window failure counter per user in Redis. The
// window starts at the first failure and the key expires with it.
type RedisLimiter struct {
	Redis       *redis.Client
	MaxAttempts int
	Window      time.Duration
	Prefix      string // defaults to "lf:2fa:"
}

func (l *RedisLimiter) key(userID int64) string {
	prefix := l.Prefix
	if prefix == "" {
		prefix = "lf:2fa:"
	}
	return prefix + strconv.FormatInt(userID, 10)
}

func (l *RedisLimiter) Check(ctx context.Context, userID int64) error {
	count, err := l.Redis.Get(ctx, l.key(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("attempt limiter check: %w", err)
	}
	if int(count) >= l.MaxAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

func (l *RedisLimiter) RecordFailure(ctx context.Context, userID int64) error {
	key := l.key(userID)
	count, err := l.Redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("attempt limiter incr: %w", err)
	}
	if count == 1 {
		if err := l.Redis.Expire(ctx, key, l.Window).Err(); err != nil {
			return fmt.Errorf("attempt limiter expire: %w", err)
		}
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, userID int64) error {
	if err := l.Redis.Del(ctx, l.key(userID)).Err(); err != nil {
		return fmt.Errorf("attempt limiter reset: %w", err)
	}
	return nil
}
