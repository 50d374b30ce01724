package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Natsdon/CECOS-Connect/internal/core/port"
	"github.com/Natsdon/CECOS-Connect/internal/repository"
)

// SlidingWindowConfig defines key naming and retention for the login limiter.
type SlidingWindowConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

// RateLimitRepository tracks login attempts in Redis sorted sets keyed by
// client identifier. Scores are millisecond timestamps, so entries outside
// the window can be trimmed with a single range delete.
type RateLimitRepository struct {
	client *redis.Client
	cfg    SlidingWindowConfig
}

// NewRateLimitRepository constructs a sliding-window attempt store.
func NewRateLimitRepository(client *redis.Client, cfg SlidingWindowConfig) *RateLimitRepository {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ratelimit:login"
	}
	return &RateLimitRepository{client: client, cfg: cfg}
}

// RecordAttempt stores an attempt timestamp and refreshes the key TTL in one
// round trip.
func (r *RateLimitRepository) RecordAttempt(ctx context.Context, identifier string, at time.Time) error {
	key := r.key(identifier)

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixMilli()), Member: at.UnixMilli()})
	if r.cfg.TTL > 0 {
		pipe.Expire(ctx, key, r.cfg.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return r.wrap("record attempt", err)
	}
	return nil
}

// CountAttempts returns the number of attempts inside the window ending at
// the reference time.
func (r *RateLimitRepository) CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}

	count, err := r.client.ZCount(ctx, r.key(identifier),
		strconv.FormatInt(reference.Add(-window).UnixMilli(), 10),
		strconv.FormatInt(reference.UnixMilli(), 10),
	).Result()
	if err != nil {
		return 0, r.wrap("count attempts", err)
	}

	return int(count), nil
}

// TrimWindow drops attempts that fell out of the window.
func (r *RateLimitRepository) TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error {
	if window <= 0 {
		return errors.New("window must be positive")
	}

	threshold := strconv.FormatInt(reference.Add(-window).UnixMilli(), 10)
	if err := r.client.ZRemRangeByScore(ctx, r.key(identifier), "-inf", "("+threshold).Err(); err != nil {
		return r.wrap("trim window", err)
	}
	return nil
}

// OldestAttempt returns the earliest attempt still inside the window, used to
// compute the retry-after hint.
func (r *RateLimitRepository) OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	if window <= 0 {
		return time.Time{}, false, errors.New("window must be positive")
	}

	values, err := r.client.ZRangeByScore(ctx, r.key(identifier), &redis.ZRangeBy{
		Min:   strconv.FormatInt(reference.Add(-window).UnixMilli(), 10),
		Max:   strconv.FormatInt(reference.UnixMilli(), 10),
		Count: 1,
	}).Result()
	if err != nil {
		return time.Time{}, false, r.wrap("oldest attempt", err)
	}

	if len(values) == 0 {
		return time.Time{}, false, nil
	}

	millis, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse attempt timestamp: %w", err)
	}

	return time.UnixMilli(millis), true, nil
}

func (r *RateLimitRepository) key(identifier string) string {
	return fmt.Sprintf("%s:%s", r.cfg.KeyPrefix, identifier)
}

func (r *RateLimitRepository) wrap(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, repository.ErrUnavailable, err)
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
