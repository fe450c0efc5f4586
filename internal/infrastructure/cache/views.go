package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"cloudy/internal/domain/apperr"
)

const defaultPrefix = "cloudy:view:"

// counters is the part of redis.Cmdable Views uses.
type counters interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Views keeps a monotonically increasing version per listing path in
// redis so every API instance sees the same invalidations.
type Views struct {
	rdb    counters
	prefix string
}

func NewViews(rdb redis.Cmdable, prefix string) *Views {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Views{rdb: rdb, prefix: prefix}
}

func (v *Views) Invalidate(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		if err := v.rdb.Incr(ctx, v.prefix+p).Err(); err != nil {
			return fmt.Errorf("invalidate view %q: %v: %w", p, err, apperr.ErrStoreUnavailable)
		}
	}
	return nil
}

func (v *Views) Version(ctx context.Context, path string) (int64, error) {
	s, err := v.rdb.Get(ctx, v.prefix+path).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("view version %q: %v: %w", path, err, apperr.ErrStoreUnavailable)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("view version %q: %w", path, err)
	}
	return n, nil
}

// NewClient opens a redis client from a redis:// URL and pings it.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err = rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
