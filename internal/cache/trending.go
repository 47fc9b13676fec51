// Package cache memoizes read-heavy aggregates in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Carig-G/the-bench/internal/domain"
	"github.com/Carig-G/the-bench/internal/service"
)

const trendingPrefix = "bench:trending:"

var (
	_ service.TrendingCache = (*Trending)(nil)
	_ service.TrendingCache = Noop{}
)

// Trending stores trending-tag lists as JSON, one key per limit.
type Trending struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTrending(rdb *redis.Client, ttl time.Duration) *Trending {
	return &Trending{rdb: rdb, ttl: ttl}
}

// Connect dials addr and checks the server answers.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

func trendingKey(limit int) string {
	return fmt.Sprintf("%s%d", trendingPrefix, limit)
}

func (t *Trending) Get(ctx context.Context, limit int) ([]domain.TagCount, bool, error) {
	raw, err := t.rdb.Get(ctx, trendingKey(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get trending tags: %w", err)
	}
	var tags []domain.TagCount
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, false, fmt.Errorf("decode trending tags: %w", err)
	}
	return tags, true, nil
}

func (t *Trending) Set(ctx context.Context, limit int, tags []domain.TagCount) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode trending tags: %w", err)
	}
	if err := t.rdb.Set(ctx, trendingKey(limit), raw, t.ttl).Err(); err != nil {
		return fmt.Errorf("set trending tags: %w", err)
	}
	return nil
}

// Noop never hits; used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, int) ([]domain.TagCount, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, int, []domain.TagCount) error         { return nil }
