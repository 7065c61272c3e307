package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fanspark/discovery/internal/config"
	"github.com/fanspark/discovery/internal/engine"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

// --- admirer counts ---

// KeyForAdmirerCount generates the Redis key for a user's admirer count
// (how many people have liked them).
func (c *RedisCache) KeyForAdmirerCount(userID uint64) string {
	return fmt.Sprintf("admirers:count:%d", userID)
}

func (c *RedisCache) UpdateAdmirerCount(ctx context.Context, userID uint64, count int64) error {
	key := c.KeyForAdmirerCount(userID)
	// Always refresh TTL when updating
	return c.Client.Set(ctx, key, count, time.Hour).Err()
}

func (c *RedisCache) GetAdmirerCount(ctx context.Context, userID uint64) (int64, bool, error) {
	key := c.KeyForAdmirerCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, time.Hour).Err()
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// --- quota counters ---

// keyForQuota generates the Redis key for a viewer's daily quota counters.
// Day is the reset-zone date string (2006-01-02), so a new day naturally
// starts from an absent key.
func (c *RedisCache) keyForQuota(viewerID uint64, day string) string {
	return fmt.Sprintf("quota:%d:%s", viewerID, day)
}

// LoadCounters reads persisted quota counters for the given day.
// An absent key yields zero counters.
func (c *RedisCache) LoadCounters(ctx context.Context, viewerID uint64, day string) (engine.Counters, error) {
	fields, err := c.Client.HGetAll(ctx, c.keyForQuota(viewerID, day)).Result()
	if err != nil {
		return engine.Counters{}, err
	}
	var counters engine.Counters
	counters.Swipes = parseField(fields, "swipes")
	counters.SuperLikes = parseField(fields, "super_likes")
	counters.Rewinds = parseField(fields, "rewinds")
	return counters, nil
}

// SaveCounters persists quota counters for the given day. Keys expire two
// days out; they are only ever read for the current reset-zone date.
func (c *RedisCache) SaveCounters(ctx context.Context, viewerID uint64, day string, counters engine.Counters) error {
	key := c.keyForQuota(viewerID, day)
	err := c.Client.HSet(ctx, key,
		"swipes", counters.Swipes,
		"super_likes", counters.SuperLikes,
		"rewinds", counters.Rewinds,
	).Err()
	if err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, 48*time.Hour).Err()
}

func parseField(fields map[string]string, name string) int {
	n, _ := strconv.Atoi(fields[name])
	return n
}
