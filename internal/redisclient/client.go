package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/rate_limit.lua
var rateLimitScript string

// Reputation cache entries go stale on their own; reviews refresh them
// eagerly after commit.
const reputationTTL = 10 * time.Minute

type Client struct {
	rdb        *redis.Client
	rateScript *redis.Script
}

// NewClient creates a new Redis client with the rate-limit script loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:        rdb,
		rateScript: redis.NewScript(rateLimitScript),
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Allow runs the fixed-window rate limiter for key. Returns false when the
// caller has exceeded limit requests within the window.
func (c *Client) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	result, err := c.rateScript.Run(ctx, c.rdb,
		[]string{fmt.Sprintf("ratelimit:%s", key)},
		window.Milliseconds(), limit).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit script failed: %w", err)
	}

	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}
	return allowed == 1, nil
}

// SetReputation caches a seller's reputation score
func (c *Client) SetReputation(ctx context.Context, sellerID int64, score float64) error {
	return c.rdb.Set(ctx, reputationKey(sellerID), score, reputationTTL).Err()
}

// GetReputation retrieves a cached reputation score. The second return
// value is false on a cache miss.
func (c *Client) GetReputation(ctx context.Context, sellerID int64) (float64, bool, error) {
	score, err := c.rdb.Get(ctx, reputationKey(sellerID)).Float64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func reputationKey(sellerID int64) string {
	return fmt.Sprintf("reputation:%d", sellerID)
}
