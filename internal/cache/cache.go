package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arenalab/promptarena/pkg/utils"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ResponseCache keeps finished model responses in Redis so identical
// prompt/model/category triples within the TTL skip the provider call.
// The cache is optional: a nil *ResponseCache is safe to use and behaves
// as a permanent miss.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

const responseKey = "generate:response:%s"

// Connect dials Redis and verifies the connection. Callers treat a failure
// as "run without cache", not as fatal.
func Connect(redisURL string, ttl time.Duration, logger *logrus.Logger) (*ResponseCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 2

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis response cache connected")

	return &ResponseCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Key derives the cache key for one model invocation.
func Key(modelID, category, prompt string) string {
	return utils.MD5Hash(strings.ToLower(modelID + "|" + category + "|" + strings.TrimSpace(prompt)))
}

// Get returns the cached response text and whether it was present.
func (c *ResponseCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}

	text, err := c.client.Get(ctx, fmt.Sprintf(responseKey, key)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Warn("Response cache read failed")
		}
		return "", false
	}

	return text, true
}

// Set stores a finished response; failures are logged and swallowed.
func (c *ResponseCache) Set(ctx context.Context, key, text string) {
	if c == nil {
		return
	}

	if err := c.client.Set(ctx, fmt.Sprintf(responseKey, key), text, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("Response cache write failed")
	}
}

// Ping reports cache reachability for health checks.
func (c *ResponseCache) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("cache not configured")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *ResponseCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
