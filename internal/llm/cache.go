package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultCacheTTL is how long completion replies stay cached.
const DefaultCacheTTL = 24 * time.Hour

// ResponseCache stores completion replies by request fingerprint.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type redisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache returns a ResponseCache backed by Redis.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) ResponseCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) key(k string) string {
	return fmt.Sprintf("llm:completion:%s", k)
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, c.key(key), value, c.ttl).Err()
}

// ConnectRedis opens a Redis client from a redis:// URL or a bare host:port
// and verifies the connection.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// CachedClient serves repeated completion requests from a ResponseCache.
// Only requests made WithCache are looked up or stored, and only
// successful replies are stored.
type CachedClient struct {
	Client
	cache    ResponseCache
	provider Provider
	logger   *zap.Logger
}

// NewCachedClient wraps inner with cache.
func NewCachedClient(inner Client, cache ResponseCache, provider Provider, logger *zap.Logger) *CachedClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedClient{Client: inner, cache: cache, provider: provider, logger: logger}
}

func (c *CachedClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	key, ok := c.fingerprint("content", tier, []Message{UserMessage(prompt)}, opts)
	if !ok {
		return c.Client.GenerateContent(ctx, prompt, tier, opts...)
	}
	return c.cached(ctx, key, func() (string, error) {
		return c.Client.GenerateContent(ctx, prompt, tier, opts...)
	})
}

func (c *CachedClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	key, ok := c.fingerprint("json", tier, []Message{UserMessage(prompt)}, opts)
	if !ok {
		return c.Client.GenerateJSON(ctx, prompt, tier, opts...)
	}
	return c.cached(ctx, key, func() (string, error) {
		return c.Client.GenerateJSON(ctx, prompt, tier, opts...)
	})
}

func (c *CachedClient) Chat(ctx context.Context, messages []Message, tier ModelTier, opts ...Option) (string, error) {
	key, ok := c.fingerprint("chat", tier, messages, opts)
	if !ok {
		return c.Client.Chat(ctx, messages, tier, opts...)
	}
	return c.cached(ctx, key, func() (string, error) {
		return c.Client.Chat(ctx, messages, tier, opts...)
	})
}

func (c *CachedClient) cached(ctx context.Context, key string, call func() (string, error)) (string, error) {
	if val, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("completion cache read failed", zap.Error(err))
	} else if ok {
		c.logger.Debug("completion cache hit", zap.String("key", key))
		return val, nil
	}

	val, err := call()
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, val); err != nil {
		c.logger.Warn("completion cache write failed", zap.Error(err))
	}
	return val, nil
}

// fingerprint hashes everything that influences the reply. It reports
// false when the request did not opt in to caching.
func (c *CachedClient) fingerprint(kind string, tier ModelTier, messages []Message, opts []Option) (string, bool) {
	var r request
	for _, opt := range opts {
		opt(&r)
	}
	if !r.cacheable {
		return "", false
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%g\x00%d\x00", c.provider, c.GetModel(tier), kind, r.temperature, r.maxTokens)
	for _, m := range messages {
		fmt.Fprintf(h, "%s\x00%s\x00", m.Role, m.Content)
	}
	return hex.EncodeToString(h.Sum(nil)), true
}
