package llm

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
}

func (m *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
	return nil
}

type countingClient struct {
	calls int
	reply string
	err   error
}

func (c *countingClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	return c.Chat(ctx, []Message{UserMessage(prompt)}, tier, opts...)
}

func (c *countingClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	return c.Chat(ctx, []Message{UserMessage(prompt)}, tier, opts...)
}

func (c *countingClient) Chat(context.Context, []Message, ModelTier, ...Option) (string, error) {
	c.calls++
	return c.reply, c.err
}

func (c *countingClient) GetModel(tier ModelTier) string { return "m-" + string(tier) }
func (c *countingClient) Close() error                   { return nil }

func TestCachedClient_HitAndMiss(t *testing.T) {
	inner := &countingClient{reply: "cached reply"}
	client := NewCachedClient(inner, &mapCache{}, ProviderOpenRouter, nil)
	ctx := context.Background()

	first, err := client.GenerateContent(ctx, "prompt", TierStandard, WithMaxTokens(500), WithCache())
	require.NoError(t, err)
	second, err := client.GenerateContent(ctx, "prompt", TierStandard, WithMaxTokens(500), WithCache())
	require.NoError(t, err)

	assert.Equal(t, "cached reply", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	// Different options, tier or kind are different requests.
	_, _ = client.GenerateContent(ctx, "prompt", TierStandard, WithMaxTokens(200), WithCache())
	_, _ = client.GenerateContent(ctx, "prompt", TierLite, WithMaxTokens(500), WithCache())
	_, _ = client.GenerateJSON(ctx, "prompt", TierStandard, WithMaxTokens(500), WithCache())
	assert.Equal(t, 4, inner.calls)
}

func TestCachedClient_UncachedRequestsAlwaysReachProvider(t *testing.T) {
	inner := &countingClient{reply: "fresh"}
	cache := &mapCache{}
	client := NewCachedClient(inner, cache, ProviderOpenRouter, nil)
	ctx := context.Background()
	history := []Message{{Role: RoleSystem, Content: "sys"}, UserMessage("hi")}

	for i := 0; i < 2; i++ {
		_, err := client.GenerateContent(ctx, "prompt", TierStandard, WithMaxTokens(500))
		require.NoError(t, err)
		_, err = client.GenerateJSON(ctx, "prompt", TierStandard)
		require.NoError(t, err)
		_, err = client.Chat(ctx, history, TierLite)
		require.NoError(t, err)
	}

	assert.Equal(t, 6, inner.calls)
	assert.Empty(t, cache.data)
}

func TestCachedClient_ErrorsAreNotCached(t *testing.T) {
	inner := &countingClient{err: &APIError{Provider: ProviderOpenRouter, StatusCode: 500}}
	cache := &mapCache{}
	client := NewCachedClient(inner, cache, ProviderOpenRouter, nil)

	_, err := client.Chat(context.Background(), []Message{UserMessage("x")}, TierLite, WithCache())
	require.Error(t, err)
	_, err = client.Chat(context.Background(), []Message{UserMessage("x")}, TierLite, WithCache())
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Empty(t, cache.data)
}

func TestCachedClient_CacheFailureFallsThrough(t *testing.T) {
	inner := &countingClient{reply: "fresh"}
	client := NewCachedClient(inner, &mapCache{getErr: errors.New("redis down")}, ProviderOpenRouter, nil)

	got, err := client.GenerateContent(context.Background(), "p", TierStandard, WithCache())

	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.Equal(t, "m-lite", client.GetModel(TierLite))
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	rdb, err := ConnectRedis(ctx, url)
	require.NoError(t, err)
	defer func() { _ = rdb.Close() }()

	cache := NewRedisCache(rdb, time.Minute)
	key := "test-" + time.Now().Format(time.RFC3339Nano)

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, key, "value"))
	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}
