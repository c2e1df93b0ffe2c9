package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/advision/internal/llm"
)

// MemoryCache is a map-backed llm.ResponseCache.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

var _ llm.ResponseCache = (*MemoryCache)(nil)

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
	return nil
}

// Len returns the number of stored replies.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
