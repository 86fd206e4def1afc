package cache

import (
	"context"
	"sync"

	"github.com/emrgen/programtree/internal/tree"
)

var _ ContentCache = (*MemoryContentCache)(nil)

// MemoryContentCache keeps content in process. It backs tests and the
// server when no redis address is configured.
type MemoryContentCache struct {
	mu      sync.RWMutex
	content map[tree.ProgramTreeIdentity][]byte
}

func NewMemoryContentCache() *MemoryContentCache {
	return &MemoryContentCache{content: make(map[tree.ProgramTreeIdentity][]byte)}
}

func (m *MemoryContentCache) GetContent(_ context.Context, identity tree.ProgramTreeIdentity) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.content[identity]
	if !ok {
		return nil, ErrMiss
	}
	return content, nil
}

func (m *MemoryContentCache) SetContent(_ context.Context, identity tree.ProgramTreeIdentity, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.content[identity] = content
	return nil
}

func (m *MemoryContentCache) Invalidate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.content = make(map[tree.ProgramTreeIdentity][]byte)
	return nil
}

// Len returns the number of cached trees.
func (m *MemoryContentCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.content)
}
