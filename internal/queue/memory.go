package queue

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultMemoryCapacity is the number of events a MemoryTreeQueue keeps.
const DefaultMemoryCapacity = 1024

var _ TreeQueue = (*MemoryTreeQueue)(nil)

// MemoryTreeQueue keeps the last published events. Used when no broker is
// configured; older events are dropped once the capacity is reached.
type MemoryTreeQueue struct {
	mu       sync.Mutex
	capacity int
	events   []*TreeChanged
}

func NewMemoryTreeQueue() *MemoryTreeQueue {
	return NewBoundedMemoryTreeQueue(DefaultMemoryCapacity)
}

func NewBoundedMemoryTreeQueue(capacity int) *MemoryTreeQueue {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryTreeQueue{capacity: capacity}
}

func (m *MemoryTreeQueue) PublishChange(_ context.Context, event *TreeChanged) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	logrus.Debugf("tree %s %d changed by %s (%s)", event.Code, event.Year, event.Command, event.Type)
	if len(m.events) == m.capacity {
		copy(m.events, m.events[1:])
		m.events[len(m.events)-1] = event
		return nil
	}
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of the kept events, oldest first.
func (m *MemoryTreeQueue) Events() []*TreeChanged {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*TreeChanged(nil), m.events...)
}

func (m *MemoryTreeQueue) Close() error {
	return nil
}
