package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store. FailGet and FailPut inject errors so tests
// can exercise the degraded paths of callers.
type Memory struct {
	mu     sync.Mutex
	data   map[string][]byte
	closed bool

	// FailGet, when non-nil, is returned by every Get.
	FailGet error
	// FailPut, when non-nil, is returned by every Put.
	FailPut error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get implements Store.Get.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.FailGet != nil {
		return nil, m.FailGet
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put implements Store.Put.
func (m *Memory) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.FailPut != nil {
		return m.FailPut
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// SetFailures swaps the injected errors under the store lock.
func (m *Memory) SetFailures(get, put error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailGet = get
	m.FailPut = put
}

// Path implements Store.Path.
func (m *Memory) Path() string {
	return ""
}

// Close implements Store.Close.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
