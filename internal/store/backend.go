package store

import (
	"context"
	"errors"
	"sync"
)

// ErrQuotaExceeded is returned by MemoryBackend when a write would exceed its quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Backend is the raw key/value surface the Store persists collections into.
// Load reports ok=false when the key is absent.
type Backend interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// MemoryBackend keeps collections in process memory. A positive Quota caps the
// total stored bytes, mimicking a browser storage quota.
type MemoryBackend struct {
	Quota int

	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty, unbounded MemoryBackend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (m *MemoryBackend) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	if m.Quota > 0 {
		used := len(value)
		for k, v := range m.data {
			if k != key {
				used += len(v)
			}
		}
		if used > m.Quota {
			return ErrQuotaExceeded
		}
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *MemoryBackend) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Keys returns the stored keys in no particular order.
func (m *MemoryBackend) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
