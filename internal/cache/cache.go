// Package cache is the best-effort local tier for progress records. Every
// implementation swallows its own failures: a dead or absent cache degrades
// the caller to remote-only operation, it never fails a request.
package cache

import (
	"context"
	"sync"
	"time"
)

// KV is a synchronous key-value surface. Get returns false on miss or on any
// backend failure; Set is fire-and-forget.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
}

type memoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an in-process KV, used when no Redis address is
// configured and as the test double.
func NewMemory() *memoryKV {
	return &memoryKV{data: map[string][]byte{}}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

func (m *memoryKV) Set(_ context.Context, key string, val []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(val))
	copy(cp, val)
	m.data[key] = cp
}

const opTimeout = 2 * time.Second
