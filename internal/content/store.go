package content

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrCourseNotFound = errors.New("course not found")

// Store yields the ordered flattened content sequence for a course.
type Store interface {
	Sequence(ctx context.Context, courseID string) ([]Item, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	courses map[string][]Item
}

func NewInMemoryStore() *memoryStore {
	return &memoryStore{courses: map[string][]Item{}}
}

func (m *memoryStore) PutCourse(courseID string, items []Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })
	m.courses[courseID] = sorted
}

func (m *memoryStore) Sequence(_ context.Context, courseID string) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items, ok := m.courses[courseID]
	if !ok {
		return nil, ErrCourseNotFound
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out, nil
}

// CachedStore wraps a Store and memoizes each course sequence for the life
// of the process. Sequences are treated as immutable once loaded.
type CachedStore struct {
	inner Store

	mu     sync.RWMutex
	loaded map[string][]Item
}

func NewCachedStore(inner Store) *CachedStore {
	return &CachedStore{inner: inner, loaded: map[string][]Item{}}
}

func (c *CachedStore) Sequence(ctx context.Context, courseID string) ([]Item, error) {
	c.mu.RLock()
	items, ok := c.loaded[courseID]
	c.mu.RUnlock()
	if ok {
		return items, nil
	}
	items, err := c.inner.Sequence(ctx, courseID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.loaded[courseID] = items
	c.mu.Unlock()
	return items, nil
}
