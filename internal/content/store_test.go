package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSortsByOrdinal(t *testing.T) {
	store := NewInMemoryStore()
	store.PutCourse("c1", []Item{
		{ID: "b", Ordinal: 1, Type: TypeText},
		{ID: "a", Ordinal: 0, Type: TypeVideo},
		{ID: "c", Ordinal: 2, Type: TypeQuiz},
	})

	items, err := store.Sequence(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "c", items[2].ID)
}

func TestMemoryStoreUnknownCourse(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Sequence(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

type countingStore struct {
	inner Store
	calls int
}

func (c *countingStore) Sequence(ctx context.Context, courseID string) ([]Item, error) {
	c.calls++
	return c.inner.Sequence(ctx, courseID)
}

func TestCachedStoreMemoizes(t *testing.T) {
	mem := NewInMemoryStore()
	mem.PutCourse("c1", []Item{{ID: "a", Ordinal: 0, Type: TypeVideo}})
	counting := &countingStore{inner: mem}
	cached := NewCachedStore(counting)

	for i := 0; i < 3; i++ {
		items, err := cached.Sequence(context.Background(), "c1")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	}
	assert.Equal(t, 1, counting.calls)

	// misses are not cached
	_, err := cached.Sequence(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCourseNotFound)
	_, _ = cached.Sequence(context.Background(), "nope")
	assert.Equal(t, 3, counting.calls)
}

func TestImageCount(t *testing.T) {
	it := Item{Type: TypeImage, Payload: Payload{Images: []string{"1.png", "2.png"}}}
	assert.Equal(t, 2, it.ImageCount())
	assert.Equal(t, 0, Item{Type: TypeVideo}.ImageCount())
}
