package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_CreateAndListKeepsOrder(t *testing.T) {
	repo := NewMessageRepository()

	first, err := repo.Create("User", "hello")
	require.NoError(t, err)
	second, err := repo.Create("AI", "hi there")
	require.NoError(t, err)

	list := repo.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Less(t, first.ID, second.ID, "ids sort in creation order")
	assert.False(t, second.Timestamp.Before(first.Timestamp))
}

func TestMessageRepository_TimestampNeverGoesBackwards(t *testing.T) {
	repo := NewMessageRepository()
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := []time.Time{base, base.Add(-time.Minute)}
	repo.now = func() time.Time {
		ts := clock[0]
		clock = clock[1:]
		return ts
	}

	a, err := repo.Create("User", "a")
	require.NoError(t, err)
	b, err := repo.Create("User", "b")
	require.NoError(t, err)

	assert.Equal(t, a.Timestamp, b.Timestamp)
	assert.Less(t, a.ID, b.ID)
}

func TestMessageRepository_DeleteByID(t *testing.T) {
	repo := NewMessageRepository()
	a, _ := repo.Create("User", "a")
	b, _ := repo.Create("User", "b")
	c, _ := repo.Create("User", "c")

	assert.True(t, repo.DeleteByID(b.ID))
	assert.False(t, repo.DeleteByID(b.ID))
	assert.False(t, repo.DeleteByID("missing"))

	list := repo.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)

	_, ok := repo.GetByID(b.ID)
	assert.False(t, ok)
}

func TestMessageRepository_ListRecent(t *testing.T) {
	repo := NewMessageRepository()
	for _, s := range []string{"1", "2", "3", "4"} {
		_, err := repo.Create("User", s)
		require.NoError(t, err)
	}

	recent := repo.ListRecent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "3", recent[0].Content)
	assert.Equal(t, "4", recent[1].Content)
	assert.Len(t, repo.ListRecent(0), 4)
}

func TestMessageRepository_ConcurrentCreateHasUniqueIDs(t *testing.T) {
	repo := NewMessageRepository()
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create("User", "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, m := range repo.List() {
		seen[m.ID] = struct{}{}
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, repo.Count())
}
