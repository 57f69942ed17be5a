package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_InsertAndRetrieve(t *testing.T) {
	c := New[string](10)

	require.NoError(t, c.Insert("a", "value-a", 1))
	require.NoError(t, c.Insert("b", "value-b", 2))

	value, ok := c.Retrieve("a")
	require.True(t, ok)
	assert.Equal(t, "value-a", value)

	_, ok = c.Retrieve("missing")
	assert.False(t, ok)

	assert.Equal(t, 3, c.Weight())
	assert.Equal(t, 10, c.Budget())
	assert.Equal(t, 2, c.Len())
}

func TestCache_DuplicateRejected(t *testing.T) {
	c := New[int](10)

	require.NoError(t, c.Insert("dupe", 1, 1))
	assert.Equal(t, ErrKeyExists, c.Insert("dupe", 2, 1))

	value, ok := c.Retrieve("dupe")
	require.True(t, ok)
	assert.Equal(t, 1, value)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](3)

	require.NoError(t, c.Insert("a", 1, 1))
	require.NoError(t, c.Insert("b", 2, 1))
	require.NoError(t, c.Insert("c", 3, 1))

	// Touch a so b becomes the eviction candidate
	_, ok := c.Retrieve("a")
	require.True(t, ok)

	require.NoError(t, c.Insert("d", 4, 1))

	_, ok = c.Retrieve("b")
	assert.False(t, ok)
	for _, key := range []string{"a", "c", "d"} {
		_, ok = c.Retrieve(key)
		assert.True(t, ok, key)
	}
	assert.Equal(t, 3, c.Weight())
}

func TestCache_HeavyEntryEvictsMany(t *testing.T) {
	c := New[int](4)

	require.NoError(t, c.Insert("a", 1, 1))
	require.NoError(t, c.Insert("b", 2, 1))
	require.NoError(t, c.Insert("c", 3, 3))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 4, c.Weight())
	_, ok := c.Retrieve("a")
	assert.False(t, ok)

	// An entry heavier than the whole budget evicts itself
	require.NoError(t, c.Insert("d", 4, 5))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Weight())
}

func TestCache_Clear(t *testing.T) {
	c := New[int](10)

	require.NoError(t, c.Insert("a", 1, 1))
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Weight())
	_, ok := c.Retrieve("a")
	assert.False(t, ok)

	require.NoError(t, c.Insert("a", 1, 1))
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int](50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d:%d", worker, j)
				_ = c.Insert(key, j, 1)
				c.Retrieve(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Weight(), c.Budget())
	assert.Equal(t, c.Weight(), c.Len())
}
