package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetPut(t *testing.T) {
	c := NewLRU[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 50.0, stats.HitRate, 1e-9)
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 2, stats.Capacity)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	assert.Equal(t, []string{"c", "a"}, c.Keys())
}

func TestLRU_UpdateMovesToFront(t *testing.T) {
	c := NewLRU[string, int](3)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)

	assert.Equal(t, []string{"a", "b"}, c.Keys())
	v, _ := c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Remove(t *testing.T) {
	c := NewLRU[int, string](2)
	c.Put(1, "one")

	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))
	assert.Equal(t, 0, c.Len())
}

func TestLRU_ZeroCapacityDisabled(t *testing.T) {
	for _, capacity := range []int{0, -5} {
		c := NewLRU[string, int](capacity)
		c.Put("a", 1)

		_, ok := c.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[string, int](16)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (w*200+i)%32)
				c.Put(key, i)
				c.Get(key)
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
	assert.Len(t, c.Keys(), c.Len())
}

func TestKeyForFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o600))

	first, err := KeyForFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, first.Path)
	assert.Equal(t, int64(3), first.Size)

	require.NoError(t, os.WriteFile(path, []byte("longer"), 0o600))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := KeyForFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = KeyForFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
