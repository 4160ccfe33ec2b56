package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
)

func TestCache_FirstWriterWins(t *testing.T) {
	c, err := New[string]()
	require.NoError(t, err)

	v, stored, err := c.Add("k", "first")
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, "first", v)

	v, stored, err = c.Add("k", "second")
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Equal(t, "first", v)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "first", got)
	assert.Equal(t, int64(1), c.Stats().Duplicates())
}

func TestCache_EmptyKeyIsInvalid(t *testing.T) {
	c, err := New[int]()
	require.NoError(t, err)

	_, _, err = c.Add("", 1)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestCache_MaxEntries(t *testing.T) {
	c, err := New[int](WithMaxEntries[int](2))
	require.NoError(t, err)

	_, _, err = c.Add("a", 1)
	require.NoError(t, err)
	_, _, err = c.Add("b", 2)
	require.NoError(t, err)
	_, stored, err := c.Add("c", 3)
	assert.ErrorIs(t, err, ErrCacheFull)
	assert.False(t, stored)

	// Existing keys still resolve when full.
	v, stored, err := c.Add("a", 10)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())
	assert.Equal(t, int64(1), c.Stats().Rejections())
}

func TestCache_Stats(t *testing.T) {
	c, err := New[int]()
	require.NoError(t, err)

	_, _, _ = c.Add("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.Stats().Summary()
	assert.Equal(t, int64(2), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, int64(1), s.Inserts)
	assert.InDelta(t, 2.0/3.0, s.HitRatio, 1e-9)
	assert.ElementsMatch(t, []string{"a"}, c.Keys())
}

func TestCache_ConcurrentAdd(t *testing.T) {
	var added int
	var mu sync.Mutex
	c, err := New[int](WithAddCallback(func(string, int) {
		mu.Lock()
		added++
		mu.Unlock()
	}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, _, _ = c.Add(fmt.Sprintf("key-%d", i), w)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 100, c.Size())
	assert.Equal(t, 100, added)
	assert.Equal(t, int64(700), c.Stats().Duplicates())
}

func TestCache_WithMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	c, err := New[int](WithMetrics[int](registry, "embedding"))
	require.NoError(t, err)
	_, _, err = c.Add("a", 1)
	require.NoError(t, err)

	_, err = New[int](WithMetrics[int](registry, "embedding"))
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	require.NoError(t, c.Close())
}
