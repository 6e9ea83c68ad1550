package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLookupMiss(t *testing.T) {
	m := NewMemory(4)

	_, ok := m.Lookup(context.Background(), "hello", "en-US")
	assert.False(t, ok)
}

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory(4)
	ctx := context.Background()

	m.Insert(ctx, "hola", "en-US", "hello")

	got, ok := m.Lookup(ctx, "hola", "en-US")
	require.True(t, ok)
	assert.Equal(t, "hello", got)
}

func TestMemoryKeyNormalization(t *testing.T) {
	m := NewMemory(4)
	ctx := context.Background()

	m.Insert(ctx, "  hola  ", "en-US", "hello")

	got, ok := m.Lookup(ctx, "hola", "en-US")
	require.True(t, ok)
	assert.Equal(t, "hello", got)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryTargetLanguageIsolation(t *testing.T) {
	m := NewMemory(4)
	ctx := context.Background()

	m.Insert(ctx, "hola", "en-US", "hello")

	_, ok := m.Lookup(ctx, "hola", "ja")
	assert.False(t, ok)
}

func TestMemoryInsertOverwrites(t *testing.T) {
	m := NewMemory(4)
	ctx := context.Background()

	m.Insert(ctx, "hola", "en-US", "hello")
	m.Insert(ctx, "hola", "en-US", "hi")

	got, ok := m.Lookup(ctx, "hola", "en-US")
	require.True(t, ok)
	assert.Equal(t, "hi", got)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	m.Insert(ctx, "a", "en-US", "1")
	m.Insert(ctx, "b", "en-US", "2")

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := m.Lookup(ctx, "a", "en-US")
	require.True(t, ok)

	m.Insert(ctx, "c", "en-US", "3")

	_, ok = m.Lookup(ctx, "b", "en-US")
	assert.False(t, ok)

	_, ok = m.Lookup(ctx, "a", "en-US")
	assert.True(t, ok)
	_, ok = m.Lookup(ctx, "c", "en-US")
	assert.True(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := NewMemory(64)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("msg-%d-%d", worker, j%16)
				m.Insert(ctx, key, "en-US", "translated")
				m.Lookup(ctx, key, "en-US")
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, m.Len(), 64)
}
