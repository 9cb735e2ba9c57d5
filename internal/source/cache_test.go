package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "GLOBAL_QUOTE_AAPL", CacheKey(FuncGlobalQuote, "AAPL"))
	assert.Equal(t, "OVERVIEW_MSFT", CacheKey(FuncOverview, "MSFT"))
}

func TestResponseCache_PutGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := NewResponseCache(path)

	_, ok := cache.Get("GLOBAL_QUOTE_AAPL")
	assert.False(t, ok)

	payload := Result{"Global Quote": map[string]interface{}{"05. price": "181.45"}}
	require.NoError(t, cache.Put("GLOBAL_QUOTE_AAPL", payload))

	got, ok := cache.Get("GLOBAL_QUOTE_AAPL")
	require.True(t, ok)
	assert.Equal(t, payload, got)
	assert.Equal(t, 1, cache.Len())
}

func TestResponseCache_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	first := NewResponseCache(path)
	require.NoError(t, first.Put("OVERVIEW_AAPL", Result{"PERatio": "28.5"}))

	// A new instance over the same file sees the entry.
	second := NewResponseCache(path)
	got, ok := second.Get("OVERVIEW_AAPL")
	require.True(t, ok)
	assert.Equal(t, "28.5", got["PERatio"])
}

func TestResponseCache_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	cache := NewResponseCache(path)
	assert.Equal(t, 0, cache.Len())

	// The cache still works after discarding the corrupt file.
	require.NoError(t, cache.Put("GLOBAL_QUOTE_IBM", Result{"x": "y"}))
	_, ok := cache.Get("GLOBAL_QUOTE_IBM")
	assert.True(t, ok)
}

func TestResponseCache_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := NewResponseCache(path)

	require.NoError(t, cache.Put("OVERVIEW_KO", Result{"PERatio": "20"}))
	require.NoError(t, cache.Put("OVERVIEW_KO", Result{"PERatio": "25"}))

	got, ok := cache.Get("OVERVIEW_KO")
	require.True(t, ok)
	assert.Equal(t, "25", got["PERatio"])
	assert.Equal(t, 1, cache.Len())
}
