package dictionary

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `[{
	"word": "hello",
	"phonetic": "/həˈləʊ/",
	"phonetics": [{"text": "/həˈləʊ/", "audio": "https://example.com/hello.mp3"}],
	"meanings": [{
		"partOfSpeech": "noun",
		"definitions": [{"definition": "A greeting.", "example": "she was met with a hello"}]
	}]
}]`

func newTestClient(t *testing.T, handler http.HandlerFunc, cacheSize int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(cacheSize)
	c.baseURL = srv.URL
	return c
}

func TestLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hello", r.URL.Path)
		fmt.Fprint(w, sampleResponse)
	}, 10)

	entry, err := c.Lookup(context.Background(), "  Hello ")
	require.NoError(t, err)
	assert.Equal(t, "hello", entry.Word)
	assert.Equal(t, "/həˈləʊ/", entry.Phonetic)
	assert.Equal(t, "https://example.com/hello.mp3", entry.AudioURL)
	require.Len(t, entry.Definitions, 1)
	assert.Equal(t, "noun", entry.Definitions[0].PartOfSpeech)
	assert.Equal(t, "A greeting.", entry.Definitions[0].Meaning)
}

func TestLookupNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, 10)

	_, err := c.Lookup(context.Background(), "qzx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupCaches(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, sampleResponse)
	}, 10)

	for i := 0; i < 3; i++ {
		_, err := c.Lookup(context.Background(), "hello")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestCacheEvictsOldestFirst(t *testing.T) {
	cache := newEntryCache(2)
	cache.put("a", &Entry{Word: "a"})
	cache.put("b", &Entry{Word: "b"})
	cache.put("c", &Entry{Word: "c"})

	assert.Equal(t, 2, cache.len())
	_, ok := cache.get("a")
	assert.False(t, ok)
	_, ok = cache.get("b")
	assert.True(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}
