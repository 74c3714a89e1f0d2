package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImageServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if strings.HasSuffix(r.URL.Path, "/missing.jpg") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("fake image data"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewCache(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "covers")

	cache, err := NewCache(cacheDir)
	require.NoError(t, err)
	assert.Equal(t, cacheDir, cache.CacheDir())

	_, err = os.Stat(cacheDir)
	assert.NoError(t, err)
}

func TestGetCover_EmptyURL(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	_, err = cache.GetCover(context.Background(), 1, "")
	assert.ErrorIs(t, err, ErrNoCover)
	assert.NoError(t, cache.Prefetch(context.Background(), 1, ""))
}

func TestGetCover_FetchAndCache(t *testing.T) {
	var hits atomic.Int32
	server := newImageServer(t, &hits)
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	url := server.URL + "/cover.jpg"

	path1, err := cache.GetCover(context.Background(), 1, url)
	require.NoError(t, err)
	data, err := os.ReadFile(path1)
	require.NoError(t, err)
	assert.Equal(t, "fake image data", string(data))
	assert.True(t, cache.Cached(1, url))

	path2, err := cache.GetCover(context.Background(), 1, url)
	require.NoError(t, err)
	assert.Equal(t, path1, path2)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetCover_ConcurrentCallsShareDownload(t *testing.T) {
	var hits atomic.Int32
	server := newImageServer(t, &hits)
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.GetCover(context.Background(), 7, server.URL+"/cover.jpg")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, hits.Load(), int32(8))
	assert.True(t, cache.Cached(7, server.URL+"/cover.jpg"))
}

func TestGetCover_FetchError(t *testing.T) {
	server := newImageServer(t, nil)
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	_, err = cache.GetCover(context.Background(), 1, server.URL+"/missing.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.False(t, cache.Cached(1, server.URL+"/missing.jpg"))
}

func TestInvalidateCover(t *testing.T) {
	server := newImageServer(t, nil)
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	_, err = cache.GetCover(context.Background(), 1, server.URL+"/a.jpg")
	require.NoError(t, err)
	_, err = cache.GetCover(context.Background(), 12, server.URL+"/b.jpg")
	require.NoError(t, err)

	require.NoError(t, cache.InvalidateCover(1))
	assert.False(t, cache.Cached(1, server.URL+"/a.jpg"))
	assert.True(t, cache.Cached(12, server.URL+"/b.jpg"))

	assert.NoError(t, cache.InvalidateCover(99))
}

func TestPath(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	a := cache.Path(1, "https://example.com/a.jpg")
	assert.Equal(t, a, cache.Path(1, "https://example.com/a.jpg"))
	assert.NotEqual(t, a, cache.Path(1, "https://example.com/b.jpg"))
	assert.NotEqual(t, a, cache.Path(2, "https://example.com/a.jpg"))
	assert.True(t, strings.HasPrefix(filepath.Base(a), "cover_1_"))
}
