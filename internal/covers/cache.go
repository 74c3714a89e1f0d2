// Package covers keeps local copies of record cover images.
package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNoCover is returned when a record has no cover URL.
var ErrNoCover = errors.New("record has no cover")

// Cache stores cover images on disk, one file per record and URL.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
	fetches    singleflight.Group
}

// NewCache creates a new cover cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetCover returns the path of the cached cover for a record, downloading it
// first when needed. Concurrent calls for the same file share one download.
func (c *Cache) GetCover(ctx context.Context, recordID uint, coverURL string) (string, error) {
	if coverURL == "" {
		return "", ErrNoCover
	}

	cachePath := c.Path(recordID, coverURL)
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	_, err, _ := c.fetches.Do(cachePath, func() (any, error) {
		// Another caller may have finished while we waited.
		if _, err := os.Stat(cachePath); err == nil {
			return nil, nil
		}
		return nil, c.fetchAndCache(ctx, coverURL, cachePath)
	})
	if err != nil {
		return "", err
	}
	return cachePath, nil
}

// Prefetch downloads the cover if it is not cached yet. A record without a
// cover URL is not an error.
func (c *Cache) Prefetch(ctx context.Context, recordID uint, coverURL string) error {
	if coverURL == "" {
		return nil
	}
	_, err := c.GetCover(ctx, recordID, coverURL)
	return err
}

// Cached reports whether the cover file for the record and URL exists.
func (c *Cache) Cached(recordID uint, coverURL string) bool {
	if coverURL == "" {
		return false
	}
	_, err := os.Stat(c.Path(recordID, coverURL))
	return err == nil
}

// InvalidateCover removes every cached cover of a record.
func (c *Cache) InvalidateCover(recordID uint) error {
	pattern := filepath.Join(c.cacheDir, fmt.Sprintf("cover_%d_*", recordID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// Path is where the cover for the record and URL is stored.
func (c *Cache) Path(recordID uint, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return filepath.Join(c.cacheDir, fmt.Sprintf("cover_%d_%x.jpg", recordID, hash[:8]))
}

func (c *Cache) fetchAndCache(ctx context.Context, url, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "BookScanner/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Write to a temp file in the same directory, then rename into place.
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
