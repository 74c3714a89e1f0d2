package metadata

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mrlokans/bookscanner/internal/config"
)

// GoogleBooksClient looks up volumes on the Google Books API.
type GoogleBooksClient struct {
	httpFetcher
	apiKey string
}

// NewGoogleBooksClient creates a Google Books client from lookup config.
func NewGoogleBooksClient(cfg config.Lookup) *GoogleBooksClient {
	return &GoogleBooksClient{
		httpFetcher: newHTTPFetcher(baseURLOr(cfg, "https://www.googleapis.com"), cfg.Timeout, cfg.RequestsPerSecond),
		apiKey:      cfg.GoogleBooksAPIKey,
	}
}

func (c *GoogleBooksClient) Name() string { return config.ProviderGoogleBooks }

// FetchVolume queries "isbn:<isbn>" and returns the first matching volume.
func (c *GoogleBooksClient) FetchVolume(ctx context.Context, isbn string) (*Volume, error) {
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	searchURL := fmt.Sprintf("%s/books/v1/volumes?%s", c.baseURL, q.Encode())

	var resp googleBooksResponse
	if err := c.getJSON(ctx, searchURL, &resp); err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 {
		return nil, ErrNotFound
	}

	info := resp.Items[0].VolumeInfo
	v := &Volume{
		Title:   info.Title,
		Authors: info.Authors,
	}
	if info.ImageLinks != nil {
		v.Thumbnail = info.ImageLinks.Thumbnail
		v.SmallThumbnail = info.ImageLinks.SmallThumbnail
	}
	return v, nil
}

// Google Books API response types (internal)

type googleBooksResponse struct {
	TotalItems int               `json:"totalItems"`
	Items      []googleBooksItem `json:"items"`
}

type googleBooksItem struct {
	ID         string                `json:"id"`
	VolumeInfo googleBooksVolumeInfo `json:"volumeInfo"`
}

type googleBooksVolumeInfo struct {
	Title       string                 `json:"title"`
	Authors     []string               `json:"authors"`
	Description string                 `json:"description"`
	ImageLinks  *googleBooksImageLinks `json:"imageLinks"`
}

type googleBooksImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}
