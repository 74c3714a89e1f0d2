package metadata

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/mrlokans/bookscanner/internal/config"
)

const openLibraryCoversURL = "https://covers.openlibrary.org"

// OpenLibraryClient fetches edition records from the OpenLibrary API.
type OpenLibraryClient struct {
	httpFetcher
	coversURL string
}

// NewOpenLibraryClient creates an OpenLibrary client. OpenLibrary asks for
// at most one request per second, which is the default when no rate is set.
func NewOpenLibraryClient(cfg config.Lookup) *OpenLibraryClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &OpenLibraryClient{
		httpFetcher: newHTTPFetcher(baseURLOr(cfg, "https://openlibrary.org"), cfg.Timeout, rps),
		coversURL:   openLibraryCoversURL,
	}
}

func (c *OpenLibraryClient) Name() string { return config.ProviderOpenLibrary }

// FetchVolume loads /isbn/<isbn>.json and resolves author references to
// names. Authors that fail to resolve are skipped.
func (c *OpenLibraryClient) FetchVolume(ctx context.Context, isbn string) (*Volume, error) {
	editionURL := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, url.PathEscape(isbn))

	var book openLibraryBook
	if err := c.getJSON(ctx, editionURL, &book); err != nil {
		return nil, err
	}

	v := &Volume{Title: book.Title}

	for _, ref := range book.Authors {
		name, err := c.fetchAuthorName(ctx, ref.Key)
		if err != nil {
			log.Printf("[LOOKUP] openlibrary author %s for %s: %v", ref.Key, isbn, err)
			continue
		}
		if name != "" {
			v.Authors = append(v.Authors, name)
		}
	}

	if len(book.Covers) > 0 && book.Covers[0] > 0 {
		v.Thumbnail = fmt.Sprintf("%s/b/id/%d-M.jpg", c.coversURL, book.Covers[0])
		v.SmallThumbnail = fmt.Sprintf("%s/b/id/%d-S.jpg", c.coversURL, book.Covers[0])
	}

	return v, nil
}

func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, authorKey string) (string, error) {
	if authorKey == "" {
		return "", fmt.Errorf("empty author key")
	}

	var authorData struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, c.baseURL+authorKey+".json", &authorData); err != nil {
		return "", err
	}
	return authorData.Name, nil
}

// OpenLibrary API response types (internal)

type openLibraryBook struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Authors []authorRef `json:"authors"`
	Covers  []int       `json:"covers"`
}

type authorRef struct {
	Key string `json:"key"`
}
