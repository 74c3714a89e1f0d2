package metadata

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mrlokans/bookscanner/internal/config"
)

// OpenBDClient looks up Japanese bibliographic records on api.openbd.jp.
type OpenBDClient struct {
	httpFetcher
}

// NewOpenBDClient creates an OpenBD client from lookup config.
func NewOpenBDClient(cfg config.Lookup) *OpenBDClient {
	return &OpenBDClient{
		httpFetcher: newHTTPFetcher(baseURLOr(cfg, "https://api.openbd.jp"), cfg.Timeout, cfg.RequestsPerSecond),
	}
}

func (c *OpenBDClient) Name() string { return config.ProviderOpenBD }

// FetchVolume returns the summary block for the ISBN. OpenBD answers unknown
// ISBNs with [null] rather than a 404.
func (c *OpenBDClient) FetchVolume(ctx context.Context, isbn string) (*Volume, error) {
	getURL := fmt.Sprintf("%s/v1/get?isbn=%s", c.baseURL, url.QueryEscape(isbn))

	var resp []*openBDRecord
	if err := c.getJSON(ctx, getURL, &resp); err != nil {
		return nil, err
	}

	if len(resp) == 0 || resp[0] == nil || resp[0].Summary == nil {
		return nil, ErrNotFound
	}

	s := resp[0].Summary
	v := &Volume{
		Title:     s.Title,
		Thumbnail: s.Cover,
	}
	if s.Author != "" {
		v.Authors = []string{s.Author}
	}
	return v, nil
}

// OpenBD API response types (internal)

type openBDRecord struct {
	Summary *openBDSummary `json:"summary"`
}

type openBDSummary struct {
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Cover     string `json:"cover"`
}
