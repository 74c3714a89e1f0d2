package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mrlokans/bookscanner/internal/config"
)

const userAgent = "BookScanner/1.0 (https://github.com/mrlokans/bookscanner)"

// httpFetcher holds what every provider client shares: a timeout-bound
// client, a base URL, and a request rate limit.
type httpFetcher struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

func newHTTPFetcher(baseURL string, timeout time.Duration, rps float64) httpFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return httpFetcher{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// getJSON issues a GET and decodes a 200 response into dst. A 404 maps to
// ErrNotFound; any other non-200 status is an error.
func (f httpFetcher) getJSON(ctx context.Context, url string, dst any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(cfg config.Lookup) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderGoogleBooks, "":
		return NewGoogleBooksClient(cfg), nil
	case config.ProviderOpenBD:
		return NewOpenBDClient(cfg), nil
	case config.ProviderOpenLibrary:
		return NewOpenLibraryClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown lookup provider: %s", cfg.Provider)
	}
}

func baseURLOr(cfg config.Lookup, fallback string) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return fallback
}
