package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// Provider fetches a raw volume for an ISBN from one bibliographic service.
// It returns ErrNotFound when the service has no matching record.
type Provider interface {
	Name() string
	FetchVolume(ctx context.Context, isbn string) (*Volume, error)
}

// Gateway resolves identifiers into normalized summaries.
type Gateway struct {
	provider Provider
}

// NewGateway creates a gateway over the given provider.
func NewGateway(provider Provider) *Gateway {
	return &Gateway{provider: provider}
}

// Resolve looks up one identifier. It returns ErrNotFound when nothing
// matches and a *LookupError for any other failure; provider errors are
// never returned unwrapped.
func (g *Gateway) Resolve(ctx context.Context, isbn string) (summary Summary, err error) {
	if strings.TrimSpace(isbn) == "" {
		return Summary{}, ErrNotFound
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[LOOKUP] %s provider panicked for %s: %v", g.provider.Name(), isbn, r)
			summary, err = Summary{}, &LookupError{ISBN: isbn, Err: fmt.Errorf("provider panic: %v", r)}
		}
	}()

	volume, err := g.provider.FetchVolume(ctx, isbn)
	switch {
	case errors.Is(err, ErrNotFound):
		return Summary{}, ErrNotFound
	case err != nil:
		return Summary{}, &LookupError{ISBN: isbn, Err: err}
	case volume == nil:
		return Summary{}, ErrNotFound
	}

	return normalize(isbn, volume), nil
}

// normalize builds the summary from the caller's identifier, since upstream
// responses may omit or misreport it.
func normalize(isbn string, v *Volume) Summary {
	title := v.Title
	if title == "" {
		title = UnknownTitle
	}

	author := UnknownAuthor
	if names := nonBlank(v.Authors); len(names) > 0 {
		author = strings.Join(names, ", ")
	}

	cover := v.Thumbnail
	if cover == "" {
		cover = v.SmallThumbnail
	}

	return Summary{
		ISBN:     isbn,
		Title:    title,
		Author:   author,
		CoverURL: SecureURL(cover),
	}
}

func nonBlank(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
