package metadata

import (
	"errors"
	"fmt"
	"strings"
)

// Placeholders used when the upstream record omits a field.
const (
	UnknownTitle  = "unknown title"
	UnknownAuthor = "unknown author"
)

// ErrNotFound means the lookup completed but no book matched the identifier.
var ErrNotFound = errors.New("book not found")

// Summary is a normalized, unsaved lookup result.
type Summary struct {
	ISBN     string `json:"isbn" yaml:"isbn"`
	Title    string `json:"title" yaml:"title"`
	Author   string `json:"author" yaml:"author"`
	CoverURL string `json:"cover_url" yaml:"cover_url"`
}

// Volume is the raw record a provider returns. Empty fields are absent.
type Volume struct {
	Title          string
	Authors        []string
	Thumbnail      string
	SmallThumbnail string
}

// LookupError wraps a transport, status, or decoding failure.
type LookupError struct {
	ISBN string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s: %v", e.ISBN, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// SecureURL rewrites a leading http:// to https://. Already secure or empty
// URLs are returned unchanged.
func SecureURL(raw string) string {
	if rest, ok := strings.CutPrefix(raw, "http://"); ok {
		return "https://" + rest
	}
	return raw
}
