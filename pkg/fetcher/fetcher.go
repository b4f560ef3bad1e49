// Package fetcher retrieves HTML input for the command line tools.
// It only ever loads the page being converted, never resources it references.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Fetcher abstracts how input pages are retrieved.
type Fetcher interface {
	// Fetch retrieves a page.
	Fetch(ctx context.Context, url string, opts Options) (Page, error)

	// Close releases any resources.
	Close() error

	// Type identifies the fetcher, e.g. "static".
	Type() string
}

// Options controls a single fetch.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string

	// Selector limits Page.HTML to the inner HTML of the first match,
	// e.g. "#content" or "div.wiki".
	Selector string

	// MaxBodySize caps the response size in bytes. Larger responses fail
	// with ErrBodyTooLarge. Zero uses the fetcher default, negative is unlimited.
	MaxBodySize int
}

// Page is a fetched document.
type Page struct {
	URL         string    `json:"url" yaml:"url"`
	HTML        string    `json:"-" yaml:"-"`
	Title       string    `json:"title,omitempty" yaml:"title,omitempty"`
	StatusCode  int       `json:"status_code" yaml:"status_code"`
	ContentType string    `json:"content_type" yaml:"content_type"`
	FetchedAt   time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// Errors for distinguishing failure reasons with errors.Is.
var (
	// ErrUnexpectedStatus indicates a non-success HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	// ErrNotHTML indicates the response is not an HTML document.
	ErrNotHTML = errors.New("response is not HTML")
	// ErrSelectorNotFound indicates Options.Selector matched nothing.
	ErrSelectorNotFound = errors.New("selector matched no element")
	// ErrBodyTooLarge indicates the response exceeded MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")
)

// bodyLimit resolves a per-request limit against the fetcher default.
// It returns 0 for unlimited.
func bodyLimit(requested, fallback int) int {
	limit := requested
	if limit == 0 {
		limit = fallback
	}
	if limit < 0 {
		return 0
	}
	return limit
}

// checkBodySize fails when size exceeds a non-zero limit.
func checkBodySize(size, limit int) error {
	if limit > 0 && size > limit {
		return fmt.Errorf("%w: more than %s", ErrBodyTooLarge, humanize.Bytes(uint64(limit)))
	}
	return nil
}
