package fetcher

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/markupconv/internal/logger"
)

// StaticConfig holds configuration for the static fetcher.
type StaticConfig struct {
	UserAgent string
	Timeout   time.Duration

	// MaxBodySize caps responses in bytes. Zero uses the default, negative
	// is unlimited.
	MaxBodySize int
}

// DefaultStaticConfig returns sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		UserAgent:   defaultUserAgent,
		Timeout:     30 * time.Second,
		MaxBodySize: 10 * 1024 * 1024,
	}
}

const defaultUserAgent = "markupconv (+https://github.com/jmylchreest/markupconv)"

// StaticFetcher fetches pages with Colly without running scripts.
// It implements the Fetcher interface.
type StaticFetcher struct {
	config StaticConfig
}

// NewStatic creates a static fetcher. Zero fields take their defaults.
func NewStatic(cfg StaticConfig) *StaticFetcher {
	def := DefaultStaticConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = def.MaxBodySize
	}
	return &StaticFetcher{config: cfg}
}

// Fetch retrieves a page with Colly.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Page, error) {
	page := Page{URL: targetURL, FetchedAt: time.Now()}

	userAgent := coalesce(opts.UserAgent, f.config.UserAgent)
	maxBody := bodyLimit(opts.MaxBodySize, f.config.MaxBodySize)
	// One byte over the limit tells a full-size body from a truncated one.
	collyLimit := 0
	if maxBody > 0 {
		collyLimit = maxBody + 1
	}
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.MaxBodySize(collyLimit),
		colly.StdlibContext(ctx),
	)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	c.SetRequestTimeout(timeout)
	logger.Debug("static fetch configured",
		"url", targetURL,
		"user_agent", userAgent,
		"timeout", timeout,
		"max_body", humanize.Bytes(uint64(maxBody)))

	if len(opts.Headers) > 0 {
		c.OnRequest(func(r *colly.Request) {
			for k, v := range opts.Headers {
				r.Headers.Set(k, v)
			}
		})
	}

	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.ContentType = r.Headers.Get("Content-Type")
		page.HTML = string(r.Body)
		logger.Debug("static fetch response received",
			"status", r.StatusCode,
			"content_type", page.ContentType,
			"body_size", humanize.Bytes(uint64(len(r.Body))))
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= 400 {
			page.StatusCode = r.StatusCode
			fetchErr = fmt.Errorf("%w: %d fetching %s", ErrUnexpectedStatus, r.StatusCode, targetURL)
			return
		}
		fetchErr = fmt.Errorf("fetch error: %w", err)
	})

	if err := c.Visit(targetURL); err != nil {
		if fetchErr != nil {
			return page, fetchErr
		}
		return page, fmt.Errorf("failed to visit URL: %w", err)
	}
	if fetchErr != nil {
		return page, fetchErr
	}

	if err := checkBodySize(len(page.HTML), maxBody); err != nil {
		page.HTML = ""
		return page, err
	}
	if !isHTML(page.ContentType) {
		return page, fmt.Errorf("%w: %s", ErrNotHTML, page.ContentType)
	}
	if err := extract(&page, opts.Selector); err != nil {
		return page, err
	}

	logger.Debug("static fetch complete", "url", targetURL, "title", page.Title)
	return page, nil
}

// extract sets the title and narrows HTML to the selector, if any.
func extract(page *Page, selector string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())

	if selector == "" {
		return nil
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return fmt.Errorf("%w: %s", ErrSelectorNotFound, selector)
	}
	inner, err := sel.Html()
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", selector, err)
	}
	page.HTML = inner
	return nil
}

// isHTML accepts HTML media types and responses without a Content-Type.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
