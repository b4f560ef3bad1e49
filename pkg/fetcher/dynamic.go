package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/markupconv/internal/logger"
)

// DynamicConfig holds configuration for the headless browser fetcher.
type DynamicConfig struct {
	UserAgent string
	Timeout   time.Duration

	// ExecPath overrides the Chrome binary. Empty searches the usual locations.
	ExecPath string

	// MaxBodySize caps the rendered document in bytes. Zero uses the static
	// default, negative is unlimited.
	MaxBodySize int
}

// DynamicFetcher renders pages in headless Chrome before reading the DOM,
// for editors whose content is produced by JavaScript.
type DynamicFetcher struct {
	config      DynamicConfig
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

// NewDynamic creates a dynamic fetcher. The browser starts on the first Fetch.
func NewDynamic(cfg DynamicConfig) *DynamicFetcher {
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

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	logger.Debug("dynamic fetcher configured", "user_agent", cfg.UserAgent, "timeout", cfg.Timeout)
	return &DynamicFetcher{config: cfg, allocCtx: allocCtx, cancelAlloc: cancel}
}

// Fetch loads the page in a fresh browser tab and returns the rendered HTML.
// Options.UserAgent does not apply.
// The size limit is checked on the rendered document.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Page, error) {
	page := Page{URL: targetURL, FetchedAt: time.Now()}

	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx)
	defer cancelTab()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	runCtx, cancelRun := context.WithTimeout(tabCtx, timeout)
	defer cancelRun()

	waitFor := "body"
	if opts.Selector != "" {
		waitFor = opts.Selector
	}

	var html string
	actions := []chromedp.Action{}
	if len(opts.Headers) > 0 {
		headers := make(map[string]any, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		actions = append(actions,
			network.Enable(),
			network.SetExtraHTTPHeaders(network.Headers(headers)),
		)
	}
	actions = append(actions,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady(waitFor),
		chromedp.OuterHTML("html", &html),
	)

	logger.Debug("dynamic fetch starting", "url", targetURL, "wait_for", waitFor, "timeout", timeout)
	if err := chromedp.Run(runCtx, actions...); err != nil {
		return page, fmt.Errorf("browser automation failed: %w", err)
	}

	if err := checkBodySize(len(html), bodyLimit(opts.MaxBodySize, f.config.MaxBodySize)); err != nil {
		return page, err
	}

	// The browser does not report the status of the main document here.
	page.StatusCode = 200
	page.ContentType = "text/html"
	page.HTML = html
	if err := extract(&page, opts.Selector); err != nil {
		return page, err
	}

	logger.Debug("dynamic fetch complete", "url", targetURL, "title", page.Title, "html_size", len(page.HTML))
	return page, nil
}

// Close shuts down the browser.
func (f *DynamicFetcher) Close() error {
	if f.cancelAlloc != nil {
		f.cancelAlloc()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}
