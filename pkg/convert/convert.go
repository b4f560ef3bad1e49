// Package convert turns editor HTML into Textile or Markdown.
// It parses with goquery, optionally sanitizes the document and hands the
// tree to the markup engine.
package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/markupconv/internal/logger"
	"github.com/jmylchreest/markupconv/pkg/markup"
	"github.com/jmylchreest/markupconv/pkg/markup/htmldom"
)

// Converter transforms an HTML string into markup.
type Converter interface {
	// Convert transforms the input HTML.
	Convert(html string) (string, error)

	// Name returns the converter name for logging.
	Name() string
}

// Option configures a MarkupConverter.
type Option func(*options)

type options struct {
	config   *markup.Config
	sanitize *SanitizeConfig
}

// WithConfig sets the engine configuration.
func WithConfig(cfg *markup.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithSanitizer sets the sanitizer configuration.
func WithSanitizer(cfg *SanitizeConfig) Option {
	return func(o *options) {
		o.sanitize = cfg
	}
}

// WithoutSanitizer converts the parsed document as is.
func WithoutSanitizer() Option {
	return func(o *options) {
		o.sanitize = nil
	}
}

// MarkupConverter converts HTML with the markup engine.
// It implements the Converter interface and is safe for concurrent use.
type MarkupConverter struct {
	dialect   markup.Dialect
	engine    *markup.Converter
	sanitizer *Sanitizer
}

// New creates a converter for the dialect. By default the engine uses
// markup.DefaultConfig() and the document is sanitized with
// DefaultSanitizeConfig().
func New(dialect markup.Dialect, opts ...Option) (*MarkupConverter, error) {
	if !dialect.Valid() {
		return nil, fmt.Errorf("%w: %q", markup.ErrUnsupportedDialect, dialect)
	}
	o := &options{sanitize: DefaultSanitizeConfig()}
	for _, opt := range opts {
		opt(o)
	}

	engine, err := markup.New(o.config)
	if err != nil {
		return nil, err
	}

	c := &MarkupConverter{dialect: dialect, engine: engine}
	if o.sanitize != nil {
		if err := o.sanitize.Validate(); err != nil {
			return nil, err
		}
		c.sanitizer = NewSanitizer(o.sanitize)
	}
	return c, nil
}

// Name returns the dialect name.
func (c *MarkupConverter) Name() string {
	return c.dialect.String()
}

// Dialect returns the output dialect.
func (c *MarkupConverter) Dialect() markup.Dialect {
	return c.dialect
}

// Convert transforms HTML into markup.
func (c *MarkupConverter) Convert(html string) (string, error) {
	result, err := c.ConvertWithStats(html)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// ConvertWithStats converts and reports what was done.
func (c *MarkupConverter) ConvertWithStats(input string) (*Result, error) {
	startTime := time.Now()
	result := &Result{
		Dialect: c.dialect.String(),
		Stats:   NewStats(),
	}
	result.Stats.InputBytes = len(input)

	parseStart := time.Now()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	result.Stats.ParseDuration = time.Since(parseStart)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if c.sanitizer != nil {
		sanitizeStart := time.Now()
		c.sanitizer.Sanitize(doc, result.Stats)
		result.Stats.SanitizeDuration = time.Since(sanitizeStart)
	}

	root := htmldom.Body(doc)
	result.Stats.Elements = countElements(doc)

	convertStart := time.Now()
	out, err := c.engine.Convert(root, c.dialect)
	result.Stats.ConvertDuration = time.Since(convertStart)
	if err != nil {
		return nil, fmt.Errorf("%s conversion failed: %w", c.dialect, err)
	}

	result.Content = out
	result.Stats.OutputBytes = len(out)
	result.Stats.TotalDuration = time.Since(startTime)

	if out == "" && strings.TrimSpace(input) != "" {
		result.AddWarning("convert", "non-empty input produced no output", "")
	}
	for _, w := range result.Warnings {
		logger.Warn("conversion warning", "dialect", c.dialect, "warning", w.String())
	}
	logger.Debug("converted",
		"dialect", c.dialect,
		"input_bytes", result.Stats.InputBytes,
		"output_bytes", result.Stats.OutputBytes,
		"removed", result.Stats.TotalElementsRemoved(),
		"duration", result.Stats.TotalDuration)

	return result, nil
}

func countElements(doc *goquery.Document) int {
	return doc.Find("body *").Length()
}
