package convert

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// ReferenceConverter converts HTML with html-to-markdown (GFM flavoured).
// It serves as a baseline when comparing the markup engine's Markdown.
type ReferenceConverter struct {
	conv   *converter.Converter
	domain string
}

// ReferenceOption configures the reference converter.
type ReferenceOption func(*ReferenceConverter)

// WithDomain resolves relative links and images against domain.
func WithDomain(domain string) ReferenceOption {
	return func(r *ReferenceConverter) {
		r.domain = domain
	}
}

// NewReference creates a reference converter.
func NewReference(opts ...ReferenceOption) *ReferenceConverter {
	r := &ReferenceConverter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				strikethrough.NewStrikethroughPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Convert converts HTML to Markdown.
func (r *ReferenceConverter) Convert(html string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if r.domain != "" {
		opts = append(opts, converter.WithDomain(r.domain))
	}
	markdown, err := r.conv.ConvertString(html, opts...)
	if err != nil {
		return "", err
	}
	return cleanWhitespace(markdown), nil
}

// Name returns the converter name.
func (r *ReferenceConverter) Name() string {
	return "reference"
}

// cleanWhitespace collapses runs of blank lines into one and trims the result.
func cleanWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			line = ""
		} else {
			blank = 0
		}
		result = append(result, line)
	}
	return strings.TrimSpace(strings.Join(result, "\n"))
}
