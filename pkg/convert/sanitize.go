package convert

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/jmylchreest/markupconv/pkg/markup"
)

// SanitizeConfig selects what is removed from editor HTML before conversion.
// Style attributes and whitespace are never touched: both carry meaning for
// the converter.
type SanitizeConfig struct {
	// StripScripts removes <script> elements.
	StripScripts bool `json:"strip_scripts" yaml:"strip_scripts" mapstructure:"strip_scripts"`

	// StripStyles removes <style> elements. style="" attributes are kept.
	StripStyles bool `json:"strip_styles" yaml:"strip_styles" mapstructure:"strip_styles"`

	// StripComments removes HTML comments.
	StripComments bool `json:"strip_comments" yaml:"strip_comments" mapstructure:"strip_comments"`

	// StripIframes removes iframe, object and embed elements.
	StripIframes bool `json:"strip_iframes" yaml:"strip_iframes" mapstructure:"strip_iframes"`

	// StripEventHandlers removes on* attributes.
	StripEventHandlers bool `json:"strip_event_handlers" yaml:"strip_event_handlers" mapstructure:"strip_event_handlers"`

	// StripHidden removes elements with the hidden attribute, aria-hidden="true"
	// or an inline display:none / visibility:hidden.
	StripHidden bool `json:"strip_hidden" yaml:"strip_hidden" mapstructure:"strip_hidden"`

	// UnwrapNoscript replaces <noscript> with its contents.
	UnwrapNoscript bool `json:"unwrap_noscript" yaml:"unwrap_noscript" mapstructure:"unwrap_noscript"`

	// RemoveSelectors are CSS selectors whose matches are removed.
	RemoveSelectors []string `json:"remove_selectors" yaml:"remove_selectors" mapstructure:"remove_selectors"`

	// KeepSelectors protect matching elements from RemoveSelectors and StripHidden.
	KeepSelectors []string `json:"keep_selectors" yaml:"keep_selectors" mapstructure:"keep_selectors"`
}

// DefaultSanitizeConfig returns the sanitizer settings used by New.
func DefaultSanitizeConfig() *SanitizeConfig {
	return &SanitizeConfig{
		StripScripts:       true,
		StripStyles:        true,
		StripComments:      true,
		StripIframes:       true,
		StripEventHandlers: true,
		StripHidden:        true,
		UnwrapNoscript:     true,
	}
}

// Validate checks that every selector parses.
func (c *SanitizeConfig) Validate() error {
	for _, group := range [][]string{c.RemoveSelectors, c.KeepSelectors} {
		for _, sel := range group {
			if _, err := cascadia.ParseGroup(sel); err != nil {
				return fmt.Errorf("invalid selector %q: %w", sel, err)
			}
		}
	}
	return nil
}

// Sanitizer strips non-content markup from a parsed document in place.
type Sanitizer struct {
	config *SanitizeConfig
	styles *markup.StyleParser
}

// NewSanitizer creates a Sanitizer. If config is nil, DefaultSanitizeConfig() is used.
func NewSanitizer(config *SanitizeConfig) *Sanitizer {
	if config == nil {
		config = DefaultSanitizeConfig()
	}
	return &Sanitizer{
		config: config,
		styles: markup.NewStyleParser([]string{"display", "visibility"}, nil),
	}
}

// Sanitize applies the configured removals to doc and records them in stats.
func (s *Sanitizer) Sanitize(doc *goquery.Document, stats *Stats) {
	// Order matters: user selectors first, then fixed element types, then attributes.
	for _, selector := range s.config.RemoveSelectors {
		sel := doc.Find(selector)
		if n := sel.Length(); n > 0 {
			stats.RecordSelectorMatch(selector, n)
		}
		sel.Each(func(_ int, el *goquery.Selection) {
			if !s.shouldKeep(el) {
				stats.RecordRemoval(goquery.NodeName(el))
				el.Remove()
			}
		})
	}

	if s.config.StripScripts {
		s.removeElements(doc, "script", stats)
	}
	if s.config.StripStyles {
		s.removeElements(doc, "style", stats)
	}
	if s.config.StripIframes {
		s.removeElements(doc, "iframe, object, embed", stats)
	}
	if s.config.StripHidden {
		s.removeHidden(doc, stats)
	}
	if s.config.UnwrapNoscript {
		doc.Find("noscript").Each(func(_ int, el *goquery.Selection) {
			s.unwrapNoscript(el)
			stats.ElementsUnwrapped++
		})
	}
	if s.config.StripEventHandlers {
		s.removeEventHandlers(doc, stats)
	}
	if s.config.StripComments {
		for _, n := range doc.Nodes {
			stats.CommentsRemoved += removeComments(n)
		}
	}
}

func (s *Sanitizer) removeElements(doc *goquery.Document, selector string, stats *Stats) {
	doc.Find(selector).Each(func(_ int, el *goquery.Selection) {
		stats.RecordRemoval(goquery.NodeName(el))
		el.Remove()
	})
}

func (s *Sanitizer) shouldKeep(el *goquery.Selection) bool {
	for _, selector := range s.config.KeepSelectors {
		if el.Is(selector) {
			return true
		}
	}
	return false
}

func (s *Sanitizer) removeHidden(doc *goquery.Document, stats *Stats) {
	doc.Find("[hidden], [aria-hidden='true'], [style]").Each(func(_ int, el *goquery.Selection) {
		if s.shouldKeep(el) || !s.hidden(el) {
			return
		}
		stats.RecordRemoval(goquery.NodeName(el))
		el.Remove()
	})
}

func (s *Sanitizer) hidden(el *goquery.Selection) bool {
	if _, ok := el.Attr("hidden"); ok {
		return true
	}
	if v, _ := el.Attr("aria-hidden"); v == "true" {
		return true
	}
	style, ok := el.Attr("style")
	if !ok {
		return false
	}
	decl := s.styles.Parse(style)
	display, _ := decl.Get("display")
	visibility, _ := decl.Get("visibility")
	return strings.EqualFold(display, "none") || strings.EqualFold(visibility, "hidden")
}

// unwrapNoscript replaces a noscript element with its content. Inside a
// scripting-enabled parse the content is raw text and is reparsed first.
func (s *Sanitizer) unwrapNoscript(el *goquery.Selection) {
	n := el.Get(0)
	if n.FirstChild != nil && n.FirstChild == n.LastChild && n.FirstChild.Type == html.TextNode &&
		strings.Contains(n.FirstChild.Data, "<") {
		el.ReplaceWithHtml(n.FirstChild.Data)
		return
	}
	el.Contents().Unwrap()
	if el.Parent().Length() > 0 {
		el.Remove()
	}
}

func (s *Sanitizer) removeEventHandlers(doc *goquery.Document, stats *Stats) {
	doc.Find("*").Each(func(_ int, el *goquery.Selection) {
		n := el.Get(0)
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if strings.HasPrefix(strings.ToLower(a.Key), "on") {
				stats.AttributesRemoved++
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	})
}

// removeComments deletes comment nodes below n and returns how many.
func removeComments(n *html.Node) int {
	removed := 0
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
			removed++
		} else {
			removed += removeComments(c)
		}
		c = next
	}
	return removed
}
