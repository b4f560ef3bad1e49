// Package htmldom adapts golang.org/x/net/html trees, usually obtained via
// goquery, to the markup.Node interface.
package htmldom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/markupconv/pkg/markup"
)

// Parse reads an HTML document or fragment and returns its body.
func Parse(r io.Reader) (markup.Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return Body(doc), nil
}

// ParseString is Parse for a string.
func ParseString(s string) (markup.Node, error) {
	return Parse(strings.NewReader(s))
}

// Body returns the body of a parsed document, or the whole document when it
// has none.
func Body(doc *goquery.Document) markup.Node {
	if body := doc.Find("body"); body.Length() > 0 {
		return FromSelection(body.First())
	}
	return FromSelection(doc.Selection)
}

// FromSelection wraps the nodes of a selection. Several nodes are grouped
// under an anonymous root.
func FromSelection(sel *goquery.Selection) markup.Node {
	if sel.Length() == 1 {
		return FromNode(sel.Get(0))
	}
	return group(sel.Nodes)
}

// FromNode wraps a single html.Node.
func FromNode(n *html.Node) markup.Node {
	return node{n: n}
}

type node struct {
	n *html.Node
}

func (d node) Tag() string {
	switch d.n.Type {
	case html.TextNode:
		return markup.TextTag
	case html.ElementNode:
		return strings.ToLower(d.n.Data)
	default:
		return ""
	}
}

func (d node) Text() string {
	if d.n.Type == html.TextNode {
		return d.n.Data
	}
	return ""
}

func (d node) Attr(name string) (string, bool) {
	for _, a := range d.n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func (d node) Children() []markup.Node {
	var out []markup.Node
	for c := d.n.FirstChild; c != nil; c = c.NextSibling {
		if convertible(c) {
			out = append(out, node{n: c})
		}
	}
	return out
}

// group is an anonymous root over sibling nodes.
type group []*html.Node

func (group) Tag() string                { return "" }
func (group) Text() string               { return "" }
func (group) Attr(string) (string, bool) { return "", false }

func (g group) Children() []markup.Node {
	out := make([]markup.Node, 0, len(g))
	for _, n := range g {
		if convertible(n) {
			out = append(out, node{n: n})
		}
	}
	return out
}

// convertible drops comments, doctypes and other non-content nodes.
func convertible(n *html.Node) bool {
	switch n.Type {
	case html.ElementNode, html.TextNode, html.DocumentNode:
		return true
	default:
		return false
	}
}
