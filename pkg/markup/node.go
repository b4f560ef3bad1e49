// Package markup converts a read-only HTML node tree into Textile or Markdown.
//
// The engine never parses HTML itself. Hosts hand it a tree through the Node
// interface (see the htmldom subpackage for an adapter over golang.org/x/net/html)
// and get back the serialized markup for the selected Dialect.
package markup

// TextTag is the tag reported by text fragments.
const TextTag = "#text"

// Node is a read-only view over one element or text fragment.
type Node interface {
	// Tag returns the lowercase element name, or TextTag for text.
	Tag() string

	// Text returns the raw content of a text node. Elements return "".
	Text() string

	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)

	// Children returns the child nodes in document order.
	Children() []Node
}

// Element is a plain in-memory Node, useful for hosts without a DOM and for tests.
type Element struct {
	Name    string
	Content string
	Attrs   map[string]string
	Nodes   []Node
}

// El builds an element node. attrs may be nil.
func El(tag string, attrs map[string]string, children ...Node) *Element {
	return &Element{Name: tag, Attrs: attrs, Nodes: children}
}

// Text builds a text node.
func Text(s string) *Element {
	return &Element{Name: TextTag, Content: s}
}

// Tag implements Node.
func (e *Element) Tag() string { return e.Name }

// Text implements Node.
func (e *Element) Text() string { return e.Content }

// Attr implements Node.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// Children implements Node.
func (e *Element) Children() []Node { return e.Nodes }

// attr returns the attribute value or "".
func attr(n Node, name string) string {
	v, _ := n.Attr(name)
	return v
}

// textContent concatenates the raw text of all descendant text nodes.
func textContent(n Node) string {
	if n.Tag() == TextTag {
		return n.Text()
	}
	var out []byte
	for _, c := range n.Children() {
		out = append(out, textContent(c)...)
	}
	return string(out)
}
