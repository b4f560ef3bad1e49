package markup

import (
	"strings"
)

// renderFunc produces the markup of one element. inner holds the converted
// children unless the rule is opaque.
type renderFunc func(w *walker, n Node, inner string, st state) (string, error)

// rule describes how one tag converts in one dialect.
type rule struct {
	block  bool              // output stands on its own between separators
	skip   bool              // element and its subtree produce nothing
	opaque bool              // render walks the children itself
	enter  func(state) state // derives the state its children see
	render renderFunc
}

// ruleSet maps lowercase tag names to rules.
type ruleSet map[string]rule

// commonRules holds the tags both dialects convert the same way.
func commonRules() ruleSet {
	rs := ruleSet{
		"br":         {render: literal("\n")},
		"hr":         {block: true, render: literal("---")},
		"abbr":       {render: abbr},
		"blockquote": {block: true, enter: state.quoted, render: quote},
	}
	for _, tag := range []string{"p", "div", "section", "article", "header", "footer", "main", "aside", "nav", "figure", "figcaption", "address", "center", "dl", "dt", "dd"} {
		rs[tag] = rule{block: true, render: passthrough}
	}
	for _, tag := range []string{"script", "style", "head", "title", "template", "noscript", "iframe", "object", "embed"} {
		rs[tag] = rule{skip: true}
	}
	return rs
}

// inlineRules wraps each tag in its delimiter. An empty delimiter keeps the
// content as plain text.
func inlineRules(rs ruleSet, delimiters map[string]string) {
	for tag, d := range delimiters {
		rs[tag] = rule{render: wrap(d, d)}
	}
}

func passthrough(_ *walker, _ Node, inner string, _ state) (string, error) {
	return inner, nil
}

func literal(s string) renderFunc {
	return func(*walker, Node, string, state) (string, error) {
		return s, nil
	}
}

func wrap(open, close string) renderFunc {
	return func(_ *walker, _ Node, inner string, _ state) (string, error) {
		return surround(open, close, inner), nil
	}
}

// surround wraps the trimmed content and moves surrounding whitespace
// outside the delimiters. Empty content is dropped.
func surround(open, close, inner string) string {
	core := strings.TrimSpace(inner)
	if core == "" {
		if inner != "" && open != "" {
			return " "
		}
		return inner
	}
	if open == "" && close == "" {
		return inner
	}
	lead := inner[:len(inner)-len(strings.TrimLeft(inner, " \t\n"))]
	trail := inner[len(strings.TrimRight(inner, " \t\n")):]
	return lead + open + core + close + trail
}

func abbr(_ *walker, n Node, inner string, _ state) (string, error) {
	title := parenTitle(attr(n, "title"))
	if title == "" || strings.TrimSpace(inner) == "" {
		return inner, nil
	}
	return surround("", title, inner), nil
}

// titleBrackets keeps a title from closing its "(title)" group early.
var titleBrackets = strings.NewReplacer("(", "[", ")", "]")

// parenTitle renders a title attribute as a single line "(title)" group.
// Parentheses become brackets. An empty title renders nothing.
func parenTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return ""
	}
	return "(" + titleBrackets.Replace(title) + ")"
}

// quote prefixes every line with "> ". Nested quotes stack their prefixes.
func quote(_ *walker, _ Node, inner string, _ state) (string, error) {
	if inner == "" {
		return "", nil
	}
	lines := strings.Split(inner, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n"), nil
}

// decorations maps text-decoration keywords to span delimiters.
type decorations map[string]string

func (d decorations) lookup(value string) (string, bool) {
	for _, kw := range strings.Fields(strings.ToLower(value)) {
		if delim, ok := d[kw]; ok {
			return delim, true
		}
	}
	return "", false
}

// spanRule converts a styled span: text-decoration picks the delimiter, the
// remaining allowed declarations go into the dialect's style annotation.
func spanRule(deco decorations, fallback string) rule {
	return rule{render: func(w *walker, n Node, inner string, st state) (string, error) {
		decl := w.styles.Parse(attr(n, "style"))
		delim := fallback
		if v, ok := decl.Get("text-decoration"); ok {
			if d, ok := deco.lookup(v); ok {
				delim = d
			}
		}
		annotation := FormatStyle(st.dialect, decl)
		if delim == "" {
			return inner, nil
		}
		return surround(delim+annotation, delim, inner), nil
	}}
}

// listRule converts ul/ol. marker returns the line prefix of item i and the
// state its content is converted in.
func listRule(marker func(st state, i int) (string, state)) rule {
	return rule{block: true, opaque: true, render: func(w *walker, n Node, _ string, st state) (string, error) {
		var items []string
		i := 0
		for _, c := range n.Children() {
			switch c.Tag() {
			case "li":
				prefix, cst := marker(st, i)
				text, _, err := w.children(c, cst.descend(), true)
				if err != nil {
					return "", err
				}
				items = append(items, strings.TrimRight(prefix+text, " "))
				i++
			case "ul", "ol":
				// Lists nested without an li continue the previous item.
				_, cst := marker(st, i)
				f, err := w.node(c, cst)
				if err != nil {
					return "", err
				}
				if f.text != "" {
					items = append(items, f.text)
				}
			}
		}
		return strings.Join(items, "\n"), nil
	}}
}

// soleImage returns the img when it is the only content of n.
func soleImage(n Node) Node {
	var img Node
	for _, c := range n.Children() {
		switch c.Tag() {
		case TextTag:
			if strings.TrimSpace(c.Text()) != "" {
				return nil
			}
		case "img":
			if img != nil {
				return nil
			}
			img = c
		default:
			return nil
		}
	}
	return img
}

// imageSource resolves the src of an img.
func (w *walker) imageSource(img Node) string {
	return w.links.ResolveSource(strings.TrimSpace(attr(img, "src"))).URL
}

// imageAlt returns alt, falling back to title.
func imageAlt(img Node) string {
	if alt := strings.TrimSpace(attr(img, "alt")); alt != "" {
		return alt
	}
	return strings.TrimSpace(attr(img, "title"))
}

// linkText is the visible text of an anchor, whitespace collapsed.
func linkText(n Node) string {
	return strings.TrimSpace(collapseText(textContent(n), state{}))
}

// codeLanguage returns the language of a pre block from the class of its code
// child or the data-code attribute. dataFirst selects which wins.
func codeLanguage(pre Node, dataFirst bool) string {
	data := strings.TrimSpace(attr(pre, "data-code"))
	class := ""
	for _, c := range pre.Children() {
		if c.Tag() == "code" {
			class = classLanguage(attr(c, "class"))
			break
		}
	}
	if class == "" {
		class = classLanguage(attr(pre, "class"))
	}
	if dataFirst && data != "" {
		return data
	}
	if class != "" {
		return class
	}
	return data
}

func classLanguage(class string) string {
	for _, f := range strings.Fields(class) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(f, prefix) {
				return strings.TrimPrefix(f, prefix)
			}
		}
	}
	fields := strings.Fields(class)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// codeBody puts preformatted content on its own lines.
func codeBody(s string) string {
	s = strings.TrimPrefix(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}
