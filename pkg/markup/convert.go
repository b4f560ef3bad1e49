package markup

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrTooDeep is returned when the input nests deeper than Config.MaxDepth.
var ErrTooDeep = errors.New("input too deeply nested")

// Converter turns node trees into markup. It only holds data built at
// construction and is safe for concurrent use.
type Converter struct {
	config *Config
	styles *StyleParser
	links  *LinkResolver
	rules  map[Dialect]ruleSet
}

// New creates a Converter. If config is nil, DefaultConfig() is used.
func New(config *Config) (*Converter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	attachment, err := compileAttachmentPattern(config.AttachmentPattern)
	if err != nil {
		return nil, err
	}
	return &Converter{
		config: config,
		styles: NewStyleParser(config.StyleProperties, config.ColorProperties),
		links:  NewLinkResolver(attachment, config.CollapseAutolinks),
		rules: map[Dialect]ruleSet{
			Textile:  textileRules(),
			Markdown: markdownRules(),
		},
	}, nil
}

// Config returns the configuration the converter was built with.
func (c *Converter) Config() *Config {
	return c.config
}

// Convert serializes root in the given dialect.
func (c *Converter) Convert(root Node, d Dialect) (string, error) {
	rules, ok := c.rules[d]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDialect, d)
	}
	if root == nil {
		return "", nil
	}
	st := state{dialect: d}
	w := &walker{Converter: c, rules: rules}
	f, err := w.node(root, st)
	if err != nil {
		return "", err
	}
	return joinBlocks([]fragment{f}, st), nil
}

// Textile serializes root as Textile.
func (c *Converter) Textile(root Node) (string, error) {
	return c.Convert(root, Textile)
}

// Markdown serializes root as Markdown.
func (c *Converter) Markdown(root Node) (string, error) {
	return c.Convert(root, Markdown)
}

var defaultConverter = sync.OnceValue(func() *Converter {
	c, err := New(nil)
	if err != nil {
		panic(fmt.Sprintf("markup: default config rejected: %v", err))
	}
	return c
})

// ToTextile converts root with the default configuration.
func ToTextile(root Node) (string, error) {
	return defaultConverter().Textile(root)
}

// ToMarkdown converts root with the default configuration.
func ToMarkdown(root Node) (string, error) {
	return defaultConverter().Markdown(root)
}

// fragment is the converted form of one node.
type fragment struct {
	text  string
	block bool
}

// walker performs one conversion with the rule set of a single dialect.
type walker struct {
	*Converter
	rules ruleSet
}

func (w *walker) node(n Node, st state) (fragment, error) {
	tag := n.Tag()
	if tag == TextTag {
		return fragment{text: collapseText(n.Text(), st)}, nil
	}
	if st.depth >= w.config.MaxDepth {
		return fragment{}, fmt.Errorf("%w: more than %d levels at <%s>", ErrTooDeep, w.config.MaxDepth, tag)
	}
	st = st.descend()

	// Inside preformatted text tags only contribute their text.
	if st.inPre {
		if tag == "br" {
			return fragment{text: "\n"}, nil
		}
		text, _, err := w.children(n, st, false)
		return fragment{text: text}, err
	}

	r, ok := w.rules[tag]
	if !ok {
		// Unknown tags are transparent.
		text, block, err := w.children(n, st, false)
		return fragment{text: text, block: block}, err
	}
	if r.skip {
		return fragment{}, nil
	}

	cst := st
	if r.enter != nil {
		cst = r.enter(st)
	}
	var inner string
	if !r.opaque {
		text, _, err := w.children(n, cst, r.block && !cst.inPre)
		if err != nil {
			return fragment{}, err
		}
		inner = text
	}
	out, err := r.render(w, n, inner, cst)
	if err != nil {
		return fragment{}, err
	}
	return fragment{text: out, block: r.block}, nil
}

// children converts the child nodes of n. Block content, or any block child,
// switches to block layout; the second result reports block children.
func (w *walker) children(n Node, st state, block bool) (string, bool, error) {
	kids := n.Children()
	parts := make([]fragment, 0, len(kids))
	hasBlock := false
	for _, c := range kids {
		f, err := w.node(c, st)
		if err != nil {
			return "", false, err
		}
		hasBlock = hasBlock || f.block
		parts = append(parts, f)
	}
	if block || hasBlock {
		return joinBlocks(parts, st), hasBlock, nil
	}
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.text)
	}
	return sb.String(), false, nil
}

// joinBlocks lays out fragments: consecutive inline fragments form one
// paragraph, blocks stand alone, and everything is separated per state.
func joinBlocks(parts []fragment, st state) string {
	var blocks []string
	var run strings.Builder
	flush := func() {
		if s := tidy(run.String()); s != "" {
			blocks = append(blocks, s)
		}
		run.Reset()
	}
	for _, p := range parts {
		if !p.block {
			run.WriteString(p.text)
			continue
		}
		flush()
		if p.text != "" {
			blocks = append(blocks, p.text)
		}
	}
	flush()
	return strings.Join(blocks, st.blockSeparator())
}

// tidy trims every line of an inline run and the run itself.
func tidy(s string) string {
	if !strings.Contains(s, "\n") {
		return strings.TrimSpace(s)
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Trim(line, " \t")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// collapseText applies HTML whitespace collapsing outside preformatted text.
func collapseText(s string, st state) string {
	if st.inPre {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}
