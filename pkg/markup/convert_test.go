package markup

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

type attrs = map[string]string

const cSource = "#include <stdio.h>\n\nint main(int argc, char *argv[])\n{\n    printf(\"Hello, world\n\");\n\n    return 0;\n}\n"

func convertBoth(t *testing.T, root Node) (string, string) {
	t.Helper()
	textile, err := ToTextile(root)
	if err != nil {
		t.Fatalf("ToTextile() error = %v", err)
	}
	markdown, err := ToMarkdown(root)
	if err != nil {
		t.Fatalf("ToMarkdown() error = %v", err)
	}
	return textile, markdown
}

func TestConvert_Inline(t *testing.T) {
	tests := []struct {
		name     string
		root     Node
		textile  string
		markdown string
	}{
		{
			name:     "underline span",
			root:     El("span", attrs{"style": "text-decoration: underline"}, Text("Hello, world")),
			textile:  "+Hello, world+",
			markdown: "Hello, world",
		},
		{
			name: "underline span with style",
			root: El("span", attrs{"style": "text-decoration: underline; color: white; background-color: #dc3545; opacity: 0.5; width: 100%;"},
				Text("Hello, world")),
			textile:  "+{color: white; background-color: #dc3545; width: 100%;}Hello, world+",
			markdown: "Hello, world",
		},
		{
			name:     "line-through span",
			root:     El("span", attrs{"style": "text-decoration: line-through"}, Text("Hello, world")),
			textile:  "-Hello, world-",
			markdown: "~~Hello, world~~",
		},
		{
			name:     "plain span",
			root:     El("span", nil, Text("Hello, world")),
			textile:  "%Hello, world%",
			markdown: "Hello, world",
		},
		{
			name:     "span with color",
			root:     El("span", attrs{"style": "color: rgb(255, 255, 255); background-color: #dc3545"}, Text("Hello, world")),
			textile:  "%{color: #ffffff; background-color: #dc3545;}Hello, world%",
			markdown: "Hello, world",
		},
		{
			name:     "strong",
			root:     El("strong", nil, Text("Hello, world")),
			textile:  "*Hello, world*",
			markdown: "**Hello, world**",
		},
		{
			name:     "del",
			root:     El("del", nil, Text("Hello, world")),
			textile:  "-Hello, world-",
			markdown: "~~Hello, world~~",
		},
		{
			name:     "superscript has no markdown form",
			root:     El("p", nil, Text("E = mc"), El("sup", nil, Text("2"))),
			textile:  "E = mc^2^",
			markdown: "E = mc2",
		},
		{
			name:     "whitespace moves outside delimiters",
			root:     El("p", nil, Text("Hello "), El("em", nil, Text("big ")), Text("world")),
			textile:  "Hello _big_ world",
			markdown: "Hello *big* world",
		},
		{
			name:     "empty emphasis dropped",
			root:     El("p", nil, Text("a"), El("strong", nil), Text("b")),
			textile:  "ab",
			markdown: "ab",
		},
		{
			name:     "whitespace collapsed",
			root:     El("p", nil, Text("  Hello,\n\t  world  ")),
			textile:  "Hello, world",
			markdown: "Hello, world",
		},
		{
			name:     "abbreviation",
			root:     El("abbr", attrs{"title": "Richard Matthew Stallman"}, Text("RMS")),
			textile:  "RMS(Richard Matthew Stallman)",
			markdown: "RMS(Richard Matthew Stallman)",
		},
		{
			name:     "line break",
			root:     El("p", nil, Text("one"), El("br", nil), Text("two")),
			textile:  "one\ntwo",
			markdown: "one\ntwo",
		},
		{
			name:     "script skipped",
			root:     El("div", nil, El("script", nil, Text("alert(1)")), Text("ok")),
			textile:  "ok",
			markdown: "ok",
		},
		{
			name:     "unknown tag is transparent",
			root:     El("font", attrs{"color": "red"}, Text("red")),
			textile:  "red",
			markdown: "red",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			textile, markdown := convertBoth(t, tt.root)
			if textile != tt.textile {
				t.Errorf("textile = %q, want %q", textile, tt.textile)
			}
			if markdown != tt.markdown {
				t.Errorf("markdown = %q, want %q", markdown, tt.markdown)
			}
		})
	}
}

func TestConvert_Links(t *testing.T) {
	image := El("img", attrs{"src": "http://example.com/foo.png"})

	tests := []struct {
		name     string
		root     Node
		textile  string
		markdown string
	}{
		{
			name:     "mailto autolink",
			root:     El("a", attrs{"href": "mailto:foo@example.com"}, Text("foo@example.com")),
			textile:  "foo@example.com",
			markdown: "foo@example.com",
		},
		{
			name:     "http autolink",
			root:     El("a", attrs{"href": "http://example.com"}, Text("http://example.com")),
			textile:  "http://example.com",
			markdown: "http://example.com",
		},
		{
			name:     "autolink with trailing slash",
			root:     El("a", attrs{"href": "http://example.com/"}, Text("http://example.com")),
			textile:  "http://example.com",
			markdown: "http://example.com",
		},
		{
			name:     "labelled link",
			root:     El("a", attrs{"href": "http://example.com"}, Text("Example")),
			textile:  `"Example":http://example.com`,
			markdown: "[Example](http://example.com)",
		},
		{
			name:     "abbreviation title with parentheses",
			root:     El("abbr", attrs{"title": "GNU (GNU's Not Unix)"}, Text("GNU")),
			textile:  "GNU(GNU [GNU's Not Unix])",
			markdown: "GNU(GNU [GNU's Not Unix])",
		},
		{
			name:     "link title with parentheses",
			root:     El("a", attrs{"href": "http://example.com", "title": "Site (beta)"}, Text("Example")),
			textile:  `"Example(Site [beta])":http://example.com`,
			markdown: `[Example](http://example.com "Site (beta)")`,
		},
		{
			name:     "link with title",
			root:     El("a", attrs{"href": "http://example.com", "title": "Site"}, Text("Example")),
			textile:  `"Example(Site)":http://example.com`,
			markdown: `[Example](http://example.com "Site")`,
		},
		{
			name:     "link without href",
			root:     El("a", attrs{"name": "top"}, Text("Top")),
			textile:  "Top",
			markdown: "Top",
		},
		{
			name:     "link without text",
			root:     El("a", attrs{"href": "http://example.com/x"}),
			textile:  "http://example.com/x",
			markdown: "http://example.com/x",
		},
		{
			name:     "attachment link",
			root:     El("a", attrs{"href": "/attachments/download/7/report.pdf"}, Text("report")),
			textile:  `"report":report.pdf`,
			markdown: "[report](report.pdf)",
		},
		{
			name:     "external image",
			root:     El("img", attrs{"src": "http://example.com/foo.png", "alt": "Foo"}),
			textile:  "!http://example.com/foo.png(Foo)!",
			markdown: "![Foo](http://example.com/foo.png)",
		},
		{
			name:     "attachment image",
			root:     El("img", attrs{"src": "/attachments/download/1/foo.png", "alt": "Foo"}),
			textile:  "!foo.png(Foo)!",
			markdown: "![Foo](foo.png)",
		},
		{
			name:     "image with style",
			root:     El("img", attrs{"src": "http://example.com/foo.png", "alt": "Foo", "style": "width: 100%"}),
			textile:  "!{width: 100%;}http://example.com/foo.png(Foo)!",
			markdown: "![Foo](http://example.com/foo.png)",
		},
		{
			name:     "image link",
			root:     El("a", attrs{"href": "http://example.com/foo/"}, image),
			textile:  "!http://example.com/foo.png!:http://example.com/foo/",
			markdown: "[![](http://example.com/foo.png)](http://example.com/foo/)",
		},
		{
			name:     "image linked to itself",
			root:     El("a", attrs{"href": "http://example.com/foo.png"}, image),
			textile:  "!http://example.com/foo.png!",
			markdown: "![](http://example.com/foo.png)",
		},
		{
			name:     "image without src",
			root:     El("img", attrs{"alt": "nothing"}),
			textile:  "",
			markdown: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			textile, markdown := convertBoth(t, tt.root)
			if textile != tt.textile {
				t.Errorf("textile = %q, want %q", textile, tt.textile)
			}
			if markdown != tt.markdown {
				t.Errorf("markdown = %q, want %q", markdown, tt.markdown)
			}
		})
	}
}

func TestConvert_Blocks(t *testing.T) {
	quote := El("blockquote", nil,
		El("blockquote", nil,
			El("p", nil,
				Text("Rails is a full-stack framework."),
				El("br", nil),
				Text("To go live, add a database."),
			),
		),
		El("p", nil, Text("Great!")),
	)
	wantQuote := "> > Rails is a full-stack framework.\n> > To go live, add a database.\n> \n> Great!"

	tests := []struct {
		name     string
		root     Node
		textile  string
		markdown string
	}{
		{
			name:     "horizontal rule",
			root:     El("hr", nil),
			textile:  "---",
			markdown: "---",
		},
		{
			name:     "nested blockquote",
			root:     quote,
			textile:  wantQuote,
			markdown: wantQuote,
		},
		{
			name:     "paragraphs",
			root:     El("div", nil, El("p", nil, Text("one")), El("p", nil, Text("two"))),
			textile:  "one\n\ntwo",
			markdown: "one\n\ntwo",
		},
		{
			name:     "inline run between blocks",
			root:     El("div", nil, Text(" lead "), El("p", nil, Text("body")), El("em", nil, Text("tail"))),
			textile:  "lead\n\nbody\n\n_tail_",
			markdown: "lead\n\nbody\n\n*tail*",
		},
		{
			name:     "empty paragraph dropped",
			root:     El("div", nil, El("p", nil, Text("one")), El("p", nil, Text(" ")), El("p", nil, Text("two"))),
			textile:  "one\n\ntwo",
			markdown: "one\n\ntwo",
		},
		{
			name:     "aligned paragraph",
			root:     El("p", attrs{"style": "text-align: center; color: red"}, Text("Hi")),
			textile:  "p={color: red;}. Hi",
			markdown: "Hi",
		},
		{
			name:     "heading",
			root:     El("h2", nil, Text("Title")),
			textile:  "h2. Title",
			markdown: "## Title",
		},
		{
			name:     "right aligned heading",
			root:     El("h3", attrs{"align": "right"}, Text("Title")),
			textile:  "h3>. Title",
			markdown: "### Title",
		},
		{
			name: "lists",
			root: El("ul", nil,
				El("li", nil, Text("one")),
				El("li", nil, Text("two"), El("ol", nil, El("li", nil, Text("a")), El("li", nil, Text("b")))),
			),
			textile:  "* one\n* two\n*# a\n*# b",
			markdown: "- one\n- two\n  1. a\n  2. b",
		},
		{
			name:     "code block",
			root:     El("pre", nil, El("code", attrs{"class": "c"}, Text(cSource))),
			textile:  "<pre><code class=\"c\">\n" + cSource + "</code></pre>",
			markdown: "~~~ c\n" + cSource + "~~~",
		},
		{
			name:     "preformatted",
			root:     El("pre", nil, Text(cSource)),
			textile:  `<pre><code class="">` + "\n" + cSource + "</code></pre>",
			markdown: "~~~\n" + cSource + "~~~",
		},
		{
			name:     "preformatted with data-code",
			root:     El("pre", attrs{"data-code": "c"}, Text(cSource)),
			textile:  "<pre><code class=\"c\">\n" + cSource + "</code></pre>",
			markdown: "~~~ c\n" + cSource + "~~~",
		},
		{
			name:     "markup inside pre is ignored",
			root:     El("pre", nil, El("strong", nil, Text("x")), El("br", nil), Text("  y")),
			textile:  `<pre><code class="">` + "\nx\n  y\n</code></pre>",
			markdown: "~~~\nx\n  y\n~~~",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			textile, markdown := convertBoth(t, tt.root)
			if textile != tt.textile {
				t.Errorf("textile = %q, want %q", textile, tt.textile)
			}
			if markdown != tt.markdown {
				t.Errorf("markdown = %q, want %q", markdown, tt.markdown)
			}
		})
	}
}

func TestConvert_MaxDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 3
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	shallow := El("div", nil, El("div", nil, El("div", nil, Text("ok"))))
	if got, err := c.Textile(shallow); err != nil || got != "ok" {
		t.Errorf("Textile(shallow) = %q, %v; want %q, nil", got, err, "ok")
	}

	deep := El("div", nil, shallow)
	for _, d := range Dialects {
		if _, err := c.Convert(deep, d); !errors.Is(err, ErrTooDeep) {
			t.Errorf("Convert(deep, %s) error = %v, want ErrTooDeep", d, err)
		}
	}
}

func TestConvert_DefaultDepthLimit(t *testing.T) {
	var root Node = Text("bottom")
	for range 2000 {
		root = El("span", nil, root)
	}
	if _, err := ToMarkdown(root); !errors.Is(err, ErrTooDeep) {
		t.Errorf("ToMarkdown() error = %v, want ErrTooDeep", err)
	}
}

func TestConvert_MarkdownImageLinksDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MarkdownImageLinks = false
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	root := El("a", attrs{"href": "http://example.com/"}, El("img", attrs{"src": "http://example.com/a.png", "alt": "A"}))
	got, err := c.Markdown(root)
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if got != "![A](http://example.com/a.png)" {
		t.Errorf("Markdown() = %q", got)
	}
}

func TestConvert_AutolinksDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CollapseAutolinks = false
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	root := El("a", attrs{"href": "http://example.com"}, Text("http://example.com"))
	got, err := c.Textile(root)
	if err != nil {
		t.Fatalf("Textile() error = %v", err)
	}
	if want := `"http://example.com":http://example.com`; got != want {
		t.Errorf("Textile() = %q, want %q", got, want)
	}
}

func TestConvert_Edges(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) error = %v", err)
	}

	if got, err := c.Convert(nil, Textile); err != nil || got != "" {
		t.Errorf("Convert(nil) = %q, %v", got, err)
	}
	if _, err := c.Convert(Text("x"), Dialect("rst")); !errors.Is(err, ErrUnsupportedDialect) {
		t.Error("Convert() with unknown dialect: want error")
	}
	if got, _ := c.Markdown(El("div", nil)); got != "" {
		t.Errorf("Markdown(empty div) = %q, want empty", got)
	}
}

func TestConvert_Concurrent(t *testing.T) {
	root := El("div", nil,
		El("p", nil, El("strong", nil, Text("bold")), Text(" text")),
		El("ul", nil, El("li", nil, Text("item"))),
	)
	want, err := ToTextile(root)
	if err != nil {
		t.Fatalf("ToTextile() error = %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ToTextile(root)
			if err != nil || got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent ToTextile() = %q, want %q", got, want)
	}
	if !strings.HasPrefix(want, "*bold* text") {
		t.Errorf("ToTextile() = %q", want)
	}
}
