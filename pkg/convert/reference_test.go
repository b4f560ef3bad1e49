package convert

import (
	"strings"
	"testing"

	"github.com/jmylchreest/markupconv/pkg/markup"
)

func TestReferenceConverter_Convert(t *testing.T) {
	tests := []struct {
		name  string
		opts  []ReferenceOption
		input string
		want  []string
	}{
		{
			name:  "inline",
			input: `<p>Hello <strong>world</strong> <del>old</del></p>`,
			want:  []string{"Hello **world** ~~old~~"},
		},
		{
			name:  "domain",
			opts:  []ReferenceOption{WithDomain("https://example.com")},
			input: `<p><a href="/wiki">wiki</a></p>`,
			want:  []string{"[wiki](https://example.com/wiki)"},
		},
		{
			name:  "table",
			input: `<table><tr><th>a</th></tr><tr><td>1</td></tr></table>`,
			want:  []string{"| a |", "| 1 |"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewReference(tt.opts...).Convert(tt.input)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Convert() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestReferenceConverter_Name(t *testing.T) {
	if got := NewReference().Name(); got != "reference" {
		t.Errorf("Name() = %q", got)
	}
}

func TestCleanWhitespace(t *testing.T) {
	got := cleanWhitespace("\n\na\n\n\n\nb\n  \n\t\nc\n\n")
	if want := "a\n\nb\n\nc"; got != want {
		t.Errorf("cleanWhitespace() = %q, want %q", got, want)
	}
}

func TestRenderMarkdown(t *testing.T) {
	got, err := RenderMarkdown("**a** ~~b~~\n\n| x |\n| --- |\n| 1 |\n")
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	for _, want := range []string{"<strong>a</strong>", "<del>b</del>", "<table>", "<td>1</td>"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderMarkdown() = %q, missing %q", got, want)
		}
	}
}

// The engine's Markdown must parse back into the same structure under GFM.
func TestMarkdown_RendersAsGFM(t *testing.T) {
	input := `<h2>Title</h2>
<p><strong>bold</strong> and <del>gone</del></p>
<ul><li>one</li><li>two</li></ul>
<blockquote><p>quoted</p></blockquote>
<p><a href="http://example.com/">link</a> <img src="foo.png" alt="Foo"></p>
<pre data-code="c">int x;</pre>
<table><tr><th>a</th><th>b</th></tr><tr><td>1</td><td>2</td></tr></table>`

	c := mustNew(t, markup.Markdown)
	md, err := c.Convert(input)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	html, err := RenderMarkdown(md)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}

	for _, want := range []string{
		"<h2>Title</h2>",
		"<strong>bold</strong>",
		"<del>gone</del>",
		"<li>one</li>",
		"<blockquote>",
		"<p>quoted</p>",
		`<a href="http://example.com/">link</a>`,
		`<img src="foo.png" alt="Foo">`,
		`<pre><code class="language-c">int x;`,
		"<table>",
		"<th>a</th>",
		"<td>2</td>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q\nmarkdown:\n%s\nhtml:\n%s", want, md, html)
		}
	}
}
