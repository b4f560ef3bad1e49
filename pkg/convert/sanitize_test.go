package convert

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func sanitize(t *testing.T, cfg *SanitizeConfig, input string) (string, *Stats) {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse error = %v", err)
	}
	stats := NewStats()
	NewSanitizer(cfg).Sanitize(doc, stats)
	out, err := doc.Find("body").Html()
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	return out, stats
}

func TestSanitizer_Defaults(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"script", `<p>a</p><script>x()</script>`, `<p>a</p>`},
		{"style element", `<style>p{}</style><p>a</p>`, `<p>a</p>`},
		{"style attribute kept", `<span style="color: red">a</span>`, `<span style="color: red">a</span>`},
		{"comment", `<p>a<!-- note -->b</p>`, `<p>ab</p>`},
		{"iframe", `<p>a</p><iframe src="x"></iframe>`, `<p>a</p>`},
		{"event handler", `<a href="#" onclick="x()" onMouseOver="y()">a</a>`, `<a href="#">a</a>`},
		{"hidden attribute", `<p hidden>a</p><p>b</p>`, `<p>b</p>`},
		{"aria hidden", `<span aria-hidden="true">icon</span>b`, `b`},
		{"display none", `<div style="display: none">a</div><div style="display: block">b</div>`, `<div style="display: block">b</div>`},
		{"visibility hidden", `<span style="visibility:hidden">a</span>b`, `b`},
		{"noscript unwrapped", `<noscript><p>fallback</p></noscript>`, `<p>fallback</p>`},
		{"whitespace kept", "<pre>a\n  b</pre>", "<pre>a\n  b</pre>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := sanitize(t, DefaultSanitizeConfig(), tt.input)
			if got != tt.want {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizer_Selectors(t *testing.T) {
	cfg := &SanitizeConfig{
		RemoveSelectors: []string{".toolbar", "div.note"},
		KeepSelectors:   []string{".keep"},
	}

	got, stats := sanitize(t, cfg, `<div class="toolbar">B I U</div><div class="note keep">kept</div><div class="note">gone</div><p>text</p>`)
	if want := `<div class="note keep">kept</div><p>text</p>`; got != want {
		t.Errorf("Sanitize() = %q, want %q", got, want)
	}
	if stats.SelectorMatches[".toolbar"] != 1 || stats.SelectorMatches["div.note"] != 2 {
		t.Errorf("SelectorMatches = %v", stats.SelectorMatches)
	}
	if stats.ElementsRemoved["div"] != 2 {
		t.Errorf("ElementsRemoved = %v", stats.ElementsRemoved)
	}
}

func TestSanitizer_Disabled(t *testing.T) {
	input := `<p onclick="x()">a<!-- c --></p><script>y()</script>`
	got, stats := sanitize(t, &SanitizeConfig{}, input)
	if got != input {
		t.Errorf("Sanitize() = %q, want input unchanged", got)
	}
	if stats.TotalElementsRemoved() != 0 || stats.AttributesRemoved != 0 || stats.CommentsRemoved != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSanitizeConfig_Validate(t *testing.T) {
	if err := DefaultSanitizeConfig().Validate(); err != nil {
		t.Errorf("default Validate() = %v", err)
	}
	if err := (&SanitizeConfig{KeepSelectors: []string{"p:unknown-pseudo("}}).Validate(); err == nil {
		t.Error("Validate() with bad keep selector = nil, want error")
	}
	if err := (&SanitizeConfig{RemoveSelectors: []string{"div > p", ".a, .b"}}).Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}
