package markup

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is one property: value pair of an inline style.
type Declaration struct {
	Property string
	Value    string
}

// StyleDeclaration is an ordered set of declarations. Properties are unique;
// a repeated property keeps its first position and takes the last value.
type StyleDeclaration []Declaration

// Get returns the value of a property.
func (s StyleDeclaration) Get(property string) (string, bool) {
	for _, d := range s {
		if d.Property == property {
			return d.Value, true
		}
	}
	return "", false
}

// Without returns a copy with the given properties removed.
func (s StyleDeclaration) Without(properties ...string) StyleDeclaration {
	out := make(StyleDeclaration, 0, len(s))
	for _, d := range s {
		skip := false
		for _, p := range properties {
			if d.Property == p {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, d)
		}
	}
	return out
}

func (s StyleDeclaration) set(property, value string) StyleDeclaration {
	for i := range s {
		if s[i].Property == property {
			s[i].Value = value
			return s
		}
	}
	return append(s, Declaration{Property: property, Value: value})
}

// structuralProperties are turned into markup by the dispatcher and never
// repeated in a style annotation.
var structuralProperties = []string{"text-decoration", "text-align", "vertical-align"}

// StyleParser parses style attributes into filtered declarations.
type StyleParser struct {
	allowed map[string]bool
	colors  map[string]bool
	rgb     *regexp.Regexp
}

// NewStyleParser builds a parser keeping only the given properties and
// normalizing the given color properties.
func NewStyleParser(properties, colorProperties []string) *StyleParser {
	p := &StyleParser{
		allowed: make(map[string]bool, len(properties)),
		colors:  make(map[string]bool, len(colorProperties)),
		rgb:     regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*[\d.]+%?\s*)?\)$`),
	}
	for _, prop := range properties {
		p.allowed[strings.ToLower(prop)] = true
	}
	for _, prop := range colorProperties {
		p.colors[strings.ToLower(prop)] = true
	}
	return p
}

// Parse reads an inline style string. Malformed or unknown declarations are
// dropped; the result is never nil-dangerous to range over.
func (p *StyleParser) Parse(style string) StyleDeclaration {
	var decl StyleDeclaration
	if strings.TrimSpace(style) == "" {
		return decl
	}

	parser := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			// Recoverable syntax errors are skipped, EOF ends the list.
			if parser.HasParseError() {
				continue
			}
			return decl
		case css.DeclarationGrammar:
			prop := strings.ToLower(string(data))
			if !p.allowed[prop] {
				continue
			}
			value := tokensValue(parser.Values())
			if value == "" {
				continue
			}
			if p.colors[prop] {
				value = p.normalizeColor(value)
			}
			decl = decl.set(prop, value)
		}
	}
}

// tokensValue rebuilds the textual value of a declaration.
func tokensValue(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.Write(t.Data)
	}
	value := strings.TrimSpace(sb.String())
	value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
	return value
}

func (p *StyleParser) normalizeColor(value string) string {
	if strings.HasPrefix(value, "#") {
		return strings.ToLower(value)
	}
	m := p.rgb.FindStringSubmatch(strings.ToLower(value))
	if m == nil {
		return value
	}
	var rgb [3]int
	for i := range rgb {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return value
		}
		rgb[i] = min(n, 255)
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

// StyleFormatter renders the leftover declarations of an element.
type StyleFormatter interface {
	FormatStyle(decl StyleDeclaration) string
}

// textileStyle renders {prop: value; ...}.
type textileStyle struct{}

func (textileStyle) FormatStyle(decl StyleDeclaration) string {
	if len(decl) == 0 {
		return ""
	}
	parts := make([]string, len(decl))
	for i, d := range decl {
		parts[i] = d.Property + ": " + d.Value + ";"
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// plainStyle drops styles; Markdown has no annotation syntax.
type plainStyle struct{}

func (plainStyle) FormatStyle(StyleDeclaration) string { return "" }

var styleFormatters = map[Dialect]StyleFormatter{
	Textile:  textileStyle{},
	Markdown: plainStyle{},
}

// FormatStyle renders decl as a style annotation for the dialect, after
// removing the properties the dispatcher turns into structural markup.
func FormatStyle(d Dialect, decl StyleDeclaration) string {
	f, ok := styleFormatters[d]
	if !ok {
		return ""
	}
	return f.FormatStyle(decl.Without(structuralProperties...))
}
