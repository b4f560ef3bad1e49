package markup

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Dialect selects the output markup syntax.
type Dialect string

const (
	Textile  Dialect = "textile"
	Markdown Dialect = "markdown"
)

// Dialects lists the supported dialects.
var Dialects = []Dialect{Textile, Markdown}

// ErrUnsupportedDialect is returned for a dialect outside Dialects.
var ErrUnsupportedDialect = errors.New("unsupported dialect")

// ParseDialect maps a user supplied name to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "textile":
		return Textile, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: %q (want textile or markdown)", ErrUnsupportedDialect, s)
	}
}

// Valid reports whether d is one of Dialects.
func (d Dialect) Valid() bool {
	return slices.Contains(Dialects, d)
}

// String returns the dialect name.
func (d Dialect) String() string {
	return string(d)
}
