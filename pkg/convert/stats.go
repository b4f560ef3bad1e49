package convert

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats captures metrics about one conversion.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	// Elements seen by the converter after sanitizing.
	Elements int `json:"elements" yaml:"elements"`

	// Sanitizer activity
	ElementsRemoved   map[string]int `json:"elements_removed" yaml:"elements_removed"` // tag -> count
	ElementsUnwrapped int            `json:"elements_unwrapped" yaml:"elements_unwrapped"`
	AttributesRemoved int            `json:"attributes_removed" yaml:"attributes_removed"`
	CommentsRemoved   int            `json:"comments_removed" yaml:"comments_removed"`
	SelectorMatches   map[string]int `json:"selector_matches,omitempty" yaml:"selector_matches,omitempty"`

	// Timing
	ParseDuration    time.Duration `json:"parse_duration_ns" yaml:"parse_duration_ns"`
	SanitizeDuration time.Duration `json:"sanitize_duration_ns" yaml:"sanitize_duration_ns"`
	ConvertDuration  time.Duration `json:"convert_duration_ns" yaml:"convert_duration_ns"`
	TotalDuration    time.Duration `json:"total_duration_ns" yaml:"total_duration_ns"`
}

// NewStats creates a Stats with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
		SelectorMatches: make(map[string]int),
	}
}

// ReductionPercent returns the size reduction from HTML to markup.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// RecordRemoval records that an element was removed.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[strings.ToLower(tag)]++
}

// RecordSelectorMatch records that a selector matched elements.
func (s *Stats) RecordSelectorMatch(selector string, count int) {
	s.SelectorMatches[selector] += count
}

// String returns a human-readable summary.
func (s *Stats) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Size: %s -> %s (%.1f%% reduction)\n",
		humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes)), s.ReductionPercent())

	fmt.Fprintf(&sb, "Elements: %d converted, %d removed, %d unwrapped\n",
		s.Elements, s.TotalElementsRemoved(), s.ElementsUnwrapped)

	if len(s.ElementsRemoved) > 0 {
		sb.WriteString("Removed by tag: ")
		parts := make([]string, 0, len(s.ElementsRemoved))
		for _, tag := range slices.Sorted(maps.Keys(s.ElementsRemoved)) {
			parts = append(parts, fmt.Sprintf("%s=%d", tag, s.ElementsRemoved[tag]))
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	if s.AttributesRemoved > 0 {
		fmt.Fprintf(&sb, "Attributes removed: %d\n", s.AttributesRemoved)
	}
	if s.CommentsRemoved > 0 {
		fmt.Fprintf(&sb, "Comments removed: %d\n", s.CommentsRemoved)
	}

	fmt.Fprintf(&sb, "Timing: parse=%v, sanitize=%v, convert=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.SanitizeDuration.Round(time.Microsecond),
		s.ConvertDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond))

	return sb.String()
}

// Warning is a non-fatal issue found during conversion.
type Warning struct {
	Phase   string `json:"phase" yaml:"phase"`     // "parse", "sanitize", "convert"
	Message string `json:"message" yaml:"message"` // Human-readable description
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result is the output of ConvertWithStats.
type Result struct {
	Dialect  string    `json:"dialect" yaml:"dialect"`
	Content  string    `json:"content" yaml:"content"`
	Stats    *Stats    `json:"stats" yaml:"stats"`
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings reports whether any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
