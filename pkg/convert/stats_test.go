package convert

import (
	"strings"
	"testing"
	"time"
)

func TestNewStats(t *testing.T) {
	s := NewStats()
	if s.ElementsRemoved == nil || s.SelectorMatches == nil {
		t.Fatal("expected maps to be initialized")
	}
}

func TestStats_ReductionPercent(t *testing.T) {
	tests := []struct {
		in, out int
		want    float64
	}{
		{0, 0, 0},
		{100, 25, 75},
		{100, 100, 0},
		{50, 100, -100},
	}
	for _, tt := range tests {
		s := &Stats{InputBytes: tt.in, OutputBytes: tt.out}
		if got := s.ReductionPercent(); got != tt.want {
			t.Errorf("ReductionPercent(%d -> %d) = %v, want %v", tt.in, tt.out, got, tt.want)
		}
	}
}

func TestStats_Recording(t *testing.T) {
	s := NewStats()
	s.RecordRemoval("SCRIPT")
	s.RecordRemoval("script")
	s.RecordRemoval("iframe")
	s.RecordSelectorMatch(".ad", 2)
	s.RecordSelectorMatch(".ad", 1)

	if s.ElementsRemoved["script"] != 2 {
		t.Errorf("ElementsRemoved = %v", s.ElementsRemoved)
	}
	if s.TotalElementsRemoved() != 3 {
		t.Errorf("TotalElementsRemoved() = %d", s.TotalElementsRemoved())
	}
	if s.SelectorMatches[".ad"] != 3 {
		t.Errorf("SelectorMatches = %v", s.SelectorMatches)
	}
}

func TestStats_String(t *testing.T) {
	s := NewStats()
	s.InputBytes = 2000
	s.OutputBytes = 500
	s.Elements = 12
	s.RecordRemoval("style")
	s.RecordRemoval("script")
	s.CommentsRemoved = 2
	s.TotalDuration = 3 * time.Millisecond

	out := s.String()
	for _, want := range []string{
		"Size: 2.0 kB -> 500 B (75.0% reduction)",
		"Elements: 12 converted, 2 removed, 0 unwrapped",
		"Removed by tag: script=1, style=1",
		"Comments removed: 2",
		"total=3ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Attributes removed") {
		t.Error("zero counters should be omitted")
	}
}

func TestResult_Warnings(t *testing.T) {
	r := &Result{}
	if r.HasWarnings() {
		t.Error("empty result has warnings")
	}
	r.AddWarning("convert", "no output", "")
	r.AddWarning("sanitize", "selector matched nothing", ".x")

	if !r.HasWarnings() || len(r.Warnings) != 2 {
		t.Fatalf("Warnings = %v", r.Warnings)
	}
	if got := r.Warnings[0].String(); got != "[convert] no output" {
		t.Errorf("String() = %q", got)
	}
	if got := r.Warnings[1].String(); got != "[sanitize] selector matched nothing (context: .x)" {
		t.Errorf("String() = %q", got)
	}
}
