package markup

import (
	"errors"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"no style properties", func(c *Config) { c.StyleProperties = nil }},
		{"blank style property", func(c *Config) { c.StyleProperties = []string{"color", ""} }},
		{"blank color property", func(c *Config) { c.ColorProperties = []string{""} }},
		{"missing attachment pattern", func(c *Config) { c.AttachmentPattern = "" }},
		{"bad attachment pattern", func(c *Config) { c.AttachmentPattern = "([" }},
		{"attachment pattern without group", func(c *Config) { c.AttachmentPattern = `/attachments/\d+` }},
		{"zero depth", func(c *Config) { c.MaxDepth = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
			if _, err := New(cfg); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"textile", Textile, false},
		{"Textile", Textile, false},
		{"markdown", Markdown, false},
		{"md", Markdown, false},
		{" markdown ", Markdown, false},
		{"rst", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if tt.wantErr != errors.Is(err, ErrUnsupportedDialect) {
				t.Fatalf("ParseDialect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDialect(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDialect_Valid(t *testing.T) {
	tests := []struct {
		d    Dialect
		want bool
	}{
		{Textile, true},
		{Markdown, true},
		{"md", false},
		{"Textile", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.d.Valid(); got != tt.want {
			t.Errorf("Dialect(%q).Valid() = %v, want %v", tt.d, got, tt.want)
		}
	}
}
