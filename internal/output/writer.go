// Package output writes conversion reports in machine-readable formats.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a report encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported report formats.
var Formats = []Format{FormatJSON, FormatJSONL, FormatYAML}

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "ndjson":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Writer serializes report records.
type Writer interface {
	// Write records one item. Buffered formats emit it on Close.
	Write(data any) error

	// Close writes anything buffered. The underlying io.Writer is not closed.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	indent int
}

// WithIndent sets the indentation width for JSON and YAML. Zero gives
// compact JSON.
func WithIndent(n int) WriterOption {
	return func(c *writerConfig) {
		c.indent = n
	}
}

// NewWriter creates a writer for the format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{indent: 2}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return &documentWriter{w: w, encode: jsonEncoder(cfg.indent)}, nil
	case FormatYAML:
		return &documentWriter{w: w, encode: yamlEncoder(max(cfg.indent, 2))}, nil
	case FormatJSONL:
		return &lineWriter{w: bufio.NewWriter(w)}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

type encodeFunc func(w io.Writer, v any) error

func jsonEncoder(indent int) encodeFunc {
	return func(w io.Writer, v any) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if indent > 0 {
			enc.SetIndent("", strings.Repeat(" ", indent))
		}
		return enc.Encode(v)
	}
}

func yamlEncoder(indent int) encodeFunc {
	return func(w io.Writer, v any) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(indent)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

// documentWriter buffers every item and writes one document on Close: the
// item itself when there is exactly one, a list otherwise.
type documentWriter struct {
	w      io.Writer
	encode encodeFunc
	items  []any
	closed bool
}

func (d *documentWriter) Write(data any) error {
	if d.closed {
		return fmt.Errorf("write after close")
	}
	d.items = append(d.items, data)
	return nil
}

func (d *documentWriter) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if len(d.items) == 1 {
		return d.encode(d.w, d.items[0])
	}
	items := d.items
	if items == nil {
		items = []any{}
	}
	return d.encode(d.w, items)
}

// lineWriter streams one compact JSON object per line.
type lineWriter struct {
	w *bufio.Writer
}

func (l *lineWriter) Write(data any) error {
	enc := json.NewEncoder(l.w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return l.w.Flush()
}

func (l *lineWriter) Close() error {
	return l.w.Flush()
}
