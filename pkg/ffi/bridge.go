// Command ffi builds the markupconv C shared library.
//
// Build with:
//
//	CGO_ENABLED=1 go build -buildmode=c-shared -o libmarkupconv.so ./pkg/ffi/
//
// All inputs/outputs are C strings. Reports and options are JSON.
// Callers must free results with markupconv_result_free.
package main

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jmylchreest/markupconv/internal/version"
	"github.com/jmylchreest/markupconv/pkg/convert"
	"github.com/jmylchreest/markupconv/pkg/markup"
)

// converterOptions is the JSON accepted by markupconv_converter_new.
// Missing fields keep their defaults.
type converterOptions struct {
	Markup     *markup.Config          `json:"markup"`
	Sanitize   *convert.SanitizeConfig `json:"sanitize"`
	NoSanitize bool                    `json:"no_sanitize"`
}

func newConverter(dialect, optionsJSON string) (*convert.MarkupConverter, error) {
	d, err := markup.ParseDialect(dialect)
	if err != nil {
		return nil, err
	}
	opts := converterOptions{
		Markup:   markup.DefaultConfig(),
		Sanitize: convert.DefaultSanitizeConfig(),
	}
	if optionsJSON != "" {
		if err := json.Unmarshal([]byte(optionsJSON), &opts); err != nil {
			return nil, fmt.Errorf("invalid options: %w", err)
		}
	}

	convOpts := []convert.Option{convert.WithConfig(opts.Markup)}
	if opts.NoSanitize || opts.Sanitize == nil {
		convOpts = append(convOpts, convert.WithoutSanitizer())
	} else {
		convOpts = append(convOpts, convert.WithSanitizer(opts.Sanitize))
	}
	return convert.New(d, convOpts...)
}

// defaults caches one default converter per dialect.
var defaults sync.Map // markup.Dialect -> *convert.MarkupConverter

func defaultConverter(dialect string) (*convert.MarkupConverter, error) {
	d, err := markup.ParseDialect(dialect)
	if err != nil {
		return nil, err
	}
	if c, ok := defaults.Load(d); ok {
		return c.(*convert.MarkupConverter), nil
	}
	c, err := convert.New(d)
	if err != nil {
		return nil, err
	}
	actual, _ := defaults.LoadOrStore(d, c)
	return actual.(*convert.MarkupConverter), nil
}

// reportJSON converts html and returns the full result as JSON.
func reportJSON(c *convert.MarkupConverter, html string) (string, error) {
	result, err := c.ConvertWithStats(html)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// handleTable maps integer handles to long-lived converters.
type handleTable struct {
	mu     sync.RWMutex
	items  map[int]*convert.MarkupConverter
	nextID int
}

var handles = &handleTable{items: make(map[int]*convert.MarkupConverter)}

func (h *handleTable) add(c *convert.MarkupConverter) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.items[h.nextID] = c
	return h.nextID
}

func (h *handleTable) get(id int) (*convert.MarkupConverter, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.items[id]
	return c, ok
}

func (h *handleTable) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.items, id)
}

// libraryInfo is returned by markupconv_info.
type libraryInfo struct {
	Version  version.Info     `json:"version"`
	Dialects []markup.Dialect `json:"dialects"`
}

func infoJSON() string {
	data, _ := json.Marshal(libraryInfo{Version: version.Get(), Dialects: markup.Dialects})
	return string(data)
}

// main is required for c-shared build mode but should not be called.
func main() {}
