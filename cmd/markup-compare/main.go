// markup-compare converts the same input with every available converter
// and prints size, timing and the outputs side by side.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmylchreest/markupconv/pkg/convert"
	"github.com/jmylchreest/markupconv/pkg/fetcher"
	"github.com/jmylchreest/markupconv/pkg/markup"
)

type converter interface {
	Convert(html string) (string, error)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: markup-compare <url-or-file> [-v]\n")
		os.Exit(1)
	}

	input := os.Args[1]
	verbose := len(os.Args) > 2 && os.Args[2] == "-v"

	html, err := load(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	textile, err := convert.New(markup.Textile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	md, err := convert.New(markup.Markdown)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	raw, err := convert.New(markup.Markdown, convert.WithoutSanitizer())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	converters := []struct {
		name string
		conv converter
	}{
		{"textile", textile},
		{"markdown", md},
		{"markdown (unsanitized)", raw},
		{"reference", convert.NewReference()},
	}

	fmt.Printf("Input: %d bytes\n\n", len(html))
	fmt.Printf("%-25s %10s %8s %10s\n", "Converter", "Output", "Reduce%", "Time")
	fmt.Printf("%-25s %10s %8s %10s\n", "---------", "------", "-------", "----")

	outputs := make(map[string]string, len(converters))
	for _, c := range converters {
		start := time.Now()
		output, err := c.conv.Convert(html)
		duration := time.Since(start)

		if err != nil {
			fmt.Printf("%-25s %10s %8s %10v (error: %v)\n",
				c.name, "ERROR", "-", duration.Round(time.Microsecond), err)
			continue
		}
		outputs[c.name] = output

		reduction := 0.0
		if len(html) > 0 {
			reduction = float64(len(html)-len(output)) / float64(len(html)) * 100
		}
		fmt.Printf("%-25s %10d %7.1f%% %10v\n",
			c.name, len(output), reduction, duration.Round(time.Microsecond))
	}

	fmt.Printf("\nGFM render matches reference: %s\n", sameRender(outputs["markdown"], outputs["reference"]))

	if verbose {
		for _, c := range converters {
			out, ok := outputs[c.name]
			if !ok {
				continue
			}
			fmt.Printf("\n===== %s =====\n%s\n", c.name, out)
		}
	}
}

// sameRender compares two Markdown documents by the HTML they render to.
func sameRender(a, b string) string {
	ra, err := convert.RenderMarkdown(a)
	if err != nil {
		return "error: " + err.Error()
	}
	rb, err := convert.RenderMarkdown(b)
	if err != nil {
		return "error: " + err.Error()
	}
	if strings.TrimSpace(ra) == strings.TrimSpace(rb) {
		return "yes"
	}
	return "no"
}

func load(input string) (string, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		f := fetcher.NewStatic(fetcher.StaticConfig{UserAgent: "markup-compare/1.0"})
		defer func() { _ = f.Close() }()
		page, err := f.Fetch(context.Background(), input, fetcher.Options{})
		if err != nil {
			return "", err
		}
		return page.HTML, nil
	}
	data, err := os.ReadFile(input) //#nosec G304 -- CLI tool reads user-specified input file
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), nil
}
