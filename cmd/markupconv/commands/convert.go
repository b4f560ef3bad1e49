package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/markupconv/internal/logger"
	"github.com/jmylchreest/markupconv/internal/output"
	"github.com/jmylchreest/markupconv/pkg/convert"
	"github.com/jmylchreest/markupconv/pkg/fetcher"
)

// report is one record of the --report output.
type report struct {
	Source string          `json:"source" yaml:"source"`
	Page   *fetcher.Page   `json:"page,omitempty" yaml:"page,omitempty"`
	Result *convert.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// source is one input: a file path, "-" for stdin, or a URL.
type source struct {
	name  string
	isURL bool
}

var convertCmd = &cobra.Command{
	Use:   "convert [file...]",
	Short: "Convert HTML to Textile or Markdown",
	Long: `Convert editor HTML into wiki markup.

Inputs are files, "-" for stdin, or URLs given with --url. Without any
input, HTML is read from stdin. Converted documents are separated by a
blank line.

Examples:
  markupconv convert page.html
  markupconv convert -d markdown a.html b.html -o out.md
  markupconv convert -u "https://example.com/wiki" --selector "#content"
  markupconv convert page.html --remove ".toolbar" --report yaml`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()

	// Conversion settings
	flags.StringP("dialect", "d", "textile", "output dialect: textile, markdown")
	flags.Bool("no-sanitize", false, "convert the HTML as is, without removing scripts, comments or hidden elements")
	flags.StringSlice("remove", nil, "CSS selector of elements to remove before converting (can be repeated)")
	flags.String("max-input-size", "10MB", "max input size per document (e.g., 500KB, 10MB, 0=unlimited)")

	// URL inputs
	flags.StringSliceP("url", "u", nil, "URL(s) to fetch and convert (can be repeated)")
	flags.String("selector", "", "convert only the first element matching this CSS selector")
	flags.String("user-agent", "", "User-Agent for URL fetches")
	flags.String("fetch-mode", "static", "fetch mode: static, dynamic (headless Chrome)")
	flags.Duration("timeout", 30*time.Second, "request timeout")

	// Output settings
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("report", "", "write a conversion report: json, jsonl, yaml")
	flags.String("report-file", "", "report destination (default: stderr)")
	flags.Bool("stats", false, "print conversion statistics to stderr")

	_ = viper.BindPFlag("dialect", flags.Lookup("dialect"))
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Debug("convert command starting")

	s, err := loadSettings(viper.GetViper())
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}
	if noSanitize, _ := cmd.Flags().GetBool("no-sanitize"); noSanitize {
		s.Sanitize = nil
		logger.Debug("sanitizing disabled")
	}
	if remove, _ := cmd.Flags().GetStringSlice("remove"); len(remove) > 0 {
		if s.Sanitize == nil {
			return errors.New("--remove cannot be combined with --no-sanitize")
		}
		s.Sanitize.RemoveSelectors = append(s.Sanitize.RemoveSelectors, remove...)
	}

	maxInputStr, _ := cmd.Flags().GetString("max-input-size")
	maxInput, err := parseSize(maxInputStr)
	if err != nil {
		logger.Error("invalid max-input-size", "value", maxInputStr, "error", err)
		return err
	}
	logger.Debug("max input size", "bytes", maxInput)

	conv, err := convert.New(s.Dialect, s.options()...)
	if err != nil {
		logger.Error("failed to create converter", "error", err)
		return err
	}

	urls, _ := cmd.Flags().GetStringSlice("url")
	sources := collectSources(args, urls)
	logger.Debug("inputs to process", "count", len(sources), "dialect", s.Dialect)

	// Setup output
	out := cmd.OutOrStdout()
	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
		f, err := os.Create(outPath) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			logger.Error("failed to create output file", "path", outPath, "error", err)
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	reports, err := openReport(cmd)
	if err != nil {
		return err
	}
	if reports != nil {
		defer func() { _ = reports.Close() }()
	}

	userAgent, _ := cmd.Flags().GetString("user-agent")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	fetchMode, _ := cmd.Flags().GetString("fetch-mode")
	f, err := newFetcher(fetchMode, userAgent, timeout, maxInput)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	logger.Debug("fetch mode", "mode", f.Type())
	selector, _ := cmd.Flags().GetString("selector")
	fetchOpts := fetcher.Options{UserAgent: userAgent, Timeout: timeout, Selector: selector}
	showStats, _ := cmd.Flags().GetBool("stats")

	converted, failed := 0, 0
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec := report{Source: src.name}
		html, page, err := load(ctx, cmd.InOrStdin(), src, f, fetchOpts, maxInput)
		rec.Page = page
		var result *convert.Result
		if err == nil {
			result, err = conv.ConvertWithStats(html)
		}
		if err != nil {
			failed++
			rec.Error = err.Error()
			logger.Error("conversion failed", "source", src.name, "error", err)
		} else {
			rec.Result = result
			if converted > 0 {
				_, _ = io.WriteString(out, "\n")
			}
			converted++
			if _, err := io.WriteString(out, result.Content+"\n"); err != nil {
				logger.Error("failed to write output", "error", err)
				return err
			}
			if showStats {
				logInfo("%s (%s):\n%s", src.name, result.Dialect, result.Stats)
			}
		}

		if reports != nil {
			if err := reports.Write(rec); err != nil {
				logger.Error("failed to write report", "error", err)
				return err
			}
		}
	}

	logger.Info("conversion complete", "converted", converted, "errors", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(sources))
	}
	return nil
}

// newFetcher creates the fetcher for --fetch-mode. A zero limit is unlimited,
// matching file and stdin input.
func newFetcher(mode, userAgent string, timeout time.Duration, limit uint64) (fetcher.Fetcher, error) {
	maxBody := -1
	if limit > 0 {
		maxBody = int(limit)
	}
	switch mode {
	case "static", "":
		return fetcher.NewStatic(fetcher.StaticConfig{MaxBodySize: maxBody}), nil
	case "dynamic":
		return fetcher.NewDynamic(fetcher.DynamicConfig{UserAgent: userAgent, Timeout: timeout, MaxBodySize: maxBody}), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s (use 'static' or 'dynamic')", mode)
	}
}

// collectSources orders file arguments before URLs. No input means stdin.
func collectSources(files, urls []string) []source {
	sources := make([]source, 0, len(files)+len(urls))
	for _, name := range files {
		sources = append(sources, source{name: name})
	}
	for _, u := range urls {
		sources = append(sources, source{name: u, isURL: true})
	}
	if len(sources) == 0 {
		sources = append(sources, source{name: "-"})
	}
	return sources
}

// load returns the HTML for src. Fetched pages also return their metadata.
func load(ctx context.Context, stdin io.Reader, src source, f fetcher.Fetcher, opts fetcher.Options, limit uint64) (string, *fetcher.Page, error) {
	if src.isURL {
		page, err := f.Fetch(ctx, src.name, opts)
		if err != nil {
			return "", nil, err
		}
		return page.HTML, &page, nil
	}

	if src.name == "-" {
		html, err := readInput(stdin, limit)
		return html, nil, err
	}
	file, err := os.Open(src.name) //#nosec G304 -- CLI tool reads user-specified input file
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = file.Close() }()
	html, err := readInput(file, limit)
	return html, nil, err
}

// readInput reads r fully, failing once more than limit bytes arrive.
// A zero limit is unlimited.
func readInput(r io.Reader, limit uint64) (string, error) {
	if limit == 0 {
		data, err := io.ReadAll(r)
		return string(data), err
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return "", err
	}
	if uint64(len(data)) > limit {
		return "", fmt.Errorf("input exceeds %s", humanize.Bytes(limit))
	}
	return string(data), nil
}

// parseSize parses a human readable size. Empty or "0" means unlimited.
func parseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	return humanize.ParseBytes(s)
}

// openReport creates the --report writer, or returns nil when no report was asked for.
func openReport(cmd *cobra.Command) (output.Writer, error) {
	formatStr, _ := cmd.Flags().GetString("report")
	if formatStr == "" {
		return nil, nil
	}
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		logger.Error("invalid report format", "format", formatStr, "error", err)
		return nil, err
	}

	dst := cmd.ErrOrStderr()
	if path, _ := cmd.Flags().GetString("report-file"); path != "" {
		f, err := os.Create(path) //#nosec G304 -- CLI tool writes to user-specified report file
		if err != nil {
			logger.Error("failed to create report file", "path", path, "error", err)
			return nil, err
		}
		cobra.OnFinalize(func() { _ = f.Close() })
		dst = f
	}
	return output.NewWriter(dst, format)
}
