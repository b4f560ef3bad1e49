// Package commands implements the CLI commands for markupconv.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/markupconv/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "markupconv",
	Short: "Convert WYSIWYG editor HTML to Textile or Markdown",
	Long: `markupconv turns the HTML produced by a rich text editor back into
the wiki markup it was edited from: Textile or Markdown.

Input can be local files, stdin or fetched pages.

Examples:
  # Convert a file to Textile
  markupconv convert page.html

  # Convert stdin to Markdown
  cat page.html | markupconv convert -d markdown

  # Convert the content area of a wiki page
  markupconv convert -u "https://example.com/wiki/Start" --selector "div.wiki"

  # Print a JSON report with sanitizer statistics
  markupconv convert page.html --report json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.Options{
			Level: viper.GetString("log_level"),
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("json_logs"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.markupconv.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Bool("json-logs", false, "write logs as JSON")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("json_logs", flags.Lookup("json-logs"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".markupconv")
		viper.SetConfigType("yaml")
	}

	setDefaults(viper.GetViper())

	// Environment variables, e.g. MARKUPCONV_DIALECT or MARKUPCONV_SANITIZE_ENABLED
	viper.SetEnvPrefix("MARKUPCONV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
