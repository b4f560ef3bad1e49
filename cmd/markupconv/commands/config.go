package commands

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jmylchreest/markupconv/pkg/convert"
	"github.com/jmylchreest/markupconv/pkg/markup"
)

// settings is the resolved conversion configuration.
//
// Config file layout (~/.markupconv.yaml):
//
//	dialect: textile
//	markup:
//	  attachment_pattern: '/attachments/download/\d+/([^/]+)$'
//	  max_depth: 512
//	  markdown_image_links: true
//	sanitize:
//	  enabled: true
//	  remove_selectors: [".toolbar"]
type settings struct {
	Dialect  markup.Dialect
	Markup   *markup.Config
	Sanitize *convert.SanitizeConfig // nil disables sanitizing
}

// setDefaults registers every known key so that environment variables and
// partial config files resolve against the library defaults.
func setDefaults(v *viper.Viper) {
	m := markup.DefaultConfig()
	v.SetDefault("dialect", markup.Textile.String())
	v.SetDefault("markup.style_properties", m.StyleProperties)
	v.SetDefault("markup.color_properties", m.ColorProperties)
	v.SetDefault("markup.attachment_pattern", m.AttachmentPattern)
	v.SetDefault("markup.max_depth", m.MaxDepth)
	v.SetDefault("markup.collapse_autolinks", m.CollapseAutolinks)
	v.SetDefault("markup.markdown_image_links", m.MarkdownImageLinks)

	s := convert.DefaultSanitizeConfig()
	v.SetDefault("sanitize.enabled", true)
	v.SetDefault("sanitize.strip_scripts", s.StripScripts)
	v.SetDefault("sanitize.strip_styles", s.StripStyles)
	v.SetDefault("sanitize.strip_comments", s.StripComments)
	v.SetDefault("sanitize.strip_iframes", s.StripIframes)
	v.SetDefault("sanitize.strip_event_handlers", s.StripEventHandlers)
	v.SetDefault("sanitize.strip_hidden", s.StripHidden)
	v.SetDefault("sanitize.unwrap_noscript", s.UnwrapNoscript)
	v.SetDefault("sanitize.remove_selectors", []string{})
	v.SetDefault("sanitize.keep_selectors", []string{})
}

// loadSettings resolves and validates the configuration held by v.
func loadSettings(v *viper.Viper) (*settings, error) {
	dialect, err := markup.ParseDialect(v.GetString("dialect"))
	if err != nil {
		return nil, err
	}

	cfg := markup.DefaultConfig()
	if err := v.UnmarshalKey("markup", cfg); err != nil {
		return nil, fmt.Errorf("failed to read markup config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &settings{Dialect: dialect, Markup: cfg}
	if v.GetBool("sanitize.enabled") {
		san := convert.DefaultSanitizeConfig()
		if err := v.UnmarshalKey("sanitize", san); err != nil {
			return nil, fmt.Errorf("failed to read sanitize config: %w", err)
		}
		if err := san.Validate(); err != nil {
			return nil, err
		}
		s.Sanitize = san
	}
	return s, nil
}

// options returns the convert options for these settings.
func (s *settings) options() []convert.Option {
	opts := []convert.Option{convert.WithConfig(s.Markup)}
	if s.Sanitize == nil {
		return append(opts, convert.WithoutSanitizer())
	}
	return append(opts, convert.WithSanitizer(s.Sanitize))
}
