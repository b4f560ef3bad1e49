package markup

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Config defines the tunable parts of the conversion engine.
type Config struct {
	// StyleProperties is the allow-list of inline CSS properties kept by the
	// style parser. Everything else in a style attribute is dropped.
	StyleProperties []string `json:"style_properties" yaml:"style_properties" mapstructure:"style_properties" validate:"required,min=1,dive,required"`

	// ColorProperties are normalized to lowercase hex (rgb() is converted).
	ColorProperties []string `json:"color_properties" yaml:"color_properties" mapstructure:"color_properties" validate:"dive,required"`

	// AttachmentPattern matches locally hosted uploads. The first capture
	// group is the file name that replaces the whole URL in the output.
	AttachmentPattern string `json:"attachment_pattern" yaml:"attachment_pattern" mapstructure:"attachment_pattern" validate:"required"`

	// MaxDepth is the recursion ceiling. Deeper trees fail with ErrTooDeep.
	MaxDepth int `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth" validate:"min=1,max=100000"`

	// CollapseAutolinks renders links whose text equals the target as the bare URL.
	CollapseAutolinks bool `json:"collapse_autolinks" yaml:"collapse_autolinks" mapstructure:"collapse_autolinks"`

	// MarkdownImageLinks renders linked images as [![alt](src)](href).
	// When false only the image token is emitted.
	MarkdownImageLinks bool `json:"markdown_image_links" yaml:"markdown_image_links" mapstructure:"markdown_image_links"`
}

// DefaultAttachmentPattern matches Redmine style attachment download paths.
const DefaultAttachmentPattern = `/attachments/download/\d+/([^/]+)$`

// DefaultConfig returns the configuration used by ToTextile and ToMarkdown.
func DefaultConfig() *Config {
	return &Config{
		StyleProperties: []string{
			"color",
			"background-color",
			"width",
			"height",
			"text-align",
			"vertical-align",
			"text-decoration",
		},
		ColorProperties:    []string{"color", "background-color"},
		AttachmentPattern:  DefaultAttachmentPattern,
		MaxDepth:           512,
		CollapseAutolinks:  true,
		MarkdownImageLinks: true,
	}
}

// Validate checks the configuration, including the attachment pattern.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid markup config: %w", err)
	}
	if _, err := compileAttachmentPattern(c.AttachmentPattern); err != nil {
		return err
	}
	return nil
}

func compileAttachmentPattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid attachment pattern %q: %w", pattern, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("attachment pattern %q needs a capture group for the file name", pattern)
	}
	return re, nil
}
