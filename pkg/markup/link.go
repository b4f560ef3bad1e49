package markup

import (
	"net/url"
	"regexp"
	"strings"
)

// TargetKind classifies a link or image target.
type TargetKind int

const (
	// External is any URL passed through unchanged.
	External TargetKind = iota
	// Autolink is a link whose visible text is the target itself.
	Autolink
	// Attachment is a locally hosted upload reduced to its file name.
	Attachment
)

// String returns the kind name.
func (k TargetKind) String() string {
	switch k {
	case Autolink:
		return "autolink"
	case Attachment:
		return "attachment"
	default:
		return "external"
	}
}

// Target is a resolved link or image reference.
type Target struct {
	Kind TargetKind
	URL  string
}

// LinkResolver classifies anchor and image targets.
type LinkResolver struct {
	attachment *regexp.Regexp
	autolinks  bool
}

// NewLinkResolver builds a resolver. attachment must have one capture group
// holding the file name.
func NewLinkResolver(attachment *regexp.Regexp, collapseAutolinks bool) *LinkResolver {
	return &LinkResolver{attachment: attachment, autolinks: collapseAutolinks}
}

// ResolveLink classifies an anchor href given its visible text.
func (r *LinkResolver) ResolveLink(href, text string) Target {
	if r.autolinks && text != "" {
		if t, ok := autolink(href, text); ok {
			return t
		}
	}
	return r.ResolveSource(href)
}

// ResolveSource classifies an image source or a link target without text.
func (r *LinkResolver) ResolveSource(src string) Target {
	if name, ok := r.attachmentName(src); ok {
		return Target{Kind: Attachment, URL: name}
	}
	return Target{Kind: External, URL: src}
}

func (r *LinkResolver) attachmentName(raw string) (string, bool) {
	if r.attachment == nil || raw == "" {
		return "", false
	}
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path = u.Path
	}
	m := r.attachment.FindStringSubmatch(path)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

func autolink(href, text string) (Target, bool) {
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") {
		if text == href[len("mailto:"):] {
			return Target{Kind: Autolink, URL: text}, true
		}
		return Target{}, false
	}
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return Target{}, false
	}
	if text == href {
		return Target{Kind: Autolink, URL: text}, true
	}
	// Differs only by a single trailing slash: prefer the form without it.
	switch {
	case href == text+"/":
		return Target{Kind: Autolink, URL: text}, true
	case text == href+"/":
		return Target{Kind: Autolink, URL: href}, true
	}
	return Target{}, false
}
