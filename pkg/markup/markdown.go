package markup

import (
	"strconv"
	"strings"
)

// Tags missing here have no Markdown form and keep their plain text.
var markdownInline = map[string]string{
	"strong": "**",
	"b":      "**",
	"em":     "*",
	"i":      "*",
	"del":    "~~",
	"s":      "~~",
	"strike": "~~",
	"code":   "`",
	"kbd":    "`",
	"samp":   "`",
}

var markdownDecorations = decorations{
	"line-through": "~~",
}

func markdownRules() ruleSet {
	rs := commonRules()
	inlineRules(rs, markdownInline)
	rs["span"] = spanRule(markdownDecorations, "")
	rs["a"] = rule{render: markdownLink}
	rs["img"] = rule{render: func(w *walker, n Node, _ string, _ state) (string, error) {
		return w.markdownImage(n), nil
	}}
	rs["pre"] = rule{block: true, enter: state.pre, render: markdownPre}
	rs["table"] = rule{block: true, opaque: true, render: markdownTable}
	for i := 1; i <= 6; i++ {
		prefix := strings.Repeat("#", i) + " "
		rs["h"+strconv.Itoa(i)] = rule{block: true, render: func(_ *walker, _ Node, inner string, _ state) (string, error) {
			if inner == "" {
				return "", nil
			}
			return prefix + inner, nil
		}}
	}
	rs["ul"] = listRule(markdownMarker(false))
	rs["ol"] = listRule(markdownMarker(true))
	return rs
}

func markdownMarker(ordered bool) func(state, int) (string, state) {
	return func(st state, i int) (string, state) {
		indent := strings.Repeat("  ", st.listDepth)
		if ordered {
			return indent + strconv.Itoa(i+1) + ". ", st.item("")
		}
		return indent + "- ", st.item("")
	}
}

func markdownLink(w *walker, n Node, inner string, _ state) (string, error) {
	href := strings.TrimSpace(attr(n, "href"))
	if href == "" {
		return inner, nil
	}
	if img := soleImage(n); img != nil {
		token := w.markdownImage(img)
		target := w.links.ResolveSource(href).URL
		if token == "" || target == w.imageSource(img) || !w.config.MarkdownImageLinks {
			return token, nil
		}
		return "[" + token + "](" + target + ")", nil
	}
	t := w.links.ResolveLink(href, linkText(n))
	if t.Kind == Autolink {
		return t.URL, nil
	}
	if strings.TrimSpace(inner) == "" {
		return t.URL, nil
	}
	suffix := "](" + t.URL + ")"
	if title := strings.TrimSpace(attr(n, "title")); title != "" {
		suffix = "](" + t.URL + ` "` + strings.ReplaceAll(title, `"`, `\"`) + `")`
	}
	return surround("[", suffix, inner), nil
}

// markdownImage renders ![alt](src).
func (w *walker) markdownImage(img Node) string {
	src := w.imageSource(img)
	if src == "" {
		return ""
	}
	return "![" + imageAlt(img) + "](" + src + ")"
}

func markdownPre(_ *walker, n Node, inner string, _ state) (string, error) {
	if strings.TrimSpace(inner) == "" {
		return "", nil
	}
	fence := "~~~"
	if lang := codeLanguage(n, true); lang != "" {
		fence += " " + lang
	}
	return fence + "\n" + codeBody(inner) + "~~~", nil
}
