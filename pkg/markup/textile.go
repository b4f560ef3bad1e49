package markup

import (
	"strconv"
	"strings"
)

var textileInline = map[string]string{
	"strong": "*",
	"b":      "*",
	"em":     "_",
	"i":      "_",
	"u":      "+",
	"ins":    "+",
	"del":    "-",
	"s":      "-",
	"strike": "-",
	"code":   "@",
	"kbd":    "@",
	"samp":   "@",
	"cite":   "??",
	"sup":    "^",
	"sub":    "~",
}

var textileDecorations = decorations{
	"underline":    "+",
	"line-through": "-",
}

var textileAlign = map[string]string{
	"left":    "<",
	"right":   ">",
	"center":  "=",
	"justify": "<>",
}

var textileVAlign = map[string]string{
	"top":    "^",
	"middle": "-",
	"bottom": "~",
}

func textileRules() ruleSet {
	rs := commonRules()
	inlineRules(rs, textileInline)
	rs["span"] = spanRule(textileDecorations, "%")
	rs["a"] = rule{render: textileLink}
	rs["img"] = rule{render: func(w *walker, n Node, _ string, _ state) (string, error) {
		return w.textileImage(n), nil
	}}
	rs["pre"] = rule{block: true, enter: state.pre, render: textilePre}
	rs["table"] = rule{block: true, opaque: true, render: textileTable}
	rs["p"] = rule{block: true, render: textileBlock("p")}
	for i := 1; i <= 6; i++ {
		tag := "h" + strconv.Itoa(i)
		rs[tag] = rule{block: true, render: textileBlock(tag)}
	}
	rs["ul"] = listRule(textileMarker("*"))
	rs["ol"] = listRule(textileMarker("#"))
	return rs
}

func textileMarker(symbol string) func(state, int) (string, state) {
	return func(st state, _ int) (string, state) {
		m := st.listMarker + symbol
		return m + " ", st.item(m)
	}
}

// textileBlock renders p and headings with their alignment and style
// modifiers. A paragraph without modifiers is written as plain text.
func textileBlock(signature string) renderFunc {
	return func(w *walker, n Node, inner string, st state) (string, error) {
		if inner == "" {
			return "", nil
		}
		mods := ""
		if st.quoteDepth == 0 && !st.inCell && st.listDepth == 0 {
			decl := w.styles.Parse(attr(n, "style"))
			align, _ := decl.Get("text-align")
			if align == "" {
				align = attr(n, "align")
			}
			mods = textileAlign[strings.ToLower(strings.TrimSpace(align))] + FormatStyle(Textile, decl)
		}
		if signature == "p" && mods == "" {
			return inner, nil
		}
		return signature + mods + ". " + inner, nil
	}
}

func textileLink(w *walker, n Node, inner string, _ state) (string, error) {
	href := strings.TrimSpace(attr(n, "href"))
	if href == "" {
		return inner, nil
	}
	if img := soleImage(n); img != nil {
		token := w.textileImage(img)
		target := w.links.ResolveSource(href).URL
		if token == "" || target == w.imageSource(img) {
			return token, nil
		}
		return token + ":" + target, nil
	}
	t := w.links.ResolveLink(href, linkText(n))
	if t.Kind == Autolink {
		return t.URL, nil
	}
	if strings.TrimSpace(inner) == "" {
		return t.URL, nil
	}
	suffix := parenTitle(attr(n, "title")) + `":` + t.URL
	return surround(`"`, suffix, inner), nil
}

// textileImage renders !{style}src(alt)!.
func (w *walker) textileImage(img Node) string {
	src := w.imageSource(img)
	if src == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("!")
	sb.WriteString(FormatStyle(Textile, w.styles.Parse(attr(img, "style"))))
	sb.WriteString(src)
	if alt := imageAlt(img); alt != "" {
		sb.WriteString("(" + alt + ")")
	}
	sb.WriteString("!")
	return sb.String()
}

func textilePre(_ *walker, n Node, inner string, _ state) (string, error) {
	if strings.TrimSpace(inner) == "" {
		return "", nil
	}
	lang := codeLanguage(n, false)
	return `<pre><code class="` + lang + `">` + "\n" + codeBody(inner) + "</code></pre>", nil
}
