package markup

import (
	"strconv"
	"strings"
)

// tableCell is a converted td or th with its layout metadata.
type tableCell struct {
	header  bool
	colspan int
	rowspan int
	align   string
	valign  string
	style   StyleDeclaration
	text    string
}

// tableRows collects the rows of a table, looking through thead, tbody and
// tfoot. Rows without cells are dropped.
func (w *walker) tableRows(table Node, st state) ([][]tableCell, error) {
	var rows [][]tableCell
	var walk func(n Node, st state) error
	walk = func(n Node, st state) error {
		for _, c := range n.Children() {
			switch c.Tag() {
			case "thead", "tbody", "tfoot":
				if err := walk(c, st.descend()); err != nil {
					return err
				}
			case "tr":
				row, err := w.tableRow(c, st.descend())
				if err != nil {
					return err
				}
				if len(row) > 0 {
					rows = append(rows, row)
				}
			}
		}
		return nil
	}
	return rows, walk(table, st)
}

func (w *walker) tableRow(tr Node, st state) ([]tableCell, error) {
	var cells []tableCell
	cst := st.descend().cell()
	for _, c := range tr.Children() {
		tag := c.Tag()
		if tag != "td" && tag != "th" {
			continue
		}
		text, _, err := w.children(c, cst, true)
		if err != nil {
			return nil, err
		}
		decl := w.styles.Parse(attr(c, "style"))
		align, _ := decl.Get("text-align")
		if align == "" {
			align = attr(c, "align")
		}
		valign, _ := decl.Get("vertical-align")
		if valign == "" {
			valign = attr(c, "valign")
		}
		cells = append(cells, tableCell{
			header:  tag == "th",
			colspan: span(attr(c, "colspan")),
			rowspan: span(attr(c, "rowspan")),
			align:   strings.ToLower(strings.TrimSpace(align)),
			valign:  strings.ToLower(strings.TrimSpace(valign)),
			style:   decl,
			text:    text,
		})
	}
	return cells, nil
}

// span reads a colspan or rowspan value. Missing or invalid values are 1.
func span(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func textileTable(w *walker, n Node, _ string, st state) (string, error) {
	rows, err := w.tableRows(n, st)
	if err != nil || len(rows) == 0 {
		return "", err
	}
	lines := make([]string, 0, len(rows)+1)
	if style := FormatStyle(Textile, w.styles.Parse(attr(n, "style"))); style != "" {
		lines = append(lines, "table"+style+".")
	}
	for _, row := range rows {
		var sb strings.Builder
		for _, c := range row {
			sb.WriteString("|")
			sb.WriteString(textileCellModifiers(c))
			sb.WriteString(" ")
			sb.WriteString(c.text)
			sb.WriteString(" ")
		}
		sb.WriteString("|")
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n"), nil
}

// textileCellModifiers composes header, span, alignment and style modifiers
// in that order, followed by the closing dot. Plain cells get none.
func textileCellModifiers(c tableCell) string {
	var sb strings.Builder
	if c.header {
		sb.WriteString("_")
	}
	if c.colspan > 1 {
		sb.WriteString(`\` + strconv.Itoa(c.colspan))
	}
	if c.rowspan > 1 {
		sb.WriteString("/" + strconv.Itoa(c.rowspan))
	}
	sb.WriteString(textileAlign[c.align])
	sb.WriteString(textileVAlign[c.valign])
	sb.WriteString(FormatStyle(Textile, c.style))
	if sb.Len() == 0 {
		return ""
	}
	sb.WriteString(".")
	return sb.String()
}

// markdownTable renders a pipe table. Every row is padded with empty cells to
// the widest row so spans and missing cells keep the columns aligned.
func markdownTable(w *walker, n Node, _ string, st state) (string, error) {
	rows, err := w.tableRows(n, st)
	if err != nil || len(rows) == 0 {
		return "", err
	}
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, markdownRow(rows[0], width))
	lines = append(lines, "|"+strings.Repeat(" --- |", width))
	for _, row := range rows[1:] {
		lines = append(lines, markdownRow(row, width))
	}
	return strings.Join(lines, "\n"), nil
}

func markdownRow(row []tableCell, width int) string {
	texts := make([]string, width)
	for i, c := range row {
		texts[i] = strings.ReplaceAll(c.text, "|", `\|`)
	}
	return "| " + strings.Join(texts, " | ") + " |"
}
