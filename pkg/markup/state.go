package markup

// state is the ambient context of one dispatch call. It is passed by value
// and children always receive a derived copy.
type state struct {
	dialect    Dialect
	depth      int  // recursion depth, checked against Config.MaxDepth
	quoteDepth int  // enclosing blockquotes
	inCell     bool // inside a table cell: blocks are joined by a single newline
	inPre      bool // inside preformatted text: whitespace is kept, tags ignored
	listDepth  int
	listMarker string // Textile marker of the enclosing list, e.g. "*#"
}

func (s state) descend() state {
	s.depth++
	return s
}

func (s state) quoted() state {
	s.quoteDepth++
	return s
}

func (s state) cell() state {
	s.inCell = true
	return s
}

func (s state) pre() state {
	s.inPre = true
	return s
}

func (s state) item(marker string) state {
	s.listDepth++
	s.listMarker = marker
	return s
}

// blockSeparator joins sibling blocks.
func (s state) blockSeparator() string {
	if s.inCell || s.listDepth > 0 {
		return "\n"
	}
	return "\n\n"
}
