package selection

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ziadkadry99/relview/internal/relation"
)

// Row attributes written by the document renderer.
const (
	AttrStart    = "data-start"
	AttrEnd      = "data-end"
	AttrStartCol = "data-start-col"
	AttrEndCol   = "data-end-col"
	AttrID       = "data-id"
	AttrScope    = "data-scope"

	RowClass = "rel-row"
)

var fragmentPattern = regexp.MustCompile(`^#?L-(\d+)(?:,(\d+))?$`)

// ParseFragment extracts the line range of a "L-<line>" or
// "L-<line>,<line>" fragment. A leading '#' is accepted.
func ParseFragment(fragment string) (start, end int, ok bool) {
	m := fragmentPattern.FindStringSubmatch(fragment)
	if m == nil {
		return 0, 0, false
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	end = start
	if m[2] != "" {
		if end, err = strconv.Atoi(m[2]); err != nil {
			return 0, 0, false
		}
	}
	return start, end, true
}

// ActivateFromFragment selects whole lines named by a URL fragment, in
// either order. Fragments that do not match are ignored.
func (e *Engine) ActivateFromFragment(fragment string) (Range, bool) {
	start, end, ok := ParseFragment(fragment)
	if !ok {
		return Range{}, false
	}
	return e.SelectRange(relation.Span{
		Start: relation.Position{Line: min(start, end), Column: 0},
		End:   relation.Position{Line: max(start, end), Column: EndOfLine},
	})
}

// ActivateFromRow selects the span stored on a relation table row. Rows whose
// line attributes do not parse are ignored. An unparsable start column counts
// as 0 and an unparsable end column as end of line.
func (e *Engine) ActivateFromRow(row *html.Node) (Range, bool) {
	startLine, ok := intAttr(row, AttrStart)
	if !ok {
		return Range{}, false
	}
	endLine, ok := intAttr(row, AttrEnd)
	if !ok {
		return Range{}, false
	}
	startCol, ok := intAttr(row, AttrStartCol)
	if !ok {
		startCol = 0
	}
	endCol, ok := intAttr(row, AttrEndCol)
	if !ok {
		endCol = EndOfLine
	}
	return e.SelectRange(relation.Span{
		Start: relation.Position{Line: startLine, Column: startCol},
		End:   relation.Position{Line: endLine, Column: endCol},
	})
}

// Rows returns the relation table rows in document order.
func (e *Engine) Rows() []*html.Node {
	var rows []*html.Node
	walk(e.doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr && hasClass(n, RowClass) {
			rows = append(rows, n)
			return false
		}
		return true
	})
	return rows
}

// RowAttr returns the value of a row attribute.
func RowAttr(row *html.Node, key string) string {
	v, _ := attr(row, key)
	return v
}

func intAttr(n *html.Node, key string) (int, bool) {
	v, ok := attr(n, key)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, f := range strings.Fields(v) {
		if f == class {
			return true
		}
	}
	return false
}
