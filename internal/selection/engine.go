// Package selection maps relation spans onto rendered documents. It follows
// the same algorithm as the script embedded in every document, operating on
// a parsed node tree instead of a live DOM.
package selection

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/relview/internal/highlight"
	"github.com/ziadkadry99/relview/internal/relation"
)

// EndOfLine is a column beyond the end of any line. Positions computed for it
// clamp to the end of the line's text.
const EndOfLine = math.MaxInt

// Point is a boundary in the document. For a text node Offset counts code
// points into its data; for an element it is a child index.
type Point struct {
	Node   *html.Node
	Offset int
}

// Range is a contiguous selection between two points.
type Range struct {
	Start Point
	End   Point
}

// Collapsed reports whether the range is a caret.
func (r Range) Collapsed() bool { return r.Start == r.End }

// Engine resolves spans against one parsed document and keeps track of the
// active selection. It is not safe for concurrent use.
type Engine struct {
	doc      *html.Node
	lines    map[int]*html.Node
	current  *Range
	scrolled *html.Node
}

// New indexes the line elements of doc.
func New(doc *html.Node) *Engine {
	e := &Engine{doc: doc, lines: make(map[int]*html.Node)}
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		id, ok := attr(n, "id")
		if !ok || !strings.HasPrefix(id, highlight.LineIDPrefix) {
			return true
		}
		line, err := strconv.Atoi(strings.TrimPrefix(id, highlight.LineIDPrefix))
		if err == nil && line > 0 {
			if _, dup := e.lines[line]; !dup {
				e.lines[line] = n
			}
		}
		return true
	})
	return e
}

// Parse reads an HTML document and returns an engine for it.
func Parse(r io.Reader) (*Engine, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return New(doc), nil
}

// Document returns the underlying node tree.
func (e *Engine) Document() *html.Node { return e.doc }

// Lines returns the number of addressable lines.
func (e *Engine) Lines() int { return len(e.lines) }

// ResolveLine returns the element of the given 1-based line.
func (e *Engine) ResolveLine(line int) (*html.Node, bool) {
	n, ok := e.lines[line]
	return n, ok
}

// PositionInLine walks the text of line in document order and returns the
// point column code points into it. Columns past the end clamp to the end
// of the line; negative columns count as 0.
func PositionInLine(line *html.Node, column int) Point {
	remaining := max(column, 0)
	var found *Point
	walk(line, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type != html.TextNode {
			return true
		}
		size := utf8.RuneCountInString(n.Data)
		if remaining <= size {
			found = &Point{Node: n, Offset: remaining}
			return false
		}
		remaining -= size
		return true
	})
	if found != nil {
		return *found
	}
	return EndOfLineOf(line)
}

// EndOfLineOf returns the point after the last character of line. A line
// without text yields a point after its last child.
func EndOfLineOf(line *html.Node) Point {
	var last *html.Node
	walk(line, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			last = n
		}
		return true
	})
	if last != nil {
		return Point{Node: last, Offset: utf8.RuneCountInString(last.Data)}
	}
	children := 0
	for c := line.FirstChild; c != nil; c = c.NextSibling {
		children++
	}
	return Point{Node: line, Offset: children}
}

// Bounds is a span with its lines ordered and each column attached to the
// line it belongs to.
type Bounds struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// Normalize orders the lines of span. Each column follows its line; on a
// single line reversed columns are swapped.
func Normalize(span relation.Span) Bounds {
	b := Bounds{
		StartLine: min(span.Start.Line, span.End.Line),
		EndLine:   max(span.Start.Line, span.End.Line),
		StartCol:  span.Start.Column,
		EndCol:    span.End.Column,
	}
	if b.StartLine != span.Start.Line {
		b.StartCol = span.End.Column
	}
	if b.EndLine != span.End.Line {
		b.EndCol = span.Start.Column
	}
	if b.StartLine == b.EndLine && b.StartCol > b.EndCol {
		b.StartCol, b.EndCol = b.EndCol, b.StartCol
	}
	return b
}

// SelectRange selects span as normalized by Normalize, so reversed spans
// select the same text as their forward form. If either line is missing
// nothing changes and ok is false.
func (e *Engine) SelectRange(span relation.Span) (Range, bool) {
	b := Normalize(span)
	startLine, startCol := b.StartLine, b.StartCol
	endLine, endCol := b.EndLine, b.EndCol

	startEl, ok := e.ResolveLine(startLine)
	if !ok {
		return Range{}, false
	}
	endEl, ok := e.ResolveLine(endLine)
	if !ok {
		return Range{}, false
	}

	r := Range{
		Start: PositionInLine(startEl, startCol),
		End:   PositionInLine(endEl, endCol),
	}

	e.Clear()
	e.current = &r
	e.scrolled = startEl
	return r, true
}

// Clear drops the active selection. It is safe to call without one.
func (e *Engine) Clear() {
	e.current = nil
	e.scrolled = nil
}

// Selection returns the active selection.
func (e *Engine) Selection() (Range, bool) {
	if e.current == nil {
		return Range{}, false
	}
	return *e.current, true
}

// ScrolledTo returns the line element last brought into view.
func (e *Engine) ScrolledTo() *html.Node { return e.scrolled }

// SelectedText returns the text of the active selection.
func (e *Engine) SelectedText() string {
	r, ok := e.Selection()
	if !ok {
		return ""
	}
	return e.Text(r)
}

// Text returns the document text covered by r. A range whose end precedes
// its start is collapsed, as a DOM range would be.
func (e *Engine) Text(r Range) string {
	var all []rune
	start, end := -1, -1
	var visit func(n *html.Node)
	mark := func(n *html.Node, child int) {
		if r.Start.Node == n && r.Start.Offset == child && start < 0 {
			start = len(all)
		}
		if r.End.Node == n && r.End.Offset == child && end < 0 {
			end = len(all)
		}
	}
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			if r.Start.Node == n {
				start = len(all) + r.Start.Offset
			}
			if r.End.Node == n {
				end = len(all) + r.End.Offset
			}
			all = append(all, []rune(n.Data)...)
			return
		}
		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			mark(n, i)
			visit(c)
			i++
		}
		mark(n, i)
	}
	visit(e.doc)

	if start < 0 || end < 0 || end <= start {
		return ""
	}
	return string(all[start:min(end, len(all))])
}

func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
