package highlight

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// LineIDPrefix prefixes the id of every rendered code line.
	LineIDPrefix = "LC-"
	// LineNumberPrefix prefixes the id of every line number anchor.
	LineNumberPrefix = "L-"

	codeLineClass = "cl"
)

// LineID returns the element id of the given 1-based line.
func LineID(line int) string {
	return LineIDPrefix + strconv.Itoa(line)
}

// AnnotateLines parses highlighter output, gives each code line element an
// id of the form "LC-<n>" and moves the line's trailing newline outside the
// element so its text equals the plain source line. It returns the rewritten
// markup and the number of lines found.
func AnnotateLines(markup string) (string, int, error) {
	nodes, err := ParseFragment(markup)
	if err != nil {
		return "", 0, err
	}

	line := 0
	for _, n := range nodes {
		walk(n, func(el *html.Node) bool {
			if el.Type != html.ElementNode || el.DataAtom != atom.Span || !hasClass(el, codeLineClass) {
				return true
			}
			line++
			setAttr(el, "id", LineID(line))
			detachTrailingNewline(el)
			return false
		})
	}

	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return "", 0, fmt.Errorf("rendering markup: %w", err)
		}
	}
	return b.String(), line, nil
}

// ParseFragment parses markup as the content of a <body> element.
func ParseFragment(markup string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}
	return nodes, nil
}

func detachTrailingNewline(el *html.Node) {
	last := lastText(el)
	if last == nil || !strings.HasSuffix(last.Data, "\n") {
		return
	}
	last.Data = strings.TrimSuffix(last.Data, "\n")
	if last.Data == "" {
		last.Parent.RemoveChild(last)
	}
	nl := &html.Node{Type: html.TextNode, Data: "\n"}
	if el.Parent != nil {
		el.Parent.InsertBefore(nl, el.NextSibling)
	}
}

func lastText(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.TextNode && c.Data != "" {
			return c
		}
		if c.Type == html.ElementNode {
			if t := lastText(c); t != nil {
				return t
			}
		}
	}
	return nil
}

// walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, f := range strings.Fields(a.Val) {
			if f == class {
				return true
			}
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
