// Package document renders a source file, its highlighted markup and its
// canonical relations into one self-contained interactive HTML page.
package document

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ziadkadry99/relview/internal/digest"
	"github.com/ziadkadry99/relview/internal/highlight"
	"github.com/ziadkadry99/relview/internal/relation"
	"github.com/ziadkadry99/relview/internal/selection"
)

//go:embed assets/engine.js
var engineScript string

//go:embed assets/style.css
var pageStyle string

// Input is everything that varies between documents. Source is laid out
// without highlighting when Markup carries no HTML.
type Input struct {
	Source    string
	Relations []relation.Relation
	Title     string
	Filename  string
	Digest    digest.Digest
	Markup    highlight.Markup
}

// Options controls the fixed parts of a document.
type Options struct {
	CSS            string
	Script         string
	RelationsLabel string
	SourceLabel    string
}

// DefaultOptions returns the embedded stylesheet and engine script.
func DefaultOptions() Options {
	return Options{
		CSS:            pageStyle,
		Script:         engineScript,
		RelationsLabel: "Relations",
		SourceLabel:    "Source",
	}
}

// Renderer builds documents with a fixed set of options.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer. Empty option fields take their defaults.
func NewRenderer(opts Options) *Renderer {
	def := DefaultOptions()
	if opts.CSS == "" {
		opts.CSS = def.CSS
	}
	if opts.Script == "" {
		opts.Script = def.Script
	}
	if opts.RelationsLabel == "" {
		opts.RelationsLabel = def.RelationsLabel
	}
	if opts.SourceLabel == "" {
		opts.SourceLabel = def.SourceLabel
	}
	return &Renderer{opts: opts}
}

// Render writes the document for in to w. Nothing is written if building
// the document fails.
func (r *Renderer) Render(w io.Writer, in Input) error {
	doc, err := r.Build(in)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return fmt.Errorf("rendering document: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

// RenderString renders the document for in into a string.
func (r *Renderer) RenderString(in Input) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render renders in with the default options.
func Render(w io.Writer, in Input) error {
	return NewRenderer(Options{}).Render(w, in)
}

// Build returns the document node tree for in.
func (r *Renderer) Build(in Input) (*html.Node, error) {
	var code []*html.Node
	if in.Markup.HTML == "" {
		code = []*html.Node{plainSource(in.Source)}
	} else {
		var err error
		if code, err = highlight.ParseFragment(in.Markup.HTML); err != nil {
			return nil, fmt.Errorf("embedding highlighted source: %w", err)
		}
	}

	title := in.Title
	if title == "" {
		title = in.Filename
	}

	head := elem(atom.Head,
		elem(atom.Meta, attrs("charset", "utf-8")),
		elem(atom.Meta, attrs("name", "viewport", "content", "width=device-width, initial-scale=1")),
		elem(atom.Title, text(title)),
		elem(atom.Style, text(in.Markup.CSS+"\n"+r.opts.CSS)),
	)

	topbar := elem(atom.Header, attrs("class", "topbar"),
		elem(atom.Span, attrs("class", "filename"), text(in.Filename)),
		elem(atom.Span, attrs("class", "active-relation", "id", "active-relation")),
	)
	if in.Digest.Hex != "" {
		topbar.AppendChild(elem(atom.Code, attrs("class", "digest", "title", "Source digest"), text(in.Digest.String())))
	}

	source := elem(atom.Div, attrs("class", "code"))
	for _, n := range code {
		source.AppendChild(n)
	}

	body := elem(atom.Body,
		topbar,
		elem(atom.Main, attrs("class", "panes"),
			elem(atom.Section, attrs("class", "pane relations"),
				elem(atom.H2, text(r.opts.RelationsLabel)),
				relationTable(in.Relations),
			),
			elem(atom.Section, attrs("class", "pane source"),
				elem(atom.H2, text(r.opts.SourceLabel)),
				source,
			),
		),
		elem(atom.Script, text(r.opts.Script)),
	)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(elem(atom.Html, attrs("lang", "en"), head, body))
	return doc, nil
}

func relationTable(rels []relation.Relation) *html.Node {
	header := elem(atom.Tr,
		elem(atom.Th, attrs("data-key", "id"), text("Relation")),
		elem(atom.Th, attrs("data-key", "scope"), text("Scope")),
		elem(atom.Th, attrs("data-key", "start", "data-numeric", ""), text("Start")),
		elem(atom.Th, attrs("data-key", "end", "data-numeric", ""), text("End")),
	)

	tbody := elem(atom.Tbody)
	for _, rel := range rels {
		tbody.AppendChild(row(rel))
	}

	return elem(atom.Table, attrs("id", "relations"),
		elem(atom.Thead, header),
		tbody,
	)
}

func row(rel relation.Relation) *html.Node {
	s, e := rel.Span.Start, rel.Span.End
	return elem(atom.Tr,
		attrs(
			"class", selection.RowClass,
			"tabindex", "0",
			selection.AttrStart, strconv.Itoa(s.Line),
			selection.AttrEnd, strconv.Itoa(e.Line),
			selection.AttrStartCol, strconv.Itoa(s.Column),
			selection.AttrEndCol, strconv.Itoa(e.Column),
			selection.AttrID, rel.Relation,
			selection.AttrScope, rel.Scope,
		),
		elem(atom.Td, text(rel.Relation)),
		elem(atom.Td, text(rel.Scope)),
		elem(atom.Td, attrs("class", "pos"), text(position(s))),
		elem(atom.Td, attrs("class", "pos"), text(position(e))),
	)
}

func position(p relation.Position) string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

type attrList []html.Attribute

func attrs(kv ...string) attrList {
	out := make(attrList, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

// elem builds an element. Children may be nodes or attribute lists.
func elem(a atom.Atom, children ...any) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for _, c := range children {
		switch c := c.(type) {
		case attrList:
			n.Attr = append(n.Attr, c...)
		case *html.Node:
			n.AppendChild(c)
		}
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// plainSource lays out source without highlighting, using the same line
// structure as highlighted markup.
func plainSource(source string) *html.Node {
	code := elem(atom.Code)
	source = strings.ReplaceAll(source, "\r\n", "\n")
	if source != "" {
		for i, line := range strings.Split(strings.TrimSuffix(source, "\n"), "\n") {
			cl := elem(atom.Span, attrs("class", "cl", "id", highlight.LineID(i+1)))
			if line != "" {
				cl.AppendChild(text(line))
			}
			code.AppendChild(elem(atom.Span, attrs("class", "line"), cl, text("\n")))
		}
	}
	return elem(atom.Pre, attrs("class", "plain"), code)
}
