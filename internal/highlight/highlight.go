// Package highlight turns source text into syntax-highlighted markup in which
// every line is individually addressable.
package highlight

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var (
	// ErrUnknownLanguage is returned for a language no lexer is registered for.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrUnknownStyle is returned for an unregistered highlighting style.
	ErrUnknownStyle = errors.New("unknown style")
)

// Markup is highlighted source: line-addressable HTML plus the stylesheet
// its classes refer to.
type Markup struct {
	HTML     string `json:"html"`
	CSS      string `json:"css"`
	Language string `json:"language"`
	Lines    int    `json:"lines"`
}

// Highlighter renders source text for a resolved language name.
type Highlighter interface {
	Highlight(source, language string) (Markup, error)
}

// Options configures the chroma highlighter.
type Options struct {
	Style       string
	TabWidth    int
	LineNumbers bool
}

// Key returns a stable textual form of the options, used for cache keys.
func (o Options) Key() string {
	return fmt.Sprintf("style=%s;tab=%d;ln=%t", o.Style, o.TabWidth, o.LineNumbers)
}

// Chroma is a Highlighter backed by github.com/alecthomas/chroma.
type Chroma struct {
	opts  Options
	style *chroma.Style
}

// NewChroma validates the options and returns a ready highlighter.
func NewChroma(opts Options) (*Chroma, error) {
	if opts.Style == "" {
		opts.Style = "github"
	}
	style, ok := styles.Registry[strings.ToLower(opts.Style)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownStyle, opts.Style)
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = 4
	}
	return &Chroma{opts: opts, style: style}, nil
}

// Options returns the effective options.
func (c *Chroma) Options() Options { return c.opts }

// Highlight tokenises source with the named lexer and returns markup whose
// code lines carry the ids "LC-<n>" (1-based) and whose line numbers carry
// "L-<n>".
func (c *Chroma) Highlight(source, language string) (Markup, error) {
	lexer := lexerFor(language)
	if lexer == nil {
		return Markup{}, fmt.Errorf("%w %q", ErrUnknownLanguage, language)
	}
	lexer = chroma.Coalesce(lexer)

	text := strings.ReplaceAll(source, "\r\n", "\n")
	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		return Markup{}, fmt.Errorf("tokenising source: %w", err)
	}

	formatter := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.TabWidth(c.opts.TabWidth),
		chromahtml.WithLineNumbers(c.opts.LineNumbers),
		chromahtml.LineNumbersInTable(true),
		chromahtml.WithLinkableLineNumbers(true, LineNumberPrefix),
	)

	var body bytes.Buffer
	if err := formatter.Format(&body, c.style, it); err != nil {
		return Markup{}, fmt.Errorf("formatting source: %w", err)
	}
	var css bytes.Buffer
	if err := formatter.WriteCSS(&css, c.style); err != nil {
		return Markup{}, fmt.Errorf("writing stylesheet: %w", err)
	}

	annotated, lines, err := AnnotateLines(body.String())
	if err != nil {
		return Markup{}, err
	}

	return Markup{
		HTML:     annotated,
		CSS:      css.String(),
		Language: lexer.Config().Name,
		Lines:    lines,
	}, nil
}

func lexerFor(name string) chroma.Lexer {
	if name == "" || strings.EqualFold(name, lexers.Fallback.Config().Name) {
		return lexers.Fallback
	}
	return lexers.Get(name)
}
