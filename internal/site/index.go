// Package site writes the index page that links every document of a batch run.
package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/ziadkadry99/relview/internal/digest"
	"github.com/ziadkadry99/relview/internal/relation"
)

// IndexFile is the name of the generated index page.
const IndexFile = "index.html"

// Entry is one row of the index.
type Entry struct {
	RelPath  string // source path relative to the batch root
	Document string // slash-separated document path relative to the index
	Language string
	Stats    relation.Stats
	Digest   digest.Digest
	Err      error // set when the source failed to render
}

// indexData holds the data passed to the index template.
type indexData struct {
	Title   string
	Content template.HTML
}

var indexTmpl = template.Must(template.New("index").Parse(indexTemplate))

// Markdown returns the index as a GitHub-flavoured Markdown document.
func Markdown(title string, entries []Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	rendered, failed := 0, 0
	for _, e := range entries {
		if e.Err != nil {
			failed++
		} else {
			rendered++
		}
	}
	fmt.Fprintf(&b, "%d rendered, %d failed.\n\n", rendered, failed)

	if len(entries) == 0 {
		return b.String()
	}

	b.WriteString("| File | Language | Relations | Dropped | Digest |\n")
	b.WriteString("|---|---|---:|---:|---|\n")
	for _, e := range entries {
		if e.Err != nil {
			fmt.Fprintf(&b, "| %s | - | - | - | failed: %s |\n", escape(e.RelPath), escape(e.Err.Error()))
			continue
		}
		fmt.Fprintf(&b, "| [%s](%s) | %s | %d | %d | `%s` |\n",
			escape(e.RelPath), link(e.Document), escape(e.Language),
			e.Stats.Relations, e.Stats.Dropped, e.Digest.String())
	}

	b.WriteString("\n## Files\n\n")
	BuildTree(entries).writeMarkdown(&b, 0)
	return b.String()
}

// Render converts the index to a self-contained HTML page.
func Render(w io.Writer, title string, entries []Entry) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(title, entries)), &body); err != nil {
		return fmt.Errorf("converting index markdown: %w", err)
	}

	if err := indexTmpl.Execute(w, indexData{Title: title, Content: template.HTML(body.String())}); err != nil {
		return fmt.Errorf("executing index template: %w", err)
	}
	return nil
}

// Write renders the index into dir/index.html.
func Write(dir, title string, entries []Entry) error {
	var buf bytes.Buffer
	if err := Render(&buf, title, entries); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, IndexFile), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}

// escape backslash-escapes Markdown punctuation so paths and messages render
// literally inside table cells.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r < 128 && strings.ContainsRune("\\`*_{}[]()<>#+-.!|~&\"'", r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func link(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0 auto; max-width: 960px; padding: 24px; color: #212529;
      font: 14px/1.5 -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; }
    table { border-collapse: collapse; width: 100%; }
    th, td { border-bottom: 1px solid #dee2e6; padding: 6px 10px; text-align: left; }
    th { background: #f8f9fa; }
    td code { color: #868e96; font-size: 12px; }
    a { color: #228be6; text-decoration: none; }
    a:hover { text-decoration: underline; }
  </style>
</head>
<body>
{{.Content}}
</body>
</html>
`
