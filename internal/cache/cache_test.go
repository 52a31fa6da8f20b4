package cache

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/relview/internal/db"
	"github.com/ziadkadry99/relview/internal/highlight"
)

type countingHighlighter struct {
	calls int
	err   error
}

func (c *countingHighlighter) Highlight(source, language string) (highlight.Markup, error) {
	c.calls++
	if c.err != nil {
		return highlight.Markup{}, c.err
	}
	return highlight.Markup{HTML: "<pre>" + source + "</pre>", CSS: ".x{}", Language: language, Lines: 1}, nil
}

func newStore(t *testing.T) *db.DB {
	t.Helper()
	store, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestHighlighter_HitsAfterFirstCall(t *testing.T) {
	next := &countingHighlighter{}
	c := New(newStore(t), next, "style=github", quiet())

	first, err := c.Highlight("fn a() {}", "Rust")
	require.NoError(t, err)
	second, err := c.Highlight("fn a() {}", "Rust")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
}

func TestHighlighter_KeyedOnEveryInput(t *testing.T) {
	store := newStore(t)
	next := &countingHighlighter{}

	a := New(store, next, "style=github", quiet())
	_, err := a.Highlight("x", "Go")
	require.NoError(t, err)
	_, err = a.Highlight("y", "Go")
	require.NoError(t, err)
	_, err = a.Highlight("x", "Rust")
	require.NoError(t, err)

	b := New(store, next, "style=monokai", quiet())
	_, err = b.Highlight("x", "Go")
	require.NoError(t, err)

	assert.Equal(t, 4, next.calls)
}

func TestHighlighter_ErrorsAreNotCached(t *testing.T) {
	next := &countingHighlighter{err: highlight.ErrUnknownLanguage}
	c := New(newStore(t), next, "", quiet())

	_, err := c.Highlight("x", "klingon")
	assert.ErrorIs(t, err, highlight.ErrUnknownLanguage)
	_, err = c.Highlight("x", "klingon")
	assert.ErrorIs(t, err, highlight.ErrUnknownLanguage)
	assert.Equal(t, 2, next.calls)
}

func TestHighlighter_WrapsChroma(t *testing.T) {
	h, err := highlight.NewChroma(highlight.Options{LineNumbers: true})
	require.NoError(t, err)
	c := New(newStore(t), h, h.Options().Key(), quiet())

	m1, err := c.Highlight("fn a() {}\n", "rust")
	require.NoError(t, err)
	m2, err := c.Highlight("fn a() {}\n", "rust")
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
	assert.Equal(t, 1, m2.Lines)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b", "c"), Key("a", "b", "c"))
	assert.NotEqual(t, Key("ab", "", "c"), Key("a", "b", "c"))
	assert.Len(t, Key("", "", ""), 64)
}
