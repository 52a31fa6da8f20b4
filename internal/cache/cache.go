// Package cache memoises highlighter output in SQLite so repeated renders of
// unchanged sources skip tokenising.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ziadkadry99/relview/internal/db"
	"github.com/ziadkadry99/relview/internal/highlight"
)

// Stats counts cache lookups.
type Stats struct {
	Hits   int
	Misses int
}

// Highlighter wraps another highlighter with a persistent cache.
type Highlighter struct {
	next    highlight.Highlighter
	store   *db.DB
	variant string
	logger  *slog.Logger
	stats   Stats
}

// New wraps next. variant identifies everything besides the language and
// source that changes next's output, typically highlight.Options.Key.
func New(store *db.DB, next highlight.Highlighter, variant string, logger *slog.Logger) *Highlighter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Highlighter{next: next, store: store, variant: variant, logger: logger}
}

// Key returns the cache key of one highlight request.
func Key(variant, language, source string) string {
	h := sha256.New()
	for _, part := range []string{variant, language, source} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Highlight returns cached markup when present and otherwise delegates and
// stores the result. Cache failures are logged and never fail the request.
func (c *Highlighter) Highlight(source, language string) (highlight.Markup, error) {
	key := Key(c.variant, language, source)

	m, err := c.get(key)
	switch {
	case err == nil:
		c.stats.Hits++
		return m, nil
	case !errors.Is(err, sql.ErrNoRows):
		c.logger.Warn("highlight cache read failed", "error", err)
	}
	c.stats.Misses++

	m, err = c.next.Highlight(source, language)
	if err != nil {
		return highlight.Markup{}, err
	}
	if err := c.put(key, m); err != nil {
		c.logger.Warn("highlight cache write failed", "error", err)
	}
	return m, nil
}

// Stats returns hit and miss counts since creation.
func (c *Highlighter) Stats() Stats { return c.stats }

func (c *Highlighter) get(key string) (highlight.Markup, error) {
	var m highlight.Markup
	err := c.store.QueryRow(
		`SELECT language, html, css, line_count FROM highlights WHERE cache_key = ?`, key,
	).Scan(&m.Language, &m.HTML, &m.CSS, &m.Lines)
	if err != nil {
		return highlight.Markup{}, err
	}
	return m, nil
}

func (c *Highlighter) put(key string, m highlight.Markup) error {
	_, err := c.store.Exec(
		`INSERT OR REPLACE INTO highlights (cache_key, language, html, css, line_count) VALUES (?, ?, ?, ?, ?)`,
		key, m.Language, m.HTML, m.CSS, m.Lines,
	)
	if err != nil {
		return fmt.Errorf("storing highlight: %w", err)
	}
	return nil
}
