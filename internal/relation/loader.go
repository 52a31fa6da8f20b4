// Package relation loads relation documents and turns them into the
// canonical, deterministically ordered sequence used for rendering.
package relation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

var (
	// ErrUnreadable is returned when the relations file cannot be read.
	ErrUnreadable = errors.New("relations file unreadable")
	// ErrMalformedDocument is returned when the document is not a JSON array.
	ErrMalformedDocument = errors.New("malformed relations document")
)

// Load reads and parses the relations document at path.
func Load(path string) ([]Relation, Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return Parse(data)
}

// Parse decodes a relations document and returns its canonical sequence.
// Only a document that is not a JSON array is an error; malformed entries
// inside it are dropped and counted in Stats.
func Parse(data []byte) ([]Relation, Stats, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, Stats{}, fmt.Errorf("%w: top-level value must be an array", ErrMalformedDocument)
	}
	var records []Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	rels, stats := Normalize(records)
	return rels, stats, nil
}

// Normalize flattens the relations of every record, applies field defaults,
// drops entries without an addressable start and end line, and sorts the
// result canonically.
func Normalize(records []Record) ([]Relation, Stats) {
	stats := Stats{Records: len(records)}
	var rels []Relation
	for _, rec := range records {
		if rec.Malformed() {
			stats.Dropped++
			continue
		}
		for _, raw := range rec.Relations {
			rel, ok := resolve(raw)
			if !ok {
				stats.Dropped++
				continue
			}
			rels = append(rels, rel)
		}
	}
	Sort(rels)
	stats.Relations = len(rels)
	return rels, stats
}

func resolve(raw RawRelation) (Relation, bool) {
	start, end := raw.Span.Start, raw.Span.End
	if !start.Line.Valid || !end.Line.Valid {
		return Relation{}, false
	}
	if start.Line.Value < 1 || end.Line.Value < 1 {
		return Relation{}, false
	}
	return Relation{
		Relation: raw.Relation.String(),
		Scope:    raw.Scope.String(),
		Span: Span{
			Start: Position{Line: start.Line.Value, Column: max(start.Column.Or(0), 0)},
			End:   Position{Line: end.Line.Value, Column: max(end.Column.Or(0), 0)},
		},
	}, true
}

// Sort orders rels by (start line, end line, relation). Ties keep their
// relative order, so sorting is idempotent.
func Sort(rels []Relation) {
	sort.SliceStable(rels, func(i, j int) bool {
		return Less(rels[i], rels[j])
	})
}

// Less reports whether a sorts before b in the canonical order.
func Less(a, b Relation) bool {
	if a.Span.Start.Line != b.Span.Start.Line {
		return a.Span.Start.Line < b.Span.Start.Line
	}
	if a.Span.End.Line != b.Span.End.Line {
		return a.Span.End.Line < b.Span.End.Line
	}
	return a.Relation < b.Relation
}
