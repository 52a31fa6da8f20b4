package relation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleRelation(t *testing.T) {
	doc := `[{"relations":[{"relation":"fn","scope":"a","span":{"start":{"line":1,"column":0},"end":{"line":1,"column":9}}}]}]`

	rels, stats, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, rels, 1)

	assert.Equal(t, Relation{
		Relation: "fn",
		Scope:    "a",
		Span:     Span{Start: Position{Line: 1, Column: 0}, End: Position{Line: 1, Column: 9}},
	}, rels[0])
	assert.Equal(t, Stats{Records: 1, Relations: 1, Dropped: 0}, stats)
}

func TestParse_FlattensMultipleRecords(t *testing.T) {
	doc := `[
		{"relations":[{"relation":"b","span":{"start":{"line":5},"end":{"line":6}}}]},
		{"relations":[{"relation":"a","span":{"start":{"line":2},"end":{"line":3}}}]}
	]`

	rels, stats, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, "a", rels[0].Relation)
	assert.Equal(t, "b", rels[1].Relation)
	assert.Equal(t, 2, stats.Records)
}

func TestParse_DropsMissingLines(t *testing.T) {
	doc := `[{"relations":[
		{"relation":"no-start-line","span":{"start":{"column":1},"end":{"line":2,"column":3}}},
		{"relation":"no-end-line","span":{"start":{"line":1,"column":1},"end":{"column":3}}},
		{"relation":"no-span"},
		{"relation":"null-line","span":{"start":{"line":null},"end":{"line":2}}},
		{"relation":"string-line","span":{"start":{"line":"1"},"end":{"line":2}}},
		{"relation":"zero-line","span":{"start":{"line":0},"end":{"line":2}}},
		{"relation":"kept","span":{"start":{"line":1},"end":{"line":2}}}
	]}]`

	rels, stats, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "kept", rels[0].Relation)
	assert.Equal(t, 6, stats.Dropped)
}

func TestParse_ColumnDefaults(t *testing.T) {
	doc := `[{"relations":[{"span":{"start":{"line":3},"end":{"line":4,"column":"x"}}},
		{"relation":"neg","span":{"start":{"line":5,"column":-2},"end":{"line":5,"column":7.0}}}]}]`

	rels, _, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, rels, 2)

	assert.Equal(t, 0, rels[0].Span.Start.Column)
	assert.Equal(t, 0, rels[0].Span.End.Column)
	assert.Equal(t, 0, rels[1].Span.Start.Column)
	assert.Equal(t, 7, rels[1].Span.End.Column)
}

func TestParse_TextCoercion(t *testing.T) {
	doc := `[{"relations":[
		{"relation":42,"scope":true,"span":{"start":{"line":1},"end":{"line":1}}},
		{"relation":null,"span":{"start":{"line":2},"end":{"line":2}}},
		{"relation":{"k": [1, 2]},"scope":1.50,"span":{"start":{"line":3},"end":{"line":3}}}
	]}]`

	rels, _, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, rels, 3)

	assert.Equal(t, "42", rels[0].Relation)
	assert.Equal(t, "true", rels[0].Scope)
	assert.Equal(t, "", rels[1].Relation)
	assert.Equal(t, "", rels[1].Scope)
	assert.Equal(t, `{"k":[1,2]}`, rels[2].Relation)
	assert.Equal(t, "1.50", rels[2].Scope)
}

func TestParse_MalformedRecordsAreDropped(t *testing.T) {
	doc := `[
		5,
		"text",
		{"relations": "not-a-list"},
		{"other": 1},
		{"relations": [7, {"span": "bad"}, {"span": {"start": {"line": 1}, "end": {"line": 1}}}]}
	]`

	rels, stats, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, 5, stats.Records)
	// 3 malformed records plus 2 unaddressable relations.
	assert.Equal(t, 5, stats.Dropped)
}

func TestParse_MalformedDocument(t *testing.T) {
	for _, doc := range []string{``, `{}`, `null`, `[{"relations":[}`, `"x"`} {
		_, _, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, ErrMalformedDocument, "document %q", doc)
	}
}

func TestParse_EmptyArray(t *testing.T) {
	rels, stats, err := Parse([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, rels)
	assert.Equal(t, Stats{}, stats)
}

func TestLoad_Unreadable(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rels.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"relations":[{"relation":"x","span":{"start":{"line":2},"end":{"line":1}}}]}]`), 0o644))

	rels, _, err := Load(path)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	// Reverse-ordered spans are preserved as given.
	assert.Equal(t, 2, rels[0].Span.Start.Line)
	assert.Equal(t, 1, rels[0].Span.End.Line)
}

func TestSort_OrderAndStability(t *testing.T) {
	rels := []Relation{
		{Relation: "z", Scope: "first", Span: span(2, 4)},
		{Relation: "a", Span: span(3, 3)},
		{Relation: "m", Span: span(2, 3)},
		{Relation: "z", Scope: "second", Span: span(2, 4)},
		{Relation: "b", Span: span(2, 4)},
		{Relation: "a", Span: span(1, 9)},
	}

	Sort(rels)

	got := make([]string, len(rels))
	for i, r := range rels {
		got[i] = r.Relation + ":" + r.Scope
	}
	assert.Equal(t, []string{"a:", "m:", "b:", "z:first", "z:second", "a:"}, got)
	assert.Equal(t, 1, rels[0].Span.Start.Line)
	assert.Equal(t, 3, rels[5].Span.Start.Line)
}

func TestSort_Idempotent(t *testing.T) {
	rels := []Relation{
		{Relation: "b", Scope: "1", Span: span(1, 1)},
		{Relation: "a", Scope: "2", Span: span(1, 1)},
		{Relation: "b", Scope: "3", Span: span(1, 1)},
		{Relation: "a", Scope: "4", Span: span(0, 2)},
	}
	Sort(rels)
	once := append([]Relation(nil), rels...)
	Sort(rels)
	assert.Equal(t, once, rels)
}

func TestNormalize_Direct(t *testing.T) {
	records := []Record{
		{Relations: []RawRelation{{
			Relation: Text{Value: "r", Present: true},
			Span: RawSpan{
				Start: RawPosition{Line: OptionalInt{Value: 4, Present: true, Valid: true}},
				End:   RawPosition{Line: OptionalInt{Value: 4, Present: true, Valid: true}},
			},
		}}},
		{malformed: true},
	}

	rels, stats := Normalize(records)
	require.Len(t, rels, 1)
	assert.Equal(t, "r", rels[0].Relation)
	assert.Equal(t, Stats{Records: 2, Relations: 1, Dropped: 1}, stats)
}

func span(start, end int) Span {
	return Span{Start: Position{Line: start}, End: Position{Line: end}}
}
