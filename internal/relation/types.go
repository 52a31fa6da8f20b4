package relation

// Position is a location in source text. Line is 1-based, Column is a
// 0-based offset into the plain text of the line, counted in Unicode code
// points.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span delimits a region of source text. Start may come after End.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Relation is a named fact about a span of source text.
type Relation struct {
	Relation string `json:"relation"`
	Scope    string `json:"scope"`
	Span     Span   `json:"span"`
}

// Stats summarises a normalization pass.
type Stats struct {
	Records   int `json:"records"`   // top-level records seen
	Relations int `json:"relations"` // relations kept
	Dropped   int `json:"dropped"`   // relations or records discarded as unaddressable or malformed
}
