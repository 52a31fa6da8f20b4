package relation

import (
	"bytes"
	"encoding/json"
	"math"
)

// maxExactFloat is the largest integer a JSON float can carry without loss.
const maxExactFloat = 1 << 53

// Record is one top-level object of a relations document. Decoding a Record
// never fails: anything that does not have the expected shape is remembered
// as malformed and dropped during normalization.
type Record struct {
	Relations []RawRelation
	malformed bool
}

// Malformed reports whether the record was not an object or carried a
// non-array "relations" field.
func (r Record) Malformed() bool { return r.malformed }

func (r *Record) UnmarshalJSON(data []byte) error {
	*r = Record{}
	var obj struct {
		Relations json.RawMessage `json:"relations"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		r.malformed = true
		return nil
	}
	if len(obj.Relations) == 0 || isNull(obj.Relations) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(obj.Relations, &items); err != nil {
		r.malformed = true
		return nil
	}
	r.Relations = make([]RawRelation, len(items))
	for i, item := range items {
		_ = json.Unmarshal(item, &r.Relations[i])
	}
	return nil
}

// RawRelation is a relation entry as it appears on the wire, with every field
// optional.
type RawRelation struct {
	Relation Text
	Scope    Text
	Span     RawSpan
}

func (r *RawRelation) UnmarshalJSON(data []byte) error {
	*r = RawRelation{}
	var obj struct {
		Relation json.RawMessage `json:"relation"`
		Scope    json.RawMessage `json:"scope"`
		Span     json.RawMessage `json:"span"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	r.Relation = decodeText(obj.Relation)
	r.Scope = decodeText(obj.Scope)
	if len(obj.Span) > 0 {
		_ = json.Unmarshal(obj.Span, &r.Span)
	}
	return nil
}

// RawSpan is the optional start/end pair of a RawRelation.
type RawSpan struct {
	Start RawPosition
	End   RawPosition
}

func (s *RawSpan) UnmarshalJSON(data []byte) error {
	*s = RawSpan{}
	var obj struct {
		Start json.RawMessage `json:"start"`
		End   json.RawMessage `json:"end"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	if len(obj.Start) > 0 {
		_ = json.Unmarshal(obj.Start, &s.Start)
	}
	if len(obj.End) > 0 {
		_ = json.Unmarshal(obj.End, &s.End)
	}
	return nil
}

// RawPosition holds an optional line and column.
type RawPosition struct {
	Line   OptionalInt
	Column OptionalInt
}

func (p *RawPosition) UnmarshalJSON(data []byte) error {
	*p = RawPosition{}
	var obj struct {
		Line   json.RawMessage `json:"line"`
		Column json.RawMessage `json:"column"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	p.Line = decodeInt(obj.Line)
	p.Column = decodeInt(obj.Column)
	return nil
}

// OptionalInt is an integer field that may be absent or hold a value that is
// not an integral number.
type OptionalInt struct {
	Value   int
	Present bool
	Valid   bool
}

// Or returns the value when valid and def otherwise.
func (o OptionalInt) Or(def int) int {
	if o.Valid {
		return o.Value
	}
	return def
}

// Text is a string field that may be absent or hold a non-string value.
type Text struct {
	Value   string
	Present bool
}

// String returns the field coerced to a string; absent fields are "".
func (t Text) String() string { return t.Value }

func decodeInt(data json.RawMessage) OptionalInt {
	if len(data) == 0 || isNull(data) {
		return OptionalInt{}
	}
	out := OptionalInt{Present: true}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return out
	}
	n, ok := v.(json.Number)
	if !ok {
		return out
	}
	if i, err := n.Int64(); err == nil {
		if i > math.MaxInt || i < math.MinInt {
			return out
		}
		out.Value, out.Valid = int(i), true
		return out
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloat {
		return out
	}
	out.Value, out.Valid = int(f), true
	return out
}

func decodeText(data json.RawMessage) Text {
	if len(data) == 0 || isNull(data) {
		return Text{}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return Text{Value: s, Present: true}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return Text{Value: string(bytes.TrimSpace(data)), Present: true}
	}
	return Text{Value: buf.String(), Present: true}
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
