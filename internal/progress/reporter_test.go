package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ziadkadry99/relview/internal/relation"
)

func TestNewReporter_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.IsType(t, &LogReporter{}, NewReporter(&bytes.Buffer{}))
}

func TestNewReporter_Terminal(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	assert.IsType(t, &BarReporter{}, NewReporter(&bytes.Buffer{}))
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &LogReporter{w: &buf}

	r.Begin(2, 1)
	r.Document("src/lexer.rs", relation.Stats{Records: 4, Relations: 3, Dropped: 2}, nil)
	r.Document("src/lib.rs", relation.Stats{}, errors.New("malformed relations"))
	r.End()

	want := "[1/2] ok   src/lexer.rs (3 relations)\n" +
		"[2/2] FAIL src/lib.rs: malformed relations\n" +
		"1 of 2 documents rendered, 3 relations (2 dropped), 1 sources without relations\n"
	assert.Equal(t, want, buf.String())
}

func TestLogReporter_BeginResets(t *testing.T) {
	var buf bytes.Buffer
	r := &LogReporter{w: &buf}

	r.Begin(1, 0)
	r.Document("a.txt", relation.Stats{Relations: 5}, nil)
	r.End()

	buf.Reset()
	r.Begin(0, 0)
	r.End()
	assert.Equal(t, "0 of 0 documents rendered, 0 relations (0 dropped)\n", buf.String())
}

func TestBarReporter_ListsFailuresAfterBar(t *testing.T) {
	var buf bytes.Buffer
	r := &BarReporter{w: &buf}

	// Events before Begin must not panic.
	r.Document("early.rs", relation.Stats{}, nil)

	r.Begin(2, 0)
	r.Document("src/lib.rs", relation.Stats{Relations: 1}, nil)
	r.Document("src/bad.rs", relation.Stats{}, errors.New("boom"))
	r.End()

	out := buf.String()
	assert.Contains(t, out, "FAIL src/bad.rs: boom\n")
	assert.Contains(t, out, "1 of 2 documents rendered, 1 relations (0 dropped)\n")
	assert.NotContains(t, out, "early.rs")
}
