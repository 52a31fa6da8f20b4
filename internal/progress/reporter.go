// Package progress reports the outcome of each document in a batch run.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/ziadkadry99/relview/internal/relation"
)

// Reporter receives batch events in order: Begin once, Document for each
// paired source, End once.
type Reporter interface {
	// Begin announces how many sources will render and how many were
	// passed over for lacking a relations sidecar.
	Begin(paired, skipped int)
	// Document records the outcome of one source. stats is zero when err
	// is non-nil.
	Document(relPath string, stats relation.Stats, err error)
	End()
}

// NewReporter returns a LogReporter when running under CI and a
// BarReporter otherwise. Both write to w.
func NewReporter(w io.Writer) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &LogReporter{w: w}
	}
	return &BarReporter{w: w}
}

// tally tracks counts shared by both reporters.
type tally struct {
	paired, skipped int
	done            int
	relations       int
	dropped         int
	failures        []failure
}

type failure struct {
	path string
	err  error
}

func (t *tally) record(relPath string, stats relation.Stats, err error) {
	t.done++
	if err != nil {
		t.failures = append(t.failures, failure{relPath, err})
		return
	}
	t.relations += stats.Relations
	t.dropped += stats.Dropped
}

func (t *tally) summary(w io.Writer) {
	fmt.Fprintf(w, "%d of %d documents rendered, %d relations (%d dropped)",
		t.done-len(t.failures), t.paired, t.relations, t.dropped)
	if t.skipped > 0 {
		fmt.Fprintf(w, ", %d sources without relations", t.skipped)
	}
	fmt.Fprintln(w)
}

// LogReporter prints one line per document, for CI logs.
type LogReporter struct {
	w io.Writer
	tally
}

func (r *LogReporter) Begin(paired, skipped int) {
	r.tally = tally{paired: paired, skipped: skipped}
}

func (r *LogReporter) Document(relPath string, stats relation.Stats, err error) {
	r.record(relPath, stats, err)
	if err != nil {
		fmt.Fprintf(r.w, "[%d/%d] FAIL %s: %v\n", r.done, r.paired, relPath, err)
		return
	}
	fmt.Fprintf(r.w, "[%d/%d] ok   %s (%d relations)\n", r.done, r.paired, relPath, stats.Relations)
}

func (r *LogReporter) End() { r.summary(r.w) }

// BarReporter draws a progress bar that names the document being written,
// then lists failures once the bar is cleared.
type BarReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
	tally
}

func (r *BarReporter) Begin(paired, skipped int) {
	r.tally = tally{paired: paired, skipped: skipped}
	r.bar = progressbar.NewOptions(paired,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription("documents"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *BarReporter) Document(relPath string, stats relation.Stats, err error) {
	r.record(relPath, stats, err)
	if r.bar != nil {
		r.bar.Describe(relPath)
		_ = r.bar.Set(r.done)
	}
}

func (r *BarReporter) End() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	for _, f := range r.failures {
		fmt.Fprintf(r.w, "FAIL %s: %v\n", f.path, f.err)
	}
	r.summary(r.w)
}
