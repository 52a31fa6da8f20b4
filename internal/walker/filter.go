package walker

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which directories a batch walk descends into and which
// sources it keeps. Patterns are doublestar globs matched against the
// slash-separated path relative to the root, or against the base name.
// An exclude pattern that matches a directory ("**/vendor/**" matches
// "vendor" and "a/vendor") prunes the whole subtree.
type Filter struct {
	include []string
	exclude []string
	output  string // absolute output directory, never walked
}

// NewFilter validates the patterns. outputDir may be empty; a relative
// outputDir is resolved against the working directory.
func NewFilter(include, exclude []string, outputDir string) (*Filter, error) {
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return nil, fmt.Errorf("walker: invalid pattern %q", p)
		}
	}
	f := &Filter{include: include, exclude: exclude}
	if outputDir != "" {
		abs, err := filepath.Abs(outputDir)
		if err != nil {
			return nil, fmt.Errorf("walker: resolve output dir: %w", err)
		}
		f.output = abs
	}
	return f, nil
}

// SkipDir reports whether the directory at path (relPath from the root)
// should not be entered.
func (f *Filter) SkipDir(path, relPath string) bool {
	if f.output != "" && filepath.Clean(path) == f.output {
		return true
	}
	return matchesAny(relPath, f.exclude)
}

// Keep reports whether the source at relPath passes the include and
// exclude patterns. No include patterns means everything is included.
func (f *Filter) Keep(relPath string) bool {
	if len(f.include) > 0 && !matchesAny(relPath, f.include) {
		return false
	}
	return !matchesAny(relPath, f.exclude)
}

func matchesAny(relPath string, patterns []string) bool {
	name := filepath.ToSlash(relPath)
	base := filepath.Base(name)
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if doublestar.MatchUnvalidated(p, name) || doublestar.MatchUnvalidated(p, base) {
			return true
		}
	}
	return false
}
