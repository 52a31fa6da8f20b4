package walker

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxFileSize is the maximum source size to render (1 MB).
const DefaultMaxFileSize int64 = 1 << 20

// DefaultRelationsSuffix names the sidecar relations file of a source:
// "src/lib.rs" pairs with "src/lib.rs.relations.json".
const DefaultRelationsSuffix = ".relations.json"

// FileInfo describes one source file discovered during traversal.
type FileInfo struct {
	Path          string // Absolute path on disk.
	RelPath       string // Slash-separated path relative to the root directory.
	Size          int64  // File size in bytes.
	RelationsPath string // Absolute path of the sidecar, empty when there is none.
}

// Paired reports whether the source has a relations sidecar.
func (f FileInfo) Paired() bool { return f.RelationsPath != "" }

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir         string   // Root directory to walk.
	Include         []string // Glob patterns; only matching sources are included.
	Exclude         []string // Glob patterns; matching sources and directories are excluded.
	OutputDir       string   // Rendered documents go here; never walked.
	MaxFileSize     int64    // Sources larger than this are skipped (0 = use default).
	RelationsSuffix string   // Sidecar suffix (empty = DefaultRelationsSuffix).
}

// Walk traverses the directory tree rooted at config.RootDir and returns
// every source file that passes filtering, sorted by relative path. Sidecar
// files are never returned as sources; a source's sidecar is recorded in
// RelationsPath. Binary and oversized files are skipped, include/exclude
// patterns and the root .gitignore are honoured, and the output directory
// is never entered.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", root)
	}

	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	suffix := config.RelationsSuffix
	if suffix == "" {
		suffix = DefaultRelationsSuffix
	}

	filter, err := NewFilter(config.Include, config.Exclude, config.OutputDir)
	if err != nil {
		return nil, err
	}

	// Load .gitignore patterns from root if present.
	gitignorePatterns := loadGitignore(filepath.Join(root, ".gitignore"))

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if path != root && filter.SkipDir(path, relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		// Only process regular files.
		if !d.Type().IsRegular() || strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		if matchesGitignore(relPath, gitignorePatterns) || !filter.Keep(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}
		if isBinary(path) {
			return nil
		}

		files = append(files, FileInfo{
			Path:          path,
			RelPath:       filepath.ToSlash(relPath),
			Size:          info.Size(),
			RelationsPath: sidecar(path, suffix),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// sidecar returns the relations file paired with path, or "" if there is
// no such regular file.
func sidecar(path, suffix string) string {
	candidate := path + suffix
	info, err := os.Stat(candidate)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return candidate
}

// isBinary reads the first 512 bytes of a file and checks for NUL bytes,
// which is a simple but effective heuristic for binary content.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true // treat unreadable files as binary
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}

	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}

// loadGitignore reads a .gitignore file and returns its non-empty,
// non-comment lines as patterns.
func loadGitignore(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// matchesGitignore checks if a relative path matches any gitignore pattern.
// Directory patterns (trailing slash) match files beneath that directory.
func matchesGitignore(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	parts := strings.Split(normalized, "/")

	for _, pattern := range patterns {
		dirOnly := strings.HasSuffix(pattern, "/")
		pattern = strings.Trim(pattern, "/")
		if pattern == "" {
			continue
		}

		if !strings.Contains(pattern, "/") {
			// Match against path components; a directory pattern may not
			// match the file name itself.
			candidates := parts
			if dirOnly {
				candidates = parts[:len(parts)-1]
			}
			for _, part := range candidates {
				if matched, _ := filepath.Match(pattern, part); matched {
					return true
				}
			}
			continue
		}

		// Pattern contains a slash; match the full path or a prefix of it.
		if matched, _ := filepath.Match(pattern, normalized); matched && !dirOnly {
			return true
		}
		if strings.HasPrefix(normalized, pattern+"/") {
			return true
		}
	}
	return false
}
