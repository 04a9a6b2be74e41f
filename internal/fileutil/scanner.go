package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Extensions is a list of file extensions to include (e.g., ".wwu")
	Extensions []string
	// Recursive enables recursive directory scanning
	Recursive bool
	// ExcludeDirs is a list of directory names to skip (e.g., ".git", "Originals")
	ExcludeDirs []string
	// SkipHidden skips directories whose name starts with "."
	SkipHidden bool
	// CaseSensitiveExt matches Extensions exactly instead of ignoring case
	CaseSensitiveExt bool
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files contains the absolute paths of all matched files
	Files []string
	// Errors contains non-fatal errors encountered while walking
	Errors []error
}

// fileFilter holds the compiled form of ScanOptions.
type fileFilter struct {
	extensions map[string]bool
	excluded   map[string]bool
	opts       ScanOptions
}

func newFileFilter(opts ScanOptions) *fileFilter {
	f := &fileFilter{
		extensions: make(map[string]bool, len(opts.Extensions)),
		excluded:   make(map[string]bool, len(opts.ExcludeDirs)),
		opts:       opts,
	}
	for _, ext := range opts.Extensions {
		f.extensions[f.normalize(ext)] = true
	}
	for _, name := range opts.ExcludeDirs {
		f.excluded[name] = true
	}
	return f
}

func (f *fileFilter) normalize(ext string) string {
	if f.opts.CaseSensitiveExt {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		return ext
	}
	return NormalizeExt(ext)
}

// skipDir decides whether a directory below the root is pruned.
func (f *fileFilter) skipDir(name string) bool {
	if f.excluded[name] {
		return true
	}
	if f.opts.SkipHidden && strings.HasPrefix(name, ".") {
		return true
	}
	return !f.opts.Recursive
}

// matchFile reports whether a file name passes the extension filter.
func (f *fileFilter) matchFile(name string) bool {
	if len(f.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	if !f.opts.CaseSensitiveExt {
		ext = strings.ToLower(ext)
	}
	return f.extensions[ext]
}

// NormalizeExt lower-cases an extension and makes sure it starts with a dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// walker walks one root, following symlinked directories. visited holds the
// resolved path of every directory entered so link cycles end.
type walker struct {
	filter  *fileFilter
	result  *ScanResult
	visited map[string]bool
}

// walk visits the real directory realDir and reports its files under dir,
// the path the caller reached it by.
func (w *walker) walk(dir, realDir string) {
	w.visited[realDir] = true

	err := filepath.WalkDir(realDir, func(path string, d fs.DirEntry, walkErr error) error {
		shown := dir
		if rel, err := filepath.Rel(realDir, path); err == nil && rel != "." {
			shown = filepath.Join(dir, rel)
		}

		if walkErr != nil {
			// A failed ReadDir is reported after the directory itself was visited,
			// so recording it and moving on drops only that subtree.
			w.result.Errors = append(w.result.Errors, fmt.Errorf("error accessing %s: %w", shown, walkErr))
			return nil
		}

		if path == realDir {
			return nil
		}

		if d.IsDir() {
			if w.filter.skipDir(d.Name()) || w.visited[path] {
				return filepath.SkipDir
			}
			w.visited[path] = true
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if w.followLink(shown, path, d.Name()) {
				return nil
			}
		}

		if w.filter.matchFile(d.Name()) {
			w.result.Files = append(w.result.Files, shown)
		}
		return nil
	})
	if err != nil {
		w.result.Errors = append(w.result.Errors, fmt.Errorf("failed to walk %s: %w", dir, err))
	}
}

// followLink walks the target of a symlinked directory and reports true.
// Links to files, and dangling links, report false and are treated as files.
func (w *walker) followLink(shown, path, name string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	if w.filter.skipDir(name) {
		return true
	}

	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		w.result.Errors = append(w.result.Errors, fmt.Errorf("failed to resolve link %s: %w", shown, err))
		return true
	}
	if !w.visited[target] {
		w.walk(shown, target)
	}
	return true
}

// ScanDirectory scans a directory for files matching the provided options.
// Symlinked directories are followed; each real directory is visited once.
// Errors below the root are collected in ScanResult.Errors and the walk goes on.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", dir, err)
	}
	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", dir, err)
	}

	w := &walker{
		filter: newFileFilter(opts),
		result: &ScanResult{
			Files:  make([]string, 0),
			Errors: make([]error, 0),
		},
		visited: make(map[string]bool),
	}
	w.walk(absDir, realDir)

	sort.Strings(w.result.Files)

	return w.result, nil
}
