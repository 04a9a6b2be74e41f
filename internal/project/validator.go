// Package project validates search roots. A directory is a valid root when it
// directly contains at least one project marker file (".wproj" by default).
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMarkerExt is the extension of the file that certifies a project root.
const DefaultMarkerExt = ".wproj"

// Sentinel errors for the validation failure kinds. Use errors.Is to test.
var (
	ErrNotADirectory       = errors.New("not a directory")
	ErrUnreadableDirectory = errors.New("unreadable directory")
	ErrMissingMarkerFile   = errors.New("missing marker file")
)

// ValidationError describes why a path was rejected as a search root.
type ValidationError struct {
	Kind error  // One of the Err* sentinels
	Path string // Path as given by the caller
	Err  error  // Underlying filesystem error, if any
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrNotADirectory:
		return fmt.Sprintf("path '%s' is not a valid directory", e.Path)
	case ErrUnreadableDirectory:
		return fmt.Sprintf("failed to read directory '%s': %v", e.Path, e.Err)
	case ErrMissingMarkerFile:
		return fmt.Sprintf("no '%s' files found in directory '%s'", e.markerExt(), e.Path)
	default:
		return fmt.Sprintf("invalid search root '%s'", e.Path)
	}
}

func (e *ValidationError) markerExt() string {
	var m *markerErr
	if errors.As(e.Err, &m) {
		return m.ext
	}
	return DefaultMarkerExt
}

// Is lets errors.Is match against the Kind sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == e.Kind
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// markerErr carries the marker extension that was looked for.
type markerErr struct {
	ext string
}

func (m *markerErr) Error() string {
	return "no file with extension " + m.ext
}

// ValidatedPath is a directory that passed ValidateRoot. The check is advisory:
// the tree may change between validation and search.
type ValidatedPath struct {
	path string
}

// Path returns the validated directory path.
func (v ValidatedPath) Path() string {
	return v.path
}

// String implements fmt.Stringer.
func (v ValidatedPath) String() string {
	return v.path
}

// IsZero reports whether v was never produced by ValidateRoot.
func (v ValidatedPath) IsZero() bool {
	return v.path == ""
}

type options struct {
	markerExt string
}

// Option customizes ValidateRoot.
type Option func(*options)

// WithMarkerExt overrides the marker file extension. A leading dot is added if missing.
func WithMarkerExt(ext string) Option {
	return func(o *options) {
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.markerExt = ext
	}
}

// ValidateRoot checks that path is an existing directory holding at least one
// marker file as a direct child. Subdirectories are not searched for the marker.
func ValidateRoot(path string, opts ...Option) (ValidatedPath, error) {
	o := options{markerExt: DefaultMarkerExt}
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return ValidatedPath{}, &ValidationError{Kind: ErrNotADirectory, Path: path, Err: err}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return ValidatedPath{}, &ValidationError{Kind: ErrUnreadableDirectory, Path: path, Err: err}
	}

	for _, entry := range entries {
		if !hasMarkerExt(entry.Name(), o.markerExt) {
			continue
		}
		if isRegularFile(filepath.Join(path, entry.Name()), entry) {
			return ValidatedPath{path: filepath.Clean(path)}, nil
		}
	}

	return ValidatedPath{}, &ValidationError{
		Kind: ErrMissingMarkerFile,
		Path: path,
		Err:  &markerErr{ext: o.markerExt},
	}
}

// hasMarkerExt reports whether name ends in ext and has a stem before it.
// A bare dotfile such as ".wproj" has no extension, only a name.
func hasMarkerExt(name, ext string) bool {
	return filepath.Ext(name) == ext && strings.TrimSuffix(name, ext) != ""
}

// isRegularFile follows symlinks so a linked marker file still counts.
func isRegularFile(fullPath string, entry os.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(fullPath)
	return err == nil && info.Mode().IsRegular()
}
