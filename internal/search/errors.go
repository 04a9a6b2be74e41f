package search

import (
	"errors"
	"fmt"

	"github.com/harrison/findid/internal/document"
	"github.com/harrison/findid/internal/matcher"
)

// Stage is the phase of per-file processing where a FileError happened.
type Stage int

const (
	// StageDiscover covers entries the directory walk could not visit.
	StageDiscover Stage = iota
	// StageRead covers files that could not be opened or read.
	StageRead
	// StageParse covers files that are not well-formed.
	StageParse
	// StageMatch covers occurrences whose surroundings prevent building a record.
	StageMatch
)

// String returns the string representation of Stage.
func (s Stage) String() string {
	switch s {
	case StageDiscover:
		return "discover"
	case StageRead:
		return "read"
	case StageParse:
		return "parse"
	case StageMatch:
		return "match"
	default:
		return "unknown"
	}
}

// FileError is a non-fatal problem isolated to one file. The search goes on
// and the error is reported alongside the matches of every other file.
type FileError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e FileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// classify picks the stage for an error returned by document.ParseFile.
func classify(err error) Stage {
	var sErr *matcher.StructureError
	switch {
	case errors.Is(err, document.ErrMalformedDocument):
		return StageParse
	case errors.As(err, &sErr):
		return StageMatch
	default:
		return StageRead
	}
}
