package search

import (
	"sort"
	"time"

	"github.com/harrison/findid/internal/models"
)

// Result is the complete, freshly allocated outcome of one Search call.
// Nothing in it is shared with the engine or with other calls.
type Result struct {
	ID         string // Run identifier (UUID)
	Query      string // Query as given by the caller
	Root       string
	Mode       models.SearchMode
	Matches    []models.MatchInfo
	Files      int // Documents discovered
	FileErrors []FileError
	StartedAt  time.Time
	Duration   time.Duration
}

// FailedFiles returns the number of distinct files that were skipped because
// they could not be read or parsed. Match-stage errors leave the rest of their
// file's matches in place and discovery errors name no file, so neither counts.
func (r *Result) FailedFiles() int {
	seen := make(map[string]bool, len(r.FileErrors))
	for _, fe := range r.FileErrors {
		if fe.Path == "" || (fe.Stage != StageRead && fe.Stage != StageParse) {
			continue
		}
		seen[fe.Path] = true
	}
	return len(seen)
}

// Sorted returns a copy of the matches ordered by file, then by their order
// in the file. Search itself promises no cross-file order.
func (r *Result) Sorted() []models.MatchInfo {
	out := make([]models.MatchInfo, len(r.Matches))
	copy(out, r.Matches)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].File < out[j].File
	})
	return out
}
