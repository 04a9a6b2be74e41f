// Package matcher extracts match records from parsed documents. Each search
// mode has its own Matcher; all of them compare identifiers by case-insensitive
// substring containment.
package matcher

import (
	"fmt"
	"strings"

	"github.com/harrison/findid/internal/document"
	"github.com/harrison/findid/internal/models"
)

// Matcher walks one document and returns the records matching query.
// query must already be lower-cased (see NormalizeQuery). Structural problems
// with individual occurrences are returned as errors next to the matches that
// could be built; one bad occurrence never hides the others.
type Matcher interface {
	Mode() models.SearchMode
	Match(doc *document.Document, query string) ([]models.MatchInfo, []error)
}

// StructureError reports an occurrence whose surrounding document shape does
// not allow a record to be built.
type StructureError struct {
	Mode   models.SearchMode
	Tag    string // tag of the matched element
	Value  string // matched identifier
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s match <%s> %q: %s", e.Mode, e.Tag, e.Value, e.Reason)
}

// For returns the matcher for mode.
func For(mode models.SearchMode) (Matcher, error) {
	switch mode {
	case models.ModeMediaID:
		return MediaID{}, nil
	case models.ModeGuid:
		return Guid{}, nil
	case models.ModeShortID:
		return ShortID{}, nil
	default:
		return nil, fmt.Errorf("no matcher for search mode %s", mode)
	}
}

// NormalizeQuery lower-cases a raw query once per search.
func NormalizeQuery(q string) string {
	return strings.ToLower(q)
}

// carriers returns the elements that have attr, in document order.
func carriers(doc *document.Document, attr string) []*document.Element {
	return doc.FindAll(func(e *document.Element) bool { return e.HasAttr(attr) })
}

// contains is the single comparison rule shared by every mode.
func contains(value, query string) bool {
	return strings.Contains(strings.ToLower(value), query)
}
