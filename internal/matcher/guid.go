package matcher

import (
	"github.com/harrison/findid/internal/document"
	"github.com/harrison/findid/internal/models"
)

// Guid matches any element carrying an ID attribute.
type Guid struct{}

func (Guid) Mode() models.SearchMode { return models.ModeGuid }

func (Guid) Match(doc *document.Document, query string) ([]models.MatchInfo, []error) {
	var matches []models.MatchInfo
	for _, e := range carriers(doc, models.AttrID) {
		id, _ := e.Attr(models.AttrID)
		if !contains(id, query) {
			continue
		}
		matches = append(matches, models.MatchInfo{
			Tag:     e.Tag,
			Name:    e.AttrOr(models.AttrName, models.Placeholder),
			ID:      id,
			ShortID: e.AttrOr(models.AttrShortID, models.Placeholder),
			File:    doc.Path,
		})
	}
	return matches, nil
}
