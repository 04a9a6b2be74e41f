package matcher

import (
	"github.com/harrison/findid/internal/document"
	"github.com/harrison/findid/internal/models"
)

// ShortID matches any element carrying a ShortID attribute.
type ShortID struct{}

func (ShortID) Mode() models.SearchMode { return models.ModeShortID }

func (ShortID) Match(doc *document.Document, query string) ([]models.MatchInfo, []error) {
	var matches []models.MatchInfo
	for _, e := range carriers(doc, models.AttrShortID) {
		shortID, _ := e.Attr(models.AttrShortID)
		if !contains(shortID, query) {
			continue
		}
		matches = append(matches, models.MatchInfo{
			Tag:     e.Tag,
			Name:    e.AttrOr(models.AttrName, models.Placeholder),
			ID:      e.AttrOr(models.AttrID, models.Placeholder),
			ShortID: shortID,
			File:    doc.Path,
		})
	}
	return matches, nil
}
