package matcher

import (
	"github.com/harrison/findid/internal/document"
	"github.com/harrison/findid/internal/models"
)

// MediaID matches <MediaID ID="..."> elements and reports the element two
// levels up, which in a work unit is the sound or source owning the media.
type MediaID struct{}

func (MediaID) Mode() models.SearchMode { return models.ModeMediaID }

func (MediaID) Match(doc *document.Document, query string) ([]models.MatchInfo, []error) {
	var (
		matches []models.MatchInfo
		errs    []error
	)

	mediaIDs := doc.FindAll(func(e *document.Element) bool { return e.Tag == models.TagMediaID })
	for _, e := range mediaIDs {
		// An id-less MediaID compares as the placeholder, so "?" finds it.
		id := e.AttrOr(models.AttrID, models.Placeholder)
		if !contains(id, query) {
			continue
		}

		owner := e.Grandparent()
		if owner == nil {
			reason := "no grandparent element"
			if e.Parent == nil {
				reason = "no parent element"
			}
			errs = append(errs, &StructureError{
				Mode:   models.ModeMediaID,
				Tag:    e.Tag,
				Value:  id,
				Reason: reason,
			})
			continue
		}

		matches = append(matches, models.MatchInfo{
			Tag:       owner.Tag,
			Name:      owner.AttrOr(models.AttrName, models.Placeholder),
			ID:        owner.AttrOr(models.AttrID, models.Placeholder),
			ShortID:   models.Placeholder,
			MediaID:   id,
			Language:  childText(owner, models.TagLanguageHint),
			AudioFile: childText(owner, models.TagAudioFileHint),
			File:      doc.Path,
		})
	}

	return matches, errs
}

// childText returns the inline text of the first direct child whose tag
// contains hint. The lookup is a loose heuristic over tag names: the first
// such child wins even if it has no text.
func childText(e *document.Element, hint string) string {
	child := e.FirstChildTagContaining(hint)
	if child == nil {
		return models.Placeholder
	}
	text, ok := child.Text()
	if !ok {
		return models.Placeholder
	}
	return text
}
