package models

// Placeholder marks an attribute that was looked up on a reported node but is absent.
// It is distinct from the empty string, which marks a field the active mode does not use.
const Placeholder = "?"

// Attribute and element names read from documents.
const (
	AttrID      = "ID"
	AttrName    = "Name"
	AttrShortID = "ShortID"

	TagMediaID = "MediaID"

	// Child tag substrings used to pull context for MediaID matches.
	TagLanguageHint  = "Language"
	TagAudioFileHint = "AudioFile"
)

// MatchInfo is one matched record. Values are immutable once built by a matcher.
type MatchInfo struct {
	Tag       string `json:"tag" yaml:"tag"`               // Element name of the reported node
	Name      string `json:"name" yaml:"name"`             // Name attribute, or Placeholder
	ID        string `json:"id" yaml:"id"`                 // ID attribute, or Placeholder
	ShortID   string `json:"short_id" yaml:"short_id"`     // ShortID attribute, Placeholder, or empty
	MediaID   string `json:"media_id" yaml:"media_id"`     // Matched media id (MediaID mode only)
	Language  string `json:"language" yaml:"language"`     // Language child text (MediaID mode only)
	AudioFile string `json:"audio_file" yaml:"audio_file"` // AudioFile child text (MediaID mode only)
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
}

// HasMediaContext reports whether the record carries MediaID-mode context fields.
func (m MatchInfo) HasMediaContext() bool {
	return m.MediaID != "" || m.Language != "" || m.AudioFile != ""
}

