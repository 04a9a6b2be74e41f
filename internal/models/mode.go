package models

import (
	"fmt"
	"strings"
)

// SearchMode selects which identifier field a search matches against.
type SearchMode int

// Search modes. Exactly one is active per search.
const (
	ModeMediaID SearchMode = iota // MediaID elements, reported at their grandparent
	ModeGuid                      // ID attribute on any element
	ModeShortID                   // ShortID attribute on any element
)

// AllModes lists every search mode in display order.
var AllModes = []SearchMode{ModeMediaID, ModeGuid, ModeShortID}

// String returns the canonical display name of the mode.
func (m SearchMode) String() string {
	switch m {
	case ModeMediaID:
		return "MediaID"
	case ModeGuid:
		return "Guid"
	case ModeShortID:
		return "ShortID"
	default:
		return fmt.Sprintf("SearchMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the known modes.
func (m SearchMode) Valid() bool {
	return m >= ModeMediaID && m <= ModeShortID
}

// ParseSearchMode converts a user supplied mode name into a SearchMode.
// Matching is case-insensitive and accepts a few short aliases.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mediaid", "media", "media_id", "media-id":
		return ModeMediaID, nil
	case "guid", "id":
		return ModeGuid, nil
	case "shortid", "short", "short_id", "short-id":
		return ModeShortID, nil
	default:
		return ModeGuid, fmt.Errorf("unknown search mode %q (want mediaid, guid or shortid)", s)
	}
}

// MarshalText implements encoding.TextMarshaler so modes serialize by name.
func (m SearchMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid search mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SearchMode) UnmarshalText(text []byte) error {
	mode, err := ParseSearchMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
