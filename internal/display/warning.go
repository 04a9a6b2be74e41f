package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrison/findid/internal/search"
)

// maxListedFiles caps the file list of a warning; the rest are summarised.
const maxListedFiles = 10

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("\x1b[33m")
	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}

		shown := w.Files
		if len(shown) > maxListedFiles {
			shown = shown[:maxListedFiles]
		}
		for i, file := range shown {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, file)
		}
		if hidden := len(w.Files) - len(shown); hidden > 0 {
			fmt.Fprintf(&b, "      ... and %d more\n", hidden)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	b.WriteString("\x1b[0m")
	fmt.Fprint(out, b.String())
}

// WarnFileErrors builds the warning shown when a search skipped files.
// root, when set, shortens the listed paths.
func WarnFileErrors(errs []search.FileError, root string) Warning {
	seen := make(map[string]bool, len(errs))
	var files []string
	for _, fe := range errs {
		label := fe.Error()
		if fe.Path != "" {
			label = fmt.Sprintf("%s (%s: %v)", relPath(root, fe.Path), fe.Stage, fe.Err)
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		files = append(files, label)
	}

	title := fmt.Sprintf("%d %s during search", len(files), pluralize(len(files), "problem", "problems"))
	return Warning{
		Title:      title,
		Message:    "Matches from every other file are still reported.",
		Files:      files,
		Suggestion: "Fix or remove the listed files, or rerun with --log-level debug",
	}
}
