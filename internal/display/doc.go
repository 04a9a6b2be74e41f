// Package display renders search output for the terminal and for export files.
//
// # Match rendering
//
// Render writes matches in one of the supported formats:
//
//	err := display.Render(os.Stdout, display.FormatTable, matches, display.Options{
//	    Mode:  models.ModeMediaID,
//	    Root:  root.Path(),
//	    Color: display.IsTerminal(os.Stdout),
//	})
//
// Table, markdown and CSV output pick their columns from the search mode, so
// fields a mode never fills are not shown. JSON and YAML always carry every
// field: an empty string there means "not applicable", "?" means the
// attribute was absent.
//
// HTML output is the markdown table converted with goldmark and wrapped in a
// standalone page.
//
// # Warnings
//
// Display warnings with optional components:
//
//	warning := display.Warning{
//	    Title:      "Skipped 2 files",
//	    Files:      []string{"Broken.wwu", "Locked.wwu"},
//	    Suggestion: "Run with --log-level debug for details",
//	}
//	warning.Display(os.Stderr)
//
// # ANSI Colors
//
// Warnings use yellow (\x1b[33m). Table headers are bold and only coloured
// when the destination is a terminal.
package display
