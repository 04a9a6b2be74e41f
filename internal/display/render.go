package display

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/harrison/findid/internal/models"
)

// Options controls how matches are rendered.
type Options struct {
	Mode  models.SearchMode
	Root  string // When set, file paths are shown relative to it
	Color bool   // Bold table headers
	Title string // Heading for markdown and HTML output
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// column is one rendered field.
type column struct {
	header string
	value  func(models.MatchInfo) string
}

// columns returns the fields a mode fills, in display order.
func columns(mode models.SearchMode, root string) []column {
	tag := column{"TAG", func(m models.MatchInfo) string { return m.Tag }}
	name := column{"NAME", func(m models.MatchInfo) string { return m.Name }}
	id := column{"ID", func(m models.MatchInfo) string { return m.ID }}
	shortID := column{"SHORT_ID", func(m models.MatchInfo) string { return m.ShortID }}
	file := column{"FILE", func(m models.MatchInfo) string { return relPath(root, m.File) }}

	switch mode {
	case models.ModeMediaID:
		return []column{
			tag, name, id,
			{"MEDIA_ID", func(m models.MatchInfo) string { return m.MediaID }},
			{"LANGUAGE", func(m models.MatchInfo) string { return m.Language }},
			{"AUDIO_FILE", func(m models.MatchInfo) string { return m.AudioFile }},
			file,
		}
	case models.ModeShortID:
		return []column{tag, name, shortID, id, file}
	default:
		return []column{tag, name, id, shortID, file}
	}
}

func relPath(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// Render writes matches to w in format.
func Render(w io.Writer, format Format, matches []models.MatchInfo, opts Options) error {
	if matches == nil {
		matches = []models.MatchInfo{}
	}

	switch format {
	case FormatTable, "":
		return renderTable(w, matches, opts)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(matches); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, markdownReport(matches, opts, escapeMarkdown))
		return err
	case FormatHTML:
		return renderHTML(w, matches, opts)
	case FormatCSV:
		return renderCSV(w, matches, opts)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// RenderBytes renders into memory, for export files.
func RenderBytes(format Format, matches []models.MatchInfo, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, format, matches, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderTable(w io.Writer, matches []models.MatchInfo, opts Options) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "No matches found")
		return err
	}

	cols := columns(opts.Mode, opts.Root)
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, m := range matches {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = tableCell(c.value(m))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	out := buf.String()
	// Colour is applied after alignment; escape codes would skew column widths.
	if opts.Color {
		header, rest, _ := strings.Cut(out, "\n")
		bold := color.New(color.Bold)
		bold.EnableColor()
		out = bold.Sprint(header) + "\n" + rest
	}
	_, err := io.WriteString(w, out)
	return err
}

// tableCell keeps tabs and newlines in values from breaking the layout.
func tableCell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		"|", `\|`,
		"\n", " ",
		"\r", " ",
	).Replace(s)
}

// escapeMarkdownHTML also neutralises markup so goldmark never sees raw HTML.
func escapeMarkdownHTML(s string) string {
	return escapeMarkdown(html.EscapeString(s))
}

func markdownReport(matches []models.MatchInfo, opts Options, escape func(string) string) string {
	var b strings.Builder

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("%s search results", opts.Mode)
	}
	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	if len(matches) == 0 {
		b.WriteString("No matches found.\n")
		return b.String()
	}

	cols := columns(opts.Mode, opts.Root)
	b.WriteString("|")
	for _, c := range cols {
		fmt.Fprintf(&b, " %s |", c.header)
	}
	b.WriteString("\n|")
	for range cols {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, m := range matches {
		b.WriteString("|")
		for _, c := range cols {
			fmt.Fprintf(&b, " %s |", escape(c.value(m)))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n%d %s\n", len(matches), pluralize(len(matches), "match", "matches"))
	return b.String()
}

func renderHTML(w io.Writer, matches []models.MatchInfo, opts Options) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(markdownReport(matches, opts, escapeMarkdownHTML)), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("%s search results", opts.Mode)
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
table { border-collapse: collapse; font-family: monospace; }
th, td { border: 1px solid #ccc; padding: 2px 6px; text-align: left; }
</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), body.String())
	return err
}

func renderCSV(w io.Writer, matches []models.MatchInfo, opts Options) error {
	cols := columns(opts.Mode, opts.Root)
	cw := csv.NewWriter(w)

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = strings.ToLower(c.header)
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for _, m := range matches {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.value(m)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
