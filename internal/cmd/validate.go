package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/findid/internal/config"
	"github.com/harrison/findid/internal/display"
	"github.com/harrison/findid/internal/fileutil"
	"github.com/harrison/findid/internal/project"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <project-root>",
		Short: "Check that a directory is a searchable project root",
		Long: `Check that a directory exists and directly contains a project marker
file (.wproj by default), then count the work units a search would read.

Exit code: 0 if valid, 1 otherwise`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return validateProjectWithOutput(args[0], cfg, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	return cmd
}

// validateProjectWithOutput validates root and reports the documents found (for testing)
func validateProjectWithOutput(root string, cfg *config.Config, output io.Writer) error {
	validated, err := project.ValidateRoot(root, project.WithMarkerExt(cfg.MarkerExt))
	if err != nil {
		fmt.Fprintf(output, "✗ %v\n", err)
		return err
	}

	scan, err := fileutil.ScanDirectory(validated.Path(), fileutil.ScanOptions{
		Extensions:       []string{cfg.DocumentExt},
		Recursive:        true,
		ExcludeDirs:      cfg.ExcludeDirs,
		SkipHidden:       cfg.SkipHidden,
		CaseSensitiveExt: cfg.CaseSensitiveExt,
	})
	if err != nil {
		return fmt.Errorf("failed to scan project: %w", err)
	}

	fmt.Fprintf(output, "✓ %s is a valid project root\n", validated.Path())
	fmt.Fprintf(output, "  Documents (%s): %d\n", cfg.DocumentExt, len(scan.Files))
	if cfg.CaseSensitiveExt {
		fmt.Fprintf(output, "  Extension match: exact (%s only)\n", cfg.DocumentExt)
	} else {
		fmt.Fprintf(output, "  Extension match: case-insensitive\n")
	}

	if len(scan.Errors) > 0 {
		paths := make([]string, len(scan.Errors))
		for i, e := range scan.Errors {
			paths[i] = e.Error()
		}
		display.Warning{
			Title:      fmt.Sprintf("%d unreadable %s", len(scan.Errors), pluralWord(len(scan.Errors), "entry", "entries")),
			Message:    "Searches will skip these entries",
			Files:      paths,
			Suggestion: "Check the permissions of the listed directories",
		}.Display(output)
	}

	if len(scan.Files) == 0 {
		fmt.Fprintf(output, "  Note: no %s files found; searches will return no matches\n", cfg.DocumentExt)
	}
	return nil
}

func pluralWord(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
