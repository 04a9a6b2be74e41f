package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harrison/findid/internal/history"
)

// NewHistoryCommand creates the 'findid history' command
func NewHistoryCommand() *cobra.Command {
	var limit int
	var clear bool
	var yes bool
	var dbPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or clear recorded searches",
		Long: `List recent searches recorded in the history database, newest first.
Only summaries are stored: root, mode, query and counts.

Examples:
  # Show the last 20 searches
  findid history

  # Show every recorded search
  findid history --limit 0

  # Clear the history (asks for confirmation)
  findid history --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				dbPath = cfg.History.DBPath
			}

			store, err := history.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("open history database: %w", err)
			}
			defer store.Close()

			if clear {
				return runHistoryClear(cmd, store, yes)
			}
			return runHistoryList(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of searches to show (0 = all)")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete every recorded search")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to history database (default from config)")

	return cmd
}

func runHistoryList(cmd *cobra.Command, store *history.Store, limit int) error {
	output := cmd.OutOrStdout()

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(output, "No searches recorded")
		return nil
	}

	tw := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tMODE\tQUERY\tMATCHES\tFILES\tERRORS\tSTATUS\tDURATION\tROOT")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%q\t%d\t%d\t%d\t%s\t%s\t%s\n",
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Query,
			run.MatchCount,
			run.FileCount,
			run.ErrorCount,
			run.Status,
			run.Duration,
			run.Root,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	total, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}
	if total > len(runs) {
		fmt.Fprintf(output, "Showing %d of %d searches (--limit 0 shows all)\n", len(runs), total)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, store *history.Store, yes bool) error {
	output := cmd.OutOrStdout()

	if !yes {
		fmt.Fprintf(output, "WARNING: This will delete ALL recorded searches from %s.\n", store.Path())
		if !confirmAction(cmd.InOrStdin(), output) {
			fmt.Fprintf(output, "Operation cancelled.\n")
			return nil
		}
	}

	removed, err := store.Clear(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "Cleared %d %s\n", removed, pluralWord(int(removed), "search", "searches"))
	return nil
}

// confirmAction prompts the user for confirmation
func confirmAction(input io.Reader, output io.Writer) bool {
	scanner := bufio.NewScanner(input)

	fmt.Fprintf(output, "Continue? [y/N]: ")

	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}
