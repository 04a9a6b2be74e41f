package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/findid/internal/config"
	"github.com/harrison/findid/internal/display"
	"github.com/harrison/findid/internal/filelock"
	"github.com/harrison/findid/internal/history"
	"github.com/harrison/findid/internal/logger"
	"github.com/harrison/findid/internal/models"
	"github.com/harrison/findid/internal/project"
	"github.com/harrison/findid/internal/search"
)

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <project-root> <query>",
		Short: "Search a project for a MediaID, GUID or ShortID",
		Long: `Search every work unit below a Wwise project root for objects whose
identifier contains the query (case-insensitive).

Modes:
  mediaid  MediaID elements; reports the owning object with its
           language and audio file
  guid     ID attribute of any element
  shortid  ShortID attribute of any element

Files that cannot be read or parsed are listed as warnings; matches
from all other files are still reported.

Examples:
  findid search ~/Wwise/MyGame 555123
  findid search ~/Wwise/MyGame 6a1b --mode guid
  findid search ~/Wwise/MyGame "" --mode shortid --format csv --output ids.csv
  findid search ~/Wwise/MyGame 123 --output report.html`,
		Args: cobra.ExactArgs(2),
		RunE: runSearch,
	}

	cmd.Flags().StringP("mode", "m", "", "Search mode: mediaid, guid, shortid (default from config)")
	cmd.Flags().StringP("format", "f", "", "Output format: table, json, yaml, markdown, html, csv")
	cmd.Flags().StringP("output", "o", "", "Write results to a file instead of stdout")
	cmd.Flags().Int("workers", -1, "Files searched in parallel (0 = one per CPU, -1 = use config)")
	cmd.Flags().Duration("timeout", 0, "Maximum search time (e.g. 30s, 2m)")
	cmd.Flags().Bool("no-history", false, "Do not record this search in the history database")

	return cmd
}

// runSearch implements the search command logic
func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mergeSearchFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	mode, err := cfg.Mode()
	if err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	format, err := display.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	if formatFlag == "" && outputPath != "" {
		if guessed, ok := display.FormatForPath(outputPath); ok {
			format = guessed
		}
	}

	root, err := project.ValidateRoot(args[0], project.WithMarkerExt(cfg.MarkerExt))
	if err != nil {
		return err
	}

	engine, logs, closeLogs, err := newEngine(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLogs()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	result, searchErr := engine.Search(ctx, args[1], root, mode)
	if result == nil {
		return searchErr
	}
	if searchErr != nil {
		display.Warning{
			Title:      "Search stopped early",
			Message:    searchErr.Error(),
			Suggestion: stoppedSuggestion(searchErr),
		}.Display(cmd.ErrOrStderr())
	}

	// Partial results are still written after a timeout or interrupt.
	if err := writeResults(context.WithoutCancel(ctx), cmd.OutOrStdout(), outputPath, format, result); err != nil {
		return err
	}

	if len(result.FileErrors) > 0 {
		display.WarnFileErrors(result.FileErrors, result.Root).Display(cmd.ErrOrStderr())
	}

	if cfg.History.Enabled {
		recordHistory(cfg, result, searchErr, logs)
	}

	return nil
}

func stoppedSuggestion(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Results below are partial; raise --timeout to search every file"
	}
	return "Results below are partial; the search was interrupted"
}

// mergeSearchFlags applies the search flags the user actually set.
func mergeSearchFlags(cmd *cobra.Command, cfg *config.Config) {
	var workers *int
	if w, _ := cmd.Flags().GetInt("workers"); w >= 0 {
		workers = &w
	}

	var timeout *time.Duration
	if cmd.Flags().Changed("timeout") {
		d, _ := cmd.Flags().GetDuration("timeout")
		timeout = &d
	}

	var mode *string
	if cmd.Flags().Changed("mode") {
		m, _ := cmd.Flags().GetString("mode")
		mode = &m
	}

	var enabled *bool
	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		off := false
		enabled = &off
	}

	cfg.MergeWithFlags(workers, timeout, nil, mode, enabled)
}

// newEngine builds a search engine from cfg, logging to w and, when enabled,
// to a per-run log file. The returned logger carries the same sinks for
// leveled messages; the returned func closes the file logger.
func newEngine(cfg *config.Config, w io.Writer) (*search.Engine, *logger.MultiLogger, func(), error) {
	loggers := []search.Logger{logger.NewConsoleLogger(w, cfg.LogLevel)}
	closeLogs := func() {}

	if cfg.FileLogging {
		fileLogger, err := logger.NewFileLoggerWithLevel(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create file logger: %w", err)
		}
		loggers = append(loggers, fileLogger)
		closeLogs = func() { fileLogger.Close() }
	}
	logs := logger.NewMultiLogger(loggers...)
	if fileLogger, ok := loggers[len(loggers)-1].(*logger.FileLogger); ok {
		logs.LogTrace(fmt.Sprintf("run log %s", fileLogger.RunFile()))
	}

	logs.LogTrace(fmt.Sprintf("history db %s, log dir %s (file logging %t)", cfg.History.DBPath, cfg.LogDir, cfg.FileLogging))
	logs.LogDebug(fmt.Sprintf("settings: workers=%d timeout=%v document_ext=%s case_sensitive_ext=%t skip_hidden=%t exclude_dirs=[%s]",
		cfg.Workers, cfg.Timeout, cfg.DocumentExt, cfg.CaseSensitiveExt, cfg.SkipHidden, strings.Join(cfg.ExcludeDirs, ", ")))

	engine := search.NewEngine(logs)
	engine.Workers = cfg.Workers
	engine.DocumentExt = cfg.DocumentExt
	engine.ExcludeDirs = cfg.ExcludeDirs
	engine.SkipHidden = cfg.SkipHidden
	engine.CaseSensitiveExt = cfg.CaseSensitiveExt
	return engine, logs, closeLogs, nil
}

// writeResults renders result to out, or to outputPath under a file lock.
func writeResults(ctx context.Context, out io.Writer, outputPath string, format display.Format, result *search.Result) error {
	opts := display.Options{
		Mode:  result.Mode,
		Root:  result.Root,
		Title: fmt.Sprintf("%s search for %q", result.Mode, result.Query),
	}
	matches := result.Sorted()

	if outputPath == "" {
		opts.Color = display.IsTerminal(out)
		return display.Render(out, format, matches, opts)
	}

	data, err := display.RenderBytes(format, matches, opts)
	if err != nil {
		return err
	}
	if err := filelock.LockAndWrite(ctx, outputPath, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	fmt.Fprintf(out, "Wrote %d %s to %s\n", len(matches), matchWord(len(matches)), outputPath)
	return nil
}

// recordHistory stores a summary of result. Failures are logged, not
// returned; the search itself already succeeded.
func recordHistory(cfg *config.Config, result *search.Result, searchErr error, logs logger.MessageLogger) {
	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		logs.LogError(fmt.Sprintf("search history unavailable: %v", err))
		return
	}
	defer store.Close()

	// The search context may already be done; history writes use their own.
	ctx := context.Background()
	if err := store.Record(ctx, history.FromResult(result, searchErr)); err != nil {
		logs.LogError(fmt.Sprintf("failed to record search: %v", err))
		return
	}
	if cfg.History.KeepDays > 0 {
		pruned, err := store.CleanupOlderThan(ctx, cfg.History.KeepDays)
		if err != nil {
			logs.LogWarn(fmt.Sprintf("failed to prune history: %v", err))
			return
		}
		if pruned > 0 {
			logs.LogInfo(fmt.Sprintf("pruned %d %s older than %d days from history", pruned, pluralWord(int(pruned), "search", "searches"), cfg.History.KeepDays))
		}
	}
}

// modeFromFlag resolves --mode, falling back to the configured default.
func modeFromFlag(cmd *cobra.Command, cfg *config.Config) (models.SearchMode, error) {
	if cmd.Flags().Changed("mode") {
		m, _ := cmd.Flags().GetString("mode")
		return models.ParseSearchMode(m)
	}
	return cfg.Mode()
}

func matchWord(n int) string {
	return pluralWord(n, "match", "matches")
}
