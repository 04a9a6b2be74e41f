package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/findid/internal/config"
	"github.com/harrison/findid/internal/display"
	"github.com/harrison/findid/internal/logger"
	"github.com/harrison/findid/internal/models"
	"github.com/harrison/findid/internal/project"
	"github.com/harrison/findid/internal/search"
)

const replHelp = `Type a query to search the project. Commands:
  :mode <mediaid|guid|shortid>  switch search mode (":mode" shows it)
  :all                          list every carrier of the current mode
  :last                         show the latest results again
  :help                         show this help
  :quit                         exit
`

// NewReplCommand creates the interactive repl command
func NewReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl <project-root>",
		Short: "Search a project interactively",
		Long: `Validate a project root once, then read queries line by line and
print the matches of each. The mode can be switched between searches
with ":mode guid" and friends; ":quit" or end of input exits.

Ctrl-C cancels a running search and keeps its partial results; at the
prompt it exits.`,
		Args: cobra.ExactArgs(1),
		RunE: runRepl,
	}

	cmd.Flags().StringP("mode", "m", "", "Initial search mode: mediaid, guid, shortid (default from config)")
	cmd.Flags().Bool("no-history", false, "Do not record searches in the history database")

	return cmd
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		off := false
		cfg.MergeWithFlags(nil, nil, nil, nil, &off)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	mode, err := modeFromFlag(cmd, cfg)
	if err != nil {
		return err
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

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	r := &repl{
		cfg:       cfg,
		root:      root,
		mode:      mode,
		session:   search.NewSession(engine),
		logs:      logs,
		interrupt: interrupt,
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
	}
	defer r.session.Close()

	fmt.Fprintf(r.out, "Searching %s. Type :help for commands.\n", root)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return r.loop(ctx, cmd.InOrStdin())
}

type repl struct {
	cfg       *config.Config
	root      project.ValidatedPath
	mode      models.SearchMode
	session   *search.Session
	logs      logger.MessageLogger
	interrupt <-chan os.Signal
	out       io.Writer
	errOut    io.Writer
}

// searchOutcome is what a background search hands back to the loop.
type searchOutcome struct {
	result    *search.Result
	published bool
	err       error
}

func (r *repl) prompt() {
	fmt.Fprintf(r.out, "findid %s> ", r.mode)
}

// readLines feeds input to lines until EOF, then reports the scanner error.
// It stops early once stop is closed.
func readLines(input io.Reader, lines chan<- string, errc chan<- error, stop <-chan struct{}) {
	defer close(lines)
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-stop:
			return
		}
	}
	errc <- scanner.Err()
}

func (r *repl) loop(ctx context.Context, input io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go readLines(input, lines, errc, stop)

	r.prompt()
	for {
		var line string
		select {
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				return <-errc
			}
			line = strings.TrimSpace(l)
		case <-r.interrupt:
			fmt.Fprintln(r.out)
			return nil
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		}

		switch {
		case line == "":
		case line == ":quit" || line == ":q" || line == ":exit":
			return nil
		case line == ":help":
			fmt.Fprint(r.out, replHelp)
		case line == ":last":
			r.showLatest()
		case line == ":all":
			r.search(ctx, "")
		case line == ":mode" || strings.HasPrefix(line, ":mode "):
			r.switchMode(strings.TrimSpace(strings.TrimPrefix(line, ":mode")))
		case strings.HasPrefix(line, ":"):
			fmt.Fprintf(r.out, "Unknown command %s (try :help)\n", line)
		default:
			r.search(ctx, line)
		}

		r.prompt()
	}
}

func (r *repl) switchMode(name string) {
	if name == "" {
		names := make([]string, len(models.AllModes))
		for i, m := range models.AllModes {
			names[i] = strings.ToLower(m.String())
		}
		fmt.Fprintf(r.out, "Mode is %s (available: %s)\n", r.mode, strings.Join(names, ", "))
		return
	}
	mode, err := models.ParseSearchMode(name)
	if err != nil {
		fmt.Fprintf(r.out, "%v\n", err)
		return
	}
	r.mode = mode
	fmt.Fprintf(r.out, "Mode set to %s\n", mode)
}

// search runs query in the background and waits for it. An interrupt while
// waiting cancels the search; its partial result is still shown.
func (r *repl) search(ctx context.Context, query string) {
	done := make(chan searchOutcome, 1)
	r.session.Start(ctx, query, r.root, r.mode, func(result *search.Result, published bool, err error) {
		done <- searchOutcome{result: result, published: published, err: err}
	})

	var out searchOutcome
	select {
	case out = <-done:
	case <-r.interrupt:
		r.session.Close()
		out = <-done
	}

	if out.result == nil {
		fmt.Fprintf(r.errOut, "Search failed: %v\n", out.err)
		return
	}
	if !out.published {
		return
	}

	r.render(out.result)
	if errors.Is(out.err, context.Canceled) || errors.Is(out.err, context.DeadlineExceeded) {
		fmt.Fprintf(r.errOut, "Search interrupted; results are partial\n")
	}
	if r.cfg.History.Enabled {
		recordHistory(r.cfg, out.result, out.err, r.logs)
	}
}

func (r *repl) showLatest() {
	result, _ := r.session.Latest()
	if result == nil {
		fmt.Fprintln(r.out, "No search yet")
		return
	}
	r.render(result)
}

func (r *repl) render(result *search.Result) {
	opts := display.Options{
		Mode:  result.Mode,
		Root:  result.Root,
		Color: display.IsTerminal(r.out),
	}
	if err := display.Render(r.out, display.FormatTable, result.Sorted(), opts); err != nil {
		fmt.Fprintf(r.errOut, "Render failed: %v\n", err)
		return
	}
	if len(result.FileErrors) > 0 {
		display.WarnFileErrors(result.FileErrors, result.Root).Display(r.errOut)
	}
}
