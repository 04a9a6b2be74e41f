// Package search runs a query over every document below a validated project
// root. Files are parsed and matched in parallel; per-file failures are
// collected instead of aborting the run.
package search

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/findid/internal/document"
	"github.com/harrison/findid/internal/fileutil"
	"github.com/harrison/findid/internal/matcher"
	"github.com/harrison/findid/internal/models"
	"github.com/harrison/findid/internal/project"
)

// DefaultDocumentExt is the extension of searchable documents.
const DefaultDocumentExt = ".wwu"

// Logger receives search lifecycle events. A nil Logger disables logging.
type Logger interface {
	LogSearchStart(runID, root string, mode models.SearchMode, query string)
	LogFileError(runID string, fe FileError)
	LogSearchComplete(result *Result)
}

// Engine holds search configuration only; it is safe for concurrent use.
type Engine struct {
	Workers          int      // Parallel files; 0 means runtime.NumCPU()
	DocumentExt      string   // Defaults to DefaultDocumentExt
	ExcludeDirs      []string // Directory names never descended into
	SkipHidden       bool
	CaseSensitiveExt bool // Match DocumentExt exactly instead of ignoring case
	Logger           Logger
}

// NewEngine returns an Engine with default settings.
func NewEngine(logger Logger) *Engine {
	return &Engine{Logger: logger}
}

type fileResult struct {
	path    string
	matches []models.MatchInfo
	errs    []FileError
}

// Search finds every record under root whose mode-specific identifier contains
// query, ignoring case. An empty query matches every carrier of the identifier.
//
// Per-file problems land in Result.FileErrors. When ctx is cancelled, files not
// yet started are skipped and ctx.Err() is returned with the partial result.
func (e *Engine) Search(ctx context.Context, query string, root project.ValidatedPath, mode models.SearchMode) (*Result, error) {
	if e == nil {
		return nil, fmt.Errorf("search engine is nil")
	}
	if root.IsZero() {
		return nil, fmt.Errorf("search root is not validated")
	}
	m, err := matcher.For(mode)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ID:        uuid.New().String(),
		Query:     query,
		Root:      root.Path(),
		Mode:      mode,
		Matches:   make([]models.MatchInfo, 0),
		StartedAt: time.Now(),
	}
	if e.Logger != nil {
		e.Logger.LogSearchStart(result.ID, result.Root, mode, query)
	}

	ext := e.DocumentExt
	if ext == "" {
		ext = DefaultDocumentExt
	}
	scan, err := fileutil.ScanDirectory(root.Path(), fileutil.ScanOptions{
		Extensions:       []string{ext},
		Recursive:        true,
		ExcludeDirs:      e.ExcludeDirs,
		SkipHidden:       e.SkipHidden,
		CaseSensitiveExt: e.CaseSensitiveExt,
	})
	if err != nil {
		return nil, fmt.Errorf("discover documents: %w", err)
	}
	for _, walkErr := range scan.Errors {
		e.record(result, FileError{Stage: StageDiscover, Err: walkErr})
	}
	result.Files = len(scan.Files)

	runErr := e.run(ctx, scan.Files, m, matcher.NormalizeQuery(query), result)

	result.Duration = time.Since(result.StartedAt)
	if e.Logger != nil {
		e.Logger.LogSearchComplete(result)
	}
	return result, runErr
}

func (e *Engine) workers(files int) int {
	n := e.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > files {
		n = files
	}
	if n < 1 {
		n = 1
	}
	return n
}

// run fans files out over a bounded pool and folds the per-file results
// into result as they arrive.
func (e *Engine) run(ctx context.Context, files []string, m matcher.Matcher, query string, result *Result) error {
	if len(files) == 0 {
		return ctx.Err()
	}

	semaphore := make(chan struct{}, e.workers(len(files)))
	resultsCh := make(chan fileResult, len(files))

	var wg sync.WaitGroup
	var launchErr error

launch:
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			launchErr = err
			break
		}
		select {
		case <-ctx.Done():
			launchErr = ctx.Err()
			break launch
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			resultsCh <- searchFile(path, m, query)
		}(path)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	for fr := range resultsCh {
		result.Matches = append(result.Matches, fr.matches...)
		for _, fe := range fr.errs {
			e.record(result, fe)
		}
	}

	return launchErr
}

func (e *Engine) record(result *Result, fe FileError) {
	result.FileErrors = append(result.FileErrors, fe)
	if e.Logger != nil {
		e.Logger.LogFileError(result.ID, fe)
	}
}

// searchFile parses and matches one document. The tree is dropped on return.
func searchFile(path string, m matcher.Matcher, query string) fileResult {
	fr := fileResult{path: path}

	doc, err := document.ParseFile(path)
	if err != nil {
		fr.errs = append(fr.errs, FileError{Path: path, Stage: classify(err), Err: err})
		return fr
	}

	matches, errs := m.Match(doc, query)
	fr.matches = matches
	for _, err := range errs {
		fr.errs = append(fr.errs, FileError{Path: path, Stage: classify(err), Err: err})
	}
	return fr
}
