// Package history keeps a SQLite log of past searches. Only run summaries are
// stored; document contents and matches never are.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/findid/internal/search"
)

// Run statuses.
const (
	StatusOK        = "ok"
	StatusPartial   = "partial"   // some files were skipped
	StatusCancelled = "cancelled" // the search stopped early
)

// Run is the stored summary of one search.
type Run struct {
	ID         string
	Root       string
	Mode       string
	Query      string
	MatchCount int
	FileCount  int
	ErrorCount int
	Duration   time.Duration
	Status     string
	CreatedAt  time.Time
}

// FromResult summarises a search result. searchErr is the error Search
// returned alongside it, if any.
func FromResult(result *search.Result, searchErr error) *Run {
	status := StatusOK
	switch {
	case searchErr != nil && (errors.Is(searchErr, context.Canceled) || errors.Is(searchErr, context.DeadlineExceeded)):
		status = StatusCancelled
	case len(result.FileErrors) > 0:
		status = StatusPartial
	}

	created := result.StartedAt
	if created.IsZero() {
		created = time.Now()
	}

	return &Run{
		ID:         result.ID,
		Root:       result.Root,
		Mode:       result.Mode.String(),
		Query:      result.Query,
		MatchCount: len(result.Matches),
		FileCount:  result.Files,
		ErrorCount: len(result.FileErrors),
		Duration:   result.Duration,
		Status:     status,
		CreatedAt:  created,
	}
}

// Store manages the SQLite history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (and migrates) the database at dbPath. ":memory:" is
// accepted for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	// busy_timeout goes first so the remaining pragmas wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores run. Recording the same ID twice replaces the first row.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	status := run.Status
	if status == "" {
		status = StatusOK
	}

	query := `INSERT OR REPLACE INTO search_runs
		(id, root, mode, query, match_count, file_count, error_count, duration_ms, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Root, run.Mode, run.Query,
		run.MatchCount, run.FileCount, run.ErrorCount,
		run.Duration.Milliseconds(), status, run.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert search run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT id, root, mode, query, match_count, file_count, error_count, duration_ms, status, created_at
		FROM search_runs ORDER BY created_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query search runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var durationMs, createdMs int64
		if err := rows.Scan(&run.ID, &run.Root, &run.Mode, &run.Query,
			&run.MatchCount, &run.FileCount, &run.ErrorCount,
			&durationMs, &run.Status, &createdMs); err != nil {
			return nil, fmt.Errorf("scan search run: %w", err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		run.CreatedAt = time.UnixMilli(createdMs)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search runs: %w", err)
	}
	return runs, nil
}

// Count returns the number of stored runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count search runs: %w", err)
	}
	return n, nil
}

// Clear deletes every stored run and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM search_runs`)
	if err != nil {
		return 0, fmt.Errorf("clear search runs: %w", err)
	}
	return res.RowsAffected()
}

// CleanupOlderThan deletes runs created more than days ago. days <= 0 keeps
// everything.
func (s *Store) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -days).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM search_runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup search runs: %w", err)
	}
	return res.RowsAffected()
}
