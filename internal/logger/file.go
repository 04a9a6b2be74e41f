package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/findid/internal/models"
	"github.com/harrison/findid/internal/search"
)

// FileLogger logs search events to files under a log directory.
// It creates a timestamped per-run log file, one match dump per search in
// runs/<run-id>.log, and keeps a latest.log symlink pointing to the most
// recent run log.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	runsDir  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLoggerWithLevel creates a FileLogger with a custom log level.
// It creates the log directory if needed, opens a timestamped run log file,
// and creates or updates the latest.log symlink.
func NewFileLoggerWithLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	runsDir := filepath.Join(logDir, "runs")
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runs directory: %w", err)
	}

	// run-YYYYMMDD-HHMMSS.log; a numeric suffix keeps two runs in the same
	// second apart.
	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", stamp))
	for i := 1; fileExists(runFile); i++ {
		runFile = filepath.Join(logDir, fmt.Sprintf("run-%s-%d.log", stamp, i))
	}

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		runsDir:  runsDir,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== findid Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// RunFile returns the path of the current run log.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return allowed(fl.logLevel, messageLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogSearchStart records the search parameters at INFO level.
func (fl *FileLogger) LogSearchStart(runID, root string, mode models.SearchMode, query string) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] Run %s: searching %s (mode %s) for %q\n", timestamp(), runID, root, mode, query))
}

// LogFileError records a skipped file at WARN level.
func (fl *FileLogger) LogFileError(runID string, fe search.FileError) {
	if !fl.shouldLog("warn") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [WARN] Run %s: %s\n", timestamp(), runID, fe.Error()))
}

// LogSearchComplete writes the summary to the run log and the full match list
// to runs/<run-id>.log.
func (fl *FileLogger) LogSearchComplete(result *search.Result) {
	if result == nil {
		return
	}
	if fl.shouldLog("info") {
		fl.writeRunLog(fmt.Sprintf("[%s] Run %s complete: %d matches, %d files, %d errors, duration %.3fs\n",
			timestamp(), result.ID, len(result.Matches), result.Files, len(result.FileErrors), result.Duration.Seconds()))
	}
	if err := fl.writeRunDump(result); err != nil {
		fl.logWithLevel("ERROR", err.Error())
	}
}

func (fl *FileLogger) writeRunDump(result *search.Result) error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	path := filepath.Join(fl.runsDir, result.ID+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create run dump: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "=== Search %s ===\n", result.ID)
	fmt.Fprintf(&b, "Root: %s\n", result.Root)
	fmt.Fprintf(&b, "Mode: %s\n", result.Mode)
	fmt.Fprintf(&b, "Query: %q\n", result.Query)
	fmt.Fprintf(&b, "Files: %d\n", result.Files)
	fmt.Fprintf(&b, "Duration: %.3fs\n\n", result.Duration.Seconds())

	if len(result.Matches) > 0 {
		b.WriteString("=== Matches ===\n")
		for _, m := range result.Sorted() {
			fmt.Fprintf(&b, "%s\t%s\tname=%s\tid=%s\tshort_id=%s", m.File, m.Tag, m.Name, m.ID, m.ShortID)
			if m.HasMediaContext() {
				fmt.Fprintf(&b, "\tmedia_id=%s\tlanguage=%s\taudio_file=%s", m.MediaID, m.Language, m.AudioFile)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(result.FileErrors) > 0 {
		b.WriteString("=== File Errors ===\n")
		for _, fe := range result.FileErrors {
			fmt.Fprintf(&b, "%s\n", fe.Error())
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Completed at: %s\n", time.Now().Format(time.RFC3339))

	if _, err := file.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write run dump: %w", err)
	}
	return nil
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}

var _ search.Logger = (*FileLogger)(nil)
