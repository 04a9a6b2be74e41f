// Package logger provides logging implementations for findid searches.
//
// Loggers report search lifecycle events (start, per-file errors, summary)
// and free-form leveled messages. Implementations are thread-safe and write to
// the console, to per-run log files, or to both through MultiLogger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/findid/internal/models"
	"github.com/harrison/findid/internal/search"
)

// ConsoleLogger logs search progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive); anything
// else falls back to info.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// fatih/color already honours NO_COLOR and non-TTY output.
		return !color.NoColor
	}
	return false
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return allowed(cl.logLevel, messageLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if cl.colorOutput {
		fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, colorLevel(level), message)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, level, message)
}

func colorLevel(level string) string {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// LogSearchStart logs the start of a search at DEBUG level.
// Format: "[HH:MM:SS] Searching <root> (<mode>) for "<query>""
func (cl *ConsoleLogger) LogSearchStart(runID, root string, mode models.SearchMode, query string) {
	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	modeName := mode.String()
	if cl.colorOutput {
		modeName = color.New(color.Bold).Sprint(modeName)
	}
	fmt.Fprintf(cl.writer, "[%s] Searching %s (%s) for %q [run %s]\n", timestamp(), root, modeName, query, shortRunID(runID))
}

// LogFileError logs a skipped file at WARN level.
func (cl *ConsoleLogger) LogFileError(runID string, fe search.FileError) {
	cl.LogWarn(fe.Error())
}

// LogSearchComplete logs the search summary at INFO level.
// Format: "[HH:MM:SS] <n> matches in <files> files (<errors> skipped) in <duration>"
func (cl *ConsoleLogger) LogSearchComplete(result *search.Result) {
	if cl.writer == nil || result == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	matches := fmt.Sprintf("%d %s", len(result.Matches), plural(len(result.Matches), "match", "matches"))
	failed := result.FailedFiles()
	skipped := fmt.Sprintf("%d skipped", failed)
	if cl.colorOutput {
		matches = color.New(color.FgGreen).Sprint(matches)
		if failed > 0 {
			skipped = color.New(color.FgYellow).Sprint(skipped)
		}
	}

	fmt.Fprintf(cl.writer, "[%s] %s in %d %s (%s) in %s\n",
		timestamp(), matches, result.Files, plural(result.Files, "file", "files"), skipped, formatDuration(result.Duration))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatDuration converts a time.Duration to a human-readable string.
// Searches are usually sub-second, so milliseconds are kept below one second.
// Examples: "250ms", "5s", "1m30s"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

var _ search.Logger = (*ConsoleLogger)(nil)
