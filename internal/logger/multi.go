package logger

import (
	"github.com/harrison/findid/internal/models"
	"github.com/harrison/findid/internal/search"
)

// MessageLogger takes free-form leveled messages. ConsoleLogger and
// FileLogger both implement it.
type MessageLogger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// MultiLogger forwards every event to each of its loggers in order. Leveled
// messages go to the loggers that implement MessageLogger.
type MultiLogger struct {
	loggers []search.Logger
}

// NewMultiLogger skips nil loggers.
func NewMultiLogger(loggers ...search.Logger) *MultiLogger {
	ml := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			ml.loggers = append(ml.loggers, l)
		}
	}
	return ml
}

func (ml *MultiLogger) LogSearchStart(runID, root string, mode models.SearchMode, query string) {
	for _, l := range ml.loggers {
		l.LogSearchStart(runID, root, mode, query)
	}
}

func (ml *MultiLogger) LogFileError(runID string, fe search.FileError) {
	for _, l := range ml.loggers {
		l.LogFileError(runID, fe)
	}
}

func (ml *MultiLogger) LogSearchComplete(result *search.Result) {
	for _, l := range ml.loggers {
		l.LogSearchComplete(result)
	}
}

func (ml *MultiLogger) LogTrace(message string) {
	ml.each(func(l MessageLogger) { l.LogTrace(message) })
}

func (ml *MultiLogger) LogDebug(message string) {
	ml.each(func(l MessageLogger) { l.LogDebug(message) })
}

func (ml *MultiLogger) LogInfo(message string) {
	ml.each(func(l MessageLogger) { l.LogInfo(message) })
}

func (ml *MultiLogger) LogWarn(message string) {
	ml.each(func(l MessageLogger) { l.LogWarn(message) })
}

func (ml *MultiLogger) LogError(message string) {
	ml.each(func(l MessageLogger) { l.LogError(message) })
}

func (ml *MultiLogger) each(fn func(MessageLogger)) {
	for _, l := range ml.loggers {
		if m, ok := l.(MessageLogger); ok {
			fn(m)
		}
	}
}

var (
	_ search.Logger = (*MultiLogger)(nil)
	_ MessageLogger = (*MultiLogger)(nil)
	_ MessageLogger = (*ConsoleLogger)(nil)
	_ MessageLogger = (*FileLogger)(nil)
)
