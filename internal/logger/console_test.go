package logger

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/findid/internal/models"
	"github.com/harrison/findid/internal/search"
)

func sampleResult() *search.Result {
	return &search.Result{
		ID:    "6f1c2a4e-0000-4000-8000-000000000001",
		Query: "789",
		Root:  "/projects/Game",
		Mode:  models.ModeMediaID,
		Matches: []models.MatchInfo{
			{Tag: "Sound", Name: "Explosion", ID: "abc123", ShortID: "?", MediaID: "med-789", Language: "?", AudioFile: "?", File: "/projects/Game/b.wwu"},
			{Tag: "Sound", Name: "Door", ID: "def456", ShortID: "?", MediaID: "789", Language: "SFX", AudioFile: "door.wav", File: "/projects/Game/a.wwu"},
		},
		Files: 3,
		FileErrors: []search.FileError{
			{Path: "/projects/Game/broken.wwu", Stage: search.StageParse, Err: errors.New("unexpected EOF")},
		},
		Duration: 250 * time.Millisecond,
	}
}

// TestNewConsoleLogger verifies the constructor creates a ConsoleLogger with the provided writer.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "info")

		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
		if logger.colorOutput {
			t.Error("expected no color for a buffer")
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "debug")
		logger.LogInfo("dropped")
		logger.LogSearchComplete(sampleResult())
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger := NewConsoleLogger(&bytes.Buffer{}, "verbose")
		if logger.logLevel != "info" {
			t.Errorf("expected info, got %q", logger.logLevel)
		}
	})
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		visible []string
		hidden  []string
	}{
		{level: "trace", visible: []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}},
		{level: "info", visible: []string{"INFO", "WARN", "ERROR"}, hidden: []string{"TRACE", "DEBUG"}},
		{level: "WARNING", visible: []string{"WARN", "ERROR"}, hidden: []string{"TRACE", "DEBUG", "INFO"}},
		{level: "error", visible: []string{"ERROR"}, hidden: []string{"TRACE", "DEBUG", "INFO", "WARN"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, tt.level)

			logger.LogTrace("msg")
			logger.LogDebug("msg")
			logger.LogInfo("msg")
			logger.LogWarn("msg")
			logger.LogError("msg")

			out := buf.String()
			for _, lvl := range tt.visible {
				if !strings.Contains(out, "["+lvl+"] msg") {
					t.Errorf("expected %s message in output:\n%s", lvl, out)
				}
			}
			for _, lvl := range tt.hidden {
				if strings.Contains(out, "["+lvl+"]") {
					t.Errorf("did not expect %s message in output:\n%s", lvl, out)
				}
			}
		})
	}
}

func TestConsoleLogger_TimestampFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogInfo("hello")

	pattern := regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] \[INFO\] hello\n$`)
	if !pattern.MatchString(buf.String()) {
		t.Errorf("unexpected format: %q", buf.String())
	}
}

func TestConsoleLogger_SearchEvents(t *testing.T) {
	result := sampleResult()

	t.Run("start is debug only", func(t *testing.T) {
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "info").LogSearchStart(result.ID, result.Root, result.Mode, result.Query)
		if buf.Len() != 0 {
			t.Errorf("expected no output at info, got %q", buf.String())
		}

		buf.Reset()
		NewConsoleLogger(buf, "debug").LogSearchStart(result.ID, result.Root, result.Mode, result.Query)
		want := `Searching /projects/Game (MediaID) for "789" [run 6f1c2a4e]`
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in %q", want, buf.String())
		}
	})

	t.Run("file error is a warning", func(t *testing.T) {
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "info").LogFileError(result.ID, result.FileErrors[0])
		want := "[WARN] parse /projects/Game/broken.wwu: unexpected EOF"
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in %q", want, buf.String())
		}

		buf.Reset()
		NewConsoleLogger(buf, "error").LogFileError(result.ID, result.FileErrors[0])
		if buf.Len() != 0 {
			t.Errorf("expected warning to be filtered, got %q", buf.String())
		}
	})

	t.Run("summary", func(t *testing.T) {
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "info").LogSearchComplete(result)
		want := "2 matches in 3 files (1 skipped) in 250ms"
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in %q", want, buf.String())
		}
	})

	t.Run("summary ignores match-stage errors", func(t *testing.T) {
		r := sampleResult()
		r.FileErrors = append(r.FileErrors,
			search.FileError{Path: "/projects/Game/orphan.wwu", Stage: search.StageMatch, Err: errors.New("no grandparent element")},
			search.FileError{Stage: search.StageDiscover, Err: errors.New("permission denied")},
		)
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "info").LogSearchComplete(r)
		want := "2 matches in 3 files (1 skipped)"
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in %q", want, buf.String())
		}
	})

	t.Run("summary singular", func(t *testing.T) {
		r := &search.Result{Matches: []models.MatchInfo{{Tag: "Event"}}, Files: 1, Duration: 2 * time.Second}
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "info").LogSearchComplete(r)
		want := "1 match in 1 file (0 skipped) in 2.0s"
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in %q", want, buf.String())
		}
	})
}

func TestConsoleLogger_ConcurrentWrites(t *testing.T) {
	buf := &safeBuffer{}
	logger := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.LogInfo(fmt.Sprintf("message %d", i))
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 50 {
		t.Errorf("expected 50 lines, got %d", len(lines))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 0, want: "0ms"},
		{d: 42 * time.Millisecond, want: "42ms"},
		{d: 1500 * time.Millisecond, want: "1.5s"},
		{d: time.Minute, want: "1m"},
		{d: 90 * time.Second, want: "1m30s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestMultiLogger(t *testing.T) {
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	ml := NewMultiLogger(NewConsoleLogger(a, "debug"), nil, NewConsoleLogger(b, "info"))
	if len(ml.loggers) != 2 {
		t.Fatalf("expected nil logger to be skipped, got %d loggers", len(ml.loggers))
	}

	result := sampleResult()
	ml.LogSearchStart(result.ID, result.Root, result.Mode, result.Query)
	ml.LogFileError(result.ID, result.FileErrors[0])
	ml.LogSearchComplete(result)

	if !strings.Contains(a.String(), "Searching") || strings.Contains(b.String(), "Searching") {
		t.Error("each logger applies its own level")
	}
	for _, out := range []string{a.String(), b.String()} {
		if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "2 matches") {
			t.Errorf("expected warning and summary in %q", out)
		}
	}
}

func TestIsValidLevel(t *testing.T) {
	for _, lvl := range []string{"trace", "DEBUG", " info ", "warn", "warning", "error"} {
		if !IsValidLevel(lvl) {
			t.Errorf("IsValidLevel(%q) = false", lvl)
		}
	}
	for _, lvl := range []string{"", "verbose", "fatal"} {
		if IsValidLevel(lvl) {
			t.Errorf("IsValidLevel(%q) = true", lvl)
		}
	}
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
