package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/findid/internal/history"
	"github.com/harrison/findid/internal/project"
)

func TestSearchCommand_MediaIDTable(t *testing.T) {
	setupHome(t)
	root := defaultProject(t)

	res := execute(t, "", "search", root, "789", "--no-history")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimRight(res.stdout, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, `^TAG\s+NAME\s+ID\s+MEDIA_ID\s+LANGUAGE\s+AUDIO_FILE\s+FILE$`, lines[0])
	assert.Regexp(t, `^Sound\s+Explosion\s+abc123\s+med-789\s+SFX\s+explosion\.wav\s+Actor-Mixer Hierarchy/Sounds\.wwu$`, lines[1])

	assert.Contains(t, res.stderr, "1 match in 2 files (0 skipped)")
	assert.NotContains(t, res.stderr, "Warning")
}

func TestSearchCommand_ModesAndFormats(t *testing.T) {
	setupHome(t)
	root := defaultProject(t)

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, stdout string)
	}{
		{
			name: "guid json",
			args: []string{"--mode", "guid", "--format", "json"},
			check: func(t *testing.T, stdout string) {
				var got []map[string]string
				require.NoError(t, json.Unmarshal([]byte(stdout), &got))
				require.Len(t, got, 1)
				assert.Equal(t, "Door", got[0]["name"])
				assert.Equal(t, "S1", got[0]["short_id"])
				assert.Equal(t, "", got[0]["media_id"])
			},
		},
		{
			name: "shortid table",
			args: []string{"-m", "short"},
			check: func(t *testing.T, stdout string) {
				assert.Regexp(t, `^TAG\s+NAME\s+SHORT_ID\s+ID\s+FILE\n`, stdout)
				assert.Contains(t, stdout, "Door")
			},
		},
		{
			name: "markdown",
			args: []string{"--mode", "guid", "-f", "md"},
			check: func(t *testing.T, stdout string) {
				assert.Contains(t, stdout, `# Guid search for "guid-1"`)
				assert.Contains(t, stdout, "| Event | Door | GUID-1 | S1 | Events/Doors.wwu |")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := "guid-1"
			if tt.name == "shortid table" {
				query = "s1"
			}
			args := append([]string{"search", root, query, "--no-history"}, tt.args...)
			res := execute(t, "", args...)
			require.NoError(t, res.err)
			tt.check(t, res.stdout)
		})
	}
}

func TestSearchCommand_EmptyQueryListsEveryCarrier(t *testing.T) {
	setupHome(t)
	root := defaultProject(t)

	res := execute(t, "", "search", root, "", "--mode", "shortid", "--format", "csv", "--no-history")
	require.NoError(t, res.err)

	records, err := csv.NewReader(strings.NewReader(res.stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "S1", records[1][2])
	assert.Equal(t, "S2", records[2][2])
}

func TestSearchCommand_OutputFile(t *testing.T) {
	setupHome(t)
	root := defaultProject(t)
	out := filepath.Join(t.TempDir(), "reports", "matches.csv")

	res := execute(t, "", "search", root, "gUiD", "--mode", "guid", "--output", out, "--no-history")
	require.NoError(t, res.err)
	assert.Equal(t, "Wrote 2 matches to "+out+"\n", res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "tag,name,id,short_id,file\n"), "format follows the extension")

	_, err = os.Stat(out + ".lock")
	assert.NoError(t, err, "lock file stays beside the export")
}

func TestSearchCommand_MalformedFileIsReported(t *testing.T) {
	setupHome(t)
	root := newTestProject(t, map[string]string{
		"Sounds.wwu":      soundsWwu,
		"Broken/Bad.wwu":  `<WwiseDocument><Sound Name="x">`,
		"Orphan/Lone.wwu": `<MediaID ID="med-7890"/>`,
	})

	res := execute(t, "", "search", root, "789", "--no-history")
	require.NoError(t, res.err, "file errors never fail the command")

	assert.Contains(t, res.stdout, "med-789")
	assert.Contains(t, res.stderr, "Warning: 2 problems during search")
	assert.Contains(t, res.stderr, "Broken/Bad.wwu (parse:")
	assert.Contains(t, res.stderr, "Orphan/Lone.wwu (match:")
	assert.Contains(t, res.stderr, "[WARN]")
}

func TestSearchCommand_Errors(t *testing.T) {
	setupHome(t)
	root := defaultProject(t)

	noMarker := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		wantErr string
		is      error
	}{
		{name: "missing args", args: []string{"search", root}, wantErr: "accepts 2 arg(s)"},
		{name: "bad mode", args: []string{"search", root, "x", "--mode", "name"}, wantErr: "unknown search mode"},
		{name: "bad format", args: []string{"search", root, "x", "--format", "pdf"}, wantErr: "unknown format"},
		{name: "bad log level", args: []string{"search", root, "x", "--log-level", "loud"}, wantErr: "invalid log_level"},
		{name: "missing marker", args: []string{"search", noMarker, "x"}, is: project.ErrMissingMarkerFile},
		{name: "not a directory", args: []string{"search", filepath.Join(root, "Game.wproj"), "x"}, is: project.ErrNotADirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, "", tt.args...)
			require.Error(t, res.err)
			if tt.wantErr != "" {
				assert.Contains(t, res.err.Error(), tt.wantErr)
			}
			if tt.is != nil {
				assert.True(t, errors.Is(res.err, tt.is), "got %v", res.err)
			}
		})
	}
}

func TestSearchCommand_RecordsHistory(t *testing.T) {
	home := setupHome(t)
	root := defaultProject(t)

	require.NoError(t, execute(t, "", "search", root, "789").err)
	require.NoError(t, execute(t, "", "search", root, "guid", "--mode", "guid").err)
	require.NoError(t, execute(t, "", "search", root, "skip-me", "--no-history").err)

	store, err := history.NewStore(filepath.Join(home, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byQuery := map[string]*history.Run{}
	for _, r := range runs {
		byQuery[r.Query] = r
	}
	require.Contains(t, byQuery, "789")
	assert.Equal(t, "MediaID", byQuery["789"].Mode)
	assert.Equal(t, 1, byQuery["789"].MatchCount)
	assert.Equal(t, 2, byQuery["789"].FileCount)
	assert.Equal(t, history.StatusOK, byQuery["789"].Status)
	assert.Equal(t, 2, byQuery["guid"].MatchCount)
}

func TestSearchCommand_FileLogging(t *testing.T) {
	home := setupHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("file_logging: true\n"), 0644))
	root := defaultProject(t)

	res := execute(t, "", "search", root, "789", "--no-history")
	require.NoError(t, res.err)

	latest, err := os.ReadFile(filepath.Join(home, "logs", "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(latest), "=== findid Run Log ===")
	assert.Contains(t, string(latest), "complete: 1 matches")

	dumps, err := filepath.Glob(filepath.Join(home, "logs", "runs", "*.log"))
	require.NoError(t, err)
	assert.Len(t, dumps, 1)
}

func TestSearchCommand_InterruptedSearchKeepsPartialResults(t *testing.T) {
	home := setupHome(t)
	root := defaultProject(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := executeContext(t, ctx, "", "search", root, "789")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Search stopped early")
	assert.Contains(t, res.stderr, "the search was interrupted")
	assert.NotContains(t, res.stderr, "raise --timeout")

	store, err := history.NewStore(filepath.Join(home, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, history.StatusCancelled, runs[0].Status)
}

func TestSearchCommand_LeveledLogging(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    []string
		notWant []string
	}{
		{
			name:  "trace shows paths and settings",
			level: "trace",
			want:  []string{"[TRACE] history db ", "[DEBUG] settings: workers=0", "case_sensitive_ext=false"},
		},
		{
			name:    "warning alias is accepted and hides info",
			level:   "WARNING",
			notWant: []string{"[TRACE]", "[DEBUG]", "1 match in 2 files"},
		},
		{
			name:    "info hides trace and debug",
			level:   "info",
			want:    []string{"1 match in 2 files"},
			notWant: []string{"[TRACE]", "[DEBUG]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHome(t)
			root := defaultProject(t)

			res := execute(t, "", "search", root, "789", "--no-history", "--log-level", tt.level)
			require.NoError(t, res.err)
			assert.Contains(t, res.stdout, "med-789")
			for _, w := range tt.want {
				assert.Contains(t, res.stderr, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, res.stderr, w)
			}
		})
	}
}

func TestSearchCommand_HistoryFailureIsLogged(t *testing.T) {
	home := setupHome(t)
	dbDir := filepath.Join(home, "not-a-db")
	require.NoError(t, os.MkdirAll(dbDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("history:\n  db_path: "+dbDir+"\n"), 0644))
	root := defaultProject(t)

	res := execute(t, "", "search", root, "789")
	require.NoError(t, res.err, "history failures never fail the search")
	assert.Contains(t, res.stdout, "med-789")
	assert.Contains(t, res.stderr, "[ERROR] search history unavailable")
}

func TestSearchCommand_TraceReachesRunLog(t *testing.T) {
	home := setupHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("file_logging: true\nlog_level: trace\n"), 0644))
	root := defaultProject(t)

	res := execute(t, "", "search", root, "789", "--no-history")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "[TRACE] run log "+filepath.Join(home, "logs"))

	latest, err := os.ReadFile(filepath.Join(home, "logs", "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(latest), "[TRACE] history db "+filepath.Join(home, "history.db"))
	assert.Contains(t, string(latest), "[DEBUG] settings: workers=0")
}
