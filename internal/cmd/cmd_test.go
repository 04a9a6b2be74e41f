package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harrison/findid/internal/config"
)

const (
	soundsWwu = `<?xml version="1.0" encoding="utf-8"?>
<WwiseDocument Type="WorkUnit">
	<AudioObjects>
		<Sound Name="Explosion" ID="abc123">
			<Language>SFX</Language>
			<AudioFile>explosion.wav</AudioFile>
			<Content><MediaID ID="med-789"/></Content>
		</Sound>
	</AudioObjects>
</WwiseDocument>`

	eventsWwu = `<WwiseDocument Type="WorkUnit">
	<Events>
		<Event Name="Door" ID="GUID-1" ShortID="S1"/>
		<Event Name="Window" ID="GUID-2" ShortID="S2"/>
	</Events>
</WwiseDocument>`
)

// cmdResult holds the captured streams of one command execution.
type cmdResult struct {
	stdout string
	stderr string
	err    error
}

// setupHome points FINDID_HOME at a fresh directory and returns it.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnvVar, home)
	return home
}

// newTestProject writes a project root with a marker file and documents.
func newTestProject(t *testing.T, docs map[string]string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Game.wproj"), []byte("<WwiseProject/>"), 0644))
	for rel, content := range docs {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func defaultProject(t *testing.T) string {
	return newTestProject(t, map[string]string{
		"Actor-Mixer Hierarchy/Sounds.wwu": soundsWwu,
		"Events/Doors.wwu":                 eventsWwu,
	})
}

// execute runs a fresh root command with args and stdin.
func execute(t *testing.T, stdin string, args ...string) cmdResult {
	t.Helper()
	return executeContext(t, context.Background(), stdin, args...)
}

// executeContext is execute with a caller-supplied context.
func executeContext(t *testing.T, ctx context.Context, stdin string, args ...string) cmdResult {
	t.Helper()
	var stdout, stderr bytes.Buffer

	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))

	err := root.ExecuteContext(ctx)
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
