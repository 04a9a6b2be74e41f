package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/findid/internal/project"
)

func TestValidateCommand(t *testing.T) {
	setupHome(t)
	root := defaultProject(t)

	res := execute(t, "", "validate", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "✓ "+root+" is a valid project root")
	assert.Contains(t, res.stdout, "Documents (.wwu): 2")
	assert.NotContains(t, res.stdout, "Note:")
}

func TestValidateCommand_EmptyProject(t *testing.T) {
	setupHome(t)
	root := newTestProject(t, nil)

	res := execute(t, "", "validate", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Documents (.wwu): 0")
	assert.Contains(t, res.stdout, "Note: no .wwu files found")
}

func TestValidateCommand_Invalid(t *testing.T) {
	setupHome(t)

	tests := []struct {
		name  string
		setup func(t *testing.T) string
		is    error
	}{
		{
			name:  "missing directory",
			setup: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			is:    project.ErrNotADirectory,
		},
		{
			name: "marker only in subdirectory",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))
				require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "Game.wproj"), nil, 0644))
				return root
			},
			is: project.ErrMissingMarkerFile,
		},
		{
			name: "directory named like a marker",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				require.NoError(t, os.MkdirAll(filepath.Join(root, "Game.wproj"), 0755))
				return root
			},
			is: project.ErrMissingMarkerFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, "", "validate", tt.setup(t))
			require.Error(t, res.err)
			assert.True(t, errors.Is(res.err, tt.is), "got %v", res.err)
			assert.Contains(t, res.stdout, "✗ ")
		})
	}
}

func TestValidateCommand_CustomMarkerFromConfig(t *testing.T) {
	home := setupHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("marker_ext: .proj\ndocument_ext: .xml\n"), 0644))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Game.proj"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Unit.xml"), []byte(eventsWwu), 0644))

	res := execute(t, "", "validate", root)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Documents (.xml): 1")
}

func TestValidateCommand_ExtensionCase(t *testing.T) {
	tests := []struct {
		name      string
		config    string
		wantCount string
		wantMode  string
	}{
		{
			name:      "default ignores case",
			wantCount: "Documents (.wwu): 2",
			wantMode:  "Extension match: case-insensitive",
		},
		{
			name:      "case_sensitive_ext counts exact spellings only",
			config:    "case_sensitive_ext: true\n",
			wantCount: "Documents (.wwu): 1",
			wantMode:  "Extension match: exact (.wwu only)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := setupHome(t)
			if tt.config != "" {
				require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(tt.config), 0644))
			}
			root := newTestProject(t, map[string]string{
				"Events/Doors.wwu":  eventsWwu,
				"Events/Legacy.WWU": eventsWwu,
			})

			res := execute(t, "", "validate", root)
			require.NoError(t, res.err)
			assert.Contains(t, res.stdout, tt.wantCount)
			assert.Contains(t, res.stdout, tt.wantMode)
		})
	}
}
