// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "cookie", "  cf_clearance=abc; session=1  \n")
				writeFile(t, dir, "user-agent", "Mozilla/5.0\n")
				return dir
			},
			want: Secrets{"cookie": "cf_clearance=abc; session=1", "user-agent": "Mozilla/5.0"},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files, dotfiles, and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "cookie", "c=1")
				writeFile(t, dir, "empty", "  \n\t")
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden", "x")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
				return dir
			},
			want: Secrets{"cookie": "c=1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warn bytes.Buffer
			got, err := Load(tt.setup(t), &warn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, warn.String())
		})
	}
}

func TestLoad_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	writeFile(t, filepath.Dir(path), "file", "x")

	_, err := Load(path, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestHeaders(t *testing.T) {
	s := Secrets{"cookie": "c=1", "user-agent": "ua/1", "other": "ignored"}
	assert.Equal(t, map[string]string{"Cookie": "c=1", "User-Agent": "ua/1"}, s.Headers())
	assert.Equal(t, []string{"cookie", "other", "user-agent"}, s.Keys())
	assert.Empty(t, Secrets{}.Headers())
}
