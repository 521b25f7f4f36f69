package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("VELT_CONFIG_HOME", t.TempDir())
	configPath, themeName, verbose, renderTerminal = "", "", false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestRenderCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n\n<script>alert(1)</script>"), 0644))

	out := execute(t, "render", path)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Title")
	assert.NotContains(t, out, "<script>")
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "Velt dev\n", execute(t, "version"))
}

func TestConfigInitAndThemes(t *testing.T) {
	out := execute(t, "config", "init")
	assert.Contains(t, out, "Configuration ready at")

	out = execute(t, "themes", "list")
	assert.Contains(t, out, "* default-dark")
	assert.Contains(t, out, "default-light")
}

func TestRecentListEmpty(t *testing.T) {
	assert.Equal(t, "No recent files.\n", execute(t, "recent", "list"))
}
