package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tale"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "tale version "+strings.TrimSpace(tale.Version)+"\n", out.String())
}

func TestDefaultTools(t *testing.T) {
	dir := t.TempDir()
	story := filepath.Join(dir, "story.yaml")
	assert.Empty(t, defaultTools(story))

	tools := filepath.Join(dir, "tools.yaml")
	require.NoError(t, os.WriteFile(tools, []byte("tools: []\n"), 0o644))
	assert.Equal(t, tools, defaultTools(story))
}
