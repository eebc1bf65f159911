package process

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tale/pkg/plot"
	"github.com/aretw0/tale/pkg/plot/builtin"
	"github.com/aretw0/tale/pkg/registry"
)

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
}

func TestRunner_Run(t *testing.T) {
	skipOnWindows(t)
	runner := NewRunner()
	runner.Register("greet", "echo", "hello")
	runner.Register("echo_env", "sh", "-c", "echo $TALE_ARG_MSG")
	runner.Register("json", "sh", "-c", `echo '{"ok": true}'`)
	runner.Register("fail", "sh", "-c", "echo oops >&2; exit 3")

	t.Run("registered command", func(t *testing.T) {
		out, err := runner.Run(context.Background(), "greet", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("unregistered command", func(t *testing.T) {
		_, err := runner.Run(context.Background(), "hacker_script", map[string]any{"command": "rm -rf /"})
		assert.ErrorContains(t, err, "not registered")
	})

	t.Run("arguments via env vars", func(t *testing.T) {
		out, err := runner.Run(context.Background(), "echo_env", map[string]any{"msg": "SecretMessage"})
		require.NoError(t, err)
		assert.Equal(t, "SecretMessage", out)
	})

	t.Run("json output", func(t *testing.T) {
		out, err := runner.Run(context.Background(), "json", nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"ok": true}, out)
	})

	t.Run("failure carries stderr", func(t *testing.T) {
		_, err := runner.Run(context.Background(), "fail", nil)
		assert.ErrorContains(t, err, "oops")
	})
}

func TestRunner_Inline(t *testing.T) {
	skipOnWindows(t)
	runner := NewRunner(WithInlineExecution(true), WithBaseDir(t.TempDir()))
	out, err := runner.Run(context.Background(), "adhoc", map[string]any{"command": "echo inline"})
	require.NoError(t, err)
	assert.Equal(t, "inline", out)
}

func TestRunner_InstallFeedsStories(t *testing.T) {
	skipOnWindows(t)
	actions := registry.NewRegistry()
	NewRunner(WithTools(map[string]ToolConfig{
		"answer": {Name: "answer", Command: "echo", Args: []string{"yes"}},
	})).Install(actions)
	assert.Equal(t, []string{"answer", ExecAction}, actions.Names())

	var branch string
	reg := builtin.NewRegistry()
	sw, err := reg.New(builtin.TypeSwitch, map[string]any{
		"yes": func() { branch = "yes" },
		"*":   func() { branch = "no" },
	})
	require.NoError(t, err)
	root, err := reg.Build(builtin.TypeSequence, []any{
		actions.Leaf(ExecAction, map[string]any{"tool": "answer"}, ""),
		sw,
	})
	require.NoError(t, err)

	tl, err := plot.Tell(context.Background(), root, nil)
	require.NoError(t, err)
	assert.False(t, tl.Update())
	assert.Equal(t, "yes", branch)
}

func TestLoadTools(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "tools.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
tools:
  - name: greet
    command: echo
    args: [hello]
  - name: nameless
`), 0o644))
		tools, err := LoadTools(path)
		require.NoError(t, err)
		require.Len(t, tools, 1)
		assert.Equal(t, []string{"hello"}, tools["greet"].Args)
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "tools.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"tools":[{"name":"x","command":"true"}]}`), 0o644))
		tools, err := LoadTools(path)
		require.NoError(t, err)
		assert.Contains(t, tools, "x")
	})

	t.Run("missing", func(t *testing.T) {
		tools, err := LoadTools(filepath.Join(dir, "nope.yaml"))
		require.NoError(t, err)
		assert.Empty(t, tools)
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tools: [\n"), 0o644))
		_, err := LoadTools(path)
		assert.Error(t, err)
	})
}
