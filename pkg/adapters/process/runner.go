package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/aretw0/tale/pkg/plot"
	"github.com/aretw0/tale/pkg/registry"
)

// ExecAction is the host action name that runs allow-listed commands by "tool".
const ExecAction = "exec"

// EnvPrefix prefixes the environment variables action arguments are passed in.
const EnvPrefix = "TALE_ARG_"

// Runner executes local processes on behalf of stories.
// It follows a strict allow-list: only registered commands run, unless inline
// execution is enabled.
type Runner struct {
	commands    map[string]Command
	allowInline bool
	baseDir     string
}

// Command is an allowed command line.
type Command struct {
	Command string
	Args    []string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithTools populates the allow-list from loaded config.
func WithTools(tools map[string]ToolConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			r.Register(name, tool.Command, tool.Args...)
		}
	}
}

// WithInlineExecution lets the "command" argument run commands that are not registered.
func WithInlineExecution(allow bool) RunnerOption {
	return func(r *Runner) {
		r.allowInline = allow
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		commands: make(map[string]Command),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.commands[name] = Command{Command: command, Args: args}
}

// Tools returns the allow-listed tool names, sorted.
func (r *Runner) Tools() []string {
	names := make([]string, 0, len(r.commands))
	for n := range r.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run executes the named tool. Arguments are passed as TALE_ARG_<KEY>
// environment variables, never as command-line flags. Stdout is the result,
// decoded when it is a JSON object or array.
func (r *Runner) Run(ctx context.Context, name string, args map[string]any) (any, error) {
	proc, ok := r.commands[name]
	if !ok && r.allowInline {
		if line := cast.ToString(args["command"]); line != "" {
			fields := strings.Fields(line)
			proc, ok = Command{Command: fields[0], Args: fields[1:]}, true
		}
	}
	if !ok {
		return nil, fmt.Errorf("process tool not registered: %s", name)
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), encodeEnv(args)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: execution failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return decodeOutput(stdout.String()), nil
}

// Install registers the "exec" action and one action per allow-listed tool on reg.
func (r *Runner) Install(reg *registry.Registry) {
	reg.Register(ExecAction, func(ctx context.Context, _ *plot.Instance, args map[string]any) (any, error) {
		return r.Run(ctx, cast.ToString(args["tool"]), args)
	})
	for _, name := range r.Tools() {
		name := name
		reg.Register(name, func(ctx context.Context, _ *plot.Instance, args map[string]any) (any, error) {
			return r.Run(ctx, name, args)
		})
	}
}

func encodeEnv(args map[string]any) []string {
	env := make([]string, 0, len(args))
	for k, v := range args {
		var val string
		switch v.(type) {
		case string, int, int64, float64, bool:
			val = cast.ToString(v)
		case nil:
		default:
			if b, err := json.Marshal(v); err == nil {
				val = string(b)
			} else {
				val = fmt.Sprintf("%v", v)
			}
		}
		env = append(env, EnvPrefix+strings.ToUpper(k)+"="+val)
	}
	return env
}

func decodeOutput(out string) any {
	trimmed := strings.TrimSpace(out)
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return trimmed
}
