package tale

import (
	"context"

	"github.com/aretw0/tale/pkg/adapters/btree"
	"github.com/aretw0/tale/pkg/plot"
	"github.com/aretw0/tale/pkg/plot/builtin"
)

// Default is the runtime used by the package-level helpers.
var Default = NewRuntime()

// The helpers below build definitions on the Default runtime. They are meant
// for authoring stories in Go source, so malformed input panics like
// regexp.MustCompile does.

func must(def *plot.Definition, err error) *plot.Definition {
	if err != nil {
		panic(err)
	}
	return def
}

// Action wraps a function or a plot.Lifecycle as a leaf.
func Action(fn any) *plot.Definition {
	return must(Default.New(builtin.TypeAction, fn))
}

// Sequence runs its steps one after another.
func Sequence(steps ...any) *plot.Definition {
	return must(Default.New(builtin.TypeSequence, steps...))
}

// Group runs its children side by side until all are done.
func Group(children ...any) *plot.Definition {
	return must(Default.New(builtin.TypeGroup, children...))
}

// Switch acts as the task picked by a scope key or a builtin.ChoiceFunc.
// With a single map argument the choice is read from the "result" key.
func Switch(args ...any) *plot.Definition {
	return must(Default.New(builtin.TypeSwitch, args...))
}

// Loop cycles through its steps forever.
func Loop(steps ...any) *plot.Definition {
	return must(Default.New(builtin.TypeLoop, steps...))
}

// Ignore runs its steps as a Sequence that always reports done.
func Ignore(steps ...any) *plot.Definition {
	return must(Default.New(builtin.TypeIgnore, steps...))
}

// Delay waits for d: a time.Duration, milliseconds or a duration string.
func Delay(d any) *plot.Definition {
	return must(Default.New(builtin.TypeDelay, d))
}

// Live keeps its children updating every interval without outside updates.
func Live(interval any, children ...any) *plot.Definition {
	return must(Default.New(builtin.TypeLive, append([]any{interval}, children...)...))
}

// Behavior ticks a bt.Node or a btree.Factory once per update and stores
// "success" or "failure" under key (default "result") when it finishes.
func Behavior(node any, key ...string) *plot.Definition {
	args := []any{node}
	for _, k := range key {
		args = append(args, k)
	}
	return must(Default.New(btree.TypeBehavior, args...))
}

// Build converts a literal on the Default runtime. Unmarked lists are Sequences.
func Build(literal ...any) *plot.Definition {
	return must(Default.Build(literal...))
}

// Tell starts a telling on the Default runtime.
func Tell(ctx context.Context, root *plot.Definition, values map[string]any) (*plot.Telling, error) {
	return Default.Tell(ctx, root, values)
}
