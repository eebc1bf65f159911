package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/tale/pkg/plot"
)

// ResultKey is the scope key an action writes its result to unless told otherwise.
// It is also the key a Switch reads by default, so an action followed by a
// Switch branches on the action's result.
const ResultKey = "result"

// ActionFunc is a named host action. It runs with the calling instance, so it
// may read and write scope, and returns a result or error.
type ActionFunc func(ctx context.Context, in *plot.Instance, args map[string]any) (any, error)

// Registry manages the host actions stories may call by name.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]ActionFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]ActionFunc),
	}
}

// Register adds an action to the registry.
// If an action with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// Has reports whether an action is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[name]
	return ok
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for n := range r.actions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Execute looks up an action by name and executes it.
// Returns an error if the action is not found.
func (r *Registry) Execute(ctx context.Context, in *plot.Instance, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	fn, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("action not found: %s", name)
	}

	return fn(ctx, in, args)
}

// Leaf returns an Action lifecycle that executes the named action once and
// stores its result under saveTo (ResultKey when empty). The name is resolved
// when the leaf runs, so actions may be registered after the story is built.
func (r *Registry) Leaf(name string, args map[string]any, saveTo string) plot.Lifecycle {
	if saveTo == "" {
		saveTo = ResultKey
	}
	return plot.Lifecycle{
		Update: func(in *plot.Instance) (bool, error) {
			out, err := r.Execute(in.Telling().Context(), in, name, args)
			if err != nil {
				return false, fmt.Errorf("%s: %w", name, err)
			}
			in.Write(saveTo, out)
			return false, nil
		},
	}
}
