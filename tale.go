package tale

import (
	"context"
	"io"
	"log/slog"

	"github.com/facebookgo/clock"

	"github.com/aretw0/tale/pkg/adapters/btree"
	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
	"github.com/aretw0/tale/pkg/plot/builtin"
)

// Runtime is the high-level entry point for the Tale library.
// It pairs a type registry with the logger, hooks and clock every telling it starts shares.
type Runtime struct {
	registry *plot.Registry
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	clock    clock.Clock
}

// Option defines a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithLogger sets a custom structured logger for every telling.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runtime) {
		r.hooks = domain.MergeHooks(r.hooks, hooks)
	}
}

// WithClock sets the clock Delay and Live schedule on. Tests use clock.NewMock().
func WithClock(c clock.Clock) Option {
	return func(r *Runtime) {
		r.clock = c
	}
}

// WithRegistry injects a registry, bypassing the default one with the built-in types.
func WithRegistry(reg *plot.Registry) Option {
	return func(r *Runtime) {
		r.registry = reg
	}
}

// NewRuntime initializes a Runtime. By default it carries a registry with
// the built-in types and Behavior, a discarding logger and the wall clock.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = builtin.NewRegistry()
		if err := btree.Define(r.registry); err != nil {
			panic(err)
		}
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.clock == nil {
		r.clock = clock.New()
	}
	return r
}

// Registry returns the type registry.
func (r *Runtime) Registry() *plot.Registry {
	return r.registry
}

// Logger returns the runtime logger.
func (r *Runtime) Logger() *slog.Logger {
	return r.logger
}

// Define registers a node type. See plot.Registry.Define.
func (r *Runtime) Define(name string, ctor plot.Constructor, life plot.Lifecycle, opts ...plot.TypeOption) error {
	return r.registry.Define(name, ctor, life, opts...)
}

// New constructs a definition of a registered type.
func (r *Runtime) New(kind string, args ...any) (*plot.Definition, error) {
	return r.registry.New(kind, args...)
}

// Build converts a literal into a definition tree. Unmarked lists are Sequences.
func (r *Runtime) Build(literal ...any) (*plot.Definition, error) {
	return r.registry.Build(builtin.TypeSequence, literal)
}

// Tell starts a telling of root with the runtime's logger, hooks and clock.
// Options given here take precedence.
func (r *Runtime) Tell(ctx context.Context, root *plot.Definition, values map[string]any, opts ...plot.Option) (*plot.Telling, error) {
	base := []plot.Option{
		plot.WithLogger(r.logger),
		plot.WithLifecycleHooks(r.hooks),
		plot.WithClock(r.clock),
	}
	return plot.Tell(ctx, root, values, append(base, opts...)...)
}
