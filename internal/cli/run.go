package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/facebookgo/clock"

	"github.com/aretw0/tale"
	"github.com/aretw0/tale/internal/presentation/tui"
	"github.com/aretw0/tale/pkg/adapters/file"
	"github.com/aretw0/tale/pkg/adapters/process"
	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
	"github.com/aretw0/tale/pkg/registry"
)

// DefaultTick is the interval between updates of a running story.
const DefaultTick = 50 * time.Millisecond

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	StoryPath    string
	Scope        string // Raw JSON object merged over the story's scope
	ToolsPath    string
	UnsafeInline bool
	Debug        bool
	Trace        bool
	Quiet        bool
	Watch        bool
	Metrics      string // Listen address for /metrics, empty disables
	Tick         time.Duration

	Stdout io.Writer
	Stderr io.Writer
	Clock  clock.Clock
}

func (o *RunOptions) defaults() {
	if o.Tick <= 0 {
		o.Tick = DefaultTick
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
}

func (o *RunOptions) system(format string, args ...any) {
	if !o.Quiet {
		printSystemMessage(o.Stderr, format, args...)
	}
}

// Execute handles the run command: it tells the story until it is done, or in
// watch mode keeps telling it again whenever the file changes.
func Execute(ctx context.Context, opts RunOptions) error {
	opts.defaults()
	values, err := parseScope(opts.Scope)
	if err != nil {
		return err
	}
	logger := createLogger(opts.Stderr, opts.Debug)

	var hooks domain.LifecycleHooks
	if opts.Trace {
		hooks = domain.MergeHooks(hooks, tui.NewTracer(opts.Stderr, tui.IsTerminal(opts.Stderr)).Hooks())
	}
	if opts.Metrics != "" {
		metrics, handler, err := newMetrics()
		if err != nil {
			return err
		}
		hooks = domain.MergeHooks(hooks, metrics.Hooks())
		addr, shutdown, err := serveMetrics(opts.Metrics, handler, logger)
		if err != nil {
			return err
		}
		defer shutdown()
		opts.system("Metrics available at http://%s/metrics", addr)
	}

	rt := tale.NewRuntime(
		tale.WithLogger(logger),
		tale.WithLifecycleHooks(hooks),
		tale.WithClock(opts.Clock),
	)

	if opts.Watch {
		return runWatch(ctx, opts, rt, values, logger)
	}

	story, err := loadStory(opts, rt.Registry())
	if err != nil {
		return err
	}
	if _, err := tell(ctx, opts, rt, story, values, nil); err != nil {
		return err
	}
	if opts.Metrics != "" && ctx.Err() == nil {
		opts.system("Story finished. Press Ctrl+C to exit.")
		<-ctx.Done()
	}
	return nil
}

// newLoader builds a story loader whose actions are the standard ones plus the
// allow-listed tools.
func newLoader(opts RunOptions, types *plot.Registry) (*file.Loader, error) {
	actions := registry.NewRegistry()
	registry.RegisterStd(actions, opts.Stdout)

	tools := map[string]process.ToolConfig{}
	if opts.ToolsPath != "" {
		var err error
		if tools, err = process.LoadTools(opts.ToolsPath); err != nil {
			return nil, err
		}
	}
	process.NewRunner(
		process.WithTools(tools),
		process.WithInlineExecution(opts.UnsafeInline),
		process.WithBaseDir(filepath.Dir(opts.StoryPath)),
	).Install(actions)

	return file.NewLoader(opts.Stdout, file.WithTypes(types), file.WithActions(actions)), nil
}

func loadStory(opts RunOptions, types *plot.Registry) (*file.Story, error) {
	loader, err := newLoader(opts, types)
	if err != nil {
		return nil, err
	}
	return loader.Load(opts.StoryPath)
}

// tell runs one telling of story, updating it every tick until it is done, ctx
// is cancelled or reload fires. It reports whether it stopped for a reload.
func tell(ctx context.Context, opts RunOptions, rt *tale.Runtime, story *file.Story, values map[string]any, reload <-chan struct{}) (bool, error) {
	scope := make(map[string]any, len(story.Values)+len(values))
	for k, v := range story.Values {
		scope[k] = v
	}
	for k, v := range values {
		scope[k] = v
	}

	faults := 0
	counter := domain.LifecycleHooks{
		OnFault: func(context.Context, *domain.InstanceEvent) { faults++ },
	}
	tl, err := rt.Tell(ctx, story.Root, scope, plot.WithLifecycleHooks(counter))
	if err != nil {
		return false, err
	}
	defer tl.Stop()

	ticker := opts.Clock.Ticker(opts.Tick)
	defer ticker.Stop()

	for tl.Update() {
		select {
		case <-ctx.Done():
			tl.Stop()
		case <-reload:
			return true, nil
		case <-tl.Done():
		case <-ticker.C:
		}
	}
	if ctx.Err() != nil {
		opts.system("%s '%s'.", stopVerb(signalOf(ctx)), story.Name)
		return false, nil
	}

	if faults > 0 {
		return false, fmt.Errorf("story %q finished with %d fault(s)", story.Name, faults)
	}
	opts.system("Finished '%s'.", story.Name)
	return false, nil
}

func runWatch(ctx context.Context, opts RunOptions, rt *tale.Runtime, values map[string]any, logger *slog.Logger) error {
	changes, err := watchFile(ctx, opts.StoryPath, logger)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.StoryPath, err)
	}
	opts.system("Watching '%s'.", opts.StoryPath)

	for {
		story, err := loadStory(opts, rt.Registry())
		if err == nil {
			var reloaded bool
			reloaded, err = tell(ctx, opts, rt, story, values, changes)
			if reloaded {
				opts.system("Change detected, reloading.")
				continue
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.Error("story failed", "err", err)
		}

		opts.system("Waiting for changes...")
		select {
		case <-ctx.Done():
			logger.Info("stopping watcher", "signal", signalOf(ctx))
			return nil
		case <-changes:
		}
	}
}
