package plot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"

	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/scope"
)

// Telling is the root controller of one instantiated tree.
// Update, Handle, Stop and wrapped callbacks are serialised by a mutex, so a
// telling may be driven from timers and host goroutines alike. Update, Handle
// and Stop must not be called from inside a lifecycle callback; use Please
// instead. A wrapped callback may be, and runs once the callback returns.
type Telling struct {
	mu     sync.Mutex
	callMu sync.Mutex
	calls  []wrappedCall
	id     string
	ctx    context.Context
	root   *Instance
	scope  *scope.Scope
	act    Activation
	clock  clock.Clock
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	kind   string
	done   chan struct{}
	detach func() bool
}

type wrappedCall struct {
	in *Instance
	fn func(*Instance)
}

// Option defines a functional option for configuring a Telling.
type Option func(*Telling)

// WithLogger sets the structured logger. Every record carries the telling id.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Telling) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks. Repeated options add up.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Telling) {
		t.hooks = domain.MergeHooks(t.hooks, hooks)
	}
}

// WithClock sets the clock used by timer-based nodes.
func WithClock(c clock.Clock) Option {
	return func(t *Telling) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithID overrides the generated telling identifier.
func WithID(id string) Option {
	return func(t *Telling) {
		if id != "" {
			t.id = id
		}
	}
}

// Tell instantiates root with a fresh root scope seeded from values and runs its setup.
// When ctx is cancelled the telling is stopped.
func Tell(ctx context.Context, root *Definition, values map[string]any, opts ...Option) (*Telling, error) {
	if root == nil {
		return nil, &domain.InvalidNodeError{Reason: "nil root definition"}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	t := &Telling{
		id:     uuid.NewString(),
		ctx:    ctx,
		scope:  scope.NewRoot(values),
		clock:  clock.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		kind:   root.kind,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("telling", t.id)

	t.mu.Lock()
	if t.hooks.OnTell != nil {
		t.hooks.OnTell(t.ctx, t.tellingEvent(domain.EventTell))
	}
	t.logger.Debug("telling started", "root", root.String())
	t.root = t.spawn(root, nil)
	t.unlock()

	if ctx.Done() != nil {
		t.detach = context.AfterFunc(ctx, func() { t.Stop() })
	}
	return t, nil
}

// ID returns the telling identifier.
func (t *Telling) ID() string {
	return t.id
}

// Scope returns the root scope.
func (t *Telling) Scope() *scope.Scope {
	return t.scope
}

// Clock returns the clock timer-based nodes schedule on.
func (t *Telling) Clock() clock.Clock {
	return t.clock
}

// Logger returns the telling's logger.
func (t *Telling) Logger() *slog.Logger {
	return t.logger
}

// Context returns the context the telling was started with.
func (t *Telling) Context() context.Context {
	return t.ctx
}

// Done is closed once the telling has stopped.
func (t *Telling) Done() <-chan struct{} {
	return t.done
}

// Running reports whether the root instance is still alive.
func (t *Telling) Running() bool {
	t.mu.Lock()
	defer t.unlock()
	return t.root != nil
}

// Root returns the root instance, or nil once the telling has stopped.
func (t *Telling) Root() *Instance {
	t.mu.Lock()
	defer t.unlock()
	return t.root
}

// Current returns the instance executing a callback right now.
// It is meant for collaborators called from inside lifecycle callbacks.
func (t *Telling) Current() *Instance {
	return t.act.Current()
}

// Wrap captures the current instance and returns a function that later runs
// fn as that instance and then updates the telling.
func (t *Telling) Wrap(fn func(in *Instance)) (func(), error) {
	in := t.act.Current()
	if in == nil {
		return nil, &domain.ActivationMisuseError{Op: "Wrap"}
	}
	return in.Wrap(fn), nil
}

// Update advances the tree once. It reports true while the tree is running;
// once the root reports done the telling stops itself.
func (t *Telling) Update() bool {
	t.mu.Lock()
	defer t.unlock()
	return t.update()
}

// Handle broadcasts arg to the live instances. It returns nil once stopped.
func (t *Telling) Handle(arg any) any {
	t.mu.Lock()
	defer t.unlock()
	if t.root == nil {
		return nil
	}
	return t.root.Handle(arg)
}

// Stop tears the tree down. It returns false if the telling was already stopped.
func (t *Telling) Stop() bool {
	t.mu.Lock()
	defer t.unlock()
	return t.stop()
}

func (t *Telling) update() bool {
	if t.root == nil {
		return false
	}
	running := t.root.Update()
	if !running {
		t.stop()
	}
	return running
}

func (t *Telling) stop() bool {
	if t.root == nil {
		return false
	}
	root := t.root
	t.root = nil

	if err := root.Teardown(); err != nil {
		t.logger.Error("teardown incomplete", "err", err)
	}
	if t.hooks.OnStop != nil {
		t.hooks.OnStop(t.ctx, t.tellingEvent(domain.EventStop))
	}
	t.logger.Debug("telling stopped")
	close(t.done)
	if t.detach != nil {
		t.detach()
	}
	return true
}

// invoke queues a wrapped callback and runs the queue if the telling is free.
// Otherwise the current holder runs it when it unlocks, which is also what
// happens when the callback fires from inside a lifecycle callback.
func (t *Telling) invoke(in *Instance, fn func(*Instance)) {
	t.callMu.Lock()
	t.calls = append(t.calls, wrappedCall{in: in, fn: fn})
	t.callMu.Unlock()
	if t.mu.TryLock() {
		t.runCalls()
		t.unlock()
	}
}

// unlock releases the telling, then runs wrapped callbacks queued while it was held.
func (t *Telling) unlock() {
	t.mu.Unlock()
	for t.hasCalls() {
		if !t.mu.TryLock() {
			return
		}
		t.runCalls()
		t.mu.Unlock()
	}
}

func (t *Telling) hasCalls() bool {
	t.callMu.Lock()
	defer t.callMu.Unlock()
	return len(t.calls) > 0
}

func (t *Telling) runCalls() {
	for {
		t.callMu.Lock()
		calls := t.calls
		t.calls = nil
		t.callMu.Unlock()
		if len(calls) == 0 {
			return
		}
		for _, c := range calls {
			t.call(c.in, c.fn)
		}
	}
}

func (t *Telling) call(in *Instance, fn func(*Instance)) {
	if t.root == nil || !in.live {
		t.logger.Debug("stale callback ignored", "type", in.def.kind)
		return
	}
	if fn != nil {
		err := t.act.Run(in, func() error {
			fn(in)
			return nil
		})
		if err != nil {
			t.report(in, domain.PhaseCallback, err)
		}
	}
	t.update()
}

func (t *Telling) spawn(def *Definition, parent *Instance) *Instance {
	in := &Instance{def: def, parent: parent, telling: t, live: true}
	parentScope := t.scope
	if parent != nil {
		parentScope = parent.scope
		in.depth = parent.depth + 1
	}
	if def.options.OwnsScope {
		in.scope = scope.New(parentScope, def.options.Name)
	} else {
		in.scope = parentScope
	}

	t.emitInstance(t.hooks.OnSetup, domain.EventSetup, in, "", nil)
	if err := t.act.Run(in, func() error { return def.life.setup(in) }); err != nil {
		in.fault(domain.PhaseSetup, err)
	}
	return in
}

// report logs a callback failure and notifies the fault hook.
// In a teardown, parts of err that already carry a LifecycleError were
// reported by the descendant that raised them; only the rest is reported
// for in.
func (t *Telling) report(in *Instance, phase domain.Phase, err error) error {
	if phase != domain.PhaseTeardown {
		return t.raise(in, phase, err)
	}
	reported, own := splitReported(err)
	if len(own) == 0 {
		return err
	}
	ownErr := own[0]
	if len(own) > 1 {
		ownErr = errors.Join(own...)
	}
	lerr := t.raise(in, phase, ownErr)
	if len(reported) == 0 {
		return lerr
	}
	return errors.Join(append(reported, lerr)...)
}

func (t *Telling) raise(in *Instance, phase domain.Phase, err error) *domain.LifecycleError {
	lerr := &domain.LifecycleError{
		Type:  in.def.kind,
		Name:  in.def.options.Name,
		Phase: phase,
		Err:   err,
	}
	var pe *panicError
	if errors.As(err, &pe) {
		lerr.Panic = true
	}

	level := slog.LevelError
	if phase == domain.PhaseRequest || phase == domain.PhaseCallback {
		level = slog.LevelWarn
	}
	t.logger.Log(t.ctx, level, "lifecycle fault",
		"type", lerr.Type,
		"name", lerr.Name,
		"phase", string(phase),
		"panic", lerr.Panic,
		"err", err,
	)
	t.emitInstance(t.hooks.OnFault, domain.EventFault, in, phase, lerr)
	return lerr
}

// splitReported flattens joined errors into the parts that wrap a
// LifecycleError and the parts that do not.
func splitReported(err error) (reported, own []error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			r, o := splitReported(e)
			reported = append(reported, r...)
			own = append(own, o...)
		}
		return reported, own
	}
	var lerr *domain.LifecycleError
	if errors.As(err, &lerr) {
		return []error{err}, nil
	}
	return nil, []error{err}
}

func (t *Telling) emitInstance(hook func(context.Context, *domain.InstanceEvent), typ domain.EventType, in *Instance, phase domain.Phase, err error) {
	if hook == nil {
		return
	}
	hook(t.ctx, &domain.InstanceEvent{
		EventBase: domain.EventBase{
			Timestamp: t.clock.Now(),
			Type:      typ,
			TellingID: t.id,
		},
		NodeType: in.def.kind,
		NodeName: in.def.options.Name,
		Depth:    in.depth,
		Phase:    phase,
		Err:      err,
	})
}

func (t *Telling) tellingEvent(typ domain.EventType) *domain.TellingEvent {
	return &domain.TellingEvent{
		EventBase: domain.EventBase{
			Timestamp: t.clock.Now(),
			Type:      typ,
			TellingID: t.id,
		},
		RootType: t.kind,
	}
}
