package plot

import (
	"errors"
	"strings"

	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/scope"
)

// Request is a deferred action queued on an instance with Please.
// It runs with the instance active, after the current update or handle call returns.
type Request func(in *Instance) error

// Instance is a live node: one definition specialised for one telling.
type Instance struct {
	def     *Definition
	parent  *Instance
	telling *Telling
	scope   *scope.Scope
	depth   int

	fields  map[string]any
	state   any
	pending []Request

	live    bool
	faulted bool
}

// Spawn instantiates def as a child of in and runs its setup.
// A setup failure is logged and leaves the child faulted, reporting done.
func (in *Instance) Spawn(def *Definition) *Instance {
	if def == nil {
		return nil
	}
	return in.telling.spawn(def, in)
}

// Update runs the update callback and then drains requests queued during it.
// It reports true while the instance is still running.
func (in *Instance) Update() bool {
	if in == nil || !in.live || in.faulted {
		return false
	}
	var running bool
	err := in.telling.act.Run(in, func() error {
		var err error
		running, err = in.def.life.update(in)
		return err
	})
	if err != nil {
		in.fault(domain.PhaseUpdate, err)
	}
	in.drain()
	return running && !in.faulted && in.live
}

// Handle delivers an out-of-band event to the instance.
func (in *Instance) Handle(arg any) any {
	if in == nil || !in.live || in.faulted {
		return nil
	}
	var out any
	err := in.telling.act.Run(in, func() error {
		var err error
		out, err = in.def.life.handle(in, arg)
		return err
	})
	if err != nil {
		in.fault(domain.PhaseHandle, err)
		out = nil
	}
	in.drain()
	return out
}

// Teardown runs the teardown callback once. The instance is marked dead before
// the callback runs, so a failing teardown is never retried. Errors are returned
// after bookkeeping is cleared.
func (in *Instance) Teardown() error {
	if in == nil || !in.live {
		return nil
	}
	t := in.telling
	in.live = false
	in.pending = nil
	err := t.act.Run(in, func() error {
		return in.def.life.teardown(in)
	})
	t.emitInstance(t.hooks.OnTeardown, domain.EventTeardown, in, "", nil)
	if err != nil {
		return t.report(in, domain.PhaseTeardown, err)
	}
	return nil
}

// Please queues req to run on in once its current update or handle call
// completes. It must be called from inside a lifecycle callback.
func (in *Instance) Please(req Request) error {
	if req == nil {
		return errors.New("plot: nil request")
	}
	if in.telling.act.Current() == nil {
		return &domain.ActivationMisuseError{Op: "Please"}
	}
	if !in.live {
		return domain.ErrInstanceDone
	}
	in.pending = append(in.pending, req)
	return nil
}

// Wrap returns a function that, when invoked later from any goroutine, runs fn
// with in active and then updates the telling. If the telling is busy, including
// a call made from inside one of its lifecycle callbacks, the call is queued and
// runs as soon as the telling is released. Calls after in was torn down do nothing.
func (in *Instance) Wrap(fn func(in *Instance)) func() {
	return func() {
		in.telling.invoke(in, fn)
	}
}

func (in *Instance) drain() {
	for len(in.pending) > 0 && in.live {
		req := in.pending[0]
		in.pending[0] = nil
		in.pending = in.pending[1:]
		if err := in.telling.act.Run(in, func() error { return req(in) }); err != nil {
			in.telling.report(in, domain.PhaseRequest, err)
		}
	}
	if !in.live {
		in.pending = nil
	}
}

func (in *Instance) fault(phase domain.Phase, err error) {
	in.faulted = true
	in.telling.report(in, phase, err)
}

// Definition returns the definition this instance specialises.
func (in *Instance) Definition() *Definition {
	return in.def
}

// Kind returns the definition's type tag.
func (in *Instance) Kind() string {
	return in.def.kind
}

// Name returns the definition's declared name.
func (in *Instance) Name() string {
	return in.def.options.Name
}

// Parent returns the enclosing instance, or nil for the root.
func (in *Instance) Parent() *Instance {
	return in.parent
}

// Telling returns the telling this instance belongs to.
func (in *Instance) Telling() *Telling {
	return in.telling
}

// Depth returns the distance from the root instance.
func (in *Instance) Depth() int {
	return in.depth
}

// Live reports whether the instance has not been torn down.
func (in *Instance) Live() bool {
	return in.live
}

// Faulted reports whether a callback failed, leaving the instance done.
func (in *Instance) Faulted() bool {
	return in.faulted
}

// Scope returns the instance's scope (shared with the parent unless the definition owns one).
func (in *Instance) Scope() *scope.Scope {
	return in.scope
}

// State returns the typed per-instance state stored by the node type.
func (in *Instance) State() any {
	return in.state
}

// SetState replaces the typed per-instance state.
func (in *Instance) SetState(v any) {
	in.state = v
}

// Get returns a per-instance field.
func (in *Instance) Get(key string) any {
	return in.fields[key]
}

// Set stores a per-instance field.
func (in *Instance) Set(key string, v any) {
	if in.fields == nil {
		in.fields = make(map[string]any)
	}
	in.fields[key] = v
}

// Find returns the nearest instance (in or an ancestor) declared with name.
func (in *Instance) Find(name string) *Instance {
	for cur := in; cur != nil; cur = cur.parent {
		if cur.def.options.Name == name {
			return cur
		}
	}
	return nil
}

// ScopeOf resolves a scope address: "" or "." is the instance's own scope,
// any other name the scope of the nearest ancestor with that name, falling
// back to the telling's root scope.
func (in *Instance) ScopeOf(name string) *scope.Scope {
	if name == "" || name == "." {
		return in.scope
	}
	if found := in.Find(name); found != nil {
		return found.scope
	}
	return in.scope.Resolve(name)
}

func (in *Instance) resolve(addr string) (*scope.Scope, string) {
	key, name, ok := strings.Cut(addr, "@")
	if !ok {
		return in.scope, addr
	}
	return in.ScopeOf(name), key
}

// Read resolves a "key" or "key@name" address.
func (in *Instance) Read(addr string) any {
	s, key := in.resolve(addr)
	return s.Get(key)
}

// Lookup is Read with a presence flag.
func (in *Instance) Lookup(addr string) (any, bool) {
	s, key := in.resolve(addr)
	return s.Read(key)
}

// Write stores value at a "key" or "key@name" address and returns the previous value.
func (in *Instance) Write(addr string, value any) any {
	s, key := in.resolve(addr)
	return s.Write(key, value)
}
