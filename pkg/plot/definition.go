package plot

import (
	"fmt"
	"strings"
)

// SetupFunc prepares a freshly created instance.
type SetupFunc func(in *Instance) error

// UpdateFunc advances an instance. It reports true while the instance is still running.
type UpdateFunc func(in *Instance) (bool, error)

// TeardownFunc releases whatever setup acquired.
type TeardownFunc func(in *Instance) error

// HandleFunc receives an out-of-band event broadcast through the tree.
type HandleFunc func(in *Instance, arg any) (any, error)

// Lifecycle is the table of callbacks a node type implements.
// A nil entry falls back to the default: no-op setup, teardown and handle,
// and an update that reports done.
type Lifecycle struct {
	Setup    SetupFunc
	Update   UpdateFunc
	Teardown TeardownFunc
	Handle   HandleFunc
}

// overlay returns l with every non-nil entry of over replacing it.
func (l Lifecycle) overlay(over Lifecycle) Lifecycle {
	if over.Setup != nil {
		l.Setup = over.Setup
	}
	if over.Update != nil {
		l.Update = over.Update
	}
	if over.Teardown != nil {
		l.Teardown = over.Teardown
	}
	if over.Handle != nil {
		l.Handle = over.Handle
	}
	return l
}

// empty reports whether no callback is set.
func (l Lifecycle) empty() bool {
	return l.Setup == nil && l.Update == nil && l.Teardown == nil && l.Handle == nil
}

func (l Lifecycle) setup(in *Instance) error {
	if l.Setup == nil {
		return nil
	}
	return l.Setup(in)
}

func (l Lifecycle) update(in *Instance) (bool, error) {
	if l.Update == nil {
		return false, nil
	}
	return l.Update(in)
}

func (l Lifecycle) teardown(in *Instance) error {
	if l.Teardown == nil {
		return nil
	}
	return l.Teardown(in)
}

func (l Lifecycle) handle(in *Instance, arg any) (any, error) {
	if l.Handle == nil {
		return nil, nil
	}
	return l.Handle(in, arg)
}

// Options is the static configuration of a definition.
type Options struct {
	// Name is the declared name, used by Find and key@name scope addressing.
	Name string
	// OwnsScope makes every instance create a child scope.
	OwnsScope bool
	// Extra holds type-specific settings.
	Extra map[string]any
}

func (o Options) clone() Options {
	if o.Extra != nil {
		extra := make(map[string]any, len(o.Extra))
		for k, v := range o.Extra {
			extra[k] = v
		}
		o.Extra = extra
	}
	return o
}

// ParseName interprets a declared name.
// "name" and "+name" own a new scope; "-name" names the node but shares its parent's scope.
func ParseName(raw string) (name string, ownsScope bool) {
	switch {
	case strings.HasPrefix(raw, "+"):
		return raw[1:], true
	case strings.HasPrefix(raw, "-"):
		return raw[1:], false
	default:
		return raw, true
	}
}

// Definition is an immutable behavior template. Any number of tellings may
// instantiate the same definition concurrently; only instances carry state.
type Definition struct {
	kind     string
	options  Options
	life     Lifecycle
	base     Lifecycle
	nest     string
	children []*Definition
	data     any
	registry *Registry
	sealed   bool
}

// Kind returns the type tag.
func (d *Definition) Kind() string {
	return d.kind
}

// Name returns the declared name, if any.
func (d *Definition) Name() string {
	return d.options.Name
}

// Options returns a copy of the static options.
func (d *Definition) Options() Options {
	return d.options.clone()
}

// Option returns a type-specific setting.
func (d *Definition) Option(key string) (any, bool) {
	v, ok := d.options.Extra[key]
	return v, ok
}

// Lifecycle returns the callbacks instances of this definition run.
func (d *Definition) Lifecycle() Lifecycle {
	return d.life
}

// Base returns the lifecycle of the base type this type was derived from.
// Derived types use it to invoke the inherited behavior explicitly.
func (d *Definition) Base() Lifecycle {
	return d.base
}

// Children returns the registered child definitions in registration order.
func (d *Definition) Children() []*Definition {
	out := make([]*Definition, len(d.children))
	copy(out, d.children)
	return out
}

// Data returns the type-specific payload stored by the constructor.
func (d *Definition) Data() any {
	return d.data
}

// Registry returns the registry that constructed this definition.
func (d *Definition) Registry() *Registry {
	return d.registry
}

// String returns a short label like "Sequence(@intro)".
func (d *Definition) String() string {
	if d.options.Name != "" {
		return fmt.Sprintf("%s(@%s)", d.kind, d.options.Name)
	}
	return d.kind
}

func (d *Definition) mustBeOpen(op string) {
	if d.sealed {
		panic(fmt.Sprintf("plot: %s on sealed %s definition", op, d.kind))
	}
}

// SetData stores the type-specific payload. Only valid inside a constructor.
func (d *Definition) SetData(v any) {
	d.mustBeOpen("SetData")
	d.data = v
}

// Override replaces lifecycle entries for this definition only.
// Only valid inside a constructor.
func (d *Definition) Override(l Lifecycle) {
	d.mustBeOpen("Override")
	d.life = d.life.overlay(l)
}

// SetOption stores a type-specific setting. Only valid inside a constructor.
func (d *Definition) SetOption(key string, v any) {
	d.mustBeOpen("SetOption")
	if d.options.Extra == nil {
		d.options.Extra = make(map[string]any)
	}
	d.options.Extra[key] = v
}

// SetNest chooses the container type used for nested literal lists.
// Only valid inside a constructor.
func (d *Definition) SetNest(kind string) {
	d.mustBeOpen("SetNest")
	d.nest = kind
}

// Register coerces child into a definition and records it as a child of d.
func (d *Definition) Register(child any) (*Definition, error) {
	if d.registry == nil {
		return nil, fmt.Errorf("plot: %s definition has no registry", d.kind)
	}
	return d.registry.Register(d, child)
}

func (d *Definition) applyName(raw string) {
	name, owns := ParseName(raw)
	d.options.Name = name
	d.options.OwnsScope = owns
}

func (d *Definition) seal() {
	if d.sealed {
		return
	}
	d.sealed = true
	for _, c := range d.children {
		c.seal()
	}
}
