package plot

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/tale/pkg/domain"
)

// Type names the builder relies on when coercing literals.
const (
	TypeAction = "Action"
	TypeGroup  = "Group"
)

// Constructor populates a new definition from its arguments.
// Constructors of a derived type run after those of its base, with the same arguments.
type Constructor func(def *Definition, args []any) error

// TypeOption customises a node type at definition time.
type TypeOption func(*nodeType)

// WithDefaults sets the options every definition of the type starts with.
func WithDefaults(opts Options) TypeOption {
	return func(t *nodeType) {
		t.defaults = opts.clone()
	}
}

// WithNest sets the container type used for nested literal lists.
func WithNest(kind string) TypeOption {
	return func(t *nodeType) {
		t.nest = kind
	}
}

type nodeType struct {
	name     string
	base     *nodeType
	ctor     Constructor
	life     Lifecycle
	defaults Options
	nest     string
}

// Registry manages the available node types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*nodeType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*nodeType),
	}
}

// Define registers a node type. A name of the form "Name:Base" derives the
// type from Base: its lifecycle entries replace the base entries one by one,
// and the base constructor runs before ctor.
func (r *Registry) Define(name string, ctor Constructor, life Lifecycle, opts ...TypeOption) error {
	var baseName string
	if n, b, ok := strings.Cut(name, ":"); ok {
		name, baseName = n, b
	}
	if name == "" {
		return fmt.Errorf("plot: empty type name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; exists {
		return &domain.DuplicateTypeError{Name: name}
	}

	t := &nodeType{name: name, ctor: ctor, life: life, nest: TypeGroup}
	if baseName != "" {
		base, ok := r.types[baseName]
		if !ok {
			return fmt.Errorf("plot: base of %s: %w: %s", name, domain.ErrUnknownType, baseName)
		}
		t.base = base
		t.life = base.life.overlay(life)
		t.defaults = base.defaults.clone()
		t.nest = base.nest
	}
	for _, opt := range opts {
		opt(t)
	}
	r.types[name] = t
	return nil
}

// Has reports whether a type is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[name]
	return ok
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for n := range r.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (*nodeType, error) {
	r.mu.RLock()
	t, ok := r.types[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownType, name)
	}
	return t, nil
}

// New constructs a definition of a registered type.
func (r *Registry) New(name string, args ...any) (*Definition, error) {
	def, err := r.construct(name, args)
	if err != nil {
		return nil, err
	}
	def.seal()
	return def, nil
}

// Build converts an author-facing literal into a definition tree.
// Leading "#Type" selects the container (default defaultType) and leading
// "@name" declares a name; the remaining elements, starting with the first
// element that is not a marker, are the container's arguments.
func (r *Registry) Build(defaultType string, literal []any) (*Definition, error) {
	def, err := r.build(defaultType, literal)
	if err != nil {
		return nil, err
	}
	def.seal()
	return def, nil
}

func (r *Registry) build(kind string, list []any) (*Definition, error) {
	var name string
	named := false
markers:
	for len(list) > 0 {
		s, ok := list[0].(string)
		if !ok {
			break
		}
		switch {
		case strings.HasPrefix(s, "#"):
			kind = s[1:]
		case strings.HasPrefix(s, "@"):
			name = s[1:]
			named = true
		default:
			// plain strings are constructor arguments, e.g. a Switch choice key
			break markers
		}
		list = list[1:]
	}
	if kind == "" {
		return nil, &domain.InvalidNodeError{Value: "#", Reason: "empty type marker"}
	}

	def, err := r.construct(kind, list)
	if err != nil {
		return nil, err
	}
	if named {
		def.applyName(name)
	}
	return def, nil
}

func (r *Registry) construct(name string, args []any) (*Definition, error) {
	t, err := r.lookup(name)
	if err != nil {
		return nil, err
	}

	def := &Definition{
		kind:     t.name,
		options:  t.defaults.clone(),
		life:     t.life,
		nest:     t.nest,
		registry: r,
	}
	if t.base != nil {
		def.base = t.base.life
	}

	var chain []*nodeType
	for cur := t; cur != nil; cur = cur.base {
		chain = append(chain, cur)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].ctor == nil {
			continue
		}
		if err := chain[i].ctor(def, args); err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
	}
	return def, nil
}

// Register normalises child into a definition, records it under parent and returns it.
// It is the single coercion point for composite constructors:
//   - *Definition is used as is
//   - []any is built with the parent's nesting container
//   - Lifecycle, *Lifecycle and the function shapes accepted by Action become Action leaves
func (r *Registry) Register(parent *Definition, child any) (*Definition, error) {
	def, err := r.coerce(parent, child)
	if err != nil {
		return nil, err
	}
	if parent != nil {
		parent.mustBeOpen("Register")
		parent.children = append(parent.children, def)
	}
	return def, nil
}

func (r *Registry) coerce(parent *Definition, child any) (*Definition, error) {
	switch c := child.(type) {
	case nil:
		return nil, &domain.InvalidNodeError{Reason: "nil child"}
	case *Definition:
		if c == nil {
			return nil, &domain.InvalidNodeError{Reason: "nil definition"}
		}
		return c, nil
	case []any:
		nest := TypeGroup
		if parent != nil && parent.nest != "" {
			nest = parent.nest
		}
		return r.build(nest, c)
	}

	if !IsActionLiteral(child) {
		return nil, &domain.InvalidNodeError{Value: child, Reason: "expected a definition, a list, a function or a Lifecycle"}
	}
	if !r.Has(TypeAction) {
		return nil, &domain.InvalidNodeError{Value: child, Reason: "no Action type registered"}
	}
	return r.construct(TypeAction, []any{child})
}

// IsActionLiteral reports whether v can become an Action leaf.
func IsActionLiteral(v any) bool {
	switch l := v.(type) {
	case func(), func() bool, func(*Instance), func(*Instance) bool,
		func(*Instance) (bool, error), UpdateFunc:
		return true
	case Lifecycle:
		return !l.empty()
	case *Lifecycle:
		return l != nil && !l.empty()
	}
	return false
}

// ActionLifecycle converts an action literal into a lifecycle.
// A bare function becomes the update; func() and func(*Instance) run once and report done.
func ActionLifecycle(v any) (Lifecycle, error) {
	switch f := v.(type) {
	case func():
		return Lifecycle{Update: func(*Instance) (bool, error) { f(); return false, nil }}, nil
	case func() bool:
		return Lifecycle{Update: func(*Instance) (bool, error) { return f(), nil }}, nil
	case func(*Instance):
		return Lifecycle{Update: func(in *Instance) (bool, error) { f(in); return false, nil }}, nil
	case func(*Instance) bool:
		return Lifecycle{Update: func(in *Instance) (bool, error) { return f(in), nil }}, nil
	case func(*Instance) (bool, error):
		return Lifecycle{Update: f}, nil
	case UpdateFunc:
		return Lifecycle{Update: f}, nil
	case Lifecycle:
		if !f.empty() {
			return f, nil
		}
	case *Lifecycle:
		if f != nil && !f.empty() {
			return *f, nil
		}
	}
	return Lifecycle{}, &domain.InvalidNodeError{Value: v, Reason: "not an action literal"}
}
