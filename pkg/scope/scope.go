// Package scope implements the chained key/value environment shared by live
// instances of a telling.
//
// A Scope reads through to its parent when a key is absent locally and always
// writes locally, so a child scope shadows its ancestors the way a block-local
// variable shadows an outer one. Scopes are safe for concurrent use; within a
// telling they are only touched while the telling holds its lock.
package scope

import (
	"sort"
	"sync"
)

// Scope is one link of a scope chain.
// The zero value is an empty, unnamed root scope.
type Scope struct {
	mu     sync.RWMutex
	parent *Scope
	name   string
	values map[string]any
}

// New creates a scope whose lookups fall through to parent.
// The name is the declared name of the owning instance, or empty.
func New(parent *Scope, name string) *Scope {
	return &Scope{parent: parent, name: name}
}

// NewRoot creates an unnamed root scope seeded with values.
func NewRoot(values map[string]any) *Scope {
	s := &Scope{}
	if len(values) > 0 {
		s.values = make(map[string]any, len(values))
		for k, v := range values {
			s.values[k] = v
		}
	}
	return s
}

// Name returns the declared name of the owning instance.
func (s *Scope) Name() string {
	return s.name
}

// Parent returns the enclosing scope, or nil for a root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Root returns the outermost scope of the chain.
func (s *Scope) Root() *Scope {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Lookup returns the nearest scope in the chain (including s) with the given name.
func (s *Scope) Lookup(name string) (*Scope, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur, true
		}
	}
	return nil, false
}

// Read looks key up locally, then along the parent chain.
func (s *Scope) Read(key string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.local(key); ok {
			return v, true
		}
	}
	return nil, false
}

// Get is Read without the presence flag.
func (s *Scope) Get(key string) any {
	v, _ := s.Read(key)
	return v
}

// Owns reports whether key is set in this scope itself (not an ancestor).
func (s *Scope) Owns(key string) bool {
	_, ok := s.local(key)
	return ok
}

func (s *Scope) local(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.values == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Write stores value in this scope and returns the value key previously resolved to.
func (s *Scope) Write(key string, value any) any {
	old := s.Get(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[key] = value
	return old
}

// Resolve returns the scope a name addresses: "" or "." is s itself, any other
// name the nearest scope with that name, falling back to the root.
func (s *Scope) Resolve(name string) *Scope {
	if name == "" || name == "." {
		return s
	}
	if target, ok := s.Lookup(name); ok {
		return target
	}
	return s.Root()
}

// WriteTo stores value in the scope name resolves to and returns the previous value.
func (s *Scope) WriteTo(name, key string, value any) any {
	return s.Resolve(name).Write(key, value)
}

// Delete removes key from this scope, uncovering any ancestor value.
func (s *Scope) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values != nil {
		delete(s.values, key)
	}
}

// Keys returns the sorted keys set locally in this scope.
func (s *Scope) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot flattens the chain into a map, nearer scopes shadowing outer ones.
// Values are copied shallowly.
func (s *Scope) Snapshot() map[string]any {
	var chain []*Scope
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		cur := chain[i]
		cur.mu.RLock()
		for k, v := range cur.values {
			out[k] = v
		}
		cur.mu.RUnlock()
	}
	return out
}
