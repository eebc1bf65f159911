package builtin

import (
	"errors"

	"github.com/aretw0/tale/pkg/plot"
)

var groupLifecycle = plot.Lifecycle{
	Setup:    setupGroup,
	Update:   updateGroup,
	Teardown: teardownGroup,
	Handle:   handleGroup,
}

// groupState holds the child instances in creation order.
type groupState struct {
	children []*plot.Instance
}

func newGroup(def *plot.Definition, args []any) error {
	for _, arg := range args {
		if _, err := def.Register(arg); err != nil {
			return err
		}
	}
	return nil
}

func groupOf(in *plot.Instance) *groupState {
	st, _ := in.State().(*groupState)
	return st
}

func setupGroup(in *plot.Instance) error {
	children := in.Definition().Children()
	st := &groupState{children: make([]*plot.Instance, 0, len(children))}
	in.SetState(st)
	for _, c := range children {
		st.children = append(st.children, in.Spawn(c))
	}
	return nil
}

// updateGroup updates every child, without short-circuit, and runs while any child runs.
func updateGroup(in *plot.Instance) (bool, error) {
	st := groupOf(in)
	if st == nil {
		return false, nil
	}
	running := false
	for _, c := range st.children {
		if c.Update() {
			running = true
		}
	}
	return running, nil
}

func teardownGroup(in *plot.Instance) error {
	st := groupOf(in)
	if st == nil {
		return nil
	}
	var errs []error
	for i := len(st.children) - 1; i >= 0; i-- {
		if err := st.children[i].Teardown(); err != nil {
			errs = append(errs, err)
		}
	}
	st.children = nil
	return errors.Join(errs...)
}

// handleGroup broadcasts arg and returns the first non-nil answer.
func handleGroup(in *plot.Instance, arg any) (any, error) {
	st := groupOf(in)
	if st == nil {
		return nil, nil
	}
	var out any
	for _, c := range st.children {
		if r := c.Handle(arg); r != nil && out == nil {
			out = r
		}
	}
	return out, nil
}
