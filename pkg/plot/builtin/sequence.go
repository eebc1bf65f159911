package builtin

import (
	"fmt"

	"github.com/aretw0/tale/pkg/plot"
)

var sequenceLifecycle = plot.Lifecycle{
	Setup:    setupSequence,
	Update:   updateSequence,
	Teardown: teardownSequence,
	Handle:   handleSequence,
}

// seqState tracks the single live step of a Sequence, Loop or Ignore.
type seqState struct {
	index int
	child *plot.Instance
}

func newSequence(def *plot.Definition, args []any) error {
	steps := make([]*plot.Definition, 0, len(args))
	for _, arg := range args {
		step, err := def.Register(arg)
		if err != nil {
			return err
		}
		steps = append(steps, step)
	}
	def.SetData(steps)
	return nil
}

func stepsOf(in *plot.Instance) []*plot.Definition {
	steps, _ := in.Definition().Data().([]*plot.Definition)
	return steps
}

func seqOf(in *plot.Instance) *seqState {
	st, _ := in.State().(*seqState)
	return st
}

// goTo tears down the current step and instantiates steps[i], if present.
func (st *seqState) goTo(in *plot.Instance, i int) error {
	var err error
	if st.child != nil {
		err = st.child.Teardown()
		st.child = nil
	}
	st.index = i
	if steps := stepsOf(in); i >= 0 && i < len(steps) {
		st.child = in.Spawn(steps[i])
	}
	return err
}

func setupSequence(in *plot.Instance) error {
	st := &seqState{index: -1}
	in.SetState(st)
	return st.goTo(in, 0)
}

func updateSequence(in *plot.Instance) (bool, error) {
	st := seqOf(in)
	if st == nil {
		return false, nil
	}
	for st.child != nil && !st.child.Update() {
		logTransition(in, st.goTo(in, st.index+1))
	}
	return st.index < len(stepsOf(in)), nil
}

func teardownSequence(in *plot.Instance) error {
	st := seqOf(in)
	if st == nil || st.child == nil {
		return nil
	}
	err := st.child.Teardown()
	st.child = nil
	return err
}

func handleSequence(in *plot.Instance, arg any) (any, error) {
	st := seqOf(in)
	if st == nil || st.child == nil {
		return nil, nil
	}
	return st.child.Handle(arg), nil
}

// Select returns a request that jumps a Sequence, Loop or Ignore to step i.
// An index past the last step leaves the sequence with no live step, done.
func Select(i int) plot.Request {
	return func(in *plot.Instance) error {
		st := seqOf(in)
		if st == nil {
			return fmt.Errorf("select %d on %s: %w", i, in.Kind(), ErrIncompatibleTarget)
		}
		logTransition(in, st.goTo(in, i))
		return nil
	}
}

// Restart returns a request that sends a sequence back to its first step.
func Restart() plot.Request {
	return Select(0)
}
