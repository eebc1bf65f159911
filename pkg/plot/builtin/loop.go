package builtin

import "github.com/aretw0/tale/pkg/plot"

// updateLoop steps through the children until one is still running or the
// loop is back at the step it started this update on. It never reports done.
func updateLoop(in *plot.Instance) (bool, error) {
	st := seqOf(in)
	steps := stepsOf(in)
	if st == nil || len(steps) == 0 {
		return true, nil
	}
	if st.index < 0 || st.index >= len(steps) {
		logTransition(in, st.goTo(in, 0))
	}

	start := st.index
	for {
		if st.child != nil && st.child.Update() {
			break
		}
		next := st.index + 1
		if next >= len(steps) {
			next = 0
		}
		logTransition(in, st.goTo(in, next))
		if st.index == start {
			break
		}
	}
	return true, nil
}
