package builtin

import (
	"time"

	"github.com/facebookgo/clock"

	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
)

var delayLifecycle = plot.Lifecycle{
	Setup:    setupDelay,
	Update:   updateDelay,
	Teardown: teardownDelay,
}

type delayState struct {
	timer *clock.Timer
	done  bool
}

// newDelay takes the wait as a time.Duration, milliseconds or a duration string.
func newDelay(def *plot.Definition, args []any) error {
	if len(args) != 1 {
		return &domain.InvalidNodeError{Value: args, Reason: "Delay takes exactly one duration"}
	}
	d, err := ParseDuration(args[0])
	if err != nil {
		return err
	}
	def.SetData(d)
	return nil
}

func setupDelay(in *plot.Instance) error {
	d, _ := in.Definition().Data().(time.Duration)
	st := &delayState{}
	in.SetState(st)
	st.timer = in.Telling().Clock().AfterFunc(d, in.Wrap(func(*plot.Instance) {
		st.done = true
	}))
	return nil
}

func updateDelay(in *plot.Instance) (bool, error) {
	st, _ := in.State().(*delayState)
	return st != nil && !st.done, nil
}

func teardownDelay(in *plot.Instance) error {
	st, _ := in.State().(*delayState)
	if st != nil && st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	return nil
}
