package builtin

import (
	"time"

	"github.com/facebookgo/clock"

	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
)

var liveLifecycle = plot.Lifecycle{
	Setup:    setupLive,
	Update:   updateLive,
	Teardown: teardownLive,
	Handle:   handleLive,
}

type liveData struct {
	interval time.Duration
	group    *plot.Definition
}

type liveState struct {
	timer *clock.Timer
	group *plot.Instance
}

// newLive takes (interval, children...). The children run as a Group while a
// recurring timer updates the telling every interval.
func newLive(def *plot.Definition, args []any) error {
	if len(args) == 0 {
		return &domain.InvalidNodeError{Reason: "Live needs an interval"}
	}
	interval, err := ParseDuration(args[0])
	if err != nil {
		return err
	}
	if interval <= 0 {
		return &domain.InvalidNodeError{Value: args[0], Reason: "Live interval must be positive"}
	}
	group, err := def.Registry().New(TypeGroup, args[1:]...)
	if err != nil {
		return err
	}
	if _, err := def.Register(group); err != nil {
		return err
	}
	def.SetData(&liveData{interval: interval, group: group})
	return nil
}

func setupLive(in *plot.Instance) error {
	data, _ := in.Definition().Data().(*liveData)
	st := &liveState{}
	in.SetState(st)
	st.group = in.Spawn(data.group)
	st.arm(in, data.interval)
	return nil
}

// arm schedules the next tick. Each tick re-arms from inside the wrapped
// callback, so a torn-down Live never schedules again.
func (st *liveState) arm(in *plot.Instance, interval time.Duration) {
	st.timer = in.Telling().Clock().AfterFunc(interval, in.Wrap(func(in *plot.Instance) {
		st.arm(in, interval)
	}))
}

func updateLive(in *plot.Instance) (bool, error) {
	st, _ := in.State().(*liveState)
	if st == nil || st.group == nil {
		return false, nil
	}
	return st.group.Update(), nil
}

func teardownLive(in *plot.Instance) error {
	st, _ := in.State().(*liveState)
	if st == nil {
		return nil
	}
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	err := st.group.Teardown()
	st.group = nil
	return err
}

func handleLive(in *plot.Instance, arg any) (any, error) {
	st, _ := in.State().(*liveState)
	if st == nil || st.group == nil {
		return nil, nil
	}
	return st.group.Handle(arg), nil
}
