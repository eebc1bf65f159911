package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
)

// DefaultChoiceKey is the scope key a Switch reads when no choice source is given.
const DefaultChoiceKey = "result"

// Wildcard is the task key used when no other task matches.
const Wildcard = "*"

// ChoiceFunc computes the state a Switch should be in.
type ChoiceFunc func(in *plot.Instance) any

var switchLifecycle = plot.Lifecycle{
	Setup:    setupSwitch,
	Update:   updateSwitch,
	Teardown: teardownSwitch,
	Handle:   handleSwitch,
}

type switchData struct {
	key    string
	choose ChoiceFunc
	tasks  map[string]*plot.Definition
}

type switchState struct {
	state  string
	forced bool
	child  *plot.Instance
}

// newSwitch accepts (tasks) or (choice, tasks). The choice is a scope address
// read on every update, or a ChoiceFunc. Task keys starting with '$' are
// stored as options instead of tasks.
func newSwitch(def *plot.Definition, args []any) error {
	var choice any = DefaultChoiceKey
	var rawTasks any
	switch len(args) {
	case 1:
		rawTasks = args[0]
	case 2:
		choice, rawTasks = args[0], args[1]
	default:
		return &domain.InvalidNodeError{Value: args, Reason: "Switch takes an optional choice and a task map"}
	}

	data := &switchData{tasks: make(map[string]*plot.Definition)}
	switch c := choice.(type) {
	case string:
		key := c
		data.key = key
		data.choose = func(in *plot.Instance) any { return in.Read(key) }
	case ChoiceFunc:
		data.choose = c
	case func(*plot.Instance) any:
		data.choose = c
	default:
		return &domain.InvalidNodeError{Value: choice, Reason: "Switch choice must be a scope key or a function"}
	}

	tasks, err := cast.ToStringMapE(rawTasks)
	if err != nil {
		return &domain.InvalidNodeError{Value: rawTasks, Reason: "Switch tasks must be a map"}
	}
	keys := make([]string, 0, len(tasks))
	for k := range tasks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.HasPrefix(k, "$") {
			def.SetOption(k, tasks[k])
			continue
		}
		task, err := def.Register(tasks[k])
		if err != nil {
			return fmt.Errorf("task %q: %w", k, err)
		}
		data.tasks[k] = task
	}
	if len(data.tasks) == 0 {
		return &domain.InvalidNodeError{Value: rawTasks, Reason: "Switch needs at least one task"}
	}
	def.SetData(data)
	return nil
}

func switchOf(in *plot.Instance) (*switchState, *switchData) {
	st, _ := in.State().(*switchState)
	data, _ := in.Definition().Data().(*switchData)
	return st, data
}

// enter tears down the active task and sets up the one matching state.
func (st *switchState) enter(in *plot.Instance, data *switchData, state string) {
	if st.child != nil {
		logTransition(in, st.child.Teardown())
		st.child = nil
	}
	st.state = state
	task, ok := data.tasks[state]
	if !ok {
		task, ok = data.tasks[Wildcard]
	}
	if !ok {
		in.Telling().Logger().Warn("switch has no task for state",
			"name", in.Name(),
			"err", &domain.UnknownStateError{State: state},
		)
		return
	}
	st.child = in.Spawn(task)
}

func setupSwitch(in *plot.Instance) error {
	_, data := switchOf(in)
	st := &switchState{}
	in.SetState(st)
	st.enter(in, data, cast.ToString(data.choose(in)))
	return nil
}

func updateSwitch(in *plot.Instance) (bool, error) {
	st, data := switchOf(in)
	if st == nil {
		return false, nil
	}
	if !st.forced {
		if next := cast.ToString(data.choose(in)); next != st.state {
			st.enter(in, data, next)
		}
	}
	if st.child == nil {
		return false, nil
	}
	return st.child.Update(), nil
}

func teardownSwitch(in *plot.Instance) error {
	st, _ := switchOf(in)
	if st == nil || st.child == nil {
		return nil
	}
	err := st.child.Teardown()
	st.child = nil
	return err
}

func handleSwitch(in *plot.Instance, arg any) (any, error) {
	st, _ := switchOf(in)
	if st == nil || st.child == nil {
		return nil, nil
	}
	return st.child.Handle(arg), nil
}

// Choose returns a request that forces a Switch into state. The choice source
// is ignored from then on.
func Choose(state any) plot.Request {
	return func(in *plot.Instance) error {
		st, data := switchOf(in)
		if st == nil || data == nil {
			return fmt.Errorf("choose %v on %s: %w", state, in.Kind(), ErrIncompatibleTarget)
		}
		st.forced = true
		st.enter(in, data, cast.ToString(state))
		return nil
	}
}

// State returns the state a Switch instance is currently in.
func State(in *plot.Instance) (string, bool) {
	st, _ := switchOf(in)
	if st == nil {
		return "", false
	}
	return st.state, st.child != nil
}
