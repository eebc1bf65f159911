package builtin

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"

	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
)

// Built-in type names.
const (
	TypeAction   = plot.TypeAction
	TypeSequence = "Sequence"
	TypeGroup    = plot.TypeGroup
	TypeSwitch   = "Switch"
	TypeLoop     = "Loop"
	TypeIgnore   = "Ignore"
	TypeDelay    = "Delay"
	TypeLive     = "Live"
)

// ErrIncompatibleTarget is returned by a request queued on a node of the wrong type.
var ErrIncompatibleTarget = errors.New("builtin: request sent to an incompatible node")

type typeDef struct {
	name string
	ctor plot.Constructor
	life plot.Lifecycle
	opts []plot.TypeOption
}

func types() []typeDef {
	return []typeDef{
		{name: TypeAction, ctor: newAction},
		{name: TypeSequence, ctor: newSequence, life: sequenceLifecycle},
		{name: TypeGroup, ctor: newGroup, life: groupLifecycle, opts: []plot.TypeOption{plot.WithNest(TypeSequence)}},
		{name: TypeSwitch, ctor: newSwitch, life: switchLifecycle},
		{name: TypeLoop + ":" + TypeSequence, life: plot.Lifecycle{Update: updateLoop}},
		{name: TypeIgnore + ":" + TypeSequence, life: plot.Lifecycle{Update: updateIgnore}},
		{name: TypeDelay, ctor: newDelay, life: delayLifecycle},
		{name: TypeLive, ctor: newLive, life: liveLifecycle},
	}
}

// Install registers the built-in types on reg.
func Install(reg *plot.Registry) error {
	for _, t := range types() {
		if err := reg.Define(t.name, t.ctor, t.life, t.opts...); err != nil {
			return fmt.Errorf("builtin: %w", err)
		}
	}
	return nil
}

// NewRegistry returns a registry with the built-in types installed.
func NewRegistry() *plot.Registry {
	reg := plot.NewRegistry()
	if err := Install(reg); err != nil {
		panic(err)
	}
	return reg
}

// logTransition records a step teardown that failed while a composite moved on.
// The step has already reported its own fault.
func logTransition(in *plot.Instance, err error) {
	if err == nil {
		return
	}
	in.Telling().Logger().Warn("transition teardown failed",
		"type", in.Kind(),
		"name", in.Name(),
		"err", err,
	)
}

// ParseDuration accepts a time.Duration, a number of milliseconds or a
// duration string such as "1.5s". Numeric strings are milliseconds.
func ParseDuration(v any) (time.Duration, error) {
	var d time.Duration
	switch val := v.(type) {
	case time.Duration:
		d = val
	case string:
		if ms, err := cast.ToFloat64E(val); err == nil {
			d = millis(ms)
			break
		}
		parsed, err := cast.ToDurationE(val)
		if err != nil {
			return 0, &domain.InvalidNodeError{Value: v, Reason: "invalid duration"}
		}
		d = parsed
	default:
		ms, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(ms) {
			return 0, &domain.InvalidNodeError{Value: v, Reason: "expected a duration or milliseconds"}
		}
		d = millis(ms)
	}
	if d < 0 {
		return 0, &domain.InvalidNodeError{Value: v, Reason: "negative duration"}
	}
	return d, nil
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
