// Package btree bridges Tale and github.com/joeycumines/go-behaviortree.
//
// A behavior tree can run as a leaf of a story (the Behavior type), and a
// telling can run as a leaf of a behavior tree (TellingNode).
package btree

import (
	"errors"
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/spf13/cast"

	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
	"github.com/aretw0/tale/pkg/registry"
)

// TypeBehavior is the node type that ticks a behavior tree.
const TypeBehavior = "Behavior"

// Outcomes written to scope when a behavior finishes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Factory builds the behavior tree for one instance, so leaves can read that
// instance's scope.
type Factory func(in *plot.Instance) bt.Node

type behavior struct {
	node    bt.Node
	factory Factory
	saveTo  string
}

// Define registers the Behavior type on reg. A Behavior takes a bt.Node or a
// Factory and an optional scope key (default "result"). Each update ticks the
// tree once: Running keeps the node running; Success and Failure finish it and
// store "success" or "failure" under the key, so a Switch can branch on the
// outcome. A tick error faults the node.
func Define(reg *plot.Registry) error {
	return reg.Define(TypeBehavior, newBehavior, plot.Lifecycle{
		Setup:  setupBehavior,
		Update: updateBehavior,
	})
}

func newBehavior(def *plot.Definition, args []any) error {
	if len(args) == 0 || len(args) > 2 {
		return &domain.InvalidNodeError{Value: args, Reason: "Behavior takes a bt.Node and an optional scope key"}
	}
	b := &behavior{saveTo: registry.ResultKey}
	switch v := args[0].(type) {
	case bt.Node:
		b.node = v
	case Factory:
		b.factory = v
	case func(*plot.Instance) bt.Node:
		b.factory = v
	}
	if b.node == nil && b.factory == nil {
		return &domain.InvalidNodeError{Value: args[0], Reason: "expected a bt.Node or a Factory"}
	}
	if len(args) == 2 {
		key, err := cast.ToStringE(args[1])
		if err != nil || key == "" {
			return &domain.InvalidNodeError{Value: args[1], Reason: "scope key must be a non-empty string"}
		}
		b.saveTo = key
	}
	def.SetData(b)
	return nil
}

func setupBehavior(in *plot.Instance) error {
	b, _ := in.Definition().Data().(*behavior)
	node := b.node
	if b.factory != nil {
		node = b.factory(in)
	}
	in.SetState(node)
	return nil
}

func updateBehavior(in *plot.Instance) (bool, error) {
	b, _ := in.Definition().Data().(*behavior)
	node, _ := in.State().(bt.Node)
	if node == nil {
		return false, nil
	}
	status, err := node.Tick()
	if err != nil {
		return false, fmt.Errorf("behavior tick: %w", err)
	}
	switch status {
	case bt.Running:
		return true, nil
	case bt.Success:
		in.Write(b.saveTo, OutcomeSuccess)
	default:
		in.Write(b.saveTo, OutcomeFailure)
	}
	return false, nil
}

// ErrFaulted is returned by a TellingNode whose root faulted.
var ErrFaulted = errors.New("btree: telling root faulted")

// TellingNode returns a behavior tree leaf that updates t on every tick.
// It reports Running while the telling runs and Success once it is done.
// A stopped telling or a faulted root reports Failure.
func TellingNode(t *plot.Telling) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		root := t.Root()
		if root == nil {
			return bt.Failure, domain.ErrNotRunning
		}
		if t.Update() {
			return bt.Running, nil
		}
		if root.Faulted() {
			return bt.Failure, ErrFaulted
		}
		return bt.Success, nil
	})
}

// Condition returns a behavior tree leaf that succeeds while read(key) is truthy.
func Condition(read func(key string) any, key string) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if cast.ToBool(read(key)) {
			return bt.Success, nil
		}
		return bt.Failure, nil
	})
}
