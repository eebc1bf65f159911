package btree

import (
	"fmt"
	"sort"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/spf13/cast"

	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
)

// builder instantiates a compiled tree against a scope reader.
type builder func(read func(key string) any) bt.Node

// Compile turns a declarative tree, as decoded from YAML or JSON, into a Factory.
// Every node is a mapping with a single key:
//
//	sequence: [...]   ticks children in order until one does not succeed
//	selector: [...]   ticks children in order until one does not fail
//	not: {...}        swaps success and failure of its child
//	check: key        succeeds while the scope value at key is truthy
//	status: name      always returns running, success or failure
//
// Sequences and selectors remember a running child between ticks.
func Compile(spec any) (Factory, error) {
	b, err := compile(spec)
	if err != nil {
		return nil, err
	}
	return func(in *plot.Instance) bt.Node {
		return b(in.Read)
	}, nil
}

func compile(spec any) (builder, error) {
	m, err := cast.ToStringMapE(spec)
	if err != nil || len(m) != 1 {
		return nil, &domain.InvalidNodeError{Value: spec, Reason: "behavior node must be a mapping with one key"}
	}
	keys := make([]string, 0, 1)
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kind, arg := keys[0], m[keys[0]]

	switch kind {
	case "sequence", "selector":
		list, ok := arg.([]any)
		if !ok || len(list) == 0 {
			return nil, &domain.InvalidNodeError{Value: arg, Reason: kind + " needs a list of children"}
		}
		children := make([]builder, len(list))
		for i, c := range list {
			if children[i], err = compile(c); err != nil {
				return nil, fmt.Errorf("%s child %d: %w", kind, i+1, err)
			}
		}
		tick := bt.Sequence
		if kind == "selector" {
			tick = bt.Selector
		}
		return func(read func(string) any) bt.Node {
			nodes := make([]bt.Node, len(children))
			for i, c := range children {
				nodes[i] = c(read)
			}
			return bt.New(bt.Memorize(tick), nodes...)
		}, nil

	case "not":
		child, err := compile(arg)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return func(read func(string) any) bt.Node {
			return bt.New(bt.Not(bt.Sequence), child(read))
		}, nil

	case "check":
		key, err := cast.ToStringE(arg)
		if err != nil || key == "" {
			return nil, &domain.InvalidNodeError{Value: arg, Reason: "check needs a scope key"}
		}
		return func(read func(string) any) bt.Node {
			return Condition(read, key)
		}, nil

	case "status":
		var status bt.Status
		switch cast.ToString(arg) {
		case "running":
			status = bt.Running
		case "success":
			status = bt.Success
		case "failure":
			status = bt.Failure
		default:
			return nil, &domain.InvalidNodeError{Value: arg, Reason: "status must be running, success or failure"}
		}
		return func(func(string) any) bt.Node {
			return bt.New(func([]bt.Node) (bt.Status, error) { return status, nil })
		}, nil
	}
	return nil, &domain.InvalidNodeError{Value: spec, Reason: fmt.Sprintf("unknown behavior node %q", kind)}
}
