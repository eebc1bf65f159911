/*
Package tale is a small embedded runtime for time-extended, composable behaviors: a
behavior tree / hierarchical task scheduler for scripting multi-step flows (dialogs,
animations, timed waits, polling) without nesting callbacks.

# Concept

A story is a tree of immutable node definitions. Telling a story instantiates the
tree for one run: every live node gets an instance with its own state and scope,
and the host drives the telling by calling Update until it reports done. Timers
and host events re-enter the tree through wrapped callbacks, which update the
telling on their own.

# Key Features

  - Composition operators: Sequence, Group, Switch, Loop, Ignore, Delay and Live.
  - Custom node types with inheritance ("Name:Base") on a shared registry.
  - Scope chains with named addressing ("key@name").
  - Deferred requests, so a node never tears itself down mid-update.
  - Fault isolation: a failing leaf stops its branch, not the telling.

# Usage

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/tale"
		"github.com/aretw0/tale/pkg/plot"
	)

	func main() {
		story := tale.Sequence(
			tale.Delay("500ms"),
			func(in *plot.Instance) { in.Write("greeting", "hello") },
		)

		t, err := tale.Tell(context.Background(), story, nil)
		if err != nil {
			panic(err)
		}
		t.Update()
		<-t.Done()
		fmt.Println(t.Scope().Get("greeting"))
	}

Stories can also be written as literals, where "#Type" picks the container and
"@name" names the node:

	story := tale.Build(
		"@intro",
		tale.Delay(100),
		[]any{"#Switch", "answer", map[string]any{
			"yes": func() { fmt.Println("great") },
			"*":   func() { fmt.Println("maybe later") },
		}},
	)
*/
package tale
