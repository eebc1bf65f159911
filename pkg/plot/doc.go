/*
Package plot is the engine of Tale: node definitions, the type registry and
literal builder, live instances, the activation stack and the Telling that
drives one instantiated tree.

# Definitions and instances

A Definition is an immutable template: a type tag, options and a Lifecycle of
four callbacks (Setup, Update, Teardown, Handle). Definitions are authored once
and shared by any number of tellings. Telling a definition creates an Instance
per live node; composite types hold child definitions and create or tear down
instances of exactly the children that are live at any moment.

	reg := builtin.NewRegistry()
	wait, _ := reg.New(builtin.TypeDelay, 100*time.Millisecond)
	story, _ := reg.Build(builtin.TypeSequence, []any{
		wait,
		func(in *plot.Instance) { in.Write("done", true) },
	})
	t, _ := plot.Tell(ctx, story, nil)
	for t.Update() {
		// wait for a timer or an event, then update again
	}

# Update protocol

Update reports true while an instance is still running. Requests queued with
Please run after the current Update (or Handle) of the target instance returns,
in FIFO order, so a node never tears itself down in the middle of a callback.

# Activation

Every callback runs with its instance pushed on the telling's Activation stack.
Instance.Wrap captures an instance so that timers and host events can re-enter
the tree later as that instance; the telling is updated after the callback.

# Failures

Errors and panics from Setup, Update and Handle are logged, reported to the
fault hook and leave the instance faulted: it reports done from then on while
its siblings keep running. Teardown errors are returned after the instance has
been marked dead, so a teardown never runs twice.
*/
package plot
