package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/tale/pkg/plot"
)

func TestGroup_RunsWhileAnyChildRuns(t *testing.T) {
	rec := &recorder{}
	running := true
	root := mustBuild(t, TypeGroup, rec.leaf("slow", &running), rec.leaf("quick", nil))
	tl := tell(t, root, nil)

	for i := 0; i < 3; i++ {
		assert.True(t, tl.Update())
	}
	assert.Equal(t, 1, rec.count("setup quick"))
	assert.Equal(t, 0, rec.count("teardown quick"))

	running = false
	assert.False(t, tl.Update())
	assert.Equal(t, []string{"setup slow", "setup quick", "teardown quick", "teardown slow"}, rec.events)
}

func TestGroup_UpdatesEveryChildInOrder(t *testing.T) {
	var order []string
	root := mustBuild(t, TypeGroup,
		func() bool { order = append(order, "a"); return true },
		func() bool { order = append(order, "b"); return false },
		func() bool { order = append(order, "c"); return true },
	)
	tl := tell(t, root, nil)

	tl.Update()
	tl.Update()
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, order)
}

func TestGroup_HandleBroadcasts(t *testing.T) {
	var seen []string
	listener := func(name string) plot.Lifecycle {
		return plot.Lifecycle{
			Update: func(*plot.Instance) (bool, error) { return true, nil },
			Handle: func(_ *plot.Instance, arg any) (any, error) {
				seen = append(seen, name)
				if name == "second" {
					return arg, nil
				}
				return nil, nil
			},
		}
	}
	root := mustBuild(t, TypeGroup, listener("first"), listener("second"), listener("third"))
	tl := tell(t, root, nil)

	assert.Equal(t, "evt", tl.Handle("evt"))
	assert.Equal(t, []string{"first", "second", "third"}, seen)
}

func TestIgnore_NeverBlocksItsGroup(t *testing.T) {
	steps := 0
	root := mustBuild(t, TypeGroup,
		[]any{"#Ignore",
			func() { steps++ },
			func() bool { steps++; return true },
		},
	)
	tl := tell(t, root, nil)

	assert.False(t, tl.Update(), "ignored sequence reports done even though its last step runs")
	assert.Equal(t, 2, steps)
}

func TestIgnore_KeepsAdvancingBesideRunningSibling(t *testing.T) {
	var log []string
	gate := false
	root := mustBuild(t, TypeGroup,
		[]any{"#Ignore",
			func() bool { return !gate },
			func() { log = append(log, "after gate") },
		},
		func() bool { return true },
	)
	tl := tell(t, root, nil)

	assert.True(t, tl.Update())
	assert.Empty(t, log)

	gate = true
	assert.True(t, tl.Update())
	assert.Equal(t, []string{"after gate"}, log)
}
