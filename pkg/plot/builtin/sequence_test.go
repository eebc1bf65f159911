package builtin

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tale/pkg/plot"
)

func TestSequence_CompletesInOneUpdate(t *testing.T) {
	rec := &recorder{}
	var steps []any
	for i := 0; i < 3; i++ {
		steps = append(steps, rec.leaf(fmt.Sprint(i), nil))
	}
	root := mustBuild(t, TypeGroup, append([]any{"#Sequence"}, steps...)...)
	tl := tell(t, root, nil)
	seq := tl.Root()

	assert.False(t, tl.Update())
	assert.Equal(t, []string{
		"setup 0", "teardown 0",
		"setup 1", "teardown 1",
		"setup 2", "teardown 2",
	}, rec.events)
	require.NotNil(t, seq)
	assert.Equal(t, 3, seqOf(seq).index)
}

func TestSequence_RunsOneStepAtATime(t *testing.T) {
	rec := &recorder{}
	first := true
	root := mustBuild(t, TypeSequence, rec.leaf("a", &first), rec.leaf("b", nil))
	tl := tell(t, root, nil)

	assert.True(t, tl.Update())
	assert.Equal(t, []string{"setup a"}, rec.events)

	first = false
	assert.False(t, tl.Update())
	assert.Equal(t, []string{"setup a", "teardown a", "setup b", "teardown b"}, rec.events)
}

func TestSequence_Restart(t *testing.T) {
	visits := 0
	restarted := false
	root := mustBuild(t, TypeSequence,
		func() { visits++ },
		func(in *plot.Instance) bool {
			if !restarted {
				restarted = true
				require.NoError(t, in.Parent().Please(Restart()))
			}
			return true
		},
	)
	tl := tell(t, root, nil)

	assert.True(t, tl.Update())
	assert.Equal(t, 1, visits)
	assert.True(t, tl.Update(), "restart put the sequence back on its first step")
	assert.Equal(t, 2, visits)
}

func TestSequence_SelectPastEnd(t *testing.T) {
	root := mustBuild(t, TypeSequence,
		func(in *plot.Instance) bool {
			require.NoError(t, in.Parent().Please(Select(5)))
			return true
		},
		func() bool { return true },
	)
	tl := tell(t, root, nil)

	assert.True(t, tl.Update(), "select runs after the update reported running")
	assert.False(t, tl.Update())
}

func TestSequence_HandleReachesCurrentStep(t *testing.T) {
	root := mustBuild(t, TypeSequence, plot.Lifecycle{
		Update: func(*plot.Instance) (bool, error) { return true, nil },
		Handle: func(_ *plot.Instance, arg any) (any, error) { return fmt.Sprint("got ", arg), nil },
	})
	tl := tell(t, root, nil)
	assert.Equal(t, "got ping", tl.Handle("ping"))
}

func TestSelect_WrongTarget(t *testing.T) {
	var reqErr error
	root := mustBuild(t, TypeGroup, func(in *plot.Instance) bool {
		reqErr = Select(1)(in)
		return true
	})
	tell(t, root, nil).Update()
	assert.ErrorIs(t, reqErr, ErrIncompatibleTarget)
}
