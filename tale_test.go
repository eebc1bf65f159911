package tale_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	bt "github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tale"
	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
	"github.com/aretw0/tale/pkg/plot/builtin"
)

func TestRuntime_DelayThenAction(t *testing.T) {
	mock := clock.NewMock()
	rt := tale.NewRuntime(tale.WithClock(mock))

	wait, err := rt.New(builtin.TypeDelay, 100)
	require.NoError(t, err)
	story, err := rt.Build(wait, func(in *plot.Instance) { in.Write("done", true) })
	require.NoError(t, err)

	tl, err := rt.Tell(context.Background(), story, nil)
	require.NoError(t, err)

	assert.True(t, tl.Update(), "still waiting on the delay")
	mock.Add(100 * time.Millisecond)

	assert.False(t, tl.Update())
	assert.Equal(t, true, tl.Scope().Get("done"))
	select {
	case <-tl.Done():
	default:
		t.Fatal("telling should have stopped")
	}
}

func TestRuntime_Options(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var kinds []string
	hooks := domain.LifecycleHooks{
		OnSetup: func(_ context.Context, e *domain.InstanceEvent) { kinds = append(kinds, e.NodeType) },
	}
	reg := plot.NewRegistry()
	require.NoError(t, builtin.Install(reg))

	rt := tale.NewRuntime(tale.WithLogger(logger), tale.WithLifecycleHooks(hooks), tale.WithRegistry(reg))
	assert.Same(t, reg, rt.Registry())

	story, err := rt.Build("#Group", func() bool { return true })
	require.NoError(t, err)
	tl, err := rt.Tell(context.Background(), story, nil)
	require.NoError(t, err)
	defer tl.Stop()

	assert.Equal(t, []string{builtin.TypeGroup, builtin.TypeAction}, kinds)
	assert.Equal(t, 1, strings.Count(buf.String(), "telling started"), "one start record per telling")
	assert.Contains(t, buf.String(), tl.ID())
}

func TestRuntime_Define(t *testing.T) {
	rt := tale.NewRuntime()
	err := rt.Define("Countdown", func(def *plot.Definition, args []any) error {
		def.SetData(len(args))
		return nil
	}, plot.Lifecycle{
		Setup: func(in *plot.Instance) error {
			in.Set("left", in.Definition().Data())
			return nil
		},
		Update: func(in *plot.Instance) (bool, error) {
			left := in.Get("left").(int) - 1
			in.Set("left", left)
			return left > 0, nil
		},
	})
	require.NoError(t, err)

	def, err := rt.New("Countdown", "a", "b", "c")
	require.NoError(t, err)
	tl, err := rt.Tell(context.Background(), def, nil)
	require.NoError(t, err)

	assert.True(t, tl.Update())
	assert.True(t, tl.Update())
	assert.False(t, tl.Update())

	var dup *domain.DuplicateTypeError
	assert.ErrorAs(t, rt.Define("Countdown", nil, plot.Lifecycle{}), &dup)
}

func TestHelpers(t *testing.T) {
	count := 0
	story := tale.Sequence(
		tale.Group(
			tale.Ignore(func() { count++ }),
			tale.Action(func() { count++ }),
		),
		tale.Switch(map[string]any{"*": func() { count++ }}),
	)

	tl, err := tale.Tell(context.Background(), story, nil)
	require.NoError(t, err)
	assert.False(t, tl.Update())
	assert.Equal(t, 3, count)

	assert.Panics(t, func() { tale.Delay("soon") })
	assert.Panics(t, func() { tale.Switch() })
	assert.Panics(t, func() { tale.Build(42) })
	assert.NotPanics(t, func() {
		tale.Live(time.Second, tale.Loop(func() {}))
	})
}

func TestBehavior(t *testing.T) {
	ready := false
	check := bt.New(func([]bt.Node) (bt.Status, error) {
		if ready {
			return bt.Success, nil
		}
		return bt.Running, nil
	})
	var said string
	story := tale.Sequence(
		tale.Behavior(check, "gate"),
		tale.Switch("gate", map[string]any{"success": func() { said = "open" }}),
	)

	tl, err := tale.Tell(context.Background(), story, nil)
	require.NoError(t, err)
	assert.True(t, tl.Update())
	ready = true
	assert.False(t, tl.Update())
	assert.Equal(t, "open", said)

	assert.Panics(t, func() { tale.Behavior("not a tree") })
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, tale.Version)
}
