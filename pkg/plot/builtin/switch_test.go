package builtin

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
)

func TestSwitch_Reselection(t *testing.T) {
	rec := &recorder{}
	running := true
	var sw *plot.Instance
	a := rec.leaf("a", &running)
	a.Setup = func(in *plot.Instance) error {
		sw = in.Parent()
		rec.add("setup a")
		return nil
	}

	root := mustBuild(t, TypeGroup,
		[]any{"#Switch", "mode", map[string]any{
			"a": a,
			"b": rec.leaf("b", &running),
		}},
		func() bool { return true },
	)
	tl := tell(t, root, map[string]any{"mode": "a"})

	assert.True(t, tl.Update())
	assert.Equal(t, []string{"setup a"}, rec.events)

	tl.Scope().Write("mode", "b")
	assert.True(t, tl.Update())
	assert.Equal(t, []string{"setup a", "teardown a", "setup b"}, rec.events)

	tl.Scope().Write("mode", "missing")
	tl.Update()
	assert.Equal(t, "teardown b", rec.events[len(rec.events)-1])
	require.NotNil(t, sw)
	state, active := State(sw)
	assert.Equal(t, "missing", state)
	assert.False(t, active)
	ok, err := sw.Definition().Lifecycle().Update(sw)
	assert.NoError(t, err)
	assert.False(t, ok, "a switch without a matching task reports done")
}

func TestSwitch_DefaultKeyAndWildcard(t *testing.T) {
	var picked []string
	pick := func(name string) func() bool {
		return func() bool { picked = append(picked, name); return true }
	}
	root := mustBuild(t, TypeSwitch, map[string]any{
		"yes": pick("yes"),
		"*":   pick("other"),
	})
	tl := tell(t, root, map[string]any{"result": "maybe"})

	assert.True(t, tl.Update())
	tl.Scope().Write("result", "yes")
	assert.True(t, tl.Update())
	assert.Equal(t, []string{"other", "yes"}, picked)
}

func TestSwitch_ChoiceFunc(t *testing.T) {
	n := 0
	root := mustBuild(t, TypeSwitch,
		ChoiceFunc(func(*plot.Instance) any { return n % 2 }),
		map[string]any{
			"0": func() bool { return true },
			"1": func() bool { return false },
		},
	)
	tl := tell(t, root, nil)

	assert.True(t, tl.Update())
	n = 1
	assert.False(t, tl.Update())
}

func TestSwitch_ChooseOverridesChoice(t *testing.T) {
	var log []string
	root := mustBuild(t, TypeSwitch, "mode", map[string]any{
		"a": func(in *plot.Instance) bool {
			log = append(log, "a")
			require.NoError(t, in.Parent().Please(Choose("b")))
			return true
		},
		"b": func() bool { log = append(log, "b"); return true },
	})
	tl := tell(t, root, map[string]any{"mode": "a"})

	assert.True(t, tl.Update())
	assert.True(t, tl.Update())
	assert.True(t, tl.Update(), "the scope key no longer drives the switch")
	assert.Equal(t, []string{"a", "b", "b"}, log)
}

func TestSwitch_Options(t *testing.T) {
	def := mustBuild(t, TypeSwitch, map[string]any{
		"$label": "mood",
		"happy":  func() {},
	})
	v, ok := def.Option("$label")
	require.True(t, ok)
	assert.Equal(t, "mood", v)
	assert.Len(t, def.Children(), 1)
}

func TestSwitch_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []any
	}{
		{"no tasks", []any{map[string]any{}}},
		{"only options", []any{map[string]any{"$x": 1}}},
		{"bad choice", []any{42, map[string]any{"a": func() {}}}},
		{"not a map", []any{"mode", 7}},
		{"too many args", []any{"mode", map[string]any{}, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry().New(TypeSwitch, tt.args...)
			var inv *domain.InvalidNodeError
			assert.True(t, errors.As(err, &inv), "got %v", err)
		})
	}
}

// capture is a slog handler that keeps every record.
type capture struct {
	records []slog.Record
}

func (c *capture) Enabled(context.Context, slog.Level) bool { return true }

func (c *capture) Handle(_ context.Context, r slog.Record) error {
	c.records = append(c.records, r.Clone())
	return nil
}

func (c *capture) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *capture) WithGroup(string) slog.Handler      { return c }

func TestSwitch_UnknownStateWarns(t *testing.T) {
	logs := &capture{}
	root := mustBuild(t, TypeSwitch, "mode", map[string]any{
		"a": func() bool { return true },
	})
	tl := tell(t, root, map[string]any{"mode": "zzz"}, plot.WithLogger(slog.New(logs)))
	assert.False(t, tl.Update())

	var found *domain.UnknownStateError
	for _, r := range logs.records {
		if r.Message != "switch has no task for state" {
			continue
		}
		assert.Equal(t, slog.LevelWarn, r.Level)
		r.Attrs(func(a slog.Attr) bool {
			if err, ok := a.Value.Any().(error); ok && a.Key == "err" {
				errors.As(err, &found)
			}
			return true
		})
	}
	require.NotNil(t, found, "the warning carries an UnknownStateError")
	assert.Equal(t, "zzz", found.State)
}
