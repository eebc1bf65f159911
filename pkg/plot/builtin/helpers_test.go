package builtin

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/tale/pkg/plot"
)

func mustBuild(t *testing.T, kind string, literal ...any) *plot.Definition {
	t.Helper()
	def, err := NewRegistry().Build(kind, literal)
	require.NoError(t, err)
	return def
}

func tell(t *testing.T, root *plot.Definition, values map[string]any, opts ...plot.Option) *plot.Telling {
	t.Helper()
	tl, err := plot.Tell(context.Background(), root, values, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { tl.Stop() })
	return tl
}

// recorder logs lifecycle calls of its leaves.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// leaf is a step that records setup and teardown and runs while *running is true.
func (r *recorder) leaf(name string, running *bool) plot.Lifecycle {
	return plot.Lifecycle{
		Setup: func(*plot.Instance) error {
			r.add("setup %s", name)
			return nil
		},
		Update: func(*plot.Instance) (bool, error) {
			return running != nil && *running, nil
		},
		Teardown: func(*plot.Instance) error {
			r.add("teardown %s", name)
			return nil
		},
	}
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}
