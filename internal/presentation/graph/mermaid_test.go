package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tale/internal/presentation/graph"
	"github.com/aretw0/tale/pkg/plot"
	"github.com/aretw0/tale/pkg/plot/builtin"
)

func TestGenerateMermaid(t *testing.T) {
	reg := builtin.NewRegistry()
	build := func(t *testing.T, kind string, literal ...any) *plot.Definition {
		t.Helper()
		def, err := reg.Build(kind, literal)
		require.NoError(t, err)
		return def
	}
	action := func() {}

	tests := []struct {
		name     string
		root     func(t *testing.T) *plot.Definition
		contains []string
	}{
		{
			name: "Sequence Steps",
			root: func(t *testing.T) *plot.Definition {
				return build(t, builtin.TypeSequence, action, []any{"#Delay", 250})
			},
			contains: []string{
				`n0["Sequence"]`,
				`n0 -- "1" --> n0_0`,
				`n0_0("Action")`,
				`n0 -- "2" --> n0_1`,
				`n0_1[/"Delay <br/> 250ms"/]`,
			},
		},
		{
			name: "Switch States",
			root: func(t *testing.T) *plot.Definition {
				return build(t, builtin.TypeSwitch, "mood", map[string]any{"happy": action, "*": action})
			},
			contains: []string{
				`n0{"Switch <br/> mood"}`,
				`n0 -- "*" --> n0_0`,
				`n0 -- "happy" --> n0_1`,
			},
		},
		{
			name: "Group, Loop and Ignore",
			root: func(t *testing.T) *plot.Definition {
				return build(t, builtin.TypeGroup,
					[]any{"#Loop", action},
					[]any{"#Ignore", action},
				)
			},
			contains: []string{
				`n0[["Group"]]`,
				`n0_0(("Loop"))`,
				`n0_0 -- "1" --> n0_0_0`,
				`n0_1 -.-> n0_1_0`,
			},
		},
		{
			name: "Named Scopes",
			root: func(t *testing.T) *plot.Definition {
				return build(t, builtin.TypeSequence, "@+door", []any{"@-knob", action})
			},
			contains: []string{
				`n0["Sequence @door"]`,
				`n0_0[["Group @knob"]]`,
				"class n0 scope;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.root(t))
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}

	assert.NotContains(t, graph.GenerateMermaid(build(t, builtin.TypeSequence, "@-plain", action)), "classDef")
	assert.Equal(t, "graph TD\n", graph.GenerateMermaid(nil))
}
