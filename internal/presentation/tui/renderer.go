package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/tale/pkg/plot"
	"github.com/aretw0/tale/pkg/plot/builtin"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Outline describes a definition tree as a markdown list: steps are numbered,
// switch tasks carry their state.
func Outline(title string, root *plot.Definition) string {
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", title)
	}
	if root == nil {
		return sb.String()
	}

	var walk func(def *plot.Definition, depth int, prefix string)
	walk = func(def *plot.Definition, depth int, prefix string) {
		fmt.Fprintf(&sb, "%s- %s**%s**", strings.Repeat("  ", depth), prefix, def.Kind())
		if name := def.Name(); name != "" {
			fmt.Fprintf(&sb, " `@%s`", name)
		}
		if detail := builtin.Detail(def); detail != "" {
			fmt.Fprintf(&sb, " _%s_", detail)
		}
		sb.WriteString("\n")

		cases := builtin.Cases(def)
		for i, child := range def.Children() {
			var p string
			switch {
			case def.Kind() == builtin.TypeSwitch && i < len(cases):
				p = fmt.Sprintf("`%s` → ", cases[i])
			case def.Kind() == builtin.TypeSequence || def.Kind() == builtin.TypeLoop:
				p = fmt.Sprintf("%d. ", i+1)
			}
			walk(child, depth+1, p)
		}
	}
	walk(root, 0, "")
	return sb.String()
}
