package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/tale/pkg/plot"
	"github.com/aretw0/tale/pkg/plot/builtin"
)

// GenerateMermaid produces a Mermaid flowchart of a definition tree.
// It applies semantic styling:
// - Sequence: [Rectangle], steps numbered on the edges
// - Group, Live: [[Subroutine]]
// - Switch: {Rhombus}, states on the edges
// - Loop: ((Circle))
// - Delay: [/Parallelogram/]
// - Default: (Rounded)
// Nodes that own a named scope get the "scope" class.
func GenerateMermaid(root *plot.Definition) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if root == nil {
		return sb.String()
	}

	var scoped []string
	var walk func(def *plot.Definition, id string)
	walk = func(def *plot.Definition, id string) {
		opener, closer := shape(def.Kind())
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label(def), closer))
		if def.Options().OwnsScope {
			scoped = append(scoped, id)
		}

		cases := builtin.Cases(def)
		for i, child := range def.Children() {
			childID := id + "_" + strconv.Itoa(i)
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", id, edge(def.Kind(), i, cases), childID))
			walk(child, childID)
		}
	}
	walk(root, "n0")

	if len(scoped) > 0 {
		sb.WriteString("\n    %% Scope Styles\n")
		sb.WriteString("    classDef scope stroke-dasharray:4 2,stroke-width:2px;\n")
		for _, id := range scoped {
			sb.WriteString(fmt.Sprintf("    class %s scope;\n", id))
		}
	}
	return sb.String()
}

func shape(kind string) (string, string) {
	switch kind {
	case builtin.TypeSequence:
		return "[", "]"
	case builtin.TypeGroup, builtin.TypeLive:
		return "[[", "]]"
	case builtin.TypeSwitch:
		return "{", "}"
	case builtin.TypeLoop:
		return "((", "))"
	case builtin.TypeDelay:
		return "[/", "/]"
	default:
		return "(", ")"
	}
}

func label(def *plot.Definition) string {
	text := def.Kind()
	if name := def.Name(); name != "" {
		text += " @" + name
	}
	if detail := builtin.Detail(def); detail != "" {
		text += " <br/> " + detail
	}
	return sanitizeMermaidLabel(text)
}

func edge(kind string, i int, cases []string) string {
	switch {
	case kind == builtin.TypeSwitch && i < len(cases):
		return fmt.Sprintf("-- \"%s\" -->", sanitizeMermaidLabel(cases[i]))
	case kind == builtin.TypeSequence || kind == builtin.TypeLoop:
		return fmt.Sprintf("-- \"%d\" -->", i+1)
	case kind == builtin.TypeIgnore:
		return "-.->"
	default:
		return "-->"
	}
}

// sanitizeMermaidLabel escapes double quotes, which would end a Mermaid label.
func sanitizeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
