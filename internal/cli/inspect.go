package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/tale"
	"github.com/aretw0/tale/internal/presentation/graph"
	"github.com/aretw0/tale/internal/presentation/tui"
	"github.com/aretw0/tale/pkg/adapters/file"
	"github.com/aretw0/tale/pkg/plot"
)

// Load builds the story at storyPath without running it. Actions are bound
// but print nowhere.
func Load(storyPath, toolsPath string) (*file.Story, error) {
	opts := RunOptions{StoryPath: storyPath, ToolsPath: toolsPath, Stdout: io.Discard}
	return loadStory(opts, tale.NewRuntime().Registry())
}

// Graph writes the story as a Mermaid flowchart.
func Graph(w io.Writer, storyPath, toolsPath string) error {
	story, err := Load(storyPath, toolsPath)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(story.Root))
	return err
}

// Describe writes a markdown outline of the story, rendered with glamour
// unless raw is set or w is not a terminal.
func Describe(w io.Writer, storyPath, toolsPath string, raw bool) error {
	story, err := Load(storyPath, toolsPath)
	if err != nil {
		return err
	}
	out := tui.Outline(story.Name, story.Root)
	if !raw && tui.IsTerminal(w) {
		if out, err = tui.NewRenderer()(out); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, out)
	return err
}

// Stats summarizes a definition tree.
type Stats struct {
	Nodes int
	Named int
	Kinds map[string]int
}

// Count walks the tree under root.
func Count(root *plot.Definition) Stats {
	st := Stats{Kinds: map[string]int{}}
	var walk func(*plot.Definition)
	walk = func(def *plot.Definition) {
		st.Nodes++
		st.Kinds[def.Kind()]++
		if def.Name() != "" {
			st.Named++
		}
		for _, c := range def.Children() {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return st
}

// Validate loads the story and reports its size. Any build error is returned.
func Validate(w io.Writer, storyPath, toolsPath string) error {
	story, err := Load(storyPath, toolsPath)
	if err != nil {
		return err
	}
	st := Count(story.Root)
	fmt.Fprintf(w, "Story '%s' is valid: %d nodes, %d named.\n", story.Name, st.Nodes, st.Named)
	return nil
}
