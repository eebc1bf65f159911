package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tale/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [story.yaml]",
	Short: "Export the story tree as a Mermaid diagram",
	Long:  `Builds the story without running it and outputs a Mermaid diagram (graph TD) of its definition tree.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		story, tools := storyArgs(cmd, args)
		return cli.Graph(os.Stdout, story, tools)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
