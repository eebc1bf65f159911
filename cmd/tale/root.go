package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tale",
	Short: "Tale tells stories: composable, time-extended behaviors",
	Long: `Tale runs stories written as YAML: sequences, parallel groups, switches,
loops, delays and live timers composed into one tree and updated over time.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("tools", "", "Allow-listed process tools (tools.yaml); defaults to tools.yaml next to the story")
}

// storyArgs resolves the story path argument and the tools file.
func storyArgs(cmd *cobra.Command, args []string) (string, string) {
	story := "story.yaml"
	if len(args) > 0 {
		story = args[0]
	}
	tools, _ := cmd.Flags().GetString("tools")
	if tools == "" {
		tools = defaultTools(story)
	}
	return story, tools
}
