package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tale/internal/cli"
)

var describeCmd = &cobra.Command{
	Use:   "describe [story.yaml]",
	Short: "Print an outline of the story",
	Long:  `Builds the story and prints it as a markdown outline, rendered for the terminal unless --raw is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		story, tools := storyArgs(cmd, args)
		raw, _ := cmd.Flags().GetBool("raw")
		return cli.Describe(os.Stdout, story, tools, raw)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print markdown source")
}
