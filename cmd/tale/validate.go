package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tale/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [story.yaml]",
	Short: "Check that a story builds",
	Long:  `Loads the story and builds every node, reporting unknown steps, actions and malformed arguments.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		story, tools := storyArgs(cmd, args)
		if err := cli.Validate(os.Stdout, story, tools); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
