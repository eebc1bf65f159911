package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/tale"
	"github.com/aretw0/tale/internal/cli"
	"github.com/aretw0/tale/internal/presentation/tui"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [story.yaml]",
	Short: "Tell a story",
	Long:  `Loads the story file and updates it until it is done. With --watch the story is told again whenever the file changes.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		story, tools := storyArgs(cmd, args)
		opts := cli.RunOptions{StoryPath: story, ToolsPath: tools}
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.Trace, _ = cmd.Flags().GetBool("trace")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.Scope, _ = cmd.Flags().GetString("scope")
		opts.Metrics, _ = cmd.Flags().GetString("metrics")
		opts.Tick, _ = cmd.Flags().GetDuration("tick")
		opts.UnsafeInline, _ = cmd.Flags().GetBool("unsafe-inline")

		if opts.Watch && !opts.Quiet && tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr, strings.TrimSpace(tale.Version))
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		if err := cli.Execute(sigCtx, opts); err != nil {
			return fmt.Errorf("run %s: %w", story, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("debug", false, "Log lifecycle details to stderr")
	runCmd.Flags().Bool("trace", false, "Print every setup, teardown and fault to stderr")
	runCmd.Flags().BoolP("quiet", "q", false, "Hide system messages")
	runCmd.Flags().BoolP("watch", "w", false, "Tell the story again whenever the file changes")
	runCmd.Flags().String("scope", "", "Initial scope values as a JSON object")
	runCmd.Flags().String("metrics", "", "Serve Prometheus metrics on this address (e.g. :2112)")
	runCmd.Flags().Duration("tick", cli.DefaultTick, "Interval between updates")
	runCmd.Flags().Bool("unsafe-inline", false, "Let exec steps run commands that are not allow-listed")

	// 'run' is the default command
	rootCmd.RunE = runCmd.RunE
	rootCmd.Args = runCmd.Args
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
