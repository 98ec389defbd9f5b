// Package cmds holds the mentorctl subcommands: operational helpers for
// poking at a deployment without going through HTTP.
package cmds

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "mentorctl",
	Short:         "Operational helpers for the mentor-api deployment",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(questionCmd)
}
