package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"ekam.build/ekam/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Discover and run the build once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runOnce(cmd, false)
		},
	}
}

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Build, then keep watching for changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runOnce(cmd, true)
		},
	}
}

func (c *CLI) runOnce(cmd *cobra.Command, watch bool) error {
	roots, _ := cmd.Flags().GetStringSlice("root")
	out, _ := cmd.Flags().GetString("out")
	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}

	dash, stop := dashboardFor(cmd)
	defer stop()

	_, err := c.app.Run(cmd.Context(), dash, app.RunOptions{
		SourceRoots: roots,
		OutputRoot:  out,
		Concurrency: jobs,
		Watch:       watch,
	})
	return err
}
