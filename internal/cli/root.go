// Package cli implements the ekam command line interface.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"ekam.build/ekam/internal/adapters/dashboard/text"
	"ekam.build/ekam/internal/adapters/dashboard/wire"
	"ekam.build/ekam/internal/adapters/detector"
	"ekam.build/ekam/internal/adapters/linear"
	"ekam.build/ekam/internal/app"
	"ekam.build/ekam/internal/build"
	"ekam.build/ekam/internal/core/ports"
)

// CLI represents the command line interface for ekam.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance driving a.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "ekam",
		Short:         "Ekam discovers how to build your project by probing it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringSliceP("root", "r", []string{"."}, "Source root to scan (repeatable)")
	rootCmd.PersistentFlags().String("out", ".ekam-out", "Directory for derived outputs and installs")
	rootCmd.PersistentFlags().IntP("jobs", "j", 0, "Maximum concurrently running actions (0 = number of CPUs)")
	rootCmd.PersistentFlags().String("dashboard", "auto", "Dashboard mode: auto, tui, linear, or wire")

	c := &CLI{app: a, rootCmd: rootCmd}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func dashboardFor(cmd *cobra.Command) (ports.Dashboard, func()) {
	flag, _ := cmd.Flags().GetString("dashboard")
	mode := detector.ResolveMode(detector.DetectEnvironment(), flag)

	switch mode {
	case detector.ModeTUI:
		dash := text.New(os.Stdout)
		return dash, func() { dash.Quit(); _ = dash.Wait() }
	case detector.ModeWire:
		dash := wire.New(os.Stdout)
		return dash, dash.Close
	default:
		return linear.New(os.Stdout), func() {}
	}
}
