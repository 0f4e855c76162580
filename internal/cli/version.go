package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ekam.build/ekam/internal/build"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("ekam version %s\n", build.Version)
		},
	}
}
