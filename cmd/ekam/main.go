// Package main is the entry point for the ekam build tool.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"

	"ekam.build/ekam/internal/app"
	"ekam.build/ekam/internal/cli"
	"ekam.build/ekam/internal/core/domain"
	_ "ekam.build/ekam/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	c := cli.New(components.App)

	if err := c.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrActionFailed) {
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
