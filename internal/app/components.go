package app

import (
	"context"

	"github.com/grindlemire/graft"

	"ekam.build/ekam/internal/adapters/logger" //nolint:depguard // wired in app layer
	"ekam.build/ekam/internal/core/ports"
)

// Components bundles every top-level dependency cmd/ekam needs once Graft
// has finished resolving the DI graph.
type Components struct {
	App    *App
	Logger ports.Logger
}

// ComponentsNodeID is the unique identifier for the Components Graft node.
const ComponentsNodeID graft.ID = "app.components"

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}
