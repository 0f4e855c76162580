package app

import (
	"context"

	"github.com/grindlemire/graft"

	"ekam.build/ekam/internal/adapters/logger" //nolint:depguard // wired in app layer
	"ekam.build/ekam/internal/adapters/tracer" //nolint:depguard // wired in app layer
	"ekam.build/ekam/internal/core/ports"
)

// NodeID is the unique identifier for the App Graft node.
const NodeID graft.ID = "app.main"

func init() {
	graft.Register(graft.Node[*App]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, tracer.NodeID},
		Run: func(ctx context.Context) (*App, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tr, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return New(log, tr), nil
		},
	})
}
