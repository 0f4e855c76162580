package tracer

import (
	"context"

	"github.com/grindlemire/graft"

	"ekam.build/ekam/internal/core/ports"
)

// NodeID is the unique identifier for the tracer Graft node.
const NodeID graft.ID = "adapter.tracer"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Tracer, error) {
			Setup()
			return New("ekam.build/ekam/internal/engine/actiondriver"), nil
		},
	})
}
