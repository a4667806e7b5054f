package tui

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/soup/internal/adapters/telemetry/progrock"
)

// NodeID is the unique identifier for the progress display node.
const NodeID graft.ID = "adapter.tui"

func init() {
	graft.Register(graft.Node[*Display]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{progrock.StreamNodeID},
		Run: func(ctx context.Context) (*Display, error) {
			stream, err := graft.Dep[*progrock.Stream](ctx)
			if err != nil {
				return nil, err
			}
			return NewDisplay(stream, os.Stderr), nil
		},
	})
}
