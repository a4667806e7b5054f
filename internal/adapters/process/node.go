package process

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/soup/internal/adapters/logger"
	"go.trai.ch/soup/internal/core/ports"
)

// NodeID is the unique identifier for the process manager Graft node.
const NodeID graft.ID = "adapter.process"

func init() {
	graft.Register(graft.Node[ports.ProcessManager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ProcessManager, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewManager(log), nil
		},
	})
}
