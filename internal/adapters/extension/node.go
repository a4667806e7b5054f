package extension

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/soup/internal/adapters/logger"
	"go.trai.ch/soup/internal/core/ports"
)

// NodeID is the unique identifier for the extension loader node.
const NodeID graft.ID = "adapter.extension_loader"

func init() {
	graft.Register(graft.Node[ports.ExtensionLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ExtensionLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRegistry(log), nil
		},
	})
}
