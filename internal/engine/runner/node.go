package runner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/soup/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/soup/internal/adapters/history"            //nolint:depguard // Wired in engine wiring
	"go.trai.ch/soup/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/soup/internal/adapters/process"            //nolint:depguard // Wired in engine wiring
	"go.trai.ch/soup/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/soup/internal/core/ports"
)

// NodeID is the unique identifier for the runner Graft node.
const NodeID graft.ID = "engine.runner"

func init() {
	graft.Register(graft.Node[*Runner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.NodeID,
			process.NodeID,
			history.NodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: func(ctx context.Context) (*Runner, error) {
			fileSystem, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}

			processes, err := graft.Dep[ports.ProcessManager](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.HistoryStore](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return New(fileSystem, processes, store, log, telemetry), nil
		},
	})
}
