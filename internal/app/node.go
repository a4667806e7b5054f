package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/soup/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/soup/internal/adapters/extension"          //nolint:depguard // Wired in app layer
	"go.trai.ch/soup/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/soup/internal/adapters/history"            //nolint:depguard // Wired in app layer
	"go.trai.ch/soup/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/soup/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/soup/internal/adapters/tui"                //nolint:depguard // Wired in app layer
	"go.trai.ch/soup/internal/core/ports"
	"go.trai.ch/soup/internal/engine/runner"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components holds what the command line needs besides the App.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
	Progress  *tui.Display
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			extension.NodeID,
			runner.NodeID,
			history.NodeID,
			fs.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
			tui.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	extensions, err := graft.Dep[ports.ExtensionLoader](ctx)
	if err != nil {
		return nil, err
	}

	run, err := graft.Dep[*runner.Runner](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.HistoryStore](ctx)
	if err != nil {
		return nil, err
	}

	fileSystem, err := graft.Dep[ports.FileSystem](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, extensions, run, store, fileSystem, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
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

	progress, err := graft.Dep[*tui.Display](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       a,
		Logger:    log,
		Telemetry: telemetry,
		Progress:  progress,
	}, nil
}
