// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/soup/internal/adapters/config"
	_ "go.trai.ch/soup/internal/adapters/extension"
	_ "go.trai.ch/soup/internal/adapters/fs"
	_ "go.trai.ch/soup/internal/adapters/history"
	_ "go.trai.ch/soup/internal/adapters/logger"
	_ "go.trai.ch/soup/internal/adapters/process"
	_ "go.trai.ch/soup/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/soup/internal/adapters/tui"
	// Register app and engine nodes.
	_ "go.trai.ch/soup/internal/app"
	_ "go.trai.ch/soup/internal/engine/runner"
)
