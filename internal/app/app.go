// Package app implements the application layer for soup.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/soup/internal/core/ports"
	"go.trai.ch/soup/internal/engine/graph"
	"go.trai.ch/soup/internal/engine/runner"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	extensions   ports.ExtensionLoader
	runner       *runner.Runner
	store        ports.HistoryStore
	fs           ports.FileSystem
	logger       ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	extensions ports.ExtensionLoader,
	run *runner.Runner,
	store ports.HistoryStore,
	fs ports.FileSystem,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		extensions:   extensions,
		runner:       run,
		store:        store,
		fs:           fs,
		logger:       logger,
	}
}

// ProjectOptions select a project and override its configuration. Empty
// fields keep the configured value.
type ProjectOptions struct {
	// Dir is the project root. It defaults to the current directory.
	Dir             string
	Configuration   string
	ObjectDirectory string
}

// BuildOptions configure a build.
type BuildOptions struct {
	ProjectOptions

	GraphFile   string
	Parallelism int
	Timeout     time.Duration
	Force       bool
}

// Build generates the graph of the project and runs it. A failing step is
// reported as domain.ErrBuildExecutionFailed after it has been logged.
func (a *App) Build(ctx context.Context, opts BuildOptions) (runner.Result, error) {
	project, err := a.project(opts.ProjectOptions)
	if err != nil {
		return runner.Result{}, err
	}
	if opts.GraphFile != "" {
		project.GraphFile = absolute(project.Root, opts.GraphFile)
	}
	if opts.Parallelism > 0 {
		project.Parallelism = opts.Parallelism
	}
	if opts.Timeout > 0 {
		project.ProcessTimeout = opts.Timeout
	}
	project.ForceBuild = project.ForceBuild || opts.Force

	ext, err := a.extensions.Load(project)
	if err != nil {
		return runner.Result{}, zerr.Wrap(err, "failed to load extension")
	}

	g, err := graph.Generate(ext)
	if err != nil {
		return runner.Result{}, zerr.Wrap(err, "failed to generate build graph")
	}

	return a.runner.Execute(ctx, g, runner.Options{
		ObjectDirectory: project.ObjectDirectory,
		ForceBuild:      project.ForceBuild,
		Parallelism:     project.Parallelism,
		Timeout:         project.ProcessTimeout,
	})
}

// Clean removes the metadata directory of the selected configuration so the
// next build starts without history.
func (a *App) Clean(_ context.Context, opts ProjectOptions) error {
	project, err := a.project(opts)
	if err != nil {
		return err
	}

	dir := domain.MetadataDirectory(project.ObjectDirectory)
	if !a.fs.Exists(dir) {
		a.logger.Info("nothing to clean in " + project.ObjectDirectory)
		return nil
	}

	a.logger.Info(fmt.Sprintf("removing %s...", dir))
	if err := a.fs.RemoveAll(dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove metadata directory"), "path", dir)
	}
	a.logger.Info(fmt.Sprintf("removed %s", dir))
	return nil
}

// History returns the records tracked for the selected configuration, ordered
// by path. It is empty when no usable history exists.
func (a *App) History(_ context.Context, opts ProjectOptions) ([]domain.FileRecord, error) {
	project, err := a.project(opts)
	if err != nil {
		return nil, err
	}

	h, _, err := a.store.Load(project.ObjectDirectory)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load build history")
	}
	return h.Records(), nil
}

func (a *App) project(opts ProjectOptions) (*domain.Project, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	project, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if opts.Configuration != "" && opts.Configuration != project.Configuration {
		// An object directory derived from the old configuration follows the new one.
		if project.ObjectDirectory == absolute(project.Root, domain.DefaultObjectDirectory(project.Configuration)) {
			project.ObjectDirectory = absolute(project.Root, domain.DefaultObjectDirectory(opts.Configuration))
		}
		project.Configuration = opts.Configuration
	}
	if opts.ObjectDirectory != "" {
		project.ObjectDirectory = absolute(project.Root, opts.ObjectDirectory)
	}
	return project, nil
}

func absolute(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
