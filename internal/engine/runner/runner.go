// Package runner walks a build graph, executes the steps that are out of date
// and keeps the build history of an object directory current.
package runner

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/soup/internal/core/ports"
	"go.trai.ch/soup/internal/engine/checker"
	"go.trai.ch/zerr"
)

// Options configure one run.
type Options struct {
	// ObjectDirectory holds the metadata directory of the configuration.
	ObjectDirectory string
	// ForceBuild executes every step without consulting the history.
	ForceBuild bool
	// Parallelism is the number of steps that may execute at once. Values
	// below two select the sequential traversal.
	Parallelism int
	// Timeout bounds each process execution. Zero means no limit.
	Timeout time.Duration
}

// NodeOutcome is the final state of one step.
type NodeOutcome struct {
	Title  string
	Status domain.NodeStatus
}

// Result summarizes a run.
type Result struct {
	Executed int
	UpToDate int
	// Nodes lists the steps that were reached, in completion order.
	Nodes []NodeOutcome
}

// Runner executes build graphs.
type Runner struct {
	fs        ports.FileSystem
	processes ports.ProcessManager
	store     ports.HistoryStore
	logger    ports.Logger
	telemetry ports.Telemetry
	checker   *checker.Checker
}

// New creates a Runner. When fs caches metadata it is purged after every
// process execution.
func New(
	fs ports.FileSystem,
	processes ports.ProcessManager,
	store ports.HistoryStore,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *Runner {
	return &Runner{
		fs:        fs,
		processes: processes,
		store:     store,
		logger:    logger,
		telemetry: telemetry,
		checker:   checker.New(fs, logger),
	}
}

// run is the state of one Execute call.
type run struct {
	opts    Options
	history *domain.BuildHistory
	// fullRebuild is set when there was no previous state.
	fullRebuild bool

	mu     sync.Mutex
	result Result
}

func (s *run) record(n *domain.BuildStepNode, status domain.NodeStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch status {
	case domain.NodeStatusRecorded:
		s.result.Executed++
	case domain.NodeStatusSkipped:
		s.result.UpToDate++
	}
	s.result.Nodes = append(s.result.Nodes, NodeOutcome{Title: n.Title, Status: status})
}

// Execute builds every step reachable from the graph's roots. Children run
// before their parents and a shared step runs at most once. The history is
// saved even when a step fails; the first failure is returned and wraps
// domain.ErrBuildExecutionFailed. The last log line is "Done" or
// "Build failed".
func (r *Runner) Execute(ctx context.Context, g *domain.Graph, opts Options) (result Result, err error) {
	defer func() {
		if err != nil {
			r.logger.High("Build failed")
			return
		}
		r.logger.High("Done")
	}()

	if err := g.Validate(); err != nil {
		return Result{}, err
	}

	s := &run{opts: opts}
	if opts.ForceBuild {
		s.history = domain.NewBuildHistory()
	} else {
		r.logger.Diag("Loading previous build state")
		history, found, err := r.store.Load(opts.ObjectDirectory)
		if err != nil {
			return Result{}, err
		}
		if !found {
			r.logger.Info("No previous state found, full rebuild required")
			s.fullRebuild = true
		}
		s.history = history
	}

	var runErr error
	if opts.Parallelism > 1 {
		runErr = r.executeParallel(ctx, g, s)
	} else {
		runErr = r.executeSequential(ctx, g, s)
	}

	r.logger.Info("Saving updated build state")
	if err := r.store.Save(opts.ObjectDirectory, s.history); err != nil {
		if runErr != nil {
			r.logger.Error(err)
			return s.result, runErr
		}
		return s.result, err
	}
	return s.result, runErr
}

func (r *Runner) executeSequential(ctx context.Context, g *domain.Graph, s *run) error {
	for n := range g.Walk() {
		if err := ctx.Err(); err != nil {
			return zerr.Wrap(err, "build cancelled")
		}
		if err := r.evaluate(ctx, n, s); err != nil {
			return err
		}
	}
	return nil
}

// evaluate runs n when it is out of date and refreshes its history records.
func (r *Runner) evaluate(ctx context.Context, n *domain.BuildStepNode, s *run) error {
	stale := s.opts.ForceBuild || s.fullRebuild || r.checker.IsOutdated(n, s.history)

	ctx, vertex := r.telemetry.Record(ctx, n.Title)
	if !stale {
		r.logger.Info(n.Title)
		vertex.Log(domain.LogLevelInfo, "Up to date")
		vertex.Cached()
		vertex.Complete(nil)
		s.record(n, domain.NodeStatusSkipped)
		return nil
	}

	command := "Execute: " + strings.TrimSpace(n.Program+" "+n.Arguments)
	r.logger.High(n.Title)
	r.logger.Diag(command)
	vertex.Log(domain.LogLevelDiag, command)

	if err := r.execute(ctx, n, s.opts.Timeout); err != nil {
		vertex.Log(domain.LogLevelError, err.Error())
		vertex.Complete(err)
		r.logger.Error(err)
		for _, in := range n.ResolvedInputs() {
			s.history.Remove(in)
		}
		s.record(n, domain.NodeStatusFailed)
		return zerr.With(zerr.Wrap(domain.ErrBuildExecutionFailed, n.Title), "title", n.Title)
	}
	vertex.Complete(nil)

	discovered := r.discoveredDependencies(n)
	for _, in := range n.ResolvedInputs() {
		s.history.Set(domain.FileRecord{Path: in, DiscoveredDependencies: discovered})
	}
	s.record(n, domain.NodeStatusRecorded)
	return nil
}

func (r *Runner) execute(ctx context.Context, n *domain.BuildStepNode, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := r.processes.Execute(ctx, n.Program, n.Arguments, n.WorkingDirectory)
	if cache, ok := r.fs.(ports.StatCache); ok {
		cache.Purge()
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to execute build step"), "title", n.Title)
	}
	if !result.Succeeded() {
		return zerr.With(zerr.With(zerr.New("build step exited with a nonzero code"),
			"title", n.Title), "exit_code", result.ExitCode)
	}
	return nil
}
