package runner

import (
	"context"
	"errors"

	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

type nodeResult struct {
	node *domain.BuildStepNode
	err  error
}

// schedulerRunState counts the unfinished children of every node. A node is
// ready when the count reaches zero. After the first failure no new node is
// started; nodes already running finish.
type schedulerRunState struct {
	ctx         context.Context
	r           *Runner
	run         *run
	graph       *domain.Graph
	inDegree    map[*domain.BuildStepNode]int
	ready       []*domain.BuildStepNode
	active      int
	parallelism int
	resultsCh   chan nodeResult
	group       errgroup.Group
	errs        error
}

func (r *Runner) executeParallel(ctx context.Context, g *domain.Graph, s *run) error {
	state := &schedulerRunState{
		ctx:         ctx,
		r:           r,
		run:         s,
		graph:       g,
		inDegree:    make(map[*domain.BuildStepNode]int, g.NodeCount()),
		parallelism: s.opts.Parallelism,
		resultsCh:   make(chan nodeResult, g.NodeCount()),
	}
	state.group.SetLimit(state.parallelism)

	for n := range g.Walk() {
		degree := len(domain.UniqueChildren(n))
		state.inDegree[n] = degree
		if degree == 0 {
			state.ready = append(state.ready, n)
		}
	}

	return state.runExecutionLoop()
}

func (state *schedulerRunState) runExecutionLoop() error {
	for {
		state.schedule()
		if state.active == 0 {
			break
		}
		state.handleResult(<-state.resultsCh)
	}
	_ = state.group.Wait()

	if err := state.ctx.Err(); err != nil && state.errs == nil {
		return zerr.Wrap(err, "build cancelled")
	}
	return state.errs
}

func (state *schedulerRunState) stopped() bool {
	return state.errs != nil || state.ctx.Err() != nil
}

func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && !state.stopped() {
		n := state.ready[0]
		state.ready = state.ready[1:]
		state.active++

		state.group.Go(func() error {
			state.resultsCh <- nodeResult{node: n, err: state.r.evaluate(state.ctx, n, state.run)}
			return nil
		})
	}
}

func (state *schedulerRunState) handleResult(res nodeResult) {
	state.active--
	if res.err != nil {
		if state.errs == nil {
			state.errs = res.err
		} else {
			state.errs = errors.Join(state.errs, res.err)
		}
		return
	}

	for _, parent := range state.graph.Dependents(res.node) {
		state.inDegree[parent]--
		if state.inDegree[parent] == 0 {
			state.ready = append(state.ready, parent)
		}
	}
}
