// Package domain contains the core domain models for the build graph and its history.
package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the unit of work of one build invocation: the root nodes handed over
// by an extension plus everything reachable from them.
type Graph struct {
	roots          []*BuildStepNode
	executionOrder []*BuildStepNode
	dependents     map[*BuildStepNode][]*BuildStepNode
}

// NewGraph creates a graph over the given roots.
func NewGraph(roots ...*BuildStepNode) *Graph {
	return &Graph{roots: roots}
}

// Roots returns the root nodes in declaration order.
func (g *Graph) Roots() []*BuildStepNode {
	return g.roots
}

// Validate checks that no node reaches itself through its children.
// It populates the execution order used by Walk if successful.
func (g *Graph) Validate() error {
	const (
		unvisited = iota
		visiting
		visited
	)

	g.executionOrder = make([]*BuildStepNode, 0, len(g.roots))
	g.dependents = make(map[*BuildStepNode][]*BuildStepNode)
	state := make(map[*BuildStepNode]int)
	var path []*BuildStepNode

	var visit func(n *BuildStepNode) error
	visit = func(n *BuildStepNode) error {
		state[n] = visiting
		path = append(path, n)

		for _, child := range n.Children {
			if child == nil {
				return zerr.With(zerr.Wrap(ErrInvalidNode, "nil child"), "title", n.Title)
			}
			switch state[child] {
			case visiting:
				return buildCycleError(path, child)
			case unvisited:
				g.addDependent(child, n)
				if err := visit(child); err != nil {
					return err
				}
			default:
				g.addDependent(child, n)
			}
		}

		state[n] = visited
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, n)
		return nil
	}

	for _, root := range g.roots {
		if root == nil {
			return zerr.Wrap(ErrInvalidNode, "nil root")
		}
		if state[root] == unvisited {
			if err := visit(root); err != nil {
				return err
			}
		}
	}

	return nil
}

func (g *Graph) addDependent(child, parent *BuildStepNode) {
	for _, p := range g.dependents[child] {
		if p == parent {
			return
		}
	}
	g.dependents[child] = append(g.dependents[child], parent)
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []*BuildStepNode, back *BuildStepNode) error {
	start := 0
	for i, n := range path {
		if n == back {
			start = i
			break
		}
	}
	titles := make([]string, 0, len(path)-start+1)
	for _, n := range path[start:] {
		titles = append(titles, n.Title)
	}
	titles = append(titles, back.Title)
	return zerr.With(zerr.Wrap(ErrCycleDetected, "graph is not acyclic"), "cycle", strings.Join(titles, " -> "))
}

// Walk yields every reachable node exactly once, children before parents.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[*BuildStepNode] {
	return func(yield func(*BuildStepNode) bool) {
		for _, n := range g.executionOrder {
			if !yield(n) {
				return
			}
		}
	}
}

// NodeCount returns the number of distinct reachable nodes.
// It assumes Validate() has been called and returned nil.
func (g *Graph) NodeCount() int {
	return len(g.executionOrder)
}

// Dependents returns the distinct parents that list n as a child.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Dependents(n *BuildStepNode) []*BuildStepNode {
	return g.dependents[n]
}

// UniqueChildren returns n's children with repeated entries removed.
func UniqueChildren(n *BuildStepNode) []*BuildStepNode {
	seen := make(map[*BuildStepNode]struct{}, len(n.Children))
	out := make([]*BuildStepNode, 0, len(n.Children))
	for _, c := range n.Children {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
