// Package extension provides the built-in extensions that describe a build
// graph from a declarative file. They hand the graph to the core only through
// the value ABI.
package extension

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/soup/abi"
	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/zerr"
)

// StepSpec is one step as written in a graph descriptor. Children refer to
// other steps by ID.
type StepSpec struct {
	ID               string
	Title            string
	Program          string
	Arguments        string
	WorkingDirectory string
	Inputs           []string
	Outputs          []string
	DependencyFile   string
	Children         []string
}

// Declarative is an abi.Extension over a fixed list of steps.
type Declarative struct {
	steps []StepSpec
	roots []string
}

var _ abi.Extension = (*Declarative)(nil)

// NewDeclarative checks that step IDs are unique and every reference resolves.
// Relative working directories are resolved against baseDir. When roots is
// empty, every step that no other step lists as a child is a root.
func NewDeclarative(baseDir string, steps []StepSpec, roots []string) (*Declarative, error) {
	known := make(map[string]bool, len(steps))
	referenced := make(map[string]bool)
	normalized := make([]StepSpec, 0, len(steps))
	for _, s := range steps {
		if s.ID == "" {
			return nil, zerr.Wrap(domain.ErrInvalidNode, "step without id")
		}
		if known[s.ID] {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidNode, "duplicate step id"), "id", s.ID)
		}
		known[s.ID] = true
		if s.Title == "" {
			s.Title = s.ID
		}
		switch {
		case s.WorkingDirectory == "":
			s.WorkingDirectory = baseDir
		case !filepath.IsAbs(s.WorkingDirectory):
			s.WorkingDirectory = filepath.Join(baseDir, s.WorkingDirectory)
		}
		normalized = append(normalized, s)
	}

	for _, s := range normalized {
		for _, c := range s.Children {
			if !known[c] {
				return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidNode, "unknown child"), "id", s.ID), "child", c)
			}
			referenced[c] = true
		}
	}
	for _, r := range roots {
		if !known[r] {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidNode, "unknown root"), "id", r)
		}
	}

	if err := checkAcyclic(normalized); err != nil {
		return nil, err
	}

	if len(roots) == 0 {
		for _, s := range normalized {
			if !referenced[s.ID] {
				roots = append(roots, s.ID)
			}
		}
	}
	return &Declarative{steps: normalized, roots: roots}, nil
}

// checkAcyclic rejects steps that reach themselves through their children,
// including cycles no root leads to.
func checkAcyclic(steps []StepSpec) error {
	children := make(map[string][]string, len(steps))
	for _, s := range steps {
		children[s.ID] = s.Children
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(steps))
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			start := slices.Index(path, id)
			cycle := append(slices.Clone(path[start:]), id)
			return zerr.With(zerr.Wrap(domain.ErrCycleDetected, "steps are not acyclic"),
				"cycle", strings.Join(cycle, " -> "))
		}
		state[id] = visiting
		path = append(path, id)
		for _, c := range children[id] {
			if err := visit(c); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return nil
	}

	for _, s := range steps {
		if err := visit(s.ID); err != nil {
			return err
		}
	}
	return nil
}

// ABIVersion implements abi.Extension.
func (d *Declarative) ABIVersion() uint32 {
	return abi.Version
}

// Generate implements abi.Extension. Each step becomes exactly one table, so a
// step listed under several parents is shared.
func (d *Declarative) Generate(roots abi.ValueList) abi.ResultCode {
	tables := make(map[string]abi.ValueTable, len(d.steps))
	for _, s := range d.steps {
		t, rc := abi.NewStepTable(abi.Step{
			Title:            s.Title,
			Program:          s.Program,
			Arguments:        s.Arguments,
			WorkingDirectory: s.WorkingDirectory,
			InputFiles:       s.Inputs,
			OutputFiles:      s.Outputs,
			DependencyFile:   s.DependencyFile,
		})
		if rc.Failed() {
			return rc
		}
		tables[s.ID] = t
	}

	for _, s := range d.steps {
		for _, c := range s.Children {
			if rc := abi.AddChild(tables[s.ID], tables[c]); rc.Failed() {
				return rc
			}
		}
	}

	for _, r := range d.roots {
		if rc := abi.AddRoot(roots, tables[r]); rc.Failed() {
			return rc
		}
	}
	return abi.OK
}
