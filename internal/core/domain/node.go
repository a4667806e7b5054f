package domain

import "path/filepath"

// BuildStepNode is one process invocation in the build graph.
//
// Nodes are shared by pointer: the same child may be listed under several
// parents, and it stays reachable for as long as any parent does.
type BuildStepNode struct {
	Title            string
	Program          string
	Arguments        string
	WorkingDirectory string
	InputFiles       []string
	OutputFiles      []string
	// DependencyFile names a Make-style file the program writes with the
	// implicit inputs it read. Empty when the program reports none.
	DependencyFile string
	Children       []*BuildStepNode
}

// ResolvePath joins a relative path with the node's working directory.
func (n *BuildStepNode) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || n.WorkingDirectory == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(n.WorkingDirectory, path)
}

// ResolvedInputs returns the declared inputs resolved against the working directory.
func (n *BuildStepNode) ResolvedInputs() []string {
	return n.resolveAll(n.InputFiles)
}

// ResolvedOutputs returns the declared outputs resolved against the working directory.
func (n *BuildStepNode) ResolvedOutputs() []string {
	return n.resolveAll(n.OutputFiles)
}

func (n *BuildStepNode) resolveAll(paths []string) []string {
	resolved := make([]string, len(paths))
	for i, p := range paths {
		resolved[i] = n.ResolvePath(p)
	}
	return resolved
}

// ProcessResult is the outcome of running a node's program.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Succeeded reports whether the process exited with code zero.
func (r ProcessResult) Succeeded() bool {
	return r.ExitCode == 0
}
