// Package checker decides whether a build step has to run again.
package checker

import (
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/soup/internal/core/ports"
)

// Checker compares the live write times of a step's outputs against its
// inputs, its program and the dependencies it reported last time.
type Checker struct {
	fs     ports.FileSystem
	logger ports.Logger
}

// New creates a Checker.
func New(fs ports.FileSystem, logger ports.Logger) *Checker {
	return &Checker{fs: fs, logger: logger}
}

// IsOutdated reports whether node must be executed. Every reason for a
// rebuild is logged.
func (c *Checker) IsOutdated(node *domain.BuildStepNode, history *domain.BuildHistory) bool {
	c.logger.Diag("Check for updated source")

	inputs := node.ResolvedInputs()
	seen := make(map[string]bool, len(inputs))
	var discovered []string
	for i, in := range inputs {
		seen[in] = true
		record, ok := history.Get(in)
		if !ok {
			c.logger.Info("Missing file info: " + node.InputFiles[i])
			return true
		}
		discovered = append(discovered, record.DiscoveredDependencies...)
	}

	if len(node.OutputFiles) == 0 {
		c.logger.Info("No output files, always run")
		return true
	}

	for _, dep := range discovered {
		dep = node.ResolvePath(dep)
		if !seen[dep] {
			seen[dep] = true
			inputs = append(inputs, dep)
		}
	}

	program, tracked := c.trackedProgram(node)
	if tracked && !seen[program] {
		inputs = append(inputs, program)
	}

	for _, out := range node.ResolvedOutputs() {
		if !c.fs.Exists(out) {
			c.logger.Info("Output target does not exist: " + out)
			return true
		}
		outTime, err := c.fs.GetLastWriteTime(out)
		if err != nil {
			c.logger.Warn("Cannot read last write time: " + out)
			return true
		}
		c.logger.Diag("IsOutdated: " + out + " " + stamp(outTime.Unix()))

		for _, in := range inputs {
			if !c.fs.Exists(in) {
				c.logger.Info("Input file does not exist: " + in)
				return true
			}
			inTime, err := c.fs.GetLastWriteTime(in)
			if err != nil {
				c.logger.Warn("Cannot read last write time: " + in)
				return true
			}
			c.logger.Diag("  " + in + " " + stamp(inTime.Unix()))
			if inTime.After(outTime) {
				c.logger.Info("Input altered after target [" + in + "] -> [" + out + "]")
				return true
			}
		}
	}

	c.logger.Info("Up to date")
	return false
}

// trackedProgram resolves the node's program. A bare name that is not present
// in the working directory is found through PATH at launch and is not tracked.
func (c *Checker) trackedProgram(node *domain.BuildStepNode) (string, bool) {
	if node.Program == "" {
		return "", false
	}
	resolved := node.ResolvePath(node.Program)
	if filepath.IsAbs(node.Program) || strings.ContainsRune(node.Program, filepath.Separator) || strings.ContainsRune(node.Program, '/') {
		return resolved, true
	}
	if c.fs.Exists(resolved) {
		return resolved, true
	}
	c.logger.Trace("Program not tracked: " + node.Program)
	return "", false
}

func stamp(unix int64) string {
	return "[" + strconv.FormatInt(unix, 10) + "]"
}
