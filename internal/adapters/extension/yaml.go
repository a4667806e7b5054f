package extension

import (
	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// yamlGraph represents the structure of a graph.yaml descriptor.
type yamlGraph struct {
	Version string     `yaml:"version"`
	Roots   []string   `yaml:"roots"`
	Steps   []yamlStep `yaml:"steps"`
}

type yamlStep struct {
	ID               string   `yaml:"id"`
	Title            string   `yaml:"title"`
	Program          string   `yaml:"program"`
	Arguments        string   `yaml:"arguments"`
	WorkingDirectory string   `yaml:"workingDirectory"`
	Inputs           []string `yaml:"inputs"`
	Outputs          []string `yaml:"outputs"`
	DependencyFile   string   `yaml:"dependencyFile"`
	Children         []string `yaml:"children"`
}

// ParseYAML reads a YAML graph descriptor. baseDir resolves relative working
// directories.
func ParseYAML(data []byte, baseDir string) (*Declarative, error) {
	var g yamlGraph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, zerr.Wrap(err, "failed to parse graph descriptor")
	}
	if g.Version != "" && g.Version != "1" {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported graph descriptor version"),
			"version", g.Version)
	}

	steps := make([]StepSpec, 0, len(g.Steps))
	for _, s := range g.Steps {
		steps = append(steps, StepSpec(s))
	}
	return NewDeclarative(baseDir, steps, g.Roots)
}
