package extension

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"go.trai.ch/zerr"
)

// hclGraph represents the top-level structure of a graph.hcl descriptor.
type hclGraph struct {
	Roots []string   `hcl:"roots,optional"`
	Steps []*hclStep `hcl:"step,block"`
}

type hclStep struct {
	ID               string   `hcl:"id,label"`
	Title            string   `hcl:"title,optional"`
	Program          string   `hcl:"program"`
	Arguments        string   `hcl:"arguments,optional"`
	WorkingDirectory string   `hcl:"working_directory,optional"`
	Inputs           []string `hcl:"inputs,optional"`
	Outputs          []string `hcl:"outputs,optional"`
	DependencyFile   string   `hcl:"dependency_file,optional"`
	Children         []string `hcl:"children,optional"`
}

// ParseHCL reads an HCL graph descriptor. Expressions may reference the
// environment through the env object, as in "${env.CC}".
func ParseHCL(data []byte, filename, baseDir string, env map[string]string) (*Declarative, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, zerr.With(zerr.Wrap(diags, "failed to parse graph descriptor"), "file", filename)
	}

	var g hclGraph
	if diags := gohcl.DecodeBody(file.Body, evalContext(env), &g); diags.HasErrors() {
		return nil, zerr.With(zerr.Wrap(diags, "failed to decode graph descriptor"), "file", filename)
	}

	steps := make([]StepSpec, 0, len(g.Steps))
	for _, s := range g.Steps {
		steps = append(steps, StepSpec(*s))
	}
	return NewDeclarative(baseDir, steps, g.Roots)
}

func evalContext(env map[string]string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(env))
	for k, v := range env {
		if !hclsyntax.ValidIdentifier(k) {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
