package extension

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/soup/abi"
	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/soup/internal/core/ports"
	"go.trai.ch/zerr"
)

// ParseFunc builds an extension from a descriptor's content.
type ParseFunc func(data []byte, path string) (abi.Extension, error)

// Registry implements ports.ExtensionLoader by choosing a parser from the
// descriptor's file extension.
type Registry struct {
	logger  ports.Logger
	parsers map[string]ParseFunc
	// Environ supplies the variables visible to HCL descriptors.
	Environ func() []string
}

var _ ports.ExtensionLoader = (*Registry)(nil)

// NewRegistry creates a registry with the YAML and HCL descriptors registered.
func NewRegistry(logger ports.Logger) *Registry {
	r := &Registry{
		logger:  logger,
		parsers: make(map[string]ParseFunc),
		Environ: os.Environ,
	}
	yamlParser := func(data []byte, path string) (abi.Extension, error) {
		return ParseYAML(data, filepath.Dir(path))
	}
	r.Register(".yaml", yamlParser)
	r.Register(".yml", yamlParser)
	r.Register(".hcl", func(data []byte, path string) (abi.Extension, error) {
		return ParseHCL(data, path, filepath.Dir(path), r.environment())
	})
	return r
}

// Register adds or replaces the parser for a file extension such as ".json".
func (r *Registry) Register(ext string, parse ParseFunc) {
	r.parsers[strings.ToLower(ext)] = parse
}

// Load reads the project's graph descriptor and returns its extension.
func (r *Registry) Load(project *domain.Project) (abi.Extension, error) {
	path := project.GraphFile
	parse, ok := r.parsers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoExtension, "unknown descriptor type"), "graph", path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the project configuration
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read graph descriptor"), "graph", path)
	}

	r.logger.Diag("Load graph descriptor: " + path)
	ext, err := parse(data, path)
	if err != nil {
		return nil, zerr.With(err, "graph", path)
	}
	return ext, nil
}

func (r *Registry) environment() map[string]string {
	env := make(map[string]string)
	if r.Environ == nil {
		return env
	}
	for _, kv := range r.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}
