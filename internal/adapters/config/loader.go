// Package config provides the project configuration loader for soup.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/soup/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// ProjectFileName is the name of the optional project file.
	ProjectFileName = "soup.yaml"
	// EnvFileName is the name of the optional override file next to it.
	EnvFileName = ".env"

	// DefaultGraphFile is the graph descriptor used when none is configured.
	DefaultGraphFile = "graph.yaml"
	// DefaultConfiguration is the build flavor used when none is configured.
	DefaultConfiguration = "release"
)

// Environment variables that override the project file.
const (
	EnvConfiguration   = "SOUP_CONFIGURATION"
	EnvObjectDirectory = "SOUP_OBJECT_DIRECTORY"
	EnvParallelism     = "SOUP_PARALLELISM"
	EnvProcessTimeout  = "SOUP_PROCESS_TIMEOUT"
)

// Loader implements ports.ConfigLoader using soup.yaml and .env files.
type Loader struct {
	Logger ports.Logger
	// LookupEnv reads the process environment. It defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new configuration loader.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{Logger: log, LookupEnv: os.LookupEnv}
}

// Load reads the configuration of the project rooted at dir. Missing files
// yield the defaults.
func (l *Loader) Load(dir string) (*domain.Project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve project directory"), "dir", dir)
	}

	file, err := l.readProjectFile(root)
	if err != nil {
		return nil, err
	}

	env, err := l.readEnv(root)
	if err != nil {
		return nil, err
	}
	if v, ok := env[EnvConfiguration]; ok {
		file.Configuration = v
	}
	if v, ok := env[EnvObjectDirectory]; ok {
		file.ObjectDirectory = v
	}
	if v, ok := env[EnvProcessTimeout]; ok {
		file.ProcessTimeout = v
	}
	if v, ok := env[EnvParallelism]; ok {
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "parallelism is not a number"), "value", v)
		}
		file.Parallelism = n
	}

	return Resolve(root, file)
}

// Resolve applies defaults to file and turns it into a project rooted at root.
func Resolve(root string, file ProjectFile) (*domain.Project, error) {
	project := &domain.Project{
		Root:          root,
		GraphFile:     file.Graph,
		Configuration: file.Configuration,
		Parallelism:   file.Parallelism,
	}
	if project.GraphFile == "" {
		project.GraphFile = DefaultGraphFile
	}
	if project.Configuration == "" {
		project.Configuration = DefaultConfiguration
	}
	project.ObjectDirectory = file.ObjectDirectory
	if project.ObjectDirectory == "" {
		project.ObjectDirectory = domain.DefaultObjectDirectory(project.Configuration)
	}
	switch {
	case project.Parallelism == 0:
		project.Parallelism = 1
	case project.Parallelism < 0:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "parallelism must be positive"),
			"parallelism", project.Parallelism)
	}
	if file.ProcessTimeout != "" {
		d, err := time.ParseDuration(file.ProcessTimeout)
		if err != nil || d < 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid process timeout"),
				"value", file.ProcessTimeout)
		}
		project.ProcessTimeout = d
	}

	project.GraphFile = absolute(root, project.GraphFile)
	project.ObjectDirectory = absolute(root, project.ObjectDirectory)
	return project, nil
}

func (l *Loader) readProjectFile(root string) (ProjectFile, error) {
	var file ProjectFile
	path := filepath.Join(root, ProjectFileName)
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the project directory
	if errors.Is(err, fs.ErrNotExist) {
		l.Logger.Diag("No project file, using defaults: " + path)
		return file, nil
	}
	if err != nil {
		return file, zerr.With(zerr.Wrap(err, "failed to read project file"), "path", path)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, err.Error()), "path", path)
	}
	if file.Version != "" && file.Version != "1" {
		return file, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported project file version"),
			"version", file.Version)
	}
	return file, nil
}

// readEnv merges the .env file with the process environment. The process
// environment wins.
func (l *Loader) readEnv(root string) (map[string]string, error) {
	values := make(map[string]string)
	path := filepath.Join(root, EnvFileName)
	fileValues, err := godotenv.Read(path)
	switch {
	case err == nil:
		l.Logger.Diag("Loaded environment overrides: " + path)
		values = fileValues
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, zerr.With(zerr.Wrap(err, "failed to read env file"), "path", path)
	}

	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range []string{EnvConfiguration, EnvObjectDirectory, EnvParallelism, EnvProcessTimeout} {
		if v, ok := lookup(key); ok {
			values[key] = v
		}
	}
	return values, nil
}

func absolute(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
