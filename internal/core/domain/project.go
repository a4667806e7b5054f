package domain

import (
	"path/filepath"
	"time"
)

// MetadataDirectoryName is the directory under an object directory that holds
// the engine's own state.
const MetadataDirectoryName = ".soup"

// HistoryFileName is the name of the persisted history document.
const HistoryFileName = "BuildHistory.json"

// Project is the resolved configuration of one build invocation.
type Project struct {
	// Root is the directory holding soup.yaml. Relative paths below are
	// resolved against it.
	Root string
	// GraphFile is the graph descriptor read by an extension.
	GraphFile string
	// Configuration names the build flavor, such as debug or release.
	Configuration string
	// ObjectDirectory receives the metadata directory of this configuration.
	ObjectDirectory string
	Parallelism     int
	// ProcessTimeout bounds each process execution. Zero means no limit.
	ProcessTimeout time.Duration
	ForceBuild     bool
}

// DefaultObjectDirectory returns out/obj/<configuration> relative to a
// project root.
func DefaultObjectDirectory(configuration string) string {
	return filepath.Join("out", "obj", configuration)
}

// MetadataDirectory returns <objectDirectory>/.soup for objectDirectory.
func MetadataDirectory(objectDirectory string) string {
	return filepath.Join(objectDirectory, MetadataDirectoryName)
}

// HistoryPath returns the history document path for objectDirectory.
func HistoryPath(objectDirectory string) string {
	return filepath.Join(MetadataDirectory(objectDirectory), HistoryFileName)
}
