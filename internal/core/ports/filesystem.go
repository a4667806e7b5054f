// Package ports defines the core interfaces for the application.
package ports

import (
	"io"
	"time"
)

// FileSystem is the file access used by the build engine. Callers resolve
// relative paths against a node's working directory before calling it.
//
//go:generate go run go.uber.org/mock/mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	Exists(path string) bool
	OpenRead(path string) (io.ReadCloser, error)
	// OpenWrite truncates or creates the file. Content becomes visible when
	// the writer is closed.
	OpenWrite(path string) (io.WriteCloser, error)
	CreateDirectory(path string) error
	GetLastWriteTime(path string) (time.Time, error)
	// RemoveAll deletes path and anything below it. A missing path is not an error.
	RemoveAll(path string) error
}

// StatCache is implemented by file systems that cache metadata. The runner
// purges it after every process execution.
type StatCache interface {
	Purge()
}
