// Package fs provides the file system adapters used by the build engine.
package fs

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/soup/internal/core/ports"
	"go.trai.ch/zerr"
)

// OSFileSystem implements ports.FileSystem on the host file system.
type OSFileSystem struct{}

var _ ports.FileSystem = (*OSFileSystem)(nil)

// NewOSFileSystem creates a new OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Exists reports whether path names an existing file or directory.
func (f *OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// OpenRead opens path for reading.
func (f *OSFileSystem) OpenRead(path string) (io.ReadCloser, error) {
	//nolint:gosec // Paths come from the build graph
	file, err := os.Open(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open file for reading"), "path", path)
	}
	return file, nil
}

// OpenWrite stages writes in a temporary file next to path and renames it over
// path on Close, so readers never observe a partial document.
func (f *OSFileSystem) OpenWrite(path string) (io.WriteCloser, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open file for writing"), "path", path)
	}
	return &atomicWriter{file: tmp, target: path}, nil
}

// CreateDirectory creates path and any missing parents.
func (f *OSFileSystem) CreateDirectory(path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", path)
	}
	return nil
}

// GetLastWriteTime returns the modification time of path.
func (f *OSFileSystem) GetLastWriteTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, zerr.With(zerr.Wrap(err, "failed to read last write time"), "path", path)
	}
	return info.ModTime(), nil
}

// RemoveAll deletes path and everything below it.
func (f *OSFileSystem) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove path"), "path", path)
	}
	return nil
}

type atomicWriter struct {
	file   *os.File
	target string
	closed bool
}

func (w *atomicWriter) Write(p []byte) (int, error) {
	return w.file.Write(p)
}

func (w *atomicWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	tmpName := w.file.Name()
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to flush file"), "path", w.target)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to close file"), "path", w.target)
	}
	//nolint:gosec // Matches the permissions of a plain create
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to set file permissions"), "path", w.target)
	}
	if err := os.Rename(tmpName, w.target); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to replace file"), "path", w.target)
	}
	return nil
}
