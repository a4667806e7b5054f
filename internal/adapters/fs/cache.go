package fs

import (
	"io"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/soup/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultCacheSize is the number of paths whose metadata is kept.
const DefaultCacheSize = 4096

type statEntry struct {
	exists  bool
	modTime time.Time
	err     error
}

// CachedFileSystem memoizes Exists and GetLastWriteTime of an underlying file
// system. Writes through the cache invalidate the affected path; anything
// else that changes files, such as a build step, must be followed by Purge.
type CachedFileSystem struct {
	inner ports.FileSystem
	stats *lru.Cache[string, statEntry]
}

var (
	_ ports.FileSystem = (*CachedFileSystem)(nil)
	_ ports.StatCache  = (*CachedFileSystem)(nil)
)

// NewCachedFileSystem wraps inner with a metadata cache holding up to size paths.
func NewCachedFileSystem(inner ports.FileSystem, size int) (*CachedFileSystem, error) {
	stats, err := lru.New[string, statEntry](size)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create stat cache"), "size", size)
	}
	return &CachedFileSystem{inner: inner, stats: stats}, nil
}

func (c *CachedFileSystem) stat(path string) statEntry {
	if e, ok := c.stats.Get(path); ok {
		return e
	}
	e := statEntry{exists: c.inner.Exists(path)}
	if e.exists {
		e.modTime, e.err = c.inner.GetLastWriteTime(path)
	}
	c.stats.Add(path, e)
	return e
}

// Exists reports whether path exists.
func (c *CachedFileSystem) Exists(path string) bool {
	return c.stat(path).exists
}

// GetLastWriteTime returns the modification time of path.
func (c *CachedFileSystem) GetLastWriteTime(path string) (time.Time, error) {
	e := c.stat(path)
	if !e.exists {
		// Let the underlying file system produce its own not-found error.
		c.stats.Remove(path)
		return c.inner.GetLastWriteTime(path)
	}
	return e.modTime, e.err
}

// OpenRead opens path for reading.
func (c *CachedFileSystem) OpenRead(path string) (io.ReadCloser, error) {
	return c.inner.OpenRead(path)
}

// OpenWrite opens path for writing and invalidates its metadata.
func (c *CachedFileSystem) OpenWrite(path string) (io.WriteCloser, error) {
	c.stats.Remove(path)
	w, err := c.inner.OpenWrite(path)
	if err != nil {
		return nil, err
	}
	return &invalidatingWriter{WriteCloser: w, path: path, stats: c.stats}, nil
}

// CreateDirectory creates path and invalidates its metadata.
func (c *CachedFileSystem) CreateDirectory(path string) error {
	c.stats.Remove(path)
	return c.inner.CreateDirectory(path)
}

// RemoveAll deletes path. The whole cache is dropped since entries below
// path are gone as well.
func (c *CachedFileSystem) RemoveAll(path string) error {
	c.stats.Purge()
	return c.inner.RemoveAll(path)
}

// Purge drops every cached entry.
func (c *CachedFileSystem) Purge() {
	c.stats.Purge()
}

type invalidatingWriter struct {
	io.WriteCloser
	path  string
	stats *lru.Cache[string, statEntry]
}

func (w *invalidatingWriter) Close() error {
	err := w.WriteCloser.Close()
	w.stats.Remove(w.path)
	return err
}
