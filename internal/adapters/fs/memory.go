package fs

import (
	"bytes"
	"io"
	iofs "io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/soup/internal/core/ports"
	"go.trai.ch/zerr"
)

type memFile struct {
	data    []byte
	modTime time.Time
}

// MemoryFileSystem is an in-memory ports.FileSystem that records every request
// as "Operation: path". It backs deterministic builds in tests and dry runs.
type MemoryFileSystem struct {
	mu       sync.Mutex
	files    map[string]*memFile
	dirs     map[string]struct{}
	requests []string
	now      func() time.Time
}

var _ ports.FileSystem = (*MemoryFileSystem)(nil)

// NewMemoryFileSystem creates an empty MemoryFileSystem. Files written through
// it get the time returned by now; nil means time.Now.
func NewMemoryFileSystem(now func() time.Time) *MemoryFileSystem {
	if now == nil {
		now = time.Now
	}
	return &MemoryFileSystem{
		files: make(map[string]*memFile),
		dirs:  make(map[string]struct{}),
		now:   now,
	}
}

// CreateFile adds or replaces a file without recording a request.
func (m *MemoryFileSystem) CreateFile(path string, modTime time.Time, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filepath.Clean(path)] = &memFile{data: []byte(content), modTime: modTime}
}

// ReadFile returns the content of path without recording a request.
func (m *MemoryFileSystem) ReadFile(path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return "", false
	}
	return string(f.data), true
}

// Touch sets the modification time of an existing file without recording a request.
func (m *MemoryFileSystem) Touch(path string, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[filepath.Clean(path)]; ok {
		f.modTime = modTime
	}
}

// Requests returns the recorded requests in order.
func (m *MemoryFileSystem) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.requests)
}

// ClearRequests discards the recorded requests.
func (m *MemoryFileSystem) ClearRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

func (m *MemoryFileSystem) record(op, path string) {
	m.requests = append(m.requests, op+": "+path)
}

// dirExists reports whether path was created as a directory or holds a file.
// Callers hold m.mu.
func (m *MemoryFileSystem) dirExists(path string) bool {
	if path == "." || path == string(filepath.Separator) {
		return true
	}
	if _, ok := m.dirs[path]; ok {
		return true
	}
	prefix := path + string(filepath.Separator)
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Exists reports whether path is a known file or directory.
func (m *MemoryFileSystem) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Exists", path)
	clean := filepath.Clean(path)
	if _, ok := m.files[clean]; ok {
		return true
	}
	return m.dirExists(clean)
}

// OpenRead returns a reader over the content of path.
func (m *MemoryFileSystem) OpenRead(path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("OpenRead", path)
	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, zerr.With(zerr.Wrap(iofs.ErrNotExist, "failed to open file for reading"), "path", path)
	}
	return io.NopCloser(bytes.NewReader(slices.Clone(f.data))), nil
}

// OpenWrite returns a writer that replaces path on Close.
func (m *MemoryFileSystem) OpenWrite(path string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("OpenWrite", path)
	clean := filepath.Clean(path)
	if !m.dirExists(filepath.Dir(clean)) {
		return nil, zerr.With(zerr.Wrap(iofs.ErrNotExist, "failed to open file for writing"), "path", path)
	}
	return &memWriter{fs: m, path: clean}, nil
}

// CreateDirectory registers path and its parents as directories.
func (m *MemoryFileSystem) CreateDirectory(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateDirectory", path)
	for dir := filepath.Clean(path); ; dir = filepath.Dir(dir) {
		if dir == "." || dir == string(filepath.Separator) {
			break
		}
		m.dirs[dir] = struct{}{}
		if filepath.Dir(dir) == dir {
			break
		}
	}
	return nil
}

// GetLastWriteTime returns the modification time of a file.
func (m *MemoryFileSystem) GetLastWriteTime(path string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetLastWriteTime", path)
	f, ok := m.files[filepath.Clean(path)]
	if !ok {
		return time.Time{}, zerr.With(zerr.Wrap(iofs.ErrNotExist, "failed to read last write time"), "path", path)
	}
	return f.modTime, nil
}

// RemoveAll deletes path and everything below it.
func (m *MemoryFileSystem) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("RemoveAll", path)
	clean := filepath.Clean(path)
	prefix := clean + string(filepath.Separator)
	for p := range m.files {
		if p == clean || strings.HasPrefix(p, prefix) {
			delete(m.files, p)
		}
	}
	for d := range m.dirs {
		if d == clean || strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
		}
	}
	return nil
}

type memWriter struct {
	fs   *MemoryFileSystem
	path string
	buf  bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()
	w.fs.files[w.path] = &memFile{data: slices.Clone(w.buf.Bytes()), modTime: w.fs.now()}
	return nil
}
