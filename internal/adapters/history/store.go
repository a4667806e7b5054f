package history

import (
	"errors"

	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/soup/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store implements ports.HistoryStore on top of a ports.FileSystem.
type Store struct {
	fs     ports.FileSystem
	logger ports.Logger
}

var _ ports.HistoryStore = (*Store)(nil)

// NewStore creates a Store.
func NewStore(fs ports.FileSystem, logger ports.Logger) *Store {
	return &Store{fs: fs, logger: logger}
}

// Load reads <objectDirectory>/.soup/BuildHistory.json. A missing or corrupt
// document is logged and reported as "not found" with an empty history.
func (s *Store) Load(objectDirectory string) (*domain.BuildHistory, bool, error) {
	path := domain.HistoryPath(objectDirectory)
	if !s.fs.Exists(path) {
		s.logger.Info("BuildHistory file does not exist")
		return domain.NewBuildHistory(), false, nil
	}

	r, err := s.fs.OpenRead(path)
	if err != nil {
		return nil, false, zerr.Wrap(err, "failed to open build history")
	}
	defer func() { _ = r.Close() }()

	h, err := Decode(r)
	if err != nil {
		if errors.Is(err, domain.ErrHistoryCorrupt) {
			s.logger.Warn("Ignoring unreadable BuildHistory file: " + reason(err))
			return domain.NewBuildHistory(), false, nil
		}
		return nil, false, zerr.With(err, "path", path)
	}
	return h, true, nil
}

// Save writes h to <objectDirectory>/.soup/BuildHistory.json, creating the
// metadata directory first if needed.
func (s *Store) Save(objectDirectory string, h *domain.BuildHistory) error {
	dir := domain.MetadataDirectory(objectDirectory)
	if !s.fs.Exists(dir) {
		s.logger.Info("Create Directory: " + dir)
		if err := s.fs.CreateDirectory(dir); err != nil {
			return zerr.Wrap(err, "failed to create metadata directory")
		}
	}

	path := domain.HistoryPath(objectDirectory)
	w, err := s.fs.OpenWrite(path)
	if err != nil {
		return zerr.Wrap(err, "failed to open build history for writing")
	}
	if err := Encode(w, h); err != nil {
		_ = w.Close()
		return zerr.With(err, "path", path)
	}
	if err := w.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write build history"), "path", path)
	}
	return nil
}

func reason(err error) string {
	var zErr *zerr.Error
	if errors.As(err, &zErr) {
		if r, ok := zErr.Metadata()["reason"].(string); ok {
			return r
		}
	}
	return err.Error()
}
