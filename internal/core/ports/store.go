package ports

import "go.trai.ch/soup/internal/core/domain"

// HistoryStore persists the build history of one object directory.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type HistoryStore interface {
	// Load reads the history stored under objectDirectory.
	// It returns false with an empty history when there is no usable previous state.
	Load(objectDirectory string) (*domain.BuildHistory, bool, error)

	// Save replaces the stored history, creating the metadata directory if needed.
	Save(objectDirectory string, history *domain.BuildHistory) error
}
