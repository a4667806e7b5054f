package domain

import (
	"slices"
	"sync"
)

// FileRecord is the tracked fact about one input path: the implicit
// dependencies the producing program reported the last time it ran.
type FileRecord struct {
	Path                   string
	DiscoveredDependencies []string
}

// BuildHistory is the staleness-tracking state of one build configuration.
// Paths are unique. It is safe for concurrent use.
type BuildHistory struct {
	mu      sync.RWMutex
	records map[InternedString]FileRecord
}

// NewBuildHistory creates a history holding the given records. Later records
// replace earlier ones with the same path.
func NewBuildHistory(records ...FileRecord) *BuildHistory {
	h := &BuildHistory{records: make(map[InternedString]FileRecord, len(records))}
	for _, r := range records {
		h.Set(r)
	}
	return h
}

// Get returns the record for path.
func (h *BuildHistory) Get(path string) (FileRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.records[NewInternedString(path)]
	if !ok {
		return FileRecord{}, false
	}
	r.DiscoveredDependencies = slices.Clone(r.DiscoveredDependencies)
	return r, true
}

// Set stores a record, replacing any record with the same path.
func (h *BuildHistory) Set(r FileRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r.DiscoveredDependencies = normalizeDependencies(r.DiscoveredDependencies)
	h.records[NewInternedString(r.Path)] = r
}

// Remove deletes the record for path, if any.
func (h *BuildHistory) Remove(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.records, NewInternedString(path))
}

// Len returns the number of tracked paths.
func (h *BuildHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Records returns a copy of every record ordered by path.
func (h *BuildHistory) Records() []FileRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]FileRecord, 0, len(h.records))
	for _, r := range h.records {
		r.DiscoveredDependencies = slices.Clone(r.DiscoveredDependencies)
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b FileRecord) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		default:
			return 0
		}
	})
	return out
}

// normalizeDependencies sorts and deduplicates a dependency set.
func normalizeDependencies(deps []string) []string {
	if len(deps) == 0 {
		return nil
	}
	out := slices.Clone(deps)
	slices.Sort(out)
	return slices.Compact(out)
}
