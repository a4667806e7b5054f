// Package history persists the build history as a JSON document.
package history

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/zerr"
)

// SchemaVersion is the revision of the history document written by Encode.
const SchemaVersion = 1

type document struct {
	Version  int         `json:"version"`
	Checksum string      `json:"checksum"`
	Files    []fileEntry `json:"files"`
}

type fileEntry struct {
	Path         string   `json:"path"`
	Dependencies []string `json:"dependencies,omitempty"`
}

func checksum(files []fileEntry) (string, error) {
	data, err := json.Marshal(files)
	if err != nil {
		return "", zerr.Wrap(err, "failed to marshal history records")
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}

// Encode writes h to w. Records are ordered by path so equal histories produce
// equal documents.
func Encode(w io.Writer, h *domain.BuildHistory) error {
	records := h.Records()
	doc := document{Version: SchemaVersion, Files: make([]fileEntry, 0, len(records))}
	for _, r := range records {
		doc.Files = append(doc.Files, fileEntry{Path: r.Path, Dependencies: r.DiscoveredDependencies})
	}

	sum, err := checksum(doc.Files)
	if err != nil {
		return err
	}
	doc.Checksum = sum

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal build history")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return zerr.Wrap(err, "failed to write build history")
	}
	return nil
}

// Decode reads a document written by Encode. A document that is malformed,
// has an unknown version or fails its checksum yields ErrHistoryCorrupt.
func Decode(r io.Reader) (*domain.BuildHistory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read build history")
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, corrupt(err.Error())
	}
	if doc.Version != SchemaVersion {
		return nil, corrupt(fmt.Sprintf("unsupported version %d", doc.Version))
	}

	sum, err := checksum(doc.Files)
	if err != nil {
		return nil, err
	}
	if sum != doc.Checksum {
		return nil, corrupt("checksum mismatch")
	}

	h := domain.NewBuildHistory()
	for _, f := range doc.Files {
		if f.Path == "" {
			return nil, corrupt("record without path")
		}
		h.Set(domain.FileRecord{Path: f.Path, DiscoveredDependencies: f.Dependencies})
	}
	return h, nil
}

func corrupt(reason string) error {
	return zerr.With(zerr.Wrap(domain.ErrHistoryCorrupt, reason), "reason", reason)
}
