package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/soup/internal/core/ports"
)

// NodeID is the unique identifier for the file system Graft node.
const NodeID graft.ID = "adapter.fs"

func init() {
	graft.Register(graft.Node[ports.FileSystem]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FileSystem, error) {
			cached, err := NewCachedFileSystem(NewOSFileSystem(), DefaultCacheSize)
			if err != nil {
				return nil, err
			}
			return cached, nil
		},
	})
}
