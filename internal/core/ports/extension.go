package ports

import (
	"go.trai.ch/soup/abi"
	"go.trai.ch/soup/internal/core/domain"
)

// ExtensionLoader selects the extension that describes a project's build graph.
//
//go:generate go run go.uber.org/mock/mockgen -source=extension.go -destination=mocks/mock_extension.go -package=mocks
type ExtensionLoader interface {
	Load(project *domain.Project) (abi.Extension, error)
}
