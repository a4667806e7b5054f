package ports

import (
	"context"

	"go.trai.ch/soup/internal/core/domain"
)

// ProcessManager runs build step programs.
//
//go:generate go run go.uber.org/mock/mockgen -source=process.go -destination=mocks/mock_process.go -package=mocks
type ProcessManager interface {
	// Execute runs application with the verbatim argument string from
	// workingDirectory and waits for it to exit.
	//
	// A nonzero exit code is reported in the result, not as an error. An
	// error means the process could not be started or was cancelled.
	Execute(ctx context.Context, application, arguments, workingDirectory string) (domain.ProcessResult, error)
}
