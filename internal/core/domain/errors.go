package domain

import "go.trai.ch/zerr"

var (
	// ErrCycleDetected is returned when a node reaches itself through its children.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrInvalidNode is returned when a node description is missing required data.
	ErrInvalidNode = zerr.New("invalid build step")

	// ErrABIOperationFailed is returned when a value ABI call reports a nonzero result code.
	ErrABIOperationFailed = zerr.New("value abi operation failed")

	// ErrUnsupportedABIVersion is returned when an extension targets an unknown ABI revision.
	ErrUnsupportedABIVersion = zerr.New("unsupported extension abi version")

	// ErrExtensionFailed is returned when an extension reports failure from Generate.
	ErrExtensionFailed = zerr.New("extension failed to generate the build graph")

	// ErrNoExtension is returned when no extension can read the graph descriptor.
	ErrNoExtension = zerr.New("no extension for graph descriptor")

	// ErrBuildExecutionFailed is returned when a build step exits with a nonzero code
	// or cannot be launched. The failure has already been logged.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrHistoryCorrupt is returned when the history document cannot be trusted.
	ErrHistoryCorrupt = zerr.New("build history is corrupt")

	// ErrInvalidConfig is returned when the project configuration is malformed.
	ErrInvalidConfig = zerr.New("invalid project configuration")
)
