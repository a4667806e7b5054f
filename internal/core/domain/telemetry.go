package domain

import "strings"

// NodeStatus is the state of a build step within one run.
type NodeStatus string

const (
	// NodeStatusUnvisited indicates the runner has not reached the node yet.
	NodeStatusUnvisited NodeStatus = "unvisited"
	// NodeStatusRunning indicates the node's program is executing.
	NodeStatusRunning NodeStatus = "running"
	// NodeStatusExecuted indicates the node's program ran and exited with code zero.
	NodeStatusExecuted NodeStatus = "executed"
	// NodeStatusSkipped indicates the node was up to date.
	NodeStatusSkipped NodeStatus = "skipped"
	// NodeStatusFailed indicates the program could not run or exited nonzero.
	NodeStatusFailed NodeStatus = "failed"
	// NodeStatusRecorded indicates the node's history records were refreshed.
	NodeStatusRecorded NodeStatus = "recorded"
)

// IsTerminal checks if a status is final for the run.
func (s NodeStatus) IsTerminal() bool {
	switch s {
	case NodeStatusFailed, NodeStatusRecorded:
		return true
	default:
		return false
	}
}

// NormalizeNodeStatus converts a string to a NodeStatus, defaulting to unvisited if unknown.
func NormalizeNodeStatus(s string) NodeStatus {
	switch st := NodeStatus(strings.ToLower(s)); st {
	case NodeStatusUnvisited, NodeStatusRunning, NodeStatusExecuted,
		NodeStatusSkipped, NodeStatusFailed, NodeStatusRecorded:
		return st
	default:
		return NodeStatusUnvisited
	}
}

// LogLevel represents the severity of a log message. The values line up with
// slog levels so adapters can pass them through.
type LogLevel int

const (
	// LogLevelTrace is the most verbose level.
	LogLevelTrace LogLevel = -8
	// LogLevelDiag carries per-file staleness decisions.
	LogLevelDiag LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelHigh marks high-priority progress such as executed steps.
	LogLevelHigh LogLevel = 2
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelTrace:
		return "TRACE"
	case LogLevelDiag:
		return "DIAG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelHigh:
		return "HIGH"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseVerbosity maps a verbosity name to the lowest level that is shown.
func ParseVerbosity(s string) (LogLevel, bool) {
	switch strings.ToLower(s) {
	case "quiet":
		return LogLevelHigh, true
	case "", "normal":
		return LogLevelInfo, true
	case "detailed":
		return LogLevelDiag, true
	case "diagnostic":
		return LogLevelTrace, true
	default:
		return LogLevelInfo, false
	}
}
