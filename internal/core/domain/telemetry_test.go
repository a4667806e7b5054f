package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/soup/internal/core/domain"
)

func TestNodeStatus(t *testing.T) {
	tests := []struct {
		status     domain.NodeStatus
		isTerminal bool
	}{
		{domain.NodeStatusUnvisited, false},
		{domain.NodeStatusRunning, false},
		{domain.NodeStatusExecuted, false},
		{domain.NodeStatusSkipped, false},
		{domain.NodeStatusFailed, true},
		{domain.NodeStatusRecorded, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.status.IsTerminal())
		})
	}
}

func TestNormalizeNodeStatus(t *testing.T) {
	assert.Equal(t, domain.NodeStatusSkipped, domain.NormalizeNodeStatus("SKIPPED"))
	assert.Equal(t, domain.NodeStatusUnvisited, domain.NormalizeNodeStatus("bogus"))
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    domain.LogLevel
		expected string
	}{
		{domain.LogLevelTrace, "TRACE"},
		{domain.LogLevelDiag, "DIAG"},
		{domain.LogLevelInfo, "INFO"},
		{domain.LogLevelHigh, "HIGH"},
		{domain.LogLevelWarn, "WARN"},
		{domain.LogLevelError, "ERROR"},
		{domain.LogLevel(999), "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in   string
		want domain.LogLevel
		ok   bool
	}{
		{"quiet", domain.LogLevelHigh, true},
		{"", domain.LogLevelInfo, true},
		{"Detailed", domain.LogLevelDiag, true},
		{"diagnostic", domain.LogLevelTrace, true},
		{"loud", domain.LogLevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := domain.ParseVerbosity(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
