package logger

import (
	"strings"
	"sync"

	"go.trai.ch/soup/internal/core/domain"
)

// Recorder is a ports.Logger that keeps every message as a "LEVEL: message"
// line. Build transcripts are asserted against it.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(level domain.LogLevel, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, level.String()+": "+msg)
}

// Trace records a TRACE line.
func (r *Recorder) Trace(msg string) { r.add(domain.LogLevelTrace, msg) }

// Diag records a DIAG line.
func (r *Recorder) Diag(msg string) { r.add(domain.LogLevelDiag, msg) }

// Info records an INFO line.
func (r *Recorder) Info(msg string) { r.add(domain.LogLevelInfo, msg) }

// High records a HIGH line.
func (r *Recorder) High(msg string) { r.add(domain.LogLevelHigh, msg) }

// Warn records a WARN line.
func (r *Recorder) Warn(msg string) { r.add(domain.LogLevelWarn, msg) }

// Error records an ERROR line with the error text.
func (r *Recorder) Error(err error) {
	if err == nil {
		return
	}
	r.add(domain.LogLevelError, err.Error())
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// String returns the transcript, one line per message.
func (r *Recorder) String() string {
	lines := r.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Reset discards recorded lines.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}
