package progrock

import (
	"io"
	"strings"
	"sync"

	"github.com/vito/progrock"
	"go.trai.ch/soup/internal/core/domain"
)

// stepVertex is the progrock record of one build step. Warnings and errors
// logged against it land on the error stream.
type stepVertex struct {
	rec *progrock.VertexRecorder

	once sync.Once
}

func newStepVertex(rec *progrock.VertexRecorder) *stepVertex {
	return &stepVertex{rec: rec}
}

func (v *stepVertex) Stdout() io.Writer { return v.rec.Stdout() }

func (v *stepVertex) Stderr() io.Writer { return v.rec.Stderr() }

// Log writes msg one line at a time, each tagged with the level.
func (v *stepVertex) Log(level domain.LogLevel, msg string) {
	w := v.rec.Stdout()
	if level >= domain.LogLevelWarn {
		w = v.rec.Stderr()
	}
	tag := strings.ToLower(level.String()) + ": "

	var b strings.Builder
	for line := range strings.Lines(strings.TrimRight(msg, "\n")) {
		b.WriteString(tag)
		b.WriteString(strings.TrimSuffix(line, "\n"))
		b.WriteByte('\n')
	}
	_, _ = io.WriteString(w, b.String())
}

// Complete finishes the vertex. Only the first call is recorded.
func (v *stepVertex) Complete(err error) {
	v.once.Do(func() { v.rec.Done(err) })
}

func (v *stepVertex) Cached() {
	v.rec.Cached()
}
