// Package progrock records build step progress with vito/progrock.
package progrock

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/soup/internal/core/ports"
)

// Recorder implements ports.Telemetry with one progrock vertex per build step.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
	seq atomic.Int64
}

var _ ports.Telemetry = (*Recorder)(nil)

// NewRecorder creates a Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{w: w, rec: progrock.NewRecorder(w)}
}

// Record starts a vertex for one build step. Steps with equal titles get
// distinct vertices.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	id := digest.FromString(strconv.FormatInt(r.seq.Add(1), 10) + ":" + name)
	v := newStepVertex(r.rec.Vertex(id, name))
	return ports.ContextWithVertex(ctx, v), v
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	return r.w.Close()
}
