// Package telemetry provides progress recording adapters.
package telemetry

import (
	"context"
	"io"

	"go.trai.ch/soup/internal/core/domain"
	"go.trai.ch/soup/internal/core/ports"
)

// NoOp is a ports.Telemetry that discards everything.
type NoOp struct{}

var _ ports.Telemetry = NoOp{}

// Record returns a vertex that discards its input.
func (NoOp) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	v := noOpVertex{}
	return ports.ContextWithVertex(ctx, v), v
}

// Close does nothing.
func (NoOp) Close() error { return nil }

type noOpVertex struct{}

func (noOpVertex) Stdout() io.Writer                { return io.Discard }
func (noOpVertex) Stderr() io.Writer                { return io.Discard }
func (noOpVertex) Log(_ domain.LogLevel, _ string)  {}
func (noOpVertex) Complete(_ error)                 {}
func (noOpVertex) Cached()                          {}
