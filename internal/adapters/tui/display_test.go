package tui_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vprogrock "github.com/vito/progrock"
	"go.trai.ch/soup/internal/adapters/telemetry/progrock"
	"go.trai.ch/soup/internal/adapters/tui"
)

func TestDisplay_Run(t *testing.T) {
	stream := progrock.NewStream()
	display := tui.NewDisplay(stream, new(bytes.Buffer), tea.WithoutRenderer())

	ran := false
	err := display.Run(context.Background(), func(context.Context) error {
		ran = true
		return stream.WriteStatus(&vprogrock.StatusUpdate{
			Vertexes: []*vprogrock.Vertex{{Id: "1", Name: "Compile"}},
		})
	})

	require.NoError(t, err)
	assert.True(t, ran)

	_, err = stream.Read()
	assert.ErrorIs(t, err, io.EOF, "the tape is closed once the run ends")
}

func TestDisplay_Run_ReturnsBuildError(t *testing.T) {
	stream := progrock.NewStream()
	display := tui.NewDisplay(stream, io.Discard, tea.WithoutRenderer())
	boom := errors.New("boom")

	err := display.Run(context.Background(), func(context.Context) error {
		return boom
	})

	assert.Same(t, boom, err)
}

func TestDisplay_Run_Cancelled(t *testing.T) {
	stream := progrock.NewStream()
	display := tui.NewDisplay(stream, io.Discard, tea.WithoutRenderer())
	ctx, cancel := context.WithCancel(context.Background())

	err := display.Run(ctx, func(context.Context) error {
		cancel()
		return nil
	})

	assert.NoError(t, err)
}
