package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/zerr"
)

// Tape is a TapeSource that the display opens for the length of one run.
type Tape interface {
	TapeSource
	Attach()
	Close() error
}

// Display shows build progress while a function runs.
type Display struct {
	tape Tape
	out  io.Writer
	opts []tea.ProgramOption
}

// NewDisplay creates a Display drawing to out. opts are appended to the
// program options.
func NewDisplay(tape Tape, out io.Writer, opts ...tea.ProgramOption) *Display {
	return &Display{tape: tape, out: out, opts: opts}
}

// Run draws the steps recorded on the tape until fn returns. The error of fn
// is returned unchanged.
func (d *Display) Run(ctx context.Context, fn func(context.Context) error) error {
	d.tape.Attach()

	opts := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithOutput(d.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	}, d.opts...)
	program := tea.NewProgram(NewModel(d.tape), opts...)

	done := make(chan error, 1)
	go func() {
		_, err := program.Run()
		done <- err
	}()

	err := fn(ctx)
	_ = d.tape.Close()
	uiErr := <-done

	if err != nil {
		return err
	}
	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return zerr.Wrap(uiErr, "progress display failed")
	}
	return nil
}
