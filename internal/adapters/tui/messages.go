package tui

import "github.com/vito/progrock"

// MsgTapeUpdate wraps one update read from the tape.
type MsgTapeUpdate struct {
	Update *progrock.StatusUpdate
}

// MsgTapeEnded is sent once the tape has no more updates.
type MsgTapeEnded struct{}
