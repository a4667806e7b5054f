package progrock

import (
	"io"
	"sync"

	"github.com/vito/progrock"
)

// Stream is a progrock.Writer that can be read back one update at a time.
// Updates written before Attach are dropped so an unwatched build does not
// accumulate them.
type Stream struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*progrock.StatusUpdate
	attached bool
	closed   bool
}

var _ progrock.Writer = (*Stream)(nil)

// NewStream returns an empty, detached stream.
func NewStream() *Stream {
	s := &Stream{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Attach starts queueing updates for a reader.
func (s *Stream) Attach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = true
}

// WriteStatus queues update for Read.
func (s *Stream) WriteStatus(update *progrock.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached || s.closed {
		return nil
	}
	s.queue = append(s.queue, update)
	s.cond.Signal()
	return nil
}

// Read blocks until an update is available. It returns io.EOF once the
// stream is closed and drained.
func (s *Stream) Read() (*progrock.StatusUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) == 0 && !s.closed {
		s.cond.Wait()
	}
	if len(s.queue) == 0 {
		return nil, io.EOF
	}
	update := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return update, nil
}

// Close ends the stream. It is safe to call more than once.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
	return nil
}
