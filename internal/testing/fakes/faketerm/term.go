// Package faketerm provides scriptable terminal sessions for probe tests.
package faketerm

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrReleased is returned by operations on a released session.
var ErrReleased = errors.New("session released")

// ErrTerminalClosed is what a blocked write returns once Release unblocks
// it, standing in for the EIO a real terminal reports after its child dies.
var ErrTerminalClosed = errors.New("terminal closed during write")

// Session is a fake terminal session for testing probe logic without real
// terminals.
type Session struct {
	mu         sync.Mutex
	id         string
	drainData  []string // queued drain payloads, one per Drain call
	drainErr   error
	blockWrite bool
	writeErr   error
	releaseErr error
	written    bytes.Buffer
	drains     []time.Duration
	released   int
	unblock    chan struct{}
}

// New creates a new fake session.
func New() *Session {
	return &Session{
		id:      "fake-session",
		unblock: make(chan struct{}),
	}
}

// WithID sets the session identifier.
func (s *Session) WithID(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return s
}

// AddDrainData queues data to be reported as drained, one entry per Drain
// call. Calls past the queue report zero bytes.
func (s *Session) AddDrainData(data string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainData = append(s.drainData, data)
	return s
}

// SetDrainError makes Drain fail.
func (s *Session) SetDrainError(err error) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainErr = err
	return s
}

// SetBlockWrites makes Write block until Release is called, which mimics a
// terminal whose buffer never drains.
func (s *Session) SetBlockWrites(block bool) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockWrite = block
	return s
}

// SetWriteError makes Write fail immediately.
func (s *Session) SetWriteError(err error) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
	return s
}

// SetReleaseError makes Release report an error. Release still unblocks
// pending writes.
func (s *Session) SetReleaseError(err error) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseErr = err
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Drain records the idle window and consumes one queued drain payload.
func (s *Session) Drain(idle time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drains = append(s.drains, idle)
	if s.drainErr != nil {
		return 0, s.drainErr
	}
	if len(s.drainData) == 0 {
		return 0, nil
	}
	data := s.drainData[0]
	s.drainData = s.drainData[1:]
	return len(data), nil
}

// Write captures p, or blocks until Release when SetBlockWrites is on.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	if s.released > 0 {
		s.mu.Unlock()
		return 0, ErrReleased
	}
	if s.writeErr != nil {
		err := s.writeErr
		s.mu.Unlock()
		return 0, err
	}
	if s.blockWrite {
		unblock := s.unblock
		s.mu.Unlock()
		<-unblock
		return 0, ErrTerminalClosed
	}
	defer s.mu.Unlock()
	return s.written.Write(p)
}

// Release marks the session released and unblocks any pending write. Only
// the first call closes the unblock channel.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.released++
	if s.released == 1 {
		close(s.unblock)
	}
	return s.releaseErr
}

// --- Test inspection methods ---

// Written returns all data captured by Write.
func (s *Session) Written() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written.String()
}

// DrainCalls returns the idle windows passed to Drain, in call order.
func (s *Session) DrainCalls() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.drains))
	copy(out, s.drains)
	return out
}

// ReleaseCount returns how many times Release was called.
func (s *Session) ReleaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Factory hands out sessions in order and remembers every one of them, so a
// test can assert on sessions created deep inside a suite run.
type Factory struct {
	mu       sync.Mutex
	prepared []*Session
	sessions []*Session
	shells   []string
	startErr error
}

// NewFactory creates a factory that returns the prepared sessions in order.
// Once they run out it hands out fresh default sessions.
func NewFactory(prepared ...*Session) *Factory {
	return &Factory{prepared: prepared}
}

// SetStartError makes every subsequent Start fail.
func (f *Factory) SetStartError(err error) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startErr = err
	return f
}

// Start returns the next session and records the requested shell.
func (f *Factory) Start(shell string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.shells = append(f.shells, shell)
	if f.startErr != nil {
		return nil, f.startErr
	}

	var s *Session
	if len(f.prepared) > 0 {
		s = f.prepared[0]
		f.prepared = f.prepared[1:]
	} else {
		s = New().WithID(fmt.Sprintf("fake-session-%d", len(f.sessions)+1))
	}
	f.sessions = append(f.sessions, s)
	return s, nil
}

// Sessions returns every session the factory handed out.
func (f *Factory) Sessions() []*Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Session, len(f.sessions))
	copy(out, f.sessions)
	return out
}

// Shells returns the shell paths requested from Start, in call order.
func (f *Factory) Shells() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.shells))
	copy(out, f.shells)
	return out
}
