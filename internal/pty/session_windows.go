//go:build windows

package pty

import "time"

// Supported reports whether this platform can run pty sessions.
func Supported() bool {
	return false
}

// Session is a placeholder on platforms without Unix pseudo-terminals. Its
// methods are unreachable in practice because Start always fails here.
type Session struct{}

// Start always fails on this platform.
func Start(shell string, opts ...Option) (*Session, error) {
	return nil, ErrUnsupported
}

// ID returns the session's log correlation identifier.
func (s *Session) ID() string { return "" }

// Shell returns the shell binary this session runs.
func (s *Session) Shell() string { return "" }

// Pid returns the shell's process ID.
func (s *Session) Pid() int { return 0 }

// Drain discards pending terminal output.
func (s *Session) Drain(idle time.Duration) (int, error) { return 0, ErrUnsupported }

// Write performs one blocking write to the terminal.
func (s *Session) Write(p []byte) (int, error) { return 0, ErrUnsupported }

// Kill delivers SIGKILL to the shell.
func (s *Session) Kill() error { return ErrUnsupported }

// Reap collects the child's exit status.
func (s *Session) Reap(grace time.Duration) error { return ErrUnsupported }

// Close releases the primary side of the terminal.
func (s *Session) Close() error { return ErrUnsupported }

// Release tears the session down.
func (s *Session) Release() error { return ErrUnsupported }
