//go:build !windows

package pty

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"

	"github.com/jcansdale/macos-pty-multiline-bug/internal/ports"
)

const (
	// drainChunk is the read size used while discarding prompt output.
	drainChunk = 4096

	// maxDrainReads caps a drain so a continuously chatty child cannot
	// stall the probe before its timed write begins.
	maxDrainReads = 64
)

// Supported reports whether this platform can run pty sessions.
func Supported() bool {
	return true
}

// Session is an interactive shell attached to a local pseudo-terminal. The
// parent keeps only the primary side; the secondary becomes the child's
// controlling terminal and the parent's copy is closed once the child holds
// it. A session belongs to exactly one probe and is never reused.
type Session struct {
	id    string
	shell string

	master *os.File
	cmd    *exec.Cmd

	clock     ports.Clock
	logger    *slog.Logger
	reapGrace time.Duration

	waitOnce sync.Once
	waitCh   chan struct{}

	mu       sync.Mutex
	released bool
}

// Start launches shell as an interactive child on a fresh pseudo-terminal,
// arranged the way a terminal emulator would: new session, terminal as
// controlling tty, stdin/stdout/stderr all on the secondary side.
func Start(shell string, opts ...Option) (*Session, error) {
	cfg := newSessionConfig(opts...)

	master, tty, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("open pty: %w", err)
	}

	// -i forces interactive mode. Non-interactive shells consume input
	// without the echo and line editing that produce the blocking
	// behavior under test.
	cmd := exec.Command(shell, "-i")
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}

	if err := cmd.Start(); err != nil {
		_ = tty.Close()
		_ = master.Close()
		return nil, fmt.Errorf("start %s: %w", shell, err)
	}

	// The child owns the secondary side now.
	if err := tty.Close(); err != nil {
		cfg.logger.Debug("close tty after start", slog.String("error", err.Error()))
	}

	// The timed write must reach the kernel as a plain blocking write(2).
	// Fd moves the descriptor back into blocking mode if the runtime had
	// registered it with the poller.
	_ = master.Fd()

	s := &Session{
		id:        uuid.NewString(),
		shell:     shell,
		master:    master,
		cmd:       cmd,
		clock:     cfg.clock,
		logger:    cfg.logger,
		reapGrace: cfg.reapGrace,
	}

	s.logger.Debug("shell session started",
		slog.String("session_id", s.id),
		slog.String("shell", shell),
		slog.Int("pid", s.Pid()))
	return s, nil
}

// ID returns the session's log correlation identifier.
func (s *Session) ID() string {
	return s.id
}

// Shell returns the shell binary this session runs.
func (s *Session) Shell() string {
	return s.shell
}

// Pid returns the shell's process ID, or 0 before the child exists.
func (s *Session) Pid() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Drain discards pending terminal output until it stays quiet for a full
// idle window, and returns the number of bytes discarded. It polls instead
// of reading from a goroutine so that no read is pending when it returns. A
// leftover reader would consume the echo generated during the timed write
// and relieve the backpressure the probe is trying to observe.
func (s *Session) Drain(idle time.Duration) (int, error) {
	rc, err := s.master.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("drain pty: %w", err)
	}

	total := 0
	var drainErr error
	ctrlErr := rc.Control(func(fd uintptr) {
		buf := make([]byte, drainChunk)
		for reads := 0; reads < maxDrainReads; reads++ {
			n, err := pollRead(int(fd), buf, idle)
			if err != nil {
				drainErr = err
				return
			}
			if n == 0 {
				return
			}
			total += n
		}
	})
	if ctrlErr != nil {
		return total, fmt.Errorf("drain pty: %w", ctrlErr)
	}
	if drainErr != nil {
		return total, fmt.Errorf("drain pty: %w", drainErr)
	}
	return total, nil
}

// pollRead waits up to idle for fd to become readable and reads one chunk.
// n == 0 means the terminal stayed quiet for the whole window or reported
// end of file.
func pollRead(fd int, buf []byte, idle time.Duration) (int, error) {
	for {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		ready, err := unix.Poll(fds, int(idle.Milliseconds()))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if ready == 0 {
			return 0, nil
		}

		n, err := unix.Read(fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		return n, nil
	}
}

// Write performs one blocking write(2) of p to the terminal and returns
// whatever the kernel accepted, which may be less than len(p). The call can
// block indefinitely; that is the condition the probe measures. It runs
// under the runtime's descriptor reference so a concurrent Release cannot
// recycle the descriptor mid-call.
func (s *Session) Write(p []byte) (int, error) {
	rc, err := s.master.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("write pty: %w", err)
	}

	n := 0
	var writeErr error
	ctrlErr := rc.Write(func(fd uintptr) bool {
		for {
			n, writeErr = unix.Write(int(fd), p)
			if writeErr == unix.EINTR {
				continue
			}
			return true
		}
	})
	if ctrlErr != nil {
		return 0, fmt.Errorf("write pty: %w", ctrlErr)
	}
	if writeErr != nil {
		return 0, fmt.Errorf("write pty: %w", writeErr)
	}
	return n, nil
}

// Kill delivers SIGKILL to the shell. An already-exited child is not an
// error.
func (s *Session) Kill() error {
	if s.cmd.Process == nil {
		return errors.New("kill shell: process not started")
	}
	if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill shell: %w", err)
	}
	return nil
}

// waitChan starts the single Wait allowed per command and fans completion
// out to every reap attempt.
func (s *Session) waitChan() <-chan struct{} {
	s.waitOnce.Do(func() {
		s.waitCh = make(chan struct{})
		go func() {
			_ = s.cmd.Wait()
			close(s.waitCh)
		}()
	})
	return s.waitCh
}

// Reap collects the child's exit status, waiting at most grace. A child
// that outlives the grace is reported, not waited on; the collecting
// goroutine stays parked until the process actually dies.
func (s *Session) Reap(grace time.Duration) error {
	select {
	case <-s.waitChan():
		return nil
	case <-s.clock.After(grace):
		return fmt.Errorf("reap shell: pid %d still running after %s", s.Pid(), grace)
	}
}

// Close releases the primary side of the terminal. A writer still blocked
// in write(2) holds a descriptor reference, so the runtime defers the
// underlying close until that call returns.
func (s *Session) Close() error {
	if err := s.master.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close pty: %w", err)
	}
	return nil
}

// Release tears the session down: kill the shell, collect it, close the
// terminal. Every step runs regardless of earlier failures and the step
// errors are merged into one. Killing first matters; the child's death
// closes the secondary side, which is what unblocks a writer stuck in
// write(2). Only the first call does work.
func (s *Session) Release() error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	s.mu.Unlock()

	var err error
	if killErr := s.Kill(); killErr != nil {
		err = multierror.Append(err, killErr)
	}
	if reapErr := s.Reap(s.reapGrace); reapErr != nil {
		err = multierror.Append(err, reapErr)
	}
	if closeErr := s.Close(); closeErr != nil {
		err = multierror.Append(err, closeErr)
	}

	if err != nil {
		s.logger.Debug("session released with errors",
			slog.String("session_id", s.id),
			slog.String("error", err.Error()))
		return err
	}
	s.logger.Debug("session released", slog.String("session_id", s.id))
	return nil
}
