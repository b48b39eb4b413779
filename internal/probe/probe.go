// Package probe runs timed write probes against interactive shell sessions.
//
// A probe answers one question: does a single blocking write of a multiline
// command return before a deadline, or does the terminal's backpressure
// leave it stuck? Nothing is read back after the write; the shell's response
// is deliberately out of scope.
package probe

import (
	"context"
	"log/slog"
	"time"

	"github.com/jcansdale/macos-pty-multiline-bug/internal/adapters/realclock"
	"github.com/jcansdale/macos-pty-multiline-bug/internal/logging"
	"github.com/jcansdale/macos-pty-multiline-bug/internal/payload"
	"github.com/jcansdale/macos-pty-multiline-bug/internal/ports"
	"github.com/jcansdale/macos-pty-multiline-bug/internal/pty"
)

// Defaults for probe timing. The settle delay gives a fresh shell time to
// print its first prompt; the drain idle window is how long the terminal
// must stay quiet before the timed write begins.
const (
	DefaultSettleDelay = 200 * time.Millisecond
	DefaultDrainIdle   = 50 * time.Millisecond
	DefaultTimeout     = 2 * time.Second
)

// Request describes one probe.
type Request struct {
	// Lines is the number of payload lines in the command.
	Lines int

	// LineLength is the number of filler characters per line.
	LineLength int

	// Timeout bounds how long the write may block before the probe is
	// declared blocked.
	Timeout time.Duration
}

// Result records what happened to one probe.
type Result struct {
	// Lines echoes the request.
	Lines int

	// Bytes is the exact size of the command that was written.
	Bytes int

	// Completed reports whether the write call returned within the
	// timeout. It says nothing about the shell's response.
	Completed bool

	// Elapsed is how long the write phase ran before returning or being
	// abandoned.
	Elapsed time.Duration
}

// Session is the slice of a terminal session a probe drives.
type Session interface {
	ID() string
	Drain(idle time.Duration) (int, error)
	Write(p []byte) (int, error)
	Release() error
}

// Starter launches a new attached shell session.
type Starter func(shell string) (Session, error)

// Runner executes probes against one shell, a fresh session per probe.
type Runner struct {
	shell       string
	starter     Starter
	clock       ports.Clock
	logger      *slog.Logger
	settleDelay time.Duration
	drainIdle   time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStarter replaces how sessions are launched.
func WithStarter(s Starter) RunnerOption {
	return func(r *Runner) {
		r.starter = s
	}
}

// WithClock replaces the clock used for settling and write deadlines.
func WithClock(c ports.Clock) RunnerOption {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithLogger replaces the runner's logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithSettleDelay replaces the post-start settle delay.
func WithSettleDelay(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.settleDelay = d
	}
}

// WithDrainIdle replaces the drain idle window.
func WithDrainIdle(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.drainIdle = d
	}
}

// NewRunner creates a Runner that probes the given shell.
func NewRunner(shell string, opts ...RunnerOption) *Runner {
	r := &Runner{
		shell:       shell,
		clock:       realclock.New(),
		logger:      slog.Default(),
		settleDelay: DefaultSettleDelay,
		drainIdle:   DefaultDrainIdle,
	}
	r.starter = r.startSession
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// startSession is the default Starter, backed by a real pseudo-terminal.
func (r *Runner) startSession(shell string) (Session, error) {
	s, err := pty.Start(shell, pty.WithClock(r.clock), pty.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RunProbe starts a fresh interactive shell, lets it settle, drains its
// greeting, then performs one timed write of the rendered command. The
// session is torn down before returning on every path, including start
// failures and panics; teardown errors are logged, never surfaced, so a
// messy exit cannot distort the measurement.
func (r *Runner) RunProbe(ctx context.Context, req Request) Result {
	cmd := payload.Build(req.Lines, req.LineLength)
	res := Result{Lines: req.Lines, Bytes: cmd.Bytes}

	sess, err := r.starter(r.shell)
	if err != nil {
		// A shell that cannot start and a shell that hangs both report
		// as not completed. The log carries the distinction.
		r.logger.Error("start shell session",
			slog.String("shell", r.shell),
			slog.Int("lines", req.Lines),
			slog.String("error", err.Error()))
		return res
	}
	defer func() {
		if relErr := sess.Release(); relErr != nil {
			r.logger.Debug("release session",
				slog.String("session_id", sess.ID()),
				slog.String("error", relErr.Error()))
		}
	}()

	logger := r.logger.With(
		slog.String("session_id", sess.ID()),
		slog.Int("lines", req.Lines))

	// Let the shell initialize and print its first prompt.
	r.clock.Sleep(r.settleDelay)

	drained, err := sess.Drain(r.drainIdle)
	if err != nil {
		// The probe is judged by its write alone; a drain hiccup is
		// recorded and the probe proceeds.
		logger.Debug("drain before write",
			slog.Int("drained_bytes", drained),
			slog.String("error", err.Error()))
	} else {
		logger.Debug("drain before write", slog.Int("drained_bytes", drained))
	}

	logger.Debug("writing command",
		slog.Int("bytes", cmd.Bytes),
		slog.String("preview", logging.TruncateForLog(cmd.Text, 48)))

	start := r.clock.Now()
	res.Completed = r.timedWrite(ctx, logger, sess, []byte(cmd.Text), req.Timeout)
	res.Elapsed = r.clock.Now().Sub(start)

	if res.Completed {
		logger.Info("write completed",
			slog.Int("bytes", cmd.Bytes),
			slog.Duration("elapsed", res.Elapsed))
	} else {
		logger.Warn("write blocked",
			slog.Int("bytes", cmd.Bytes),
			slog.Duration("timeout", req.Timeout))
	}
	return res
}

type writeOutcome struct {
	n   int
	err error
}

// timedWrite issues one blocking write on its own goroutine and waits for
// the first of: the write returning, the timeout firing, or the context
// being canceled. A write that outlasts the timeout stays blocked until the
// deferred teardown severs the terminal, at which point it fails and its
// goroutine exits; the buffered channel means that late send never blocks.
func (r *Runner) timedWrite(ctx context.Context, logger *slog.Logger, sess Session, data []byte, timeout time.Duration) bool {
	outcome := make(chan writeOutcome, 1)
	go func() {
		n, err := sess.Write(data)
		outcome <- writeOutcome{n: n, err: err}
	}()

	select {
	case out := <-outcome:
		if out.err != nil {
			logger.Debug("write failed",
				slog.String("error", out.err.Error()),
				slog.String("head", logging.HexDump(data, 8)))
			return false
		}
		if out.n < len(data) {
			logger.Debug("short write",
				slog.Int("written", out.n),
				slog.Int("requested", len(data)))
		}
		return true
	case <-r.clock.After(timeout):
		return false
	case <-ctx.Done():
		return false
	}
}
