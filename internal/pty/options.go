package pty

import (
	"log/slog"
	"time"

	"github.com/jcansdale/macos-pty-multiline-bug/internal/adapters/realclock"
	"github.com/jcansdale/macos-pty-multiline-bug/internal/ports"
)

// defaultReapGrace bounds how long Release waits for a killed shell to be
// collected before giving up on the reap.
const defaultReapGrace = 500 * time.Millisecond

type sessionConfig struct {
	clock     ports.Clock
	logger    *slog.Logger
	reapGrace time.Duration
}

// Option configures a session at start time.
type Option func(*sessionConfig)

// WithClock replaces the clock used for reap deadlines.
func WithClock(c ports.Clock) Option {
	return func(cfg *sessionConfig) {
		cfg.clock = c
	}
}

// WithLogger replaces the logger used for session lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *sessionConfig) {
		cfg.logger = l
	}
}

// WithReapGrace replaces the bound on waiting for a killed shell.
func WithReapGrace(d time.Duration) Option {
	return func(cfg *sessionConfig) {
		cfg.reapGrace = d
	}
}

func newSessionConfig(opts ...Option) sessionConfig {
	cfg := sessionConfig{
		clock:     realclock.New(),
		logger:    slog.Default(),
		reapGrace: defaultReapGrace,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
