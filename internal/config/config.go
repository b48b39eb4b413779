// Package config handles configuration parsing for ptyprobe.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jcansdale/macos-pty-multiline-bug/internal/payload"
	"github.com/jcansdale/macos-pty-multiline-bug/internal/ports"
)

var defaultLineCounts = []int{10, 15, 18, 20, 25}

const (
	defaultTimeoutSeconds = 2
	defaultSettleDelayMS  = 200
	defaultDrainIdleMS    = 50
)

// Config represents the top-level configuration.
type Config struct {
	Suite   SuiteConfig   `yaml:"suite"`
	Shell   ShellConfig   `yaml:"shell"`
	Probe   ProbeConfig   `yaml:"probe"`
	Logging LoggingConfig `yaml:"logging"`
}

// SuiteConfig defines which command sizes the suite probes.
type SuiteConfig struct {
	LineCounts     []int `yaml:"line_counts"`     // payload lines per probe, run in order
	LineLength     int   `yaml:"line_length"`     // filler characters per line
	TimeoutSeconds int   `yaml:"timeout_seconds"` // per-write deadline
}

// Timeout returns the per-write deadline as a duration.
func (s SuiteConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// ShellConfig defines which shell is probed.
type ShellConfig struct {
	Path string `yaml:"path"` // custom shell path (overrides detection)
}

// ProbeConfig defines probe timing.
type ProbeConfig struct {
	SettleDelayMS int `yaml:"settle_delay_ms"` // wait after shell start
	DrainIdleMS   int `yaml:"drain_idle_ms"`   // quiet window ending a drain
}

// SettleDelay returns the post-start settle delay as a duration.
func (p ProbeConfig) SettleDelay() time.Duration {
	return time.Duration(p.SettleDelayMS) * time.Millisecond
}

// DrainIdle returns the drain idle window as a duration.
func (p ProbeConfig) DrainIdle() time.Duration {
	return time.Duration(p.DrainIdleMS) * time.Millisecond
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// DefaultConfig returns the default configuration, which matches the
// published reproduction: line counts straddling the 1KB boundary, 50
// filler characters per line, a 2 second write deadline.
func DefaultConfig() *Config {
	return &Config{
		Suite: SuiteConfig{
			LineCounts:     append([]int(nil), defaultLineCounts...),
			LineLength:     payload.DefaultLineLength,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Probe: ProbeConfig{
			SettleDelayMS: defaultSettleDelayMS,
			DrainIdleMS:   defaultDrainIdleMS,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. An empty path means no config
// file and yields the defaults; a path that cannot be read is an error. An
// optional FileSystem can be passed for testing; if omitted, the real OS is
// used.
func Load(path string, fsys ...ports.FileSystem) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	var data []byte
	var err error
	if len(fsys) > 0 && fsys[0] != nil {
		data, err = fsys[0].ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// Validate normalizes the configuration, clamping unusable values back to
// their defaults. Non-positive line counts are dropped rather than probed.
func (c *Config) Validate() error {
	counts := c.Suite.LineCounts[:0]
	for _, n := range c.Suite.LineCounts {
		if n > 0 {
			counts = append(counts, n)
		}
	}
	c.Suite.LineCounts = counts
	if len(c.Suite.LineCounts) == 0 {
		c.Suite.LineCounts = append([]int(nil), defaultLineCounts...)
	}

	if c.Suite.LineLength <= 0 {
		c.Suite.LineLength = payload.DefaultLineLength
	}
	if c.Suite.TimeoutSeconds <= 0 {
		c.Suite.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Probe.SettleDelayMS < 0 {
		c.Probe.SettleDelayMS = defaultSettleDelayMS
	}
	if c.Probe.DrainIdleMS <= 0 {
		c.Probe.DrainIdleMS = defaultDrainIdleMS
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
