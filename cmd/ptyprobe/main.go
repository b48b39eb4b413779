// ptyprobe reproduces a macOS terminal backpressure bug: multiline commands
// past ~1KB can block forever when written to an interactive shell on a
// pseudo-terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcansdale/macos-pty-multiline-bug/internal/config"
	"github.com/jcansdale/macos-pty-multiline-bug/internal/logging"
	"github.com/jcansdale/macos-pty-multiline-bug/internal/probe"
	"github.com/jcansdale/macos-pty-multiline-bug/internal/pty"
	"github.com/jcansdale/macos-pty-multiline-bug/internal/report"
)

// Version information - set at build time.
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes. Blocked probes get their own code so scripts can tell "bug
// reproduced" apart from "could not run".
const (
	exitOK      = 0
	exitBlocked = 1
	exitUsage   = 2
)

func main() {
	var (
		configPath  string
		shellPath   string
		timeoutSecs int
		watch       bool
		showVersion bool
		debug       bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&shellPath, "shell", "", "Shell to probe (overrides config and detection)")
	flag.IntVar(&timeoutSecs, "timeout", 0, "Per-write timeout in seconds (overrides config)")
	flag.BoolVar(&watch, "watch", false, "Rerun the suite whenever the config file changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	if showVersion {
		fmt.Printf("ptyprobe version %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		os.Exit(exitOK)
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(exitUsage)
	}

	applyOverrides(cfg, shellPath, timeoutSecs, debug)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(exitUsage)
	}

	// Setup logging
	logging.Setup(cfg.Logging.Level)

	// Platforms without Unix pseudo-terminals cannot host the probe; that
	// is an answer, not a failure.
	if !pty.Supported() {
		report.Unsupported(os.Stdout)
		os.Exit(exitOK)
	}

	slog.Info("starting ptyprobe", slog.String("version", Version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blocked := runSuite(ctx, cfg)

	if !watch {
		os.Exit(exitCode(blocked))
	}

	// Watch mode: rerun the suite whenever the config file changes, until
	// interrupted. The exit code reflects the last completed run.
	rerun := make(chan *config.Config, 1)
	watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) {
		applyOverrides(newCfg, shellPath, timeoutSecs, debug)
		select {
		case rerun <- newCfg:
		default:
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Watch mode unavailable: %v\n", err)
		os.Exit(exitUsage)
	}

	slog.Info("watching config for changes", slog.String("path", configPath))

	for {
		select {
		case <-ctx.Done():
			slog.Info("received shutdown signal")
			watcher.Close()
			os.Exit(exitCode(blocked))
		case newCfg := <-rerun:
			blocked = runSuite(ctx, newCfg)
		}
	}
}

// runSuite executes one full probe suite against the configured shell and
// prints the report. It returns how many probes blocked.
func runSuite(ctx context.Context, cfg *config.Config) int {
	shell := cfg.Shell.Path
	if shell == "" {
		shell = pty.SelectShell()
	}

	runner := probe.NewRunner(shell,
		probe.WithSettleDelay(cfg.Probe.SettleDelay()),
		probe.WithDrainIdle(cfg.Probe.DrainIdle()),
	)
	reqs := probe.Requests(cfg.Suite.LineCounts, cfg.Suite.LineLength, cfg.Suite.Timeout())

	report.Banner(os.Stdout, report.Platform(), shell, cfg.Suite.Timeout())
	results := runner.RunSuite(ctx, reqs)
	report.Table(os.Stdout, results)

	blocked := probe.BlockedCount(results)
	report.Conclusion(os.Stdout, blocked)
	return blocked
}

// applyOverrides layers command line flags over a loaded config.
func applyOverrides(cfg *config.Config, shellPath string, timeoutSecs int, debug bool) {
	if shellPath != "" {
		cfg.Shell.Path = shellPath
	}
	if timeoutSecs > 0 {
		cfg.Suite.TimeoutSeconds = timeoutSecs
	}
	if debug {
		cfg.Logging.Level = "debug"
	}
}

func exitCode(blocked int) int {
	if blocked > 0 {
		return exitBlocked
	}
	return exitOK
}
