// Package pty provides interactive shell sessions attached to a local
// pseudo-terminal, with the teardown guarantees the probe depends on.
package pty

import (
	"github.com/jcansdale/macos-pty-multiline-bug/internal/adapters/realfs"
	"github.com/jcansdale/macos-pty-multiline-bug/internal/ports"
)

// shellCandidates are probed in order. zsh first: the blocking behavior was
// reported against interactive zsh, so it is the most interesting shell to
// land on.
var shellCandidates = []string{
	"/bin/zsh",
	"/usr/bin/zsh",
	"/bin/bash",
	"/usr/bin/bash",
}

// fallbackShell is used when no candidate exists.
const fallbackShell = "/bin/sh"

// SelectShell returns the first shell candidate present on the filesystem,
// or /bin/sh when none is. An optional FileSystem lets tests control what
// exists; omitted, the real filesystem is used.
func SelectShell(fsys ...ports.FileSystem) string {
	var fs ports.FileSystem = realfs.New()
	if len(fsys) > 0 && fsys[0] != nil {
		fs = fsys[0]
	}

	for _, shell := range shellCandidates {
		if _, err := fs.Stat(shell); err == nil {
			return shell
		}
	}
	return fallbackShell
}
