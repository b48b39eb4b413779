package pty

import "errors"

// ErrUnsupported is returned on platforms without Unix pseudo-terminals.
var ErrUnsupported = errors.New("pty sessions are not supported on this platform")
