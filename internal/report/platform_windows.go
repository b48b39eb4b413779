//go:build windows

package report

import "runtime"

// Platform describes the host.
func Platform() string {
	return runtime.GOOS
}
