//go:build !windows

package report

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Platform describes the host the way uname would, like "Darwin 23.1.0".
func Platform() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return runtime.GOOS
	}
	return fmt.Sprintf("%s %s",
		unix.ByteSliceToString(uts.Sysname[:]),
		unix.ByteSliceToString(uts.Release[:]))
}
