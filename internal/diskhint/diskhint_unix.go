//go:build unix

package diskhint

import (
	"os"

	"golang.org/x/sys/unix"
)

// Advise applies a readahead hint to f via fadvise. Failures are not fatal;
// a hint is advisory by definition
func Advise(f *os.File, p Pattern) {
	var advice int
	switch p {
	case Sequential:
		advice = unix.FADV_SEQUENTIAL
	case Random:
		advice = unix.FADV_RANDOM
	default:
		return
	}
	_ = unix.Fadvise(int(f.Fd()), 0, 0, advice)
}
