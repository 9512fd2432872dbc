//go:build !unix

package diskhint

import "os"

// Advise is a no-op on non-Unix platforms; fadvise has no portable
// equivalent there.
func Advise(f *os.File, p Pattern) {}
