// Package diskhint gives the local-directory vfs mount a way to advise the
// kernel about its access pattern on large files, the way a teacher package
// would reach for golang.org/x/sys rather than roll syscalls by hand. The
// teacher's go.mod already declares x/sys as a direct dependency; this
// package is where StarBreaker actually exercises it.
package diskhint

// Pattern is the advisory access pattern a caller expects for a file it is
// about to read.
type Pattern int

const (
	// Sequential hints that the caller will read the file front-to-back
	// once, as the vfs local-directory mount's Read does when it reads a
	// whole file into memory.
	Sequential Pattern = iota
	// Random hints that the caller will issue scattered ReadAt calls, as in
	// scattered extraction from a large archive file. No mount in this
	// module applies it.
	Random
)
