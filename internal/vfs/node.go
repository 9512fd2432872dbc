// Package vfs implements the priority-ordered mount stack that sits above
// archive and the local filesystem, with a shared LRU of decompressed blobs.
// Grounded on the prior fs.go (the "burrows" wrapper around an fs.FS stack,
// its mutex-guarded lookup table, and its Open/resolve split) but reworked
// from "one fs.FS wrapping sub-filesystems behind special-suffix markers"
// into an explicit, priority-ordered mount-point list with
// longest-mount-path-first routing.
package vfs

import "github.com/cespare/xxhash/v2"

// Kind is the closed set of VFS node kinds
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Node describes one entry as seen through the VFS, aggregated from
// whichever mount currently owns it
type Node struct {
	Name           string
	Kind           Kind
	Size           uint64
	MountID        string
	Offset         *uint64
	CompressedSize *uint64
	Extension      string

	// ContentHash is an additive field (SPEC_FULL.md "Supplemented features"):
	// an xxhash/64 of the node's bytes, set only when a caller calls
	// HashContent; no mount fills it in. Zero until then; never consulted by
	// core routing/listing invariants.
	ContentHash uint64
}

// HashContent fills in n.ContentHash from data. Callers that never need
// dedup-by-hash can ignore this entirely.
func (n *Node) HashContent(data []byte) {
	n.ContentHash = xxhash.Sum64(data)
}
