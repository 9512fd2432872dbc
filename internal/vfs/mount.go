package vfs

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// MountPoint is the contract every backing store (archive mount,
// local-directory mount) implements "Mount point contract".
type MountPoint interface {
	ID() string
	MountPath() string
	ReadOnly() bool

	Exists(path string) bool
	IsFile(path string) bool
	IsDirectory(path string) bool

	Read(path string) ([]byte, error)
	List(dir string) ([]Node, error)
	Metadata(path string) (*Node, error)
	Find(pattern string) ([]Node, error)
}

// findByPattern is the shared pattern-matching helper mounts use to
// implement Find, factored out so both mount kinds (and the VFS-level
// aggregate Find) apply identical matching rules
func findByPattern(nodes []Node, pattern string) []Node {
	pattern = strings.ToLower(pattern)
	var out []Node
	for _, n := range nodes {
		if doublestar.MatchUnvalidated(pattern, strings.ToLower(n.Name)) {
			out = append(out, n)
		}
	}
	return out
}

// mountStack maintains mounts sorted by mount-path byte length, longest
// first, so routing is a linear scan that returns on the first starts-with
// match.
type mountStack struct {
	mounts []MountPoint
}

func (s *mountStack) add(m MountPoint) error {
	newPath := normalizeMountPath(m.MountPath())
	for _, existing := range s.mounts {
		ep := normalizeMountPath(existing.MountPath())
		if isPrefixPath(ep, newPath) || isPrefixPath(newPath, ep) {
			return starerr.New(starerr.MountConflict, "vfs: mount path overlaps an existing mount").WithEntry(newPath)
		}
	}
	s.mounts = append(s.mounts, m)
	// Longest mount path first; ties broken by insertion order (stable).
	for i := len(s.mounts) - 1; i > 0; i-- {
		if len(normalizeMountPath(s.mounts[i].MountPath())) <= len(normalizeMountPath(s.mounts[i-1].MountPath())) {
			break
		}
		s.mounts[i], s.mounts[i-1] = s.mounts[i-1], s.mounts[i]
	}
	return nil
}

func (s *mountStack) remove(mountID string) (MountPoint, bool) {
	for i, m := range s.mounts {
		if m.ID() == mountID {
			s.mounts = append(s.mounts[:i], s.mounts[i+1:]...)
			return m, true
		}
	}
	return nil, false
}

// route selects the first mount whose mount path is a prefix of p, and
// returns the mount-local path with that prefix stripped
func (s *mountStack) route(p string) (MountPoint, string, error) {
	p = strings.TrimPrefix(p, "/")
	for _, m := range s.mounts {
		mp := normalizeMountPath(m.MountPath())
		if isPrefixPath(mp, p) {
			local := strings.TrimPrefix(p, mp)
			local = strings.TrimPrefix(local, "/")
			return m, local, nil
		}
	}
	return nil, "", starerr.New(starerr.NotFound, "vfs: no mount point covers path").WithEntry(p)
}

func normalizeMountPath(p string) string {
	return strings.Trim(p, "/")
}

// isPrefixPath reports whether prefix is a path-segment-aligned prefix of p
// (an empty prefix matches everything, i.e. a root mount).
func isPrefixPath(prefix, p string) bool {
	if prefix == "" {
		return true
	}
	if p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}
