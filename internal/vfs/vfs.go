package vfs

import (
	"path"
	"sync"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// defaultCacheCapacity bounds the extraction cache's total resident bytes
// when a VFS is constructed with New's zero Options.
const defaultCacheCapacity = 64 * 1024 * 1024

// Options configures a VFS. The zero value is valid.
type Options struct {
	// CacheCapacityBytes bounds the extraction cache Zero means
	// defaultCacheCapacity.
	CacheCapacityBytes int64
}

// VFS is the priority-ordered mount stack of The mount list is protected by
// a reader-writer discipline (many concurrent lookups, exclusive
// reconfiguration), matching resource model.
type VFS struct {
	mu    sync.RWMutex
	stack mountStack
	cache *byteBudgetCache
}

// New constructs an empty VFS ready to accept mounts.
func New(opts Options) *VFS {
	capacity := opts.CacheCapacityBytes
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	return &VFS{cache: newByteBudgetCache(capacity)}
}

// AddMount installs m, rejecting it with a mount-conflict error if its mount
// path overlaps an existing one
func (v *VFS) AddMount(m MountPoint) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stack.add(m)
}

// RemoveMount detaches the mount identified by mountID and drops its cache
// entries.
func (v *VFS) RemoveMount(mountID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.stack.remove(mountID); !ok {
		return starerr.New(starerr.NotFound, "vfs: no such mount").WithEntry(mountID)
	}
	v.cache.invalidateMount(mountID)
	return nil
}

func (v *VFS) route(p string) (MountPoint, string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.stack.route(p)
}

// Exists reports whether p resolves through some mount
func (v *VFS) Exists(p string) bool {
	m, local, err := v.route(p)
	if err != nil {
		return false
	}
	return m.Exists(local)
}

// IsFile reports whether p names a file through some mount.
func (v *VFS) IsFile(p string) bool {
	m, local, err := v.route(p)
	if err != nil {
		return false
	}
	return m.IsFile(local)
}

// IsDirectory reports whether p names a directory through some mount.
func (v *VFS) IsDirectory(p string) bool {
	m, local, err := v.route(p)
	if err != nil {
		return false
	}
	return m.IsDirectory(local)
}

// Metadata returns the Node describing p
func (v *VFS) Metadata(p string) (*Node, error) {
	m, local, err := v.route(p)
	if err != nil {
		return nil, err
	}
	return m.Metadata(local)
}

// Read extracts p's bytes, consulting and populating the shared extraction
// cache.
func (v *VFS) Read(p string) ([]byte, error) {
	m, local, err := v.route(p)
	if err != nil {
		return nil, err
	}

	key := cacheKey{mountID: m.ID(), path: local}
	if data, ok := v.cache.get(key); ok {
		return data, nil
	}

	data, err := m.Read(local)
	if err != nil {
		if se, ok := err.(*starerr.Error); ok && se.Entry == "" {
			return nil, se.WithEntry(p)
		}
		return nil, err
	}
	v.cache.put(key, data)
	return data, nil
}

// ReadToString is Read decoded as UTF-8 text, a thin convenience mirroring
// "read_to_string".
func (v *VFS) ReadToString(p string) (string, error) {
	data, err := v.Read(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List returns dir's immediate children as seen through a single mount For
// the cross-mount aggregate, see Find.
func (v *VFS) List(dir string) ([]Node, error) {
	m, local, err := v.route(dir)
	if err != nil {
		return nil, err
	}
	return m.List(local)
}

// Find walks every mount and concatenates partial results, deduplicating by
// full VFS path (mount path plus the node's mount-relative name) and keeping
// the entry from the higher-priority (first-listed) mount. Mount paths are
// invariantly non-overlapping, so two distinct mounts can never produce the
// same full path; two same-named files under different mount paths (e.g.
// "/game/ship.cfg" and "/mods/ship.cfg") are therefore both returned.
func (v *VFS) Find(pattern string) ([]Node, error) {
	v.mu.RLock()
	mounts := append([]MountPoint(nil), v.stack.mounts...)
	v.mu.RUnlock()

	seen := make(map[string]bool)
	var out []Node
	for _, m := range mounts {
		nodes, err := m.Find(pattern)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			full := path.Join(m.MountPath(), n.Name)
			if seen[full] {
				continue
			}
			seen[full] = true
			out = append(out, n)
		}
	}
	return out, nil
}

// ExtractBatch reads every path in paths, short-circuiting on the first
// error.
func (v *VFS) ExtractBatch(paths []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(paths))
	for _, p := range paths {
		data, err := v.Read(p)
		if err != nil {
			return nil, err
		}
		out[p] = data
	}
	return out, nil
}

// ExtractDirectory reads every file transitively under dir.
func (v *VFS) ExtractDirectory(dir string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	var walk func(p string) error
	walk = func(p string) error {
		children, err := v.List(p)
		if err != nil {
			return err
		}
		for _, c := range children {
			childPath := path.Join(p, c.Name)
			switch c.Kind {
			case KindDirectory:
				if err := walk(childPath); err != nil {
					return err
				}
			default:
				data, err := v.Read(childPath)
				if err != nil {
					return err
				}
				out[childPath] = data
			}
		}
		return nil
	}
	if err := walk(dir); err != nil {
		return nil, err
	}
	return out, nil
}
