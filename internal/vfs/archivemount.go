package vfs

import (
	"io"
	"path"
	"strings"

	"github.com/Schuldakt/StarBreaker/internal/archive"
	"github.com/Schuldakt/StarBreaker/internal/splitcombiner"
	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// ArchiveMount exposes a parsed archive as a MountPoint It holds the
// immutable entry index and the archive file handle; it never mutates either
// after construction.
type ArchiveMount struct {
	id        string
	mountPath string
	reader    io.ReaderAt
	ar        *archive.Archive
	dirSet    map[string]bool // transitive set of directory prefixes, for IsDirectory/List
}

// NewArchiveMount wraps an already-parsed archive for mounting at mountPath.
// id must be unique within a VFS instance; it is also the cache partition
// key used by the extraction cache.
func NewArchiveMount(id, mountPath string, reader io.ReaderAt, ar *archive.Archive) *ArchiveMount {
	m := &ArchiveMount{id: id, mountPath: mountPath, reader: reader, ar: ar, dirSet: make(map[string]bool)}
	for _, e := range ar.ListEntries() {
		dir := path.Dir(e.Path)
		for dir != "." && dir != "/" && dir != "" {
			m.dirSet[dir] = true
			dir = path.Dir(dir)
		}
	}
	return m
}

func (m *ArchiveMount) ID() string        { return m.id }
func (m *ArchiveMount) MountPath() string { return m.mountPath }
func (m *ArchiveMount) ReadOnly() bool    { return true }

func (m *ArchiveMount) Exists(p string) bool {
	return m.IsFile(p) || m.IsDirectory(p)
}

func (m *ArchiveMount) IsFile(p string) bool {
	_, ok := m.ar.EntryByPath(p)
	return ok
}

func (m *ArchiveMount) IsDirectory(p string) bool {
	if p == "" || p == "." {
		return true
	}
	return m.dirSet[p]
}

// Read extracts path's bytes, transparently reassembling split textures via
// internal/splitcombiner when the path looks split or has split siblings
func (m *ArchiveMount) Read(p string) ([]byte, error) {
	base := p
	if splitcombiner.IsSplit(p) {
		base = splitcombiner.BasePath(p)
	}

	if _, hasBase := m.ar.EntryByPath(base); !hasBase && !m.hasAnySibling(base) {
		return nil, starerr.New(starerr.NotFound, "vfs: path not found").WithEntry(p)
	}

	open := func(candidate string) ([]byte, bool, error) {
		if _, ok := m.ar.EntryByPath(candidate); !ok {
			return nil, false, nil
		}
		data, err := m.ar.ExtractEntry(m.reader, candidate)
		if err != nil {
			return nil, false, err
		}
		return data, true, nil
	}

	res, err := splitcombiner.Combine(open, base)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (m *ArchiveMount) hasAnySibling(base string) bool {
	_, ok := m.ar.EntryByPath(base + ".1")
	if ok {
		return true
	}
	_, ok = m.ar.EntryByPath(base + ".1a")
	return ok
}

func (m *ArchiveMount) Metadata(p string) (*Node, error) {
	if e, ok := m.ar.EntryByPath(p); ok {
		var csize *uint64
		cs := e.CompressedSize
		csize = &cs
		return &Node{
			Name:           path.Base(e.Path),
			Kind:           kindOf(e.IsDirectory),
			Size:           e.UncompressedSize,
			MountID:        m.id,
			CompressedSize: csize,
			Extension:      strings.ToLower(strings.TrimPrefix(path.Ext(e.Path), ".")),
		}, nil
	}
	if m.IsDirectory(p) {
		return &Node{Name: path.Base(p), Kind: KindDirectory, MountID: m.id}, nil
	}
	return nil, starerr.New(starerr.NotFound, "vfs: path not found").WithEntry(p)
}

func kindOf(isDir bool) Kind {
	if isDir {
		return KindDirectory
	}
	return KindFile
}

func (m *ArchiveMount) List(dir string) ([]Node, error) {
	if dir != "" && dir != "." && !m.IsDirectory(dir) {
		return nil, starerr.New(starerr.NotFound, "vfs: path not found").WithEntry(dir)
	}
	var out []Node
	seen := make(map[string]bool)
	for _, e := range m.ar.ListDir(dir) {
		name := path.Base(strings.TrimSuffix(e.Path, "/"))
		if seen[name] {
			continue
		}
		seen[name] = true
		cs := e.CompressedSize
		out = append(out, Node{
			Name:           name,
			Kind:           kindOf(e.IsDirectory),
			Size:           e.UncompressedSize,
			MountID:        m.id,
			CompressedSize: &cs,
			Extension:      strings.ToLower(strings.TrimPrefix(path.Ext(e.Path), ".")),
		})
	}
	// Directories do not necessarily have their own directory-stub entry;
	// surface the immediate subdirectories too.
	prefix := dir
	if prefix != "" {
		prefix += "/"
	}
	for d := range m.dirSet {
		if !strings.HasPrefix(d, prefix) {
			continue
		}
		rest := d[len(prefix):]
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		if seen[rest] {
			continue
		}
		seen[rest] = true
		out = append(out, Node{Name: rest, Kind: KindDirectory, MountID: m.id})
	}
	return out, nil
}

func (m *ArchiveMount) Find(pattern string) ([]Node, error) {
	var nodes []Node
	for _, e := range m.ar.Find(pattern) {
		cs := e.CompressedSize
		nodes = append(nodes, Node{
			Name:           e.Path,
			Kind:           kindOf(e.IsDirectory),
			Size:           e.UncompressedSize,
			MountID:        m.id,
			CompressedSize: &cs,
			Extension:      strings.ToLower(strings.TrimPrefix(path.Ext(e.Path), ".")),
		})
	}
	return nodes, nil
}
