package vfs

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Schuldakt/StarBreaker/internal/diskhint"
	"github.com/Schuldakt/StarBreaker/internal/splitcombiner"
	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// LocalDirectoryMount exposes a real directory tree as a MountPoint,
// grounded on the prior preference for the real filesystem as just another
// fs.FS-shaped backend (see root fs.go wrapping an arbitrary fs.FS). Unlike
// ArchiveMount it is not read-only by construction, but StarBreaker's scope
// is read-only extraction, so it reports ReadOnly() == true; the MountPoint
// interface has no write operations for any mount this module ships.
type LocalDirectoryMount struct {
	id        string
	mountPath string
	root      string
}

func NewLocalDirectoryMount(id, mountPath, root string) *LocalDirectoryMount {
	return &LocalDirectoryMount{id: id, mountPath: mountPath, root: root}
}

func (m *LocalDirectoryMount) ID() string        { return m.id }
func (m *LocalDirectoryMount) MountPath() string { return m.mountPath }
func (m *LocalDirectoryMount) ReadOnly() bool    { return true }

func (m *LocalDirectoryMount) resolve(p string) string {
	return filepath.Join(m.root, filepath.FromSlash(p))
}

func (m *LocalDirectoryMount) Exists(p string) bool {
	_, err := os.Stat(m.resolve(p))
	return err == nil
}

func (m *LocalDirectoryMount) IsFile(p string) bool {
	info, err := os.Stat(m.resolve(p))
	return err == nil && !info.IsDir()
}

func (m *LocalDirectoryMount) IsDirectory(p string) bool {
	info, err := os.Stat(m.resolve(p))
	return err == nil && info.IsDir()
}

func (m *LocalDirectoryMount) Read(p string) ([]byte, error) {
	base := p
	if splitcombiner.IsSplit(p) {
		base = splitcombiner.BasePath(p)
	}

	open := func(candidate string) ([]byte, bool, error) {
		full := m.resolve(candidate)
		f, err := os.Open(full)
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		defer f.Close()
		diskhint.Advise(f, diskhint.Sequential)
		data, err := io.ReadAll(f)
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

func (m *LocalDirectoryMount) Metadata(p string) (*Node, error) {
	info, err := os.Stat(m.resolve(p))
	if os.IsNotExist(err) {
		return nil, starerr.New(starerr.NotFound, "vfs: path not found").WithEntry(p)
	}
	if err != nil {
		return nil, starerr.Wrap(starerr.IO, err, "vfs: stat failed").WithEntry(p)
	}
	kind := KindFile
	if info.IsDir() {
		kind = KindDirectory
	}
	return &Node{
		Name:      info.Name(),
		Kind:      kind,
		Size:      uint64(info.Size()),
		MountID:   m.id,
		Extension: strings.ToLower(strings.TrimPrefix(filepath.Ext(info.Name()), ".")),
	}, nil
}

func (m *LocalDirectoryMount) List(dir string) ([]Node, error) {
	full := m.resolve(dir)
	entries, err := os.ReadDir(full)
	if os.IsNotExist(err) {
		return nil, starerr.New(starerr.NotFound, "vfs: path not found").WithEntry(dir)
	}
	if err != nil {
		return nil, starerr.Wrap(starerr.IO, err, "vfs: readdir failed").WithEntry(dir)
	}
	var out []Node
	for _, de := range entries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		kind := KindFile
		if de.IsDir() {
			kind = KindDirectory
		}
		out = append(out, Node{
			Name:      de.Name(),
			Kind:      kind,
			Size:      uint64(info.Size()),
			MountID:   m.id,
			Extension: strings.ToLower(strings.TrimPrefix(filepath.Ext(de.Name()), ".")),
		})
	}
	return out, nil
}

func (m *LocalDirectoryMount) Find(pattern string) ([]Node, error) {
	var all []Node
	err := filepath.WalkDir(m.root, func(full string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(m.root, full)
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		all = append(all, Node{
			Name:      filepath.ToSlash(rel),
			Kind:      KindFile,
			Size:      uint64(info.Size()),
			MountID:   m.id,
			Extension: strings.ToLower(strings.TrimPrefix(filepath.Ext(rel), ".")),
		})
		return nil
	})
	if err != nil {
		return nil, starerr.Wrap(starerr.IO, err, "vfs: walk failed")
	}
	return findByPattern(all, pattern), nil
}
