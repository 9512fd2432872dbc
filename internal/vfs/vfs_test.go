package vfs

import (
	"bytes"
	"testing"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// memMount is a minimal in-memory MountPoint used to exercise routing,
// aggregation, and caching without touching the filesystem or a real
// archive.
type memMount struct {
	id, mountPath string
	files         map[string][]byte
}

func (m *memMount) ID() string        { return m.id }
func (m *memMount) MountPath() string { return m.mountPath }
func (m *memMount) ReadOnly() bool    { return true }

func (m *memMount) Exists(p string) bool      { _, ok := m.files[p]; return ok }
func (m *memMount) IsFile(p string) bool      { return m.Exists(p) }
func (m *memMount) IsDirectory(p string) bool { return false }

func (m *memMount) Read(p string) ([]byte, error) {
	d, ok := m.files[p]
	if !ok {
		return nil, starerr.New(starerr.NotFound, "not found").WithEntry(p)
	}
	return d, nil
}

func (m *memMount) Metadata(p string) (*Node, error) {
	d, ok := m.files[p]
	if !ok {
		return nil, starerr.New(starerr.NotFound, "not found").WithEntry(p)
	}
	return &Node{Name: p, Kind: KindFile, Size: uint64(len(d)), MountID: m.id}, nil
}

func (m *memMount) List(dir string) ([]Node, error) { return nil, nil }

func (m *memMount) Find(pattern string) ([]Node, error) {
	var out []Node
	for p, d := range m.files {
		out = append(out, Node{Name: p, Kind: KindFile, Size: uint64(len(d)), MountID: m.id})
	}
	return findByPattern(out, pattern), nil
}

// TestRoutingMatchesWholePathSegments mounts "a" and "ab" side by side (they
// do not overlap, since "a" is only a string prefix of "ab", not a path
// prefix) and checks that each read is routed to the mount whose path covers
// it, with the mount path stripped.
func TestRoutingMatchesWholePathSegments(t *testing.T) {
	v := New(Options{})
	short := &memMount{id: "short", mountPath: "a", files: map[string][]byte{"b.txt": []byte("short")}}
	long := &memMount{id: "long", mountPath: "ab", files: map[string][]byte{"b.txt": []byte("long")}}

	if err := v.AddMount(short); err != nil {
		t.Fatalf("add short: %v", err)
	}
	if err := v.AddMount(long); err != nil {
		t.Fatalf("add long: %v", err)
	}

	data, err := v.Read("ab/b.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, []byte("long")) {
		t.Fatalf("expected ab/b.txt to route to the \"ab\" mount, got %q", data)
	}

	data, err = v.Read("a/b.txt")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, []byte("short")) {
		t.Fatalf("expected a/b.txt to route to the \"a\" mount, got %q", data)
	}
}

func TestMountConflictRejected(t *testing.T) {
	v := New(Options{})
	if err := v.AddMount(&memMount{id: "a", mountPath: "data"}); err != nil {
		t.Fatalf("add a: %v", err)
	}
	err := v.AddMount(&memMount{id: "b", mountPath: "data/sub"})
	if err == nil {
		t.Fatal("expected a mount conflict error")
	}
}

func TestReadNotFoundProducesPathNotFound(t *testing.T) {
	v := New(Options{})
	if err := v.AddMount(&memMount{id: "a", mountPath: "", files: map[string][]byte{}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := v.Read("missing.txt"); err == nil {
		t.Fatal("expected a not-found error")
	}
}

func TestReadNoMountProducesNoMountPoint(t *testing.T) {
	v := New(Options{})
	if _, err := v.Read("anything"); err == nil {
		t.Fatal("expected a no-mount-point error")
	}
}

func TestRemoveMountInvalidatesCache(t *testing.T) {
	v := New(Options{})
	m := &memMount{id: "a", mountPath: "", files: map[string][]byte{"f.txt": []byte("hi")}}
	if err := v.AddMount(m); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := v.Read("f.txt"); err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := v.RemoveMount("a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := v.cache.get(cacheKey{mountID: "a", path: "f.txt"}); ok {
		t.Fatal("expected the removed mount's cache entry to be dropped")
	}
	if _, err := v.Read("f.txt"); err == nil {
		t.Fatal("expected read to fail after mount removal")
	}
}

// TestFindReturnsBothSameNamedFilesAcrossMounts mirrors the "D1 at /game,
// D2 at /mods, both holding ship.cfg" scenario: since mount paths are
// invariantly non-overlapping, the two same-named files resolve to distinct
// full VFS paths and both must be returned, not collapsed into one.
func TestFindReturnsBothSameNamedFilesAcrossMounts(t *testing.T) {
	v := New(Options{})
	game := &memMount{id: "game", mountPath: "game", files: map[string][]byte{"ship.cfg": []byte("game")}}
	mods := &memMount{id: "mods", mountPath: "mods", files: map[string][]byte{"ship.cfg": []byte("mods")}}
	if err := v.AddMount(game); err != nil {
		t.Fatalf("add game: %v", err)
	}
	if err := v.AddMount(mods); err != nil {
		t.Fatalf("add mods: %v", err)
	}
	nodes, err := v.Find("*.cfg")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected both same-named files across distinct mounts, got %d", len(nodes))
	}
	byMount := make(map[string]bool)
	for _, n := range nodes {
		byMount[n.MountID] = true
	}
	if !byMount["game"] || !byMount["mods"] {
		t.Fatalf("expected results from both \"game\" and \"mods\" mounts, got %+v", nodes)
	}
}
