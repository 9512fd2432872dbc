package splitcombiner

import (
	"bytes"
	"testing"
)

func TestIsSplit(t *testing.T) {
	cases := map[string]bool{
		"textures/rock.dds":    false,
		"textures/rock.dds.1":  true,
		"textures/rock.dds.2a": true,
		"textures/rock.dds.2b": true,
		"textures/rock.dds.x":  false,
	}
	for path, want := range cases {
		if got := IsSplit(path); got != want {
			t.Errorf("IsSplit(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestBasePath(t *testing.T) {
	if got := BasePath("textures/rock.dds.3b"); got != "textures/rock.dds" {
		t.Fatalf("BasePath = %q, want textures/rock.dds", got)
	}
	if got := BasePath("textures/rock.dds"); got != "textures/rock.dds" {
		t.Fatalf("BasePath of unsplit path changed: %q", got)
	}
}

func fakeHeader(extended bool) []byte {
	h := make([]byte, headerMagicLen+headerCoreLen)
	if extended {
		copy(h[headerMagicLen+80:], []byte("DX10"))
	}
	return h
}

func TestCombineUnsplitPassesThrough(t *testing.T) {
	files := map[string][]byte{
		"t.dds": append(fakeHeader(false), []byte("pixels")...),
	}
	open := func(path string) ([]byte, bool, error) {
		d, ok := files[path]
		return d, ok, nil
	}
	res, err := Combine(open, "t.dds")
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if !bytes.Equal(res.Data, files["t.dds"]) {
		t.Fatal("unsplit combine should return the file verbatim")
	}
	if res.HasExtendedHeader {
		t.Fatal("did not expect an extended header")
	}
}

func TestCombineNumberedSiblings(t *testing.T) {
	header := fakeHeader(true)
	part1 := append(append([]byte{}, header...), []byte("AAA")...)
	part2 := []byte("BBB")
	part3 := []byte("CCC")

	files := map[string][]byte{
		"t.dds.1": part1,
		"t.dds.2": part2,
		"t.dds.3": part3,
	}
	open := func(path string) ([]byte, bool, error) {
		d, ok := files[path]
		return d, ok, nil
	}

	res, err := Combine(open, "t.dds")
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	want := append(append(append([]byte{}, part1...), part2...), part3...)
	if !bytes.Equal(res.Data, want) {
		t.Fatalf("combined mismatch: got %d bytes, want %d", len(res.Data), len(want))
	}
	if !res.HasExtendedHeader {
		t.Fatal("expected extended header to be detected")
	}
}

func TestCombineLetteredSiblings(t *testing.T) {
	header := fakeHeader(false)
	part1 := append(append([]byte{}, header...), []byte("head")...)
	partA := []byte("AA")
	partB := []byte("BB")

	files := map[string][]byte{
		"t.dds.1":  part1,
		"t.dds.2a": partA,
		"t.dds.2b": partB,
	}
	open := func(path string) ([]byte, bool, error) {
		d, ok := files[path]
		return d, ok, nil
	}

	res, err := Combine(open, "t.dds")
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	want := append(append(append([]byte{}, part1...), partA...), partB...)
	if !bytes.Equal(res.Data, want) {
		t.Fatal("lettered-sibling combine mismatch")
	}
}

func TestCombineMissingBaseFails(t *testing.T) {
	open := func(path string) ([]byte, bool, error) { return nil, false, nil }
	if _, err := Combine(open, "missing.dds"); err == nil {
		t.Fatal("expected a not-found error")
	}
}
