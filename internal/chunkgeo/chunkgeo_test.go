package chunkgeo

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putF32(buf *bytes.Buffer, v float32) {
	putU32(buf, math.Float32bits(v))
}

// buildCompiledMeshPayload assembles a minimal compiled-mesh chunk payload:
// a triangle with positions only (no normals/uvs/skin/subsets).
func buildCompiledMeshPayload() []byte {
	var buf bytes.Buffer
	putU32(&buf, 0)    // flags
	putU32(&buf, 3)    // vertex count
	putU32(&buf, 3)    // index count
	putU32(&buf, 0)    // subset count
	putU32(&buf, 1)    // stream count
	buf.Write(make([]byte, 12)) // reserved

	// one position stream
	putU32(&buf, streamPositions)
	putU32(&buf, 3*3*4)
	verts := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	for _, v := range verts {
		putF32(&buf, v[0])
		putF32(&buf, v[1])
		putF32(&buf, v[2])
	}
	// one face
	putU32(&buf, 0)
	putU32(&buf, 1)
	putU32(&buf, 2)

	return buf.Bytes()
}

// buildIvoContainer wraps payloads into a minimal "#ivo" container with one
// compiled-mesh chunk.
func buildIvoContainer(t *testing.T, payload []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("#ivo")
	putU32(&buf, 1) // version

	chunkTableOffsetPos := buf.Len()
	putU32(&buf, 1) // chunk count
	putU32(&buf, 0) // chunk table offset, fixed up below

	payloadOffset := uint32(buf.Len())
	buf.Write(payload)

	chunkTableOffset := uint32(buf.Len())
	// one 20-byte chunk header: {type, version, offset, id, size}
	putU32(&buf, 0x1023) // compiled-mesh
	putU32(&buf, 1)
	putU32(&buf, payloadOffset)
	putU32(&buf, 42)
	putU32(&buf, uint32(len(payload)))

	out := buf.Bytes()
	binary.LittleEndian.PutUint32(out[chunkTableOffsetPos+4:], chunkTableOffset)
	return out
}

func TestParseIvoCompiledMesh(t *testing.T) {
	container := buildIvoContainer(t, buildCompiledMeshPayload())
	m, err := Parse(container, Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Dialect != DialectIvo {
		t.Fatalf("dialect = %v, want ivo", m.Dialect)
	}
	if m.DialectVersion != 1 {
		t.Fatalf("dialect version = %d, want 1", m.DialectVersion)
	}
	if len(m.Meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(m.Meshes))
	}
	mesh := m.Meshes[0]
	if len(mesh.Vertices) != 3 {
		t.Fatalf("got %d vertices, want 3", len(mesh.Vertices))
	}
	if mesh.Vertices[0].Normal != (Vec3{X: 0, Y: 1, Z: 0}) {
		t.Fatalf("expected default normal [0,1,0], got %+v", mesh.Vertices[0].Normal)
	}
	if len(mesh.Faces) != 1 {
		t.Fatalf("got %d faces, want 1", len(mesh.Faces))
	}
}

func TestUnrecognizedPrefixFails(t *testing.T) {
	if _, err := Parse([]byte("not a geometry container at all"), Options{}); err == nil {
		t.Fatal("expected an invalid-magic error")
	}
}

func TestInvertOrthonormalIdentity(t *testing.T) {
	var identity Mat4
	identity[0], identity[5], identity[10], identity[15] = 1, 1, 1, 1
	inv := invertOrthonormal(identity)
	if inv != identity {
		t.Fatalf("inverse of identity should be identity, got %+v", inv)
	}
}

func TestInvertOrthonormalTranslationOnly(t *testing.T) {
	var m Mat4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	m[3], m[7], m[11] = 2, 3, 4 // translation

	inv := invertOrthonormal(m)
	if inv[3] != -2 || inv[7] != -3 || inv[11] != -4 {
		t.Fatalf("expected negated translation, got (%v,%v,%v)", inv[3], inv[7], inv[11])
	}
}

func TestMorphTargetDropsNegligibleNormalDeltas(t *testing.T) {
	var buf bytes.Buffer
	putU32(&buf, 1) // target count
	putU32(&buf, 0) // flags

	// target 0
	putU32(&buf, 0) // name length 0
	putF32(&buf, 0) // min weight
	putF32(&buf, 1) // max weight
	putU32(&buf, 1) // delta count

	putU32(&buf, 5) // vertex index
	putF32(&buf, 0.1)
	putF32(&buf, 0.1)
	putF32(&buf, 0.1)
	// negligible normal delta
	putF32(&buf, 1e-6)
	putF32(&buf, 1e-6)
	putF32(&buf, 1e-6)

	mt, err := decodeCompiledMorphTargets(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mt.Targets[0].Deltas[0].NormalDelta != nil {
		t.Fatal("expected the negligible normal delta to be dropped")
	}
}
