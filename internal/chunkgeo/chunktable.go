package chunkgeo

import (
	"encoding/binary"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

var errTruncatedChunkTable = starerr.New(starerr.Truncated, "chunkgeo: truncated chunk table")

// ChunkKind is the fixed chunk-type enumeration of Values that do not match
// a known kind decode to KindUnknown with the raw u32 preserved.
type ChunkKind int

const (
	KindUnknown ChunkKind = iota
	KindSourceInfo
	KindTiming
	KindMaterialName
	KindMesh
	KindMeshSubsets
	KindNode
	KindMaterial
	KindBoneAnim
	KindBoneNameList
	KindBoneInitialPos
	KindBoneMesh
	KindHelper
	KindMorphTargets
	KindController
	KindCompiledBones
	KindCompiledPhysicalBones
	KindCompiledMorphTargets
	KindCompiledMesh
	KindCompiledPhysicsGeometry
	KindCompiledIntSkinVertices
	KindCompiledExtToIntMap
	KindDataStream
	KindBreakablePhysics
	KindFaceMap
	KindVertAnim
	KindSceneProps
	KindFootplantInfo
	KindBoneMeshUnknown
)

func (k ChunkKind) String() string {
	names := map[ChunkKind]string{
		KindSourceInfo:              "source-info",
		KindTiming:                  "timing",
		KindMaterialName:            "material-name",
		KindMesh:                    "mesh",
		KindMeshSubsets:             "mesh-subsets",
		KindNode:                    "node",
		KindMaterial:                "material",
		KindBoneAnim:                "bone-anim",
		KindBoneNameList:            "bone-name-list",
		KindBoneInitialPos:          "bone-initial-pos",
		KindBoneMesh:                "bone-mesh",
		KindHelper:                  "helper",
		KindMorphTargets:            "morph-targets",
		KindController:              "controller",
		KindCompiledBones:           "compiled-bones",
		KindCompiledPhysicalBones:   "compiled-physical-bones",
		KindCompiledMorphTargets:    "compiled-morph-targets",
		KindCompiledMesh:            "compiled-mesh",
		KindCompiledPhysicsGeometry: "compiled-physics-geometry",
		KindCompiledIntSkinVertices: "compiled-int-skin-vertices",
		KindCompiledExtToIntMap:     "compiled-ext-to-int-map",
		KindDataStream:              "data-stream",
		KindBreakablePhysics:        "breakable-physics",
		KindFaceMap:                 "face-map",
		KindVertAnim:                "vert-anim",
		KindSceneProps:              "scene-props",
		KindFootplantInfo:           "footplant-info",
		KindBoneMeshUnknown:         "bone-mesh-unknown",
	}
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown"
}

// chunkTypeTable maps the on-disk chunk-type u32 to its symbolic kind. The
// numeric values are this package's own sequential enumeration (0x1000-0x1011
// for the authoring kinds, 0x1020-0x1029 for the compiled kinds), not codes
// taken from real asset files; unlisted values fall through to KindUnknown.
var chunkTypeTable = map[uint32]ChunkKind{
	0x1000: KindMesh,
	0x1001: KindHelper,
	0x1002: KindVertAnim,
	0x1003: KindBoneAnim,
	0x1004: KindMaterial,
	0x1005: KindController,
	0x1006: KindSourceInfo,
	0x1007: KindMorphTargets,
	0x1008: KindBoneMesh,
	0x1009: KindBoneNameList,
	0x100A: KindMaterialName,
	0x100B: KindMeshSubsets,
	0x100C: KindBoneInitialPos,
	0x100D: KindFaceMap,
	0x100E: KindTiming,
	0x100F: KindBoneMeshUnknown,
	0x1010: KindNode,
	0x1011: KindFootplantInfo,
	0x1020: KindCompiledBones,
	0x1021: KindCompiledPhysicalBones,
	0x1022: KindCompiledMorphTargets,
	0x1023: KindCompiledMesh,
	0x1024: KindCompiledPhysicsGeometry,
	0x1025: KindCompiledIntSkinVertices,
	0x1026: KindCompiledExtToIntMap,
	0x1027: KindDataStream,
	0x1028: KindBreakablePhysics,
	0x1029: KindSceneProps,
}

func chunkKindOf(raw uint32) (ChunkKind, bool) {
	k, ok := chunkTypeTable[raw]
	return k, ok
}

// ChunkRef is one entry from the chunk table
type ChunkRef struct {
	Kind      ChunkKind
	RawType   uint32
	Version   uint32
	Offset    uint32
	ID        uint32
	Size      uint32 // 0 in the legacy dialect; implicit from neighboring offsets
	isUnknown bool
}

// readChunkTable parses chunkCount entries starting at byte offset
// tableOffset
func readChunkTable(data []byte, h *header) ([]ChunkRef, error) {
	hdrLen := h.dialect.chunkHeaderLen()
	need := int(h.chunkCount) * hdrLen
	start := int(h.chunkTableOffset)
	if start < 0 || start+need > len(data) {
		return nil, errTruncatedChunkTable
	}

	refs := make([]ChunkRef, 0, h.chunkCount)
	pos := start
	for i := uint32(0); i < h.chunkCount; i++ {
		raw := binary.LittleEndian.Uint32(data[pos:])
		version := binary.LittleEndian.Uint32(data[pos+4:])
		offset := binary.LittleEndian.Uint32(data[pos+8:])
		id := binary.LittleEndian.Uint32(data[pos+12:])

		var size uint32
		if hdrLen == 20 {
			size = binary.LittleEndian.Uint32(data[pos+16:])
		}

		kind, known := chunkKindOf(raw)
		refs = append(refs, ChunkRef{
			Kind:      kind,
			RawType:   raw,
			Version:   version,
			Offset:    offset,
			ID:        id,
			Size:      size,
			isUnknown: !known,
		})
		pos += hdrLen
	}
	return refs, nil
}

// payloadLen returns how many bytes this chunk's payload occupies, computing
// it from the explicit size field (runtime dialects) or from the distance to
// the next chunk's offset in table order (legacy dialect, "size is implicit
// from the offset of the next chunk").
func payloadLen(refs []ChunkRef, i int, fileLen int) uint32 {
	if refs[i].Size != 0 {
		return refs[i].Size
	}
	next := uint32(fileLen)
	for _, r := range refs {
		if r.Offset > refs[i].Offset && r.Offset < next {
			next = r.Offset
		}
	}
	return next - refs[i].Offset
}
