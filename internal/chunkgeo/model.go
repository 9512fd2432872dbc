package chunkgeo

// Model is the container value produced by Parse Decoding order is
// chunk-table order, but the assembled Model is order-insensitive:
// collections accumulate in the order their owning chunks were visited, and
// scalar fields (Skeleton) are set once, with the last-seen compiled-bones
// chunk winning if more than one appears
type Model struct {
	Dialect       Dialect
	DialectVersion uint32

	Meshes       []Mesh
	Materials    []Material
	Skeleton     *Skeleton
	Nodes        []Node
	MorphTargets []MorphTargetSet

	// DuplicateSkeletonChunks counts compiled-bones chunks beyond the first;
	// the format leaves "what to do with a second compiled-bones chunk" as an
	// open question, resolved here as last-wins with the count surfaced for
	// callers who want to diagnose malformed assets
	DuplicateSkeletonChunks int
}

type Vertex struct {
	Position Vec3
	Normal   Vec3
	UVs      [][2]float32
	Color    *[4]uint8
	Tangent  *Vec3
	Skin     *SkinWeights
}

// SkinWeights holds up to 4 bone weight/index pairs
type SkinWeights struct {
	Weights [4]float32
	Indices [4]uint8
}

type Face struct {
	Indices       [3]uint32
	MaterialID    uint32
	SmoothingGroup uint32
}

type Subset struct {
	MaterialID  uint32
	FirstIndex  uint32
	IndexCount  uint32
	FirstVertex uint32
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

type Mesh struct {
	Name     string
	Vertices []Vertex
	Faces    []Face
	Subsets  []Subset
	Bounds   *AABB
}

type Vec3 struct{ X, Y, Z float32 }
type Vec4 struct{ X, Y, Z, W float32 }

// Mat4 is a row-major 4x4 matrix stored as 16 consecutive floats.
type Mat4 [16]float32

type Bone struct {
	Name            string
	ParentIndex     int // -1 = none
	ControllerID    uint32
	LocalTransform  Mat4
	BindPose        Mat4
	InverseBindPose Mat4
}

type Skeleton struct {
	Bones       []Bone
	NameToIndex map[string]int
	RootIndices []int
}

type MorphDelta struct {
	VertexIndex    uint32
	PositionDelta  Vec3
	NormalDelta    *Vec3
}

type MorphTarget struct {
	Name      string
	MinWeight float32
	MaxWeight float32
	Deltas    []MorphDelta
}

type MorphTargetSet struct {
	Targets []MorphTarget
}

const nodeMeshNone = 0xFFFFFFFF
const nodeMaterialNone = 0xFFFFFFFF

type Node struct {
	Name          string
	ID            uint32
	ParentID      uint32 // 0 = root
	Transform     Mat4
	Rotation      Vec4 // identity quaternion [0,0,0,1] unless the format ever supplies one
	Scale         Vec3 // defaults to [1,1,1]
	Translation   Vec3
	MeshIndex     *uint32
	MaterialIndex *uint32
}

type Material struct {
	Name         string
	ShaderName   string
	Index        uint32
	DiffuseMap   string
	NormalMap    string
	SpecularMap  string
	EmissiveMap  string
}
