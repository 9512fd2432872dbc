package chunkgeo

import "github.com/Schuldakt/StarBreaker/internal/starerr"

// decodeCompiledBones implements "compiled-bones" decoder, including the
// second validation pass (root-index set, name→index map, parent-index
// range/self-parent checks) and the inverse-bind-pose computation
func decodeCompiledBones(payload []byte) (*Skeleton, error) {
	c := newCursor(payload)

	boneCount, err := c.u32()
	if err != nil {
		return nil, err
	}

	names := make([]string, boneCount)
	for i := range names {
		names[i], err = c.lengthPrefixedString()
		if err != nil {
			return nil, err
		}
	}

	bones := make([]Bone, boneCount)
	for i := range bones {
		parentIndex, err := c.i32()
		if err != nil {
			return nil, err
		}
		controllerID, err := c.u32()
		if err != nil {
			return nil, err
		}
		local, err := c.mat4()
		if err != nil {
			return nil, err
		}
		bind, err := c.mat4()
		if err != nil {
			return nil, err
		}

		bones[i] = Bone{
			Name:            names[i],
			ParentIndex:     int(parentIndex),
			ControllerID:    controllerID,
			LocalTransform:  local,
			BindPose:        bind,
			InverseBindPose: invertOrthonormal(bind),
		}
	}

	nameToIndex := make(map[string]int, boneCount)
	var roots []int
	for i, b := range bones {
		nameToIndex[b.Name] = i
		if b.ParentIndex < 0 {
			roots = append(roots, i)
			continue
		}
		if b.ParentIndex >= len(bones) {
			return nil, starerr.New(starerr.InvalidStructure, "chunkgeo: bone parent index out of range")
		}
		if b.ParentIndex == i {
			return nil, starerr.New(starerr.InvalidStructure, "chunkgeo: bone is its own parent")
		}
	}

	return &Skeleton{Bones: bones, NameToIndex: nameToIndex, RootIndices: roots}, nil
}

// invertOrthonormal inverts a rigid transform under the assumption that its
// 3x3 upper-left block is orthonormal: transpose the rotation block and
// negate-and-transform the translation
func invertOrthonormal(m Mat4) Mat4 {
	// m is row-major: row i, col j at m[4*i+j]. The 3x3 rotation occupies
	// rows/cols 0..2; the translation is column 3 of rows 0..2.
	var r [3][3]float32
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[4*i+j]
		}
	}
	t := Vec3{X: m[3], Y: m[7], Z: m[11]}

	// Transpose.
	var rt [3][3]float32
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rt[i][j] = r[j][i]
		}
	}

	// Negated, rotated translation: -(R^T * t).
	nt := Vec3{
		X: -(rt[0][0]*t.X + rt[0][1]*t.Y + rt[0][2]*t.Z),
		Y: -(rt[1][0]*t.X + rt[1][1]*t.Y + rt[1][2]*t.Z),
		Z: -(rt[2][0]*t.X + rt[2][1]*t.Y + rt[2][2]*t.Z),
	}

	var out Mat4
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[4*i+j] = rt[i][j]
		}
	}
	out[3] = nt.X
	out[7] = nt.Y
	out[11] = nt.Z
	out[12], out[13], out[14] = 0, 0, 0
	out[15] = 1
	return out
}
