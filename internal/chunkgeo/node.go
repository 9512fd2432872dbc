package chunkgeo

// decodeNode implements "node" decoder: a length-prefixed name followed by a
// 128-byte block. Rotation/scale default to identity since this dialect
// never carries them separately; translation is read off the transform's
// last column.
func decodeNode(payload []byte) (*Node, error) {
	c := newCursor(payload)

	name, err := c.lengthPrefixedString()
	if err != nil {
		return nil, err
	}

	id, err := c.u32()
	if err != nil {
		return nil, err
	}
	parentID, err := c.u32()
	if err != nil {
		return nil, err
	}
	transform, err := c.mat4()
	if err != nil {
		return nil, err
	}
	meshIndex, err := c.u32()
	if err != nil {
		return nil, err
	}
	materialIndex, err := c.u32()
	if err != nil {
		return nil, err
	}
	// 128-byte block: 2 u32s (8) + 16 f32s (64) + 2 u32s (8) = 80; 48 bytes of
	// reserved padding follow.
	if err := c.skip(128 - 80); err != nil {
		return nil, err
	}

	n := &Node{
		Name:        name,
		ID:          id,
		ParentID:    parentID,
		Transform:   transform,
		Rotation:    Vec4{X: 0, Y: 0, Z: 0, W: 1},
		Scale:       Vec3{X: 1, Y: 1, Z: 1},
		Translation: Vec3{X: transform[3], Y: transform[7], Z: transform[11]},
	}
	if meshIndex != nodeMeshNone {
		mi := meshIndex
		n.MeshIndex = &mi
	}
	if materialIndex != nodeMaterialNone {
		mi := materialIndex
		n.MaterialIndex = &mi
	}
	return n, nil
}

// decodeMaterial implements "material" decoder: name, shader name, index,
// then up to 4 named texture slots in a fixed order.
func decodeMaterial(payload []byte) (*Material, error) {
	c := newCursor(payload)

	name, err := c.lengthPrefixedString()
	if err != nil {
		return nil, err
	}
	shaderName, err := c.lengthPrefixedString()
	if err != nil {
		return nil, err
	}
	index, err := c.u32()
	if err != nil {
		return nil, err
	}
	textureCount, err := c.u32()
	if err != nil {
		return nil, err
	}

	m := &Material{Name: name, ShaderName: shaderName, Index: index}
	slots := []*string{&m.DiffuseMap, &m.NormalMap, &m.SpecularMap, &m.EmissiveMap}
	for i := uint32(0); i < textureCount; i++ {
		path, err := c.lengthPrefixedString()
		if err != nil {
			return nil, err
		}
		if int(i) < len(slots) {
			*slots[i] = path
		}
	}
	return m, nil
}
