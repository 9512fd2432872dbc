package chunkgeo

import "fmt"

const (
	streamPositions = 0
	streamNormals   = 1
	streamUVs       = 2
	streamColors    = 3
	streamSkin      = 12
)

// decodeCompiledMesh implements "compiled-mesh (the hot path)" decoder.
func decodeCompiledMesh(payload []byte, chunkID uint32) (*Mesh, error) {
	c := newCursor(payload)

	flags, err := c.u32()
	if err != nil {
		return nil, err
	}
	_ = flags
	vertexCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	indexCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	subsetCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	streamCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	// remaining header bytes reserved; the 32-byte header is 5 u32s = 20 bytes,
	// so 12 bytes of padding follow.
	if err := c.skip(12); err != nil {
		return nil, err
	}

	var positions []Vec3
	var normals []Vec3
	var uvs [][2]float32
	var colors [][4]uint8
	var skins []SkinWeights
	haveSkin := false

	for s := uint32(0); s < streamCount; s++ {
		streamType, err := c.u32()
		if err != nil {
			return nil, err
		}
		streamSize, err := c.u32()
		if err != nil {
			return nil, err
		}

		switch streamType {
		case streamPositions:
			positions = make([]Vec3, vertexCount)
			for i := range positions {
				positions[i], err = c.vec3()
				if err != nil {
					return nil, err
				}
			}
		case streamNormals:
			normals = make([]Vec3, vertexCount)
			for i := range normals {
				normals[i], err = c.vec3()
				if err != nil {
					return nil, err
				}
			}
		case streamUVs:
			uvs = make([][2]float32, vertexCount)
			for i := range uvs {
				u, err := c.f32()
				if err != nil {
					return nil, err
				}
				v, err := c.f32()
				if err != nil {
					return nil, err
				}
				uvs[i] = [2]float32{u, v}
			}
		case streamColors:
			colors = make([][4]uint8, vertexCount)
			for i := range colors {
				for k := 0; k < 4; k++ {
					b, err := c.u8()
					if err != nil {
						return nil, err
					}
					colors[i][k] = b
				}
			}
		case streamSkin:
			skins = make([]SkinWeights, vertexCount)
			haveSkin = true
			for i := range skins {
				var w [4]float32
				for k := 0; k < 4; k++ {
					w[k], err = c.f32()
					if err != nil {
						return nil, err
					}
				}
				var idx [4]uint8
				for k := 0; k < 4; k++ {
					raw, err := c.u16()
					if err != nil {
						return nil, err
					}
					if raw > 255 {
						raw = 255 // clamp: the model uses u8 bone indices downstream
					}
					idx[k] = uint8(raw)
				}
				skins[i] = SkinWeights{Weights: w, Indices: idx}
			}
		default:
			if err := c.skip(int(streamSize)); err != nil {
				return nil, err
			}
		}
	}

	if positions == nil {
		return nil, errMissingPositionStream.WithChunk(fmt.Sprintf("compiled-mesh[%d]", chunkID))
	}

	vertices := make([]Vertex, vertexCount)
	for i := range vertices {
		v := Vertex{Position: positions[i]}
		if normals != nil {
			v.Normal = normals[i]
		} else {
			v.Normal = Vec3{X: 0, Y: 1, Z: 0}
		}
		if uvs != nil {
			v.UVs = [][2]float32{uvs[i]}
		} else {
			v.UVs = [][2]float32{{0, 0}}
		}
		if colors != nil {
			col := colors[i]
			v.Color = &col
		}
		if haveSkin {
			sk := skins[i]
			v.Skin = &sk
		}
		vertices[i] = v
	}

	faces := make([]Face, indexCount/3)
	for i := range faces {
		var idx [3]uint32
		for k := 0; k < 3; k++ {
			idx[k], err = c.u32()
			if err != nil {
				return nil, err
			}
		}
		faces[i] = Face{Indices: idx}
	}

	subsets := make([]Subset, subsetCount)
	for i := range subsets {
		matID, err := c.u32()
		if err != nil {
			return nil, err
		}
		firstIndex, err := c.u32()
		if err != nil {
			return nil, err
		}
		idxCount, err := c.u32()
		if err != nil {
			return nil, err
		}
		firstVertex, err := c.u32()
		if err != nil {
			return nil, err
		}
		subsets[i] = Subset{MaterialID: matID, FirstIndex: firstIndex, IndexCount: idxCount, FirstVertex: firstVertex}
	}

	return &Mesh{
		Name:     fmt.Sprintf("CompiledMesh_%d", chunkID),
		Vertices: vertices,
		Faces:    faces,
		Subsets:  subsets,
	}, nil
}

// decodeLegacyMesh implements "mesh (legacy, non-compiled)" decoder: a
// 48-byte header followed by three tightly-packed streams and raw face index
// triples.
func decodeLegacyMesh(payload []byte, chunkID uint32) (*Mesh, error) {
	c := newCursor(payload)

	flags, err := c.u32()
	if err != nil {
		return nil, err
	}
	_ = flags
	vertexCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	faceCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	uvCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	// 48-byte header total; 4 u32s read so far (16 bytes); skip the rest.
	if err := c.skip(48 - 16); err != nil {
		return nil, err
	}

	positions := make([]Vec3, vertexCount)
	for i := range positions {
		if positions[i], err = c.vec3(); err != nil {
			return nil, err
		}
	}
	normals := make([]Vec3, vertexCount)
	for i := range normals {
		if normals[i], err = c.vec3(); err != nil {
			return nil, err
		}
	}
	_ = uvCount
	uvs := make([][2]float32, vertexCount)
	for i := range uvs {
		u, err := c.f32()
		if err != nil {
			return nil, err
		}
		v, err := c.f32()
		if err != nil {
			return nil, err
		}
		uvs[i] = [2]float32{u, v}
	}

	vertices := make([]Vertex, vertexCount)
	for i := range vertices {
		vertices[i] = Vertex{Position: positions[i], Normal: normals[i], UVs: [][2]float32{uvs[i]}}
	}

	faces := make([]Face, faceCount)
	for i := range faces {
		var idx [3]uint32
		for k := 0; k < 3; k++ {
			idx[k], err = c.u32()
			if err != nil {
				return nil, err
			}
		}
		faces[i] = Face{Indices: idx}
	}

	return &Mesh{
		Name:     fmt.Sprintf("Mesh_%d", chunkID),
		Vertices: vertices,
		Faces:    faces,
	}, nil
}
