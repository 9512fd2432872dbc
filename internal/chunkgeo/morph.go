package chunkgeo

import "math"

const normalDeltaEpsilon = 1e-4

// decodeCompiledMorphTargets implements "compiled-morph-targets" decoder,
// dropping negligible normal deltas per the spec's threshold.
func decodeCompiledMorphTargets(payload []byte) (*MorphTargetSet, error) {
	c := newCursor(payload)

	targetCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	flags, err := c.u32()
	if err != nil {
		return nil, err
	}
	_ = flags

	targets := make([]MorphTarget, targetCount)
	for i := range targets {
		name, err := c.lengthPrefixedString()
		if err != nil {
			return nil, err
		}
		minWeight, err := c.f32()
		if err != nil {
			return nil, err
		}
		maxWeight, err := c.f32()
		if err != nil {
			return nil, err
		}
		deltaCount, err := c.u32()
		if err != nil {
			return nil, err
		}

		deltas := make([]MorphDelta, 0, deltaCount)
		for d := uint32(0); d < deltaCount; d++ {
			vertexIndex, err := c.u32()
			if err != nil {
				return nil, err
			}
			posDelta, err := c.vec3()
			if err != nil {
				return nil, err
			}
			normDelta, err := c.vec3()
			if err != nil {
				return nil, err
			}

			md := MorphDelta{VertexIndex: vertexIndex, PositionDelta: posDelta}
			if !negligible(normDelta) {
				nd := normDelta
				md.NormalDelta = &nd
			}
			deltas = append(deltas, md)
		}

		targets[i] = MorphTarget{Name: name, MinWeight: minWeight, MaxWeight: maxWeight, Deltas: deltas}
	}

	return &MorphTargetSet{Targets: targets}, nil
}

func negligible(v Vec3) bool {
	return math.Abs(float64(v.X)) < normalDeltaEpsilon &&
		math.Abs(float64(v.Y)) < normalDeltaEpsilon &&
		math.Abs(float64(v.Z)) < normalDeltaEpsilon
}
