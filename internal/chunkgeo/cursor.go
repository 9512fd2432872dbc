package chunkgeo

import (
	"encoding/binary"
	"math"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// cursor is a small bounds-checked little-endian reader over one chunk's
// payload. Every chunk decoder constructs one rather than hand-tracking
// offsets, mirroring the prior sit package's preference for a single
// reader-cursor type threaded through its record decoders.
type cursor struct {
	data []byte
	pos  int
}

func newCursor(data []byte) *cursor { return &cursor{data: data} }

func (c *cursor) need(n int) error {
	if c.pos+n > len(c.data) {
		return starerr.New(starerr.Truncated, "chunkgeo: chunk payload truncated")
	}
	return nil
}

func (c *cursor) u8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) u16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) u32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) i32() (int32, error) {
	v, err := c.u32()
	return int32(v), err
}

func (c *cursor) f32() (float32, error) {
	v, err := c.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (c *cursor) vec3() (Vec3, error) {
	x, err := c.f32()
	if err != nil {
		return Vec3{}, err
	}
	y, err := c.f32()
	if err != nil {
		return Vec3{}, err
	}
	z, err := c.f32()
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{X: x, Y: y, Z: z}, nil
}

func (c *cursor) mat4() (Mat4, error) {
	var m Mat4
	for i := range m {
		v, err := c.f32()
		if err != nil {
			return m, err
		}
		m[i] = v
	}
	return m, nil
}

func (c *cursor) skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// lengthPrefixedString reads a u32 length followed by that many bytes of
// UTF-8, trimming a trailing NUL pad if present
func (c *cursor) lengthPrefixedString() (string, error) {
	n, err := c.u32()
	if err != nil {
		return "", err
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b), nil
}
