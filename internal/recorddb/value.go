package recorddb

import (
	"encoding/binary"
	"math"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// Value is a decoded property value. Exactly one of the typed fields (or
// Array, for an array-typed property) is meaningful, selected by Type.
type Value struct {
	Type TypeCode

	Bool    bool
	Int     int64
	Uint    uint64
	Float32 float32
	Float64 float64
	Str     string
	GUID    [16]byte

	LocaleKeyHash uint32 // only for TypeLocaleString

	RecordRef   uint32 // record-id; 0 or sentinel32 = null reference
	RefSchemaID uint32

	Vec3 [3]float32
	Vec4 [4]float32

	Array []Value
}

// decodeValue reads one wire-format value of type t from c "Property table"
// type-code wire formats.
func decodeValue(c *valueCursor, t TypeCode, st *stringTable) (Value, error) {
	if t.IsArray() {
		count, err := c.u32()
		if err != nil {
			return Value{}, err
		}
		elems := make([]Value, count)
		elemType := t.Elem()
		for i := range elems {
			v, err := decodeValue(c, elemType, st)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return Value{Type: t, Array: elems}, nil
	}

	switch t {
	case TypeBool:
		b, err := c.u8()
		return Value{Type: t, Bool: b != 0}, err
	case TypeI8:
		b, err := c.u8()
		return Value{Type: t, Int: int64(int8(b))}, err
	case TypeI16:
		v, err := c.u16()
		return Value{Type: t, Int: int64(int16(v))}, err
	case TypeI32, TypeI32Alt:
		v, err := c.u32()
		return Value{Type: t, Int: int64(int32(v))}, err
	case TypeI64:
		v, err := c.u64()
		return Value{Type: t, Int: int64(v)}, err
	case TypeU8:
		v, err := c.u8()
		return Value{Type: t, Uint: uint64(v)}, err
	case TypeU16:
		v, err := c.u16()
		return Value{Type: t, Uint: uint64(v)}, err
	case TypeU32:
		v, err := c.u32()
		return Value{Type: t, Uint: uint64(v)}, err
	case TypeU64:
		v, err := c.u64()
		return Value{Type: t, Uint: v}, err
	case TypeF32:
		v, err := c.f32()
		return Value{Type: t, Float32: v}, err
	case TypeF64:
		v, err := c.f64()
		return Value{Type: t, Float64: v}, err
	case TypeString:
		off, err := c.u32()
		if err != nil {
			return Value{}, err
		}
		s, err := st.byOffset(off)
		return Value{Type: t, Str: s}, err
	case TypeGUID:
		b, err := c.bytes(16)
		if err != nil {
			return Value{}, err
		}
		var g [16]byte
		copy(g[:], b)
		return Value{Type: t, GUID: g}, nil
	case TypeLocaleString:
		off, err := c.u32()
		if err != nil {
			return Value{}, err
		}
		keyHash, err := c.u32()
		if err != nil {
			return Value{}, err
		}
		s, err := st.byOffset(off)
		return Value{Type: t, Str: s, LocaleKeyHash: keyHash}, err
	case TypeRecordReference:
		recID, err := c.u32()
		if err != nil {
			return Value{}, err
		}
		schemaID, err := c.u32()
		return Value{Type: t, RecordRef: recID, RefSchemaID: schemaID}, err
	case TypeVec3:
		var v [3]float32
		for i := range v {
			f, err := c.f32()
			if err != nil {
				return Value{}, err
			}
			v[i] = f
		}
		return Value{Type: t, Vec3: v}, nil
	case TypeVec4:
		var v [4]float32
		for i := range v {
			f, err := c.f32()
			if err != nil {
				return Value{}, err
			}
			v[i] = f
		}
		return Value{Type: t, Vec4: v}, nil
	case TypeEnum:
		v, err := c.u32()
		return Value{Type: t, Uint: uint64(v)}, err
	default:
		return Value{}, starerr.New(starerr.InvalidStructure, "recorddb: unrecognized property type code")
	}
}

// IsNullReference reports whether a TypeRecordReference value is null
func (v Value) IsNullReference() bool {
	return v.Type == TypeRecordReference && (v.RecordRef == 0 || v.RecordRef == sentinel32)
}

// valueCursor is a bounds-checked little-endian reader, the record-db
// analogue of chunkgeo's cursor type.
type valueCursor struct {
	data []byte
	pos  int
}

func newValueCursor(data []byte, offset int) *valueCursor {
	return &valueCursor{data: data, pos: offset}
}

func (c *valueCursor) need(n int) error {
	if c.pos+n > len(c.data) {
		return starerr.New(starerr.Truncated, "recorddb: record payload truncated")
	}
	return nil
}

func (c *valueCursor) u8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *valueCursor) u16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *valueCursor) u32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *valueCursor) u64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return v, nil
}

func (c *valueCursor) f32() (float32, error) {
	v, err := c.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (c *valueCursor) f64() (float64, error) {
	v, err := c.u64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (c *valueCursor) bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}
