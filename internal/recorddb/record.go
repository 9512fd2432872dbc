package recorddb

import (
	"encoding/binary"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

const recordHeaderLen = 16

// Record is one fully materialized record-table entry
type Record struct {
	ID       int // ordinal position in the record table
	SchemaID uint32
	Name     string
	GUIDLow  uint32
	GUIDHigh uint32
	Values   []Value
}

// GUID combines GUIDLow/GUIDHigh into the 64-bit record guid
func (r *Record) GUID() uint64 {
	return uint64(r.GUIDHigh)<<32 | uint64(r.GUIDLow)
}

// recordHeader is the fixed 16-byte prefix of every record-table entry,
// shared by the eager and lazy parse paths.
type recordHeader struct {
	schemaID   uint32
	nameOffset uint32
	guidLow    uint32
	guidHigh   uint32
}

func readRecordHeader(data []byte, pos int) (recordHeader, int, error) {
	if pos+recordHeaderLen > len(data) {
		return recordHeader{}, 0, starerr.New(starerr.Truncated, "recorddb: truncated record header")
	}
	h := recordHeader{
		schemaID:   binary.LittleEndian.Uint32(data[pos:]),
		nameOffset: binary.LittleEndian.Uint32(data[pos+4:]),
		guidLow:    binary.LittleEndian.Uint32(data[pos+8:]),
		guidHigh:   binary.LittleEndian.Uint32(data[pos+12:]),
	}
	return h, pos + recordHeaderLen, nil
}

// decodeRecordValues decodes one record's property values, in the exact
// order of its schema's property range
func decodeRecordValues(data []byte, valuesStart int, schema *Schema, props []Property, st *stringTable) ([]Value, int, error) {
	c := newValueCursor(data, valuesStart)
	values := make([]Value, schema.PropertyCount)
	for i := uint32(0); i < schema.PropertyCount; i++ {
		prop := props[schema.PropertyStart+i]
		v, err := decodeValue(c, prop.Type, st)
		if err != nil {
			return nil, 0, starerr.Wrap(starerr.InvalidStructure, err, "recorddb: failed to decode property value").WithRecord(schema.Name)
		}
		values[i] = v
	}
	return values, c.pos, nil
}

func schemaByID(schemas []Schema, id uint32) (*Schema, error) {
	if int(id) >= len(schemas) {
		return nil, starerr.New(starerr.InvalidStructure, "recorddb: record references an unknown schema id")
	}
	return &schemas[id], nil
}
