package recorddb

import (
	"bytes"
	"encoding/binary"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// stringTable is the flat string blob plus its derived index
type stringTable struct {
	blob          []byte
	offsetToIndex map[uint32]int
	strings       []string
}

func parseStringTable(data []byte, offset uint32) (*stringTable, error) {
	if int(offset)+4 > len(data) {
		return nil, starerr.New(starerr.Truncated, "recorddb: string table offset out of range")
	}
	count := binary.LittleEndian.Uint32(data[offset:])
	pos := int(offset) + 4
	if pos+int(count)*4 > len(data) {
		return nil, starerr.New(starerr.Truncated, "recorddb: truncated string offset array")
	}

	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(data[pos:])
		pos += 4
	}

	blob := data[pos:]
	st := &stringTable{blob: blob, offsetToIndex: make(map[uint32]int, count), strings: make([]string, count)}
	for i, off := range offsets {
		s, err := readNulString(blob, off)
		if err != nil {
			return nil, err
		}
		st.strings[i] = s
		st.offsetToIndex[off] = i
	}
	return st, nil
}

func readNulString(blob []byte, offset uint32) (string, error) {
	if int(offset) > len(blob) {
		return "", starerr.New(starerr.Truncated, "recorddb: string offset out of range")
	}
	end := bytes.IndexByte(blob[offset:], 0)
	if end < 0 {
		return "", starerr.New(starerr.InvalidStructure, "recorddb: unterminated string")
	}
	return string(blob[offset : int(offset)+end]), nil
}

// byOffset resolves a raw string-table offset directly, as used when
// decoding record/property/schema fields that store name-offset rather than
// a pre-resolved ordinal.
func (st *stringTable) byOffset(offset uint32) (string, error) {
	return readNulString(st.blob, offset)
}

// Schema is one entry of the schema table
type Schema struct {
	Name            string
	ParentSchemaID  uint32 // sentinel32 = none
	PropertyStart   uint32
	PropertyCount   uint32
	SerializedSize  uint32
	Flags           uint32
}

func (s *Schema) HasParent() bool { return s.ParentSchemaID != sentinel32 }

func parseSchemaTable(data []byte, offset uint32, count uint32, st *stringTable) ([]Schema, error) {
	const recLen = 24
	pos := int(offset)
	if pos+int(count)*recLen > len(data) {
		return nil, starerr.New(starerr.Truncated, "recorddb: truncated schema table")
	}
	out := make([]Schema, count)
	for i := range out {
		nameOffset := binary.LittleEndian.Uint32(data[pos:])
		parent := binary.LittleEndian.Uint32(data[pos+4:])
		propStart := binary.LittleEndian.Uint32(data[pos+8:])
		propCount := binary.LittleEndian.Uint32(data[pos+12:])
		size := binary.LittleEndian.Uint32(data[pos+16:])
		flags := binary.LittleEndian.Uint32(data[pos+20:])

		name, err := st.byOffset(nameOffset)
		if err != nil {
			return nil, err
		}
		out[i] = Schema{
			Name:           name,
			ParentSchemaID: parent,
			PropertyStart:  propStart,
			PropertyCount:  propCount,
			SerializedSize: size,
			Flags:          flags,
		}
		pos += recLen
	}
	return out, nil
}

// TypeCode is the closed property-value type system of "Property table".
type TypeCode uint32

const (
	TypeBool           TypeCode = 0
	TypeI8              TypeCode = 1
	TypeI16             TypeCode = 2
	TypeI32             TypeCode = 3
	TypeI32Alt          TypeCode = 4
	TypeI64             TypeCode = 5
	TypeU8              TypeCode = 6
	TypeU16             TypeCode = 7
	TypeU32             TypeCode = 8
	TypeU64             TypeCode = 9
	TypeF32             TypeCode = 10
	TypeF64             TypeCode = 11
	TypeString          TypeCode = 12
	TypeGUID            TypeCode = 13
	TypeLocaleString    TypeCode = 14
	TypeRecordReference TypeCode = 15
	TypeVec3            TypeCode = 16
	TypeVec4            TypeCode = 17
	TypeEnum            TypeCode = 18

	arrayBit = 0x80000000
)

// IsArray reports whether the top bit marking "array of" is set.
func (t TypeCode) IsArray() bool { return t&arrayBit != 0 }

// Elem strips the array bit, yielding the element type code.
func (t TypeCode) Elem() TypeCode { return t &^ arrayBit }

// Property is one entry of the property table
type Property struct {
	Name            string
	Type            TypeCode
	StructReference uint32 // sentinel32 = none
	Conversion      uint32
}

func (p *Property) HasStructReference() bool { return p.StructReference != sentinel32 }

func parsePropertyTable(data []byte, offset uint32, count uint32, st *stringTable) ([]Property, error) {
	const recLen = 16
	pos := int(offset)
	if pos+int(count)*recLen > len(data) {
		return nil, starerr.New(starerr.Truncated, "recorddb: truncated property table")
	}
	out := make([]Property, count)
	for i := range out {
		nameOffset := binary.LittleEndian.Uint32(data[pos:])
		typeCode := binary.LittleEndian.Uint32(data[pos+4:])
		structRef := binary.LittleEndian.Uint32(data[pos+8:])
		conversion := binary.LittleEndian.Uint32(data[pos+12:])

		name, err := st.byOffset(nameOffset)
		if err != nil {
			return nil, err
		}
		out[i] = Property{Name: name, Type: TypeCode(typeCode), StructReference: structRef, Conversion: conversion}
		pos += recLen
	}
	return out, nil
}
