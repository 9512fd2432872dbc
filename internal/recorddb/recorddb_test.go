package recorddb

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// buildFixture assembles a minimal valid database: one schema ("Widget")
// with one u32 property ("count"), and one record of that schema with
// name "w1", a non-zero guid, and count=42.
func buildFixture(t *testing.T) []byte {
	t.Helper()

	// String blob: build incrementally, tracking offsets.
	var blob bytes.Buffer
	offSchemaName := uint32(blob.Len())
	blob.WriteString("Widget\x00")
	offPropName := uint32(blob.Len())
	blob.WriteString("count\x00")
	offRecordName := uint32(blob.Len())
	blob.WriteString("w1\x00")

	var stringSection bytes.Buffer
	offsets := []uint32{offSchemaName, offPropName, offRecordName}
	putU32(&stringSection, uint32(len(offsets)))
	for _, o := range offsets {
		putU32(&stringSection, o)
	}
	stringSection.Write(blob.Bytes())

	var schemaSection bytes.Buffer
	putU32(&schemaSection, offSchemaName) // name-offset
	putU32(&schemaSection, sentinel32)    // parent-schema-id = none
	putU32(&schemaSection, 0)             // property-start
	putU32(&schemaSection, 1)             // property-count
	putU32(&schemaSection, 4)             // serialized size
	putU32(&schemaSection, 0)             // flags

	var propSection bytes.Buffer
	putU32(&propSection, offPropName)   // name-offset
	putU32(&propSection, uint32(TypeU32))
	putU32(&propSection, sentinel32) // struct-reference = none
	putU32(&propSection, 0)          // conversion

	var recordSection bytes.Buffer
	putU32(&recordSection, 0)             // schema-id
	putU32(&recordSection, offRecordName) // name-offset
	putU32(&recordSection, 0xAABBCCDD)    // guid-low
	putU32(&recordSection, 0x11223344)    // guid-high
	putU32(&recordSection, 42)            // count value

	const headerLen = 36
	stringOffset := uint32(headerLen)
	schemaOffset := stringOffset + uint32(stringSection.Len())
	propOffset := schemaOffset + uint32(schemaSection.Len())
	recordOffset := propOffset + uint32(propSection.Len())

	var out bytes.Buffer
	out.WriteString("DCB1")
	putU32(&out, 1) // version
	putU32(&out, 1) // schema count
	putU32(&out, 1) // property count
	putU32(&out, 1) // record count
	putU32(&out, stringOffset)
	putU32(&out, schemaOffset)
	putU32(&out, propOffset)
	putU32(&out, recordOffset)

	out.Write(stringSection.Bytes())
	out.Write(schemaSection.Bytes())
	out.Write(propSection.Bytes())
	out.Write(recordSection.Bytes())

	return out.Bytes()
}

func TestParseEagerFixture(t *testing.T) {
	data := buildFixture(t)
	db, err := Parse(data, Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(db.Schemas) != 1 || db.Schemas[0].Name != "Widget" {
		t.Fatalf("unexpected schemas: %+v", db.Schemas)
	}
	if len(db.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(db.Records))
	}
	rec := db.Records[0]
	if rec.Name != "w1" {
		t.Fatalf("record name = %q, want w1", rec.Name)
	}
	if len(rec.Values) != 1 || rec.Values[0].Uint != 42 {
		t.Fatalf("unexpected values: %+v", rec.Values)
	}

	wantGUID := uint64(0x11223344)<<32 | uint64(0xAABBCCDD)
	if rec.GUID() != wantGUID {
		t.Fatalf("guid = %#x, want %#x", rec.GUID(), wantGUID)
	}

	got, ok := db.LookupByGUID(wantGUID)
	if !ok || got.Name != "w1" {
		t.Fatal("lookup by guid failed")
	}

	got, ok = db.LookupByName("w1")
	if !ok || got.Values[0].Uint != 42 {
		t.Fatal("lookup by name failed")
	}

	found := db.FindBySchema("Widget")
	if len(found) != 1 {
		t.Fatalf("find-by-schema got %d, want 1", len(found))
	}
}

func TestParseLazyLoadUnload(t *testing.T) {
	data := buildFixture(t)
	db, err := ParseLazy(data, Options{})
	if err != nil {
		t.Fatalf("parse lazy: %v", err)
	}
	r := db.Records[0]
	if r.Loaded() {
		t.Fatal("a fresh lazy record should not be loaded")
	}
	if err := db.Load(r); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !r.Loaded() {
		t.Fatal("expected record to be loaded")
	}
	if r.Values()[0].Uint != 42 {
		t.Fatalf("loaded value = %+v, want 42", r.Values())
	}
	db.Unload(r)
	if r.Loaded() {
		t.Fatal("expected record to be unloaded")
	}
}

func TestToEagerMatchesParse(t *testing.T) {
	data := buildFixture(t)
	lazy, err := ParseLazy(data, Options{})
	if err != nil {
		t.Fatalf("parse lazy: %v", err)
	}
	eager, err := lazy.ToEager()
	if err != nil {
		t.Fatalf("to eager: %v", err)
	}
	if len(eager.Records) != 1 || eager.Records[0].Values[0].Uint != 42 {
		t.Fatalf("unexpected eager records: %+v", eager.Records)
	}
}

func TestUnknownMagicFails(t *testing.T) {
	if _, err := Parse([]byte("not a database, just text, long enough to pass the length check"), Options{}); err == nil {
		t.Fatal("expected an invalid-magic error")
	}
}

func TestNullRecordReference(t *testing.T) {
	v := Value{Type: TypeRecordReference, RecordRef: 0}
	if !v.IsNullReference() {
		t.Fatal("record-id 0 should be a null reference")
	}
	v.RecordRef = sentinel32
	if !v.IsNullReference() {
		t.Fatal("record-id sentinel should be a null reference")
	}
	v.RecordRef = 7
	if v.IsNullReference() {
		t.Fatal("a non-zero, non-sentinel record-id should not be null")
	}
}
