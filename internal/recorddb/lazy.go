package recorddb

import "sync"

// LazyRecord carries identity fields plus a file offset and a nullable,
// lockable values cache
type LazyRecord struct {
	ID           int
	SchemaID     uint32
	Name         string
	GUIDLow      uint32
	GUIDHigh     uint32
	valuesOffset int

	mu     sync.RWMutex
	cached []Value // nil until Load
}

func (r *LazyRecord) GUID() uint64 { return uint64(r.GUIDHigh)<<32 | uint64(r.GUIDLow) }

// Loaded reports whether this record's values are currently cached.
func (r *LazyRecord) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cached != nil
}

// Values returns the cached values, or nil if not loaded.
func (r *LazyRecord) Values() []Value {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cached
}

// LazyDatabase is the lazy variant of Database: the record table's fixed
// headers and offsets are parsed up front, and property values are kept only
// after Load (ParseLazy decodes each record's values once and discards them,
// because that is the only way to find where the next record begins). The
// backing file handle is guarded by a mutex; parallel
// Load calls serialize on it Callers needing parallelism should snapshot
// offsets and drive multiple handles themselves, exactly as prescribes.
type LazyDatabase struct {
	data    []byte
	Schemas []Schema
	Props   []Property
	strings *stringTable

	handleMu sync.Mutex
	Records  []*LazyRecord

	schemaByName map[string]int
	recordByGUID map[uint64]int
}

// ParseLazy parses the header, string table, schema table, property table,
// and record headers. Record values are decoded during the scan only to find
// each record's end and are not retained; Load decodes them again and caches
// them.
func ParseLazy(data []byte, opts Options) (*LazyDatabase, error) {
	log := opts.logger()

	h, err := parseHeader(data)
	if err != nil {
		log.Error("recorddb: header parse failed", "err", err)
		return nil, err
	}
	st, err := parseStringTable(data, h.stringOffset)
	if err != nil {
		return nil, err
	}
	schemas, err := parseSchemaTable(data, h.schemaOffset, h.schemaCount, st)
	if err != nil {
		return nil, err
	}
	props, err := parsePropertyTable(data, h.propOffset, h.propertyCount, st)
	if err != nil {
		return nil, err
	}
	if err := validateSchemas(schemas, props); err != nil {
		return nil, err
	}

	db := &LazyDatabase{
		data:         data,
		Schemas:      schemas,
		Props:        props,
		strings:      st,
		schemaByName: make(map[string]int, len(schemas)),
		recordByGUID: make(map[uint64]int),
	}
	for i, s := range schemas {
		db.schemaByName[s.Name] = i
	}

	pos := int(h.recordOffset)
	db.Records = make([]*LazyRecord, h.recordCount)
	for i := uint32(0); i < h.recordCount; i++ {
		rh, next, err := readRecordHeader(data, pos)
		if err != nil {
			return nil, err
		}
		schema, err := schemaByID(schemas, rh.schemaID)
		if err != nil {
			return nil, err
		}
		name, err := st.byOffset(rh.nameOffset)
		if err != nil {
			return nil, err
		}

		lr := &LazyRecord{ID: int(i), SchemaID: rh.schemaID, Name: name, GUIDLow: rh.guidLow, GUIDHigh: rh.guidHigh, valuesOffset: next}
		db.Records[i] = lr
		if name != "" && lr.GUID() != 0 {
			db.recordByGUID[lr.GUID()] = int(i)
		}

		// Skip the values to reach the next record header: the record-db format
		// has no length prefix, so this requires decoding (not just skipping) the
		// values once to find their end.
		_, valuesEnd, err := decodeRecordValues(data, next, schema, props, st)
		if err != nil {
			return nil, err
		}
		pos = valuesEnd
	}

	return db, nil
}

// Load decodes r's values and populates its cache
func (db *LazyDatabase) Load(r *LazyRecord) error {
	db.handleMu.Lock()
	defer db.handleMu.Unlock()

	schema, err := schemaByID(db.Schemas, r.SchemaID)
	if err != nil {
		return err
	}
	values, _, err := decodeRecordValues(db.data, r.valuesOffset, schema, db.Props, db.strings)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.cached = values
	r.mu.Unlock()
	return nil
}

// Unload discards r's cached values
func (db *LazyDatabase) Unload(r *LazyRecord) {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

// ToEager loads every record and returns the equivalent eager Database
func (db *LazyDatabase) ToEager() (*Database, error) {
	eager := &Database{
		Schemas:      db.Schemas,
		Props:        db.Props,
		strings:      db.strings,
		schemaByName: db.schemaByName,
		recordByGUID: make(map[uint64]int, len(db.recordByGUID)),
		recordByID:   make(map[uint32][]int),
		Records:      make([]Record, len(db.Records)),
	}
	for i, lr := range db.Records {
		if !lr.Loaded() {
			if err := db.Load(lr); err != nil {
				return nil, err
			}
		}
		rec := Record{ID: lr.ID, SchemaID: lr.SchemaID, Name: lr.Name, GUIDLow: lr.GUIDLow, GUIDHigh: lr.GUIDHigh, Values: lr.Values()}
		eager.Records[i] = rec
		if rec.Name != "" && rec.GUID() != 0 {
			eager.recordByGUID[rec.GUID()] = i
		}
		eager.recordByID[rec.SchemaID] = append(eager.recordByID[rec.SchemaID], i)
	}
	return eager, nil
}

// LookupByGUID mirrors Database.LookupByGUID for the lazy variant.
func (db *LazyDatabase) LookupByGUID(guid uint64) (*LazyRecord, bool) {
	i, ok := db.recordByGUID[guid]
	if !ok {
		return nil, false
	}
	return db.Records[i], true
}

// LookupByName mirrors Database.LookupByName for the lazy variant.
func (db *LazyDatabase) LookupByName(name string) (*LazyRecord, bool) {
	for _, r := range db.Records {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// FindBySchema mirrors Database.FindBySchema for the lazy variant.
func (db *LazyDatabase) FindBySchema(schemaName string) []*LazyRecord {
	idx, ok := db.schemaByName[schemaName]
	if !ok {
		return nil
	}
	var out []*LazyRecord
	for _, r := range db.Records {
		if r.SchemaID == uint32(idx) {
			out = append(out, r)
		}
	}
	return out
}
