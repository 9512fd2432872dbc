package recorddb

import "github.com/Schuldakt/StarBreaker/internal/starerr"

// Database is the eager, fully materialized record database
type Database struct {
	Schemas   []Schema
	Props     []Property
	Records   []Record
	strings   *stringTable

	schemaByName map[string]int
	recordByGUID map[uint64]int
	recordByID   map[uint32][]int // schema id -> record ordinals, for find-by-schema
}

// Parse fully materializes every record's values up front
func Parse(data []byte, opts Options) (*Database, error) {
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

	db := &Database{
		Schemas:      schemas,
		Props:        props,
		strings:      st,
		schemaByName: make(map[string]int, len(schemas)),
		recordByGUID: make(map[uint64]int),
		recordByID:   make(map[uint32][]int),
	}
	for i, s := range schemas {
		db.schemaByName[s.Name] = i
	}

	pos := int(h.recordOffset)
	db.Records = make([]Record, h.recordCount)
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
		values, valuesEnd, err := decodeRecordValues(data, next, schema, props, st)
		if err != nil {
			return nil, err
		}

		rec := Record{ID: int(i), SchemaID: rh.schemaID, Name: name, GUIDLow: rh.guidLow, GUIDHigh: rh.guidHigh, Values: values}
		db.Records[i] = rec

		if name != "" && rec.GUID() != 0 {
			db.recordByGUID[rec.GUID()] = int(i)
		}
		db.recordByID[rh.schemaID] = append(db.recordByID[rh.schemaID], int(i))

		pos = valuesEnd
	}

	return db, nil
}

// validateSchemas checks the cross-table invariants of "Record database":
// every schema's property range falls within the property table, and every
// parent-schema id (when present) indexes a live schema.
func validateSchemas(schemas []Schema, props []Property) error {
	for _, s := range schemas {
		if s.PropertyStart+s.PropertyCount > uint32(len(props)) {
			return starerr.New(starerr.InvalidStructure, "recorddb: schema property range exceeds property table").WithRecord(s.Name)
		}
		if s.HasParent() && s.ParentSchemaID >= uint32(len(schemas)) {
			return starerr.New(starerr.InvalidStructure, "recorddb: schema parent id out of range").WithRecord(s.Name)
		}
	}
	return nil
}

// LookupByGUID implements "lookup-by-guid".
func (db *Database) LookupByGUID(guid uint64) (*Record, bool) {
	i, ok := db.recordByGUID[guid]
	if !ok {
		return nil, false
	}
	return &db.Records[i], true
}

// LookupByName implements "lookup-by-name". Names are not guaranteed unique;
// this returns the first match in record-table order.
func (db *Database) LookupByName(name string) (*Record, bool) {
	for i := range db.Records {
		if db.Records[i].Name == name {
			return &db.Records[i], true
		}
	}
	return nil, false
}

// FindBySchema implements "find-by-schema" by schema name.
func (db *Database) FindBySchema(schemaName string) []Record {
	idx, ok := db.schemaByName[schemaName]
	if !ok {
		return nil
	}
	var out []Record
	for _, ord := range db.recordByID[uint32(idx)] {
		out = append(out, db.Records[ord])
	}
	return out
}

// SchemaByName resolves a schema by its name.
func (db *Database) SchemaByName(name string) (*Schema, bool) {
	i, ok := db.schemaByName[name]
	if !ok {
		return nil, false
	}
	return &db.Schemas[i], true
}
