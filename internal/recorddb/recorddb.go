// Package recorddb decodes the typed record database: header, string table,
// schema table, property table, and record table, in both eager (fully
// materialized) and lazy (offset-plus-on-demand-load) forms. Grounded on the
// prior internal/sit package for its "read a header, then walk N fixed-size
// table records, each carrying further variable-length payloads" shape, and
// on internal/zip's central-directory walk for how a flat, offset-indexed
// table becomes a queryable in-memory structure.
package recorddb

import (
	"encoding/binary"
	"log/slog"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

const headerLen = 36

var (
	magicDCB1 = [4]byte{'D', 'C', 'B', '1'}
	magicCryX = [4]byte{'C', 'r', 'y', 'X'}
	magicBXLM = [4]byte{'B', 'X', 'L', 'M'}
)

const sentinel32 = 0xFFFFFFFF

// Options configures Parse/ParseLazy. The zero value is valid.
type Options struct {
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

type header struct {
	version       uint32
	schemaCount   uint32
	propertyCount uint32
	recordCount   uint32
	stringOffset  uint32
	schemaOffset  uint32
	propOffset    uint32
	recordOffset  uint32
}

func parseHeader(data []byte) (*header, error) {
	if len(data) < headerLen {
		return nil, starerr.New(starerr.Truncated, "recorddb: file too small for a header")
	}
	switch magic := [4]byte(data[:4]); magic {
	case magicDCB1, magicCryX:
		// fall through to the shared field layout below
	case magicBXLM:
		// BXLM is reserved for a future binary-XML dialect; fail cleanly here
		// rather than proceeding into a schema/property/record pipeline built
		// for DCB1/CryX and producing a confusing downstream error.
		return nil, starerr.New(starerr.UnsupportedVersion, "recorddb: BXLM binary-XML dialect is not yet supported")
	default:
		return nil, starerr.New(starerr.InvalidMagic, "recorddb: unrecognized magic")
	}

	h := &header{
		version:       binary.LittleEndian.Uint32(data[4:]),
		schemaCount:   binary.LittleEndian.Uint32(data[8:]),
		propertyCount: binary.LittleEndian.Uint32(data[12:]),
		recordCount:   binary.LittleEndian.Uint32(data[16:]),
		stringOffset:  binary.LittleEndian.Uint32(data[20:]),
		schemaOffset:  binary.LittleEndian.Uint32(data[24:]),
		propOffset:    binary.LittleEndian.Uint32(data[28:]),
		recordOffset:  binary.LittleEndian.Uint32(data[32:]),
	}
	return h, nil
}
