// Package chunkgeo decodes the chunked geometry container: dialect
// detection, the chunk table, and per-chunk-kind decoders for mesh data,
// skeletons, morph targets, scene nodes, and materials. Grounded on the
// prior internal/sit package, which also dispatches on a small closed set of
// leading-bytes magics (StuffIt's classic vs. 5.x headers) before walking a
// table of per-entry records — the same two-level "sniff dialect, then walk
// a table" shape this package follows, generalized from StuffIt's two
// dialects to this format's three.
package chunkgeo

import (
	"encoding/binary"
	"log/slog"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// Dialect identifies which of the three on-disk container flavors produced a
// Model
type Dialect int

const (
	DialectLegacy Dialect = iota // "CryTek\0\0"
	DialectIvo                   // "#ivo"
	DialectCrCh                  // "CrCh"
)

func (d Dialect) String() string {
	switch d {
	case DialectLegacy:
		return "legacy"
	case DialectIvo:
		return "ivo"
	case DialectCrCh:
		return "crch"
	default:
		return "unknown"
	}
}

var (
	magicLegacy = [8]byte{'C', 'r', 'y', 'T', 'e', 'k', 0, 0}
	magicIvo    = [4]byte{'#', 'i', 'v', 'o'}
	magicCrCh   = [4]byte{'C', 'r', 'C', 'h'}
)

// chunkHeaderLen reports the on-disk size of one chunk-table entry for d
func (d Dialect) chunkHeaderLen() int {
	if d == DialectLegacy {
		return 16
	}
	return 20
}

// Options configures Parse. The zero value is valid and skips unknown chunk
// types rather than failing on them.
type Options struct {
	// FailOnUnknownChunk, if true, turns an unrecognized chunk-type value into
	// a fatal error instead of a skipped, logged chunk
	FailOnUnknownChunk bool
	Logger             *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

type header struct {
	dialect          Dialect
	dialectVersion   uint32
	chunkCount       uint32
	chunkTableOffset uint32
}

// detectDialect reads the leading bytes of data and the chunk-count/offset
// pair that follows the dialect prefix
func detectDialect(data []byte) (*header, error) {
	if len(data) < 8 {
		return nil, starerr.New(starerr.Truncated, "chunkgeo: file too small for a dialect prefix")
	}

	switch {
	case [8]byte(data[:8]) == magicLegacy:
		// 8-byte magic, then a 4-byte file-type word and a 4-byte version
		// word, then the chunk-count/offset pair.
		if len(data) < 16 {
			return nil, starerr.New(starerr.Truncated, "chunkgeo: truncated dialect prefix")
		}
		version := binary.LittleEndian.Uint32(data[12:])
		return readCountAndOffset(data, 16, DialectLegacy, version)

	case [4]byte(data[:4]) == magicIvo:
		version := binary.LittleEndian.Uint32(data[4:])
		return readCountAndOffset(data, 8, DialectIvo, version)

	case [4]byte(data[:4]) == magicCrCh:
		version := binary.LittleEndian.Uint32(data[4:])
		return readCountAndOffset(data, 8, DialectCrCh, version)

	default:
		return nil, starerr.New(starerr.InvalidMagic, "chunkgeo: unrecognized container prefix")
	}
}

func readCountAndOffset(data []byte, prefixLen int, d Dialect, version uint32) (*header, error) {
	if len(data) < prefixLen+8 {
		return nil, starerr.New(starerr.Truncated, "chunkgeo: truncated chunk-count/offset pair")
	}
	count := binary.LittleEndian.Uint32(data[prefixLen:])
	offset := binary.LittleEndian.Uint32(data[prefixLen+4:])
	return &header{dialect: d, dialectVersion: version, chunkCount: count, chunkTableOffset: offset}, nil
}
