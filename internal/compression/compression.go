// Package compression implements the dispatch table used by the archive
// reader to turn a tagged, compressed payload into its original bytes.
// Grounded on the prior internal/zip, which switches on the ZIP method field
// and routes to compress/flate or compress/bzip2 inline (see
// internal/zip/zip.go's "switch method" in New2). StarBreaker generalizes
// that switch to the container's closed tag set (store, deflate, zstd, lz4)
// and moves it into its own package since two collaborators (archive and,
// indirectly, split-combiner's sibling reassembly) both need it.
package compression

import (
	"bytes"
	"compress/flate"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// Tag identifies a compression algorithm by its on-disk method code.
type Tag uint16

const (
	Store   Tag = 0
	Deflate Tag = 8
	Zstd    Tag = 93
	LZ4     Tag = 99
)

func (t Tag) String() string {
	switch t {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return "other"
	}
}

// lz4FrameMagic is the little-endian magic that opens an LZ4 frame: "if
// first four bytes equal the lz4-frame magic, decode as frame; otherwise
// decode as a raw block".
const lz4FrameMagic = 0x184D2204

// Decompress dispatches on tag and returns exactly expectedLen bytes, or a
// *starerr.Error wrapping the underlying cause. Every branch is fatal to the
// caller; there is no local recovery
func Decompress(tag Tag, data []byte, expectedLen int64) ([]byte, error) {
	switch tag {
	case Store:
		if int64(len(data)) != expectedLen {
			return nil, starerr.New(starerr.Truncated, "store: length mismatch")
		}
		return data, nil

	case Deflate:
		r := flate.NewReader(bytes.NewReader(data))
		defer r.Close()
		out, err := io.ReadAll(io.LimitReader(r, expectedLen+1))
		if err != nil {
			return nil, starerr.Wrap(starerr.Truncated, err, "deflate: decode failed")
		}
		if int64(len(out)) != expectedLen {
			return nil, starerr.New(starerr.Truncated, "deflate: length mismatch")
		}
		return out, nil

	case Zstd:
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, starerr.Wrap(starerr.Truncated, err, "zstd: open failed")
		}
		defer dec.Close()
		out, err := io.ReadAll(io.LimitReader(dec, expectedLen+1))
		if err != nil {
			return nil, starerr.Wrap(starerr.Truncated, err, "zstd: decode failed")
		}
		if int64(len(out)) != expectedLen {
			return nil, starerr.New(starerr.Truncated, "zstd: length mismatch")
		}
		return out, nil

	case LZ4:
		if len(data) >= 4 && leUint32(data) == lz4FrameMagic {
			r := lz4.NewReader(bytes.NewReader(data))
			out, err := io.ReadAll(io.LimitReader(r, expectedLen+1))
			if err != nil {
				return nil, starerr.Wrap(starerr.Truncated, err, "lz4 frame: decode failed")
			}
			if int64(len(out)) != expectedLen {
				return nil, starerr.New(starerr.Truncated, "lz4 frame: length mismatch")
			}
			return out, nil
		}
		out := make([]byte, expectedLen)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, starerr.Wrap(starerr.Truncated, err, "lz4 block: decode failed")
		}
		if int64(n) != expectedLen {
			return nil, starerr.New(starerr.Truncated, "lz4 block: length mismatch")
		}
		return out, nil

	default:
		return nil, starerr.New(starerr.UnsupportedCompression, "unsupported compression tag")
	}
}

// Compress is the mirror of Decompress, used by round-trip tests StarBreaker
// never writes archives in production use but the inverse transform belongs
// in this package so compress/decompress stay next to each other and in
// lockstep.
func Compress(tag Tag, data []byte) ([]byte, error) {
	switch tag {
	case Store:
		return data, nil

	case Deflate:
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, starerr.Wrap(starerr.IO, err, "deflate: open writer failed")
		}
		if _, err := w.Write(data); err != nil {
			return nil, starerr.Wrap(starerr.IO, err, "deflate: write failed")
		}
		if err := w.Close(); err != nil {
			return nil, starerr.Wrap(starerr.IO, err, "deflate: close failed")
		}
		return buf.Bytes(), nil

	case Zstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, starerr.Wrap(starerr.IO, err, "zstd: open writer failed")
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil

	case LZ4:
		out := make([]byte, lz4.CompressBlockBound(len(data)))
		var c lz4.Compressor
		n, err := c.CompressBlock(data, out)
		if err != nil {
			return nil, starerr.Wrap(starerr.IO, err, "lz4: compress failed")
		}
		if n == 0 {
			// incompressible input: lz4 falls back to storing the block raw
			return data, nil
		}
		return out[:n], nil

	default:
		return nil, starerr.New(starerr.UnsupportedCompression, "unsupported compression tag")
	}
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// CRC32 computes the IEEE CRC-32 of data, matching the ZIP checksum variant
// used by the container
func CRC32(data []byte) uint32 { return crc32.ChecksumIEEE(data) }

// VerifyCRC32 reports whether data's CRC-32 matches expected.
func VerifyCRC32(data []byte, expected uint32) bool { return CRC32(data) == expected }
