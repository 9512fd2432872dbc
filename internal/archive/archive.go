// Package archive parses the game's on-disk container: a ZIP-variant format
// with custom compression tags, ZIP64 size promotion, and (via
// internal/splitcombiner) sibling-file reassembly for oversized textures.
// Grounded on the prior internal/zip (EOCD/ZIP64 scanning in
// internal/zip/zip.go's New2, central-directory field layout, DOS time
// decoding in times.go, CRC verification in checksum.go) but reworked from
// "build an fs.FS eagerly" into "build an immutable entry index, extract
// entries on demand": the archive never exposes an fs.FS itself (that
// is vfs's job, one layer up).
package archive

import (
	"encoding/binary"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Schuldakt/StarBreaker/internal/compression"
	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// Local/central-directory/EOCD signature words, little-endian per the ZIP
// format.
const (
	sigLocalHeader   = 0x04034B50
	sigCentralHeader = 0x02014B50
	sigEOCD          = 0x06054B50
	sigEOCD64        = 0x06064B50
	sigEOCD64Locator = 0x07064B50

	zip64ExtraTag = 0x0001

	sentinel16 = 0xFFFF
	sentinel32 = 0xFFFFFFFF
)

// Entry is one immutable record from the central directory
type Entry struct {
	Path              string
	Compression       compression.Tag
	CRC32             uint32
	CompressedSize    uint64
	UncompressedSize  uint64
	LocalHeaderOffset uint64
	Flags             uint16
	DOSTime           uint16
	DOSDate           uint16
	IsDirectory       bool
}

// Encrypted reports the general-purpose encryption bit
func (e *Entry) Encrypted() bool { return e.Flags&0x1 != 0 }

// ModTime decodes the DOS mod-time/mod-date words on demand
func (e *Entry) ModTime() time.Time { return msDosTimeToTime(e.DOSDate, e.DOSTime) }

// CompressionRatio is compressed/uncompressed; 1 for store and empty files
func (e *Entry) CompressionRatio() float64 {
	if e.UncompressedSize == 0 {
		return 1
	}
	return float64(e.CompressedSize) / float64(e.UncompressedSize)
}

// Archive is the immutable, parsed central directory
type Archive struct {
	entries   []Entry
	pathIndex map[string]int
}

// ParseOptions configures Parse. The zero value is a valid, permissive
// configuration.
type ParseOptions struct {
	// Logger receives Debug-level trace of the directory walk. Defaults to
	// slog.Default() when nil, per SPEC_FULL.md's ambient logging section.
	Logger *slog.Logger
}

func (o ParseOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Parse indexes the whole container without reading any entry payloads
func Parse(r io.ReaderAt, size int64, opts ParseOptions) (*Archive, error) {
	log := opts.logger()

	eocd, eocdOffset, err := findEOCD(r, size)
	if err != nil {
		return nil, err
	}

	totalEntries := uint64(binary.LittleEndian.Uint16(eocd[10:]))
	centralSize := uint64(binary.LittleEndian.Uint32(eocd[12:]))
	centralOffset := uint64(binary.LittleEndian.Uint32(eocd[16:]))

	isZip64 := totalEntries == sentinel16 || centralSize == sentinel32 || centralOffset == sentinel32
	if isZip64 {
		totalEntries, centralSize, centralOffset, err = readZip64EOCD(r, size, eocdOffset)
		if err != nil {
			return nil, err
		}
		log.Debug("archive: zip64 extension active", "entries", totalEntries)
	}

	if centralOffset > uint64(eocdOffset) {
		return nil, starerr.New(starerr.InvalidStructure, "central directory offset beyond EOCD")
	}

	dirLen := uint64(eocdOffset) - centralOffset
	dir := make([]byte, dirLen)
	if _, err := r.ReadAt(dir, int64(centralOffset)); err != nil && err != io.EOF {
		return nil, starerr.Wrap(starerr.IO, err, "archive: reading central directory failed")
	}

	a := &Archive{pathIndex: make(map[string]int, totalEntries)}

	for i := uint64(0); i < totalEntries; i++ {
		if len(dir) < 46 {
			return nil, starerr.New(starerr.Truncated, "archive: truncated central directory")
		}
		if binary.LittleEndian.Uint32(dir[:4]) != sigCentralHeader {
			return nil, starerr.New(starerr.InvalidMagic, "archive: bad central directory signature")
		}

		flags := binary.LittleEndian.Uint16(dir[8:])
		method := binary.LittleEndian.Uint16(dir[10:])
		dostime := binary.LittleEndian.Uint16(dir[12:])
		dosdate := binary.LittleEndian.Uint16(dir[14:])
		crc := binary.LittleEndian.Uint32(dir[16:])
		compSize := uint64(binary.LittleEndian.Uint32(dir[20:]))
		uncompSize := uint64(binary.LittleEndian.Uint32(dir[24:]))
		nameLen := int(binary.LittleEndian.Uint16(dir[28:]))
		extraLen := int(binary.LittleEndian.Uint16(dir[30:]))
		commentLen := int(binary.LittleEndian.Uint16(dir[32:]))
		localOffset := uint64(binary.LittleEndian.Uint32(dir[42:]))

		if len(dir) < 46+nameLen+extraLen+commentLen {
			return nil, starerr.New(starerr.Truncated, "archive: truncated central directory entry")
		}
		dir = dir[46:]
		name := string(dir[:nameLen])
		dir = dir[nameLen:]
		extra := parseExtra(dir[:extraLen])
		dir = dir[extraLen:]
		dir = dir[commentLen:]

		if fields, ok := extra[zip64ExtraTag]; ok {
			for _, slot := range []*uint64{&uncompSize, &compSize, &localOffset} {
				if *slot == sentinel32 && len(fields) >= 8 {
					*slot = binary.LittleEndian.Uint64(fields)
					fields = fields[8:]
				}
			}
		}

		path, isDir := name, strings.HasSuffix(name, "/")

		e := Entry{
			Path:              path,
			Compression:       compression.Tag(method),
			CRC32:             crc,
			CompressedSize:    compSize,
			UncompressedSize:  uncompSize,
			LocalHeaderOffset: localOffset,
			Flags:             flags,
			DOSTime:           dostime,
			DOSDate:           dosdate,
			IsDirectory:       isDir,
		}

		if _, dup := a.pathIndex[path]; dup {
			log.Warn("archive: duplicate path in central directory, last one wins", "path", path)
		}
		a.pathIndex[path] = len(a.entries)
		a.entries = append(a.entries, e)
	}

	return a, nil
}

// ListEntries returns the immutable entry list
func (a *Archive) ListEntries() []Entry { return a.entries }

// EntryByPath looks up one entry by its exact, byte-for-byte path
func (a *Archive) EntryByPath(path string) (*Entry, bool) {
	i, ok := a.pathIndex[path]
	if !ok {
		return nil, false
	}
	return &a.entries[i], true
}

// Find implements the wildcard helper of: '*' is a multi-character wildcard
// in any position, the match is case-folded to ASCII lowercase. Grounded on
// doublestar.MatchUnvalidated, the same glob engine a similar design uses
// for its own find-style traversal (path.go's glob()).
func Find(entries []Entry, pattern string) []Entry {
	pattern = strings.ToLower(pattern)
	var out []Entry
	for _, e := range entries {
		if doublestar.MatchUnvalidated(pattern, strings.ToLower(e.Path)) {
			out = append(out, e)
		}
	}
	return out
}

// Find is the Archive-bound convenience form of the package-level Find.
func (a *Archive) Find(pattern string) []Entry { return Find(a.entries, pattern) }

// ListDir returns entries whose path equals dir+"/"+child with no further
// '/' in child
func (a *Archive) ListDir(dir string) []Entry {
	prefix := dir
	if prefix != "" {
		prefix += "/"
	}
	var out []Entry
	for _, e := range a.entries {
		if !strings.HasPrefix(e.Path, prefix) {
			continue
		}
		rest := e.Path[len(prefix):]
		rest = strings.TrimSuffix(rest, "/")
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ExtractEntry reads one payload by path, decompresses it, and verifies its
// CRC-32
func (a *Archive) ExtractEntry(r io.ReaderAt, path string) ([]byte, error) {
	e, ok := a.EntryByPath(path)
	if !ok {
		return nil, starerr.New(starerr.NotFound, "archive: no such entry").WithEntry(path)
	}
	return a.extract(r, e)
}

func (a *Archive) extract(r io.ReaderAt, e *Entry) ([]byte, error) {
	localHdr := make([]byte, 30)
	if _, err := r.ReadAt(localHdr, int64(e.LocalHeaderOffset)); err != nil {
		return nil, starerr.Wrap(starerr.IO, err, "archive: reading local header failed").WithEntry(e.Path)
	}
	if binary.LittleEndian.Uint32(localHdr[:4]) != sigLocalHeader {
		return nil, starerr.New(starerr.InvalidMagic, "archive: bad local header signature").WithEntry(e.Path)
	}
	nameLen := int(binary.LittleEndian.Uint16(localHdr[26:]))
	extraLen := int(binary.LittleEndian.Uint16(localHdr[28:]))
	dataOffset := int64(e.LocalHeaderOffset) + 30 + int64(nameLen) + int64(extraLen)

	packed := make([]byte, e.CompressedSize)
	if _, err := r.ReadAt(packed, dataOffset); err != nil && err != io.EOF {
		return nil, starerr.Wrap(starerr.IO, err, "archive: reading payload failed").WithEntry(e.Path)
	}

	out, err := compression.Decompress(e.Compression, packed, int64(e.UncompressedSize))
	if err != nil {
		if se, ok := err.(*starerr.Error); ok {
			return nil, se.WithEntry(e.Path)
		}
		return nil, starerr.Wrap(starerr.UnsupportedCompression, err, "archive: decompression failed").WithEntry(e.Path)
	}

	if !compression.VerifyCRC32(out, e.CRC32) {
		return nil, starerr.New(starerr.CRCMismatch, "archive: crc32 mismatch").WithEntry(e.Path)
	}
	return out, nil
}

func findEOCD(r io.ReaderAt, size int64) (record []byte, offset int64, err error) {
	if size < 22 {
		return nil, 0, starerr.New(starerr.InvalidMagic, "archive: file too small to be an archive")
	}
	maxScan := int64(65557) // 22 fixed + 65535 max comment
	scanLen := min(maxScan, size)
	buf := make([]byte, scanLen)
	if _, err := r.ReadAt(buf, size-scanLen); err != nil && err != io.EOF {
		return nil, 0, starerr.Wrap(starerr.IO, err, "archive: reading tail failed")
	}

	for i := len(buf) - 22; i >= 0; i-- {
		if binary.LittleEndian.Uint32(buf[i:]) == sigEOCD {
			commentLen := int(binary.LittleEndian.Uint16(buf[i+20:]))
			if i+22+commentLen > len(buf) {
				continue
			}
			off := size - scanLen + int64(i)
			return buf[i : i+22+commentLen], off, nil
		}
	}
	return nil, 0, starerr.New(starerr.InvalidMagic, "archive: not an archive (EOCD not found)")
}

func readZip64EOCD(r io.ReaderAt, size, eocdOffset int64) (totalEntries, centralSize, centralOffset uint64, err error) {
	locatorOffset := eocdOffset - 20
	if locatorOffset < 0 {
		return 0, 0, 0, starerr.New(starerr.Truncated, "archive: zip64 locator out of range")
	}
	locator := make([]byte, 20)
	if _, err := r.ReadAt(locator, locatorOffset); err != nil {
		return 0, 0, 0, starerr.Wrap(starerr.IO, err, "archive: reading zip64 locator failed")
	}
	if binary.LittleEndian.Uint32(locator) != sigEOCD64Locator {
		return 0, 0, 0, starerr.New(starerr.InvalidMagic, "archive: bad zip64 locator signature")
	}
	eocd64Offset := int64(binary.LittleEndian.Uint64(locator[8:]))

	eocd64 := make([]byte, 56)
	if _, err := r.ReadAt(eocd64, eocd64Offset); err != nil {
		return 0, 0, 0, starerr.Wrap(starerr.IO, err, "archive: reading zip64 eocd failed")
	}
	if binary.LittleEndian.Uint32(eocd64) != sigEOCD64 {
		return 0, 0, 0, starerr.New(starerr.InvalidMagic, "archive: bad zip64 eocd signature")
	}
	totalEntries = binary.LittleEndian.Uint64(eocd64[32:])
	centralSize = binary.LittleEndian.Uint64(eocd64[40:])
	centralOffset = binary.LittleEndian.Uint64(eocd64[48:])
	return totalEntries, centralSize, centralOffset, nil
}

func parseExtra(x []byte) map[int][]byte {
	ret := make(map[int][]byte)
	for len(x) >= 4 {
		kind := int(binary.LittleEndian.Uint16(x))
		size := int(binary.LittleEndian.Uint16(x[2:]))
		if len(x) < 4+size {
			break
		}
		ret[kind] = x[4:][:size]
		x = x[4+size:]
	}
	return ret
}

// msDosTimeToTime converts an MS-DOS date and time into a time.Time at 2s
// resolution. Grounded on internal/zip/times.go.
func msDosTimeToTime(dosDate, dosTime uint16) time.Time {
	return time.Date(
		int(dosDate>>9+1980),
		time.Month(dosDate>>5&0xf),
		int(dosDate&0x1f),
		int(dosTime>>11),
		int(dosTime>>5&0x3f),
		int(dosTime&0x1f*2),
		0,
		time.UTC,
	)
}
