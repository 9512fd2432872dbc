// Package splitcombiner detects and reassembles textures split across
// sibling files (".dds.N" / ".dds.Na" / ".dds.Nb") into a single in-memory
// blob indistinguishable from an unsplit texture. Grounded on the prior
// internal/hfs/multireaderat.go, which stitches extents from a single
// AppleDouble resource fork into one logical reader, and
// internal/appledouble's fork-probing idiom of trying candidate sibling
// names until one is missing. Here the candidates are numbered/lettered
// siblings instead of resource-fork extents.
package splitcombiner

import (
	"regexp"
	"strconv"

	"github.com/Schuldakt/StarBreaker/internal/starerr"
)

// Opener abstracts the lookup a caller (normally a vfs mount) performs to
// read one sibling file by its exact path. Returning ok=false means the
// sibling does not exist; Combine treats that as "series ended here".
type Opener func(path string) (data []byte, ok bool, err error)

var splitSuffix = regexp.MustCompile(`\.dds\.(\d+)([ab])?$`)

// IsSplit reports whether path's final segment matches the split-texture
// naming convention
func IsSplit(path string) bool {
	return splitSuffix.MatchString(path)
}

// BasePath strips the "...N" / "...Na"/"...Nb" suffix, returning the base
// ".dds" path a combined read should be addressed by.
func BasePath(path string) string {
	loc := splitSuffix.FindStringSubmatchIndex(path)
	if loc == nil {
		return path
	}
	return path[:loc[0]] + ".dds"
}

const (
	headerMagicLen = 4
	headerCoreLen  = 124
	minHeaderLen   = headerMagicLen + headerCoreLen
)

// Result is a reassembled texture: the combined bytes plus the header facts
// recorded while combining
type Result struct {
	Data              []byte
	HasExtendedHeader bool
}

// Combine resolves whether base (a ".dds" path) is split, and if so
// reassembles its siblings into one blob equal to the logical original If
// base is not split, Combine just returns the single file's bytes unchanged.
func Combine(open Opener, base string) (*Result, error) {
	siblings, err := enumerateSiblings(open, base)
	if err != nil {
		return nil, err
	}
	if len(siblings) == 0 {
		data, ok, err := open(base)
		if err != nil {
			return nil, starerr.Wrap(starerr.IO, err, "split-combiner: reading base file failed").WithEntry(base)
		}
		if !ok {
			return nil, starerr.New(starerr.NotFound, "split-combiner: no such file").WithEntry(base)
		}
		if len(data) < minHeaderLen {
			return &Result{Data: data}, nil
		}
		return &Result{Data: data, HasExtendedHeader: hasExtendedHeader(data)}, nil
	}

	first := siblings[0]
	if len(first) < minHeaderLen {
		return nil, starerr.New(starerr.Truncated, "split-combiner: first part shorter than a dds header").WithEntry(base)
	}

	out := make([]byte, 0, totalLen(siblings))
	out = append(out, first...) // header + tail of the first file, verbatim
	for _, s := range siblings[1:] {
		out = append(out, s...)
	}
	return &Result{Data: out, HasExtendedHeader: hasExtendedHeader(first)}, nil
}

// hasExtendedHeader reports whether the DX10 extension header tag ("DX10"
// fourcc at file byte offset 84, i.e. offset 80 of the 124-byte primary
// header after the 4-byte magic) is present,
// meaning 20 further bytes follow before pixel data.
func hasExtendedHeader(first []byte) bool {
	const fourCCOffset = headerMagicLen + 80 // magic(4) + size/flags/dims/... up to fourCC field
	if len(first) < fourCCOffset+4 {
		return false
	}
	return string(first[fourCCOffset:fourCCOffset+4]) == "DX10"
}

func totalLen(parts [][]byte) int {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	return n
}

// enumerateSiblings probes base's ".N" and ".Na"/".Nb" forms for N in
// 1..=99, stopping at the first N with neither form present. Results are
// returned in probe order (ascending numeric N, then 'a' before 'b'); no
// lexicographic sort is applied, so ".10" follows ".9".
func enumerateSiblings(open Opener, base string) ([][]byte, error) {
	var parts [][]byte
	for n := 1; n <= 99; n++ {
		suffix := strconv.Itoa(n)

		plain, plainOK, err := open(base + "." + suffix)
		if err != nil {
			return nil, starerr.Wrap(starerr.IO, err, "split-combiner: reading sibling failed").WithEntry(base)
		}
		if plainOK {
			parts = append(parts, plain)
			continue
		}

		a, aOK, err := open(base + "." + suffix + "a")
		if err != nil {
			return nil, starerr.Wrap(starerr.IO, err, "split-combiner: reading sibling failed").WithEntry(base)
		}
		b, bOK, err := open(base + "." + suffix + "b")
		if err != nil {
			return nil, starerr.Wrap(starerr.IO, err, "split-combiner: reading sibling failed").WithEntry(base)
		}
		if !aOK && !bOK {
			break
		}
		if aOK {
			parts = append(parts, a)
		}
		if bOK {
			parts = append(parts, b)
		}
	}
	return parts, nil
}
