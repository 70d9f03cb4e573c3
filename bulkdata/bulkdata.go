// Package bulkdata adapts the teacher's compression-method table
// (GregorBudweiser-UEcastoc/compression.go) into a registry keyed by the
// legacy_bulk_data_flags selector bits (spec §3 "data-resource block",
// §6 item 6), and provides the bulk-data resource mirroring helpers used
// by the ZenToLegacy pipeline (spec §4.2 stage b) and the
// legacy-data-resource carry-through/synthesis of the LegacyToZen pipeline
// (spec §4.3 "Summary & offsets").
//
// Fetching or transforming the bulk payload bytes themselves is an
// external collaborator per spec §1 ("bulk-data chunk fetching" is out of
// scope); this package only needs to know the same method names the
// teacher's table knows, so the selector bits round-trip bit-exactly.
package bulkdata

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/new-world-tools/go-oodle"
	"github.com/pierrec/lz4/v4"
)

// CompressionMethod identifies how a bulk-data resource's payload is
// stored on disk, matching the teacher's lowercased method-name keys.
type CompressionMethod string

const (
	MethodNone  CompressionMethod = "none"
	MethodZlib  CompressionMethod = "zlib"
	MethodOodle CompressionMethod = "oodle"
	MethodLZ4   CompressionMethod = "lz4"
)

// legacyBulkDataFlags bits that select a compression method, generalizing
// the teacher's flat DecompressionMethods/CompressionMethods maps into a
// bitfield decode since the legacy data-resource entry carries the method
// as flag bits rather than a string.
const (
	flagCompressedZlib  uint32 = 1 << 0
	flagCompressedLZ4   uint32 = 1 << 1
	flagCompressedOodle uint32 = 1 << 2
)

// MethodFromFlags decodes the CompressionMethod a data-resource entry's
// LegacyBulkDataFlags selects, defaulting to MethodNone when no
// compression bit is set.
func MethodFromFlags(flags uint32) CompressionMethod {
	switch {
	case flags&flagCompressedOodle != 0:
		return MethodOodle
	case flags&flagCompressedLZ4 != 0:
		return MethodLZ4
	case flags&flagCompressedZlib != 0:
		return MethodZlib
	default:
		return MethodNone
	}
}

// FlagsForMethod encodes method back into the corresponding flag bit,
// the inverse of MethodFromFlags.
func FlagsForMethod(method CompressionMethod) uint32 {
	switch method {
	case MethodOodle:
		return flagCompressedOodle
	case MethodLZ4:
		return flagCompressedLZ4
	case MethodZlib:
		return flagCompressedZlib
	default:
		return 0
	}
}

// decompressFuncs mirrors the teacher's DecompressionMethods table.
var decompressFuncs = map[CompressionMethod]func([]byte, uint32) ([]byte, error){
	MethodNone:  decompressNone,
	MethodZlib:  decompressZLIB,
	MethodOodle: decompressOodle,
	MethodLZ4:   decompressLZ4,
}

// compressFuncs mirrors the teacher's CompressionMethods table.
var compressFuncs = map[CompressionMethod]func([]byte) ([]byte, error){
	MethodNone:  compressNone,
	MethodZlib:  compressZLIB,
	MethodOodle: compressOodle,
	MethodLZ4:   compressLZ4,
}

// Decompress looks up method's decompressor and applies it; callers that
// do fetch bulk-data bytes (outside this core, per §1) use this to
// validate a resource entry's declared RawSize against the payload.
func Decompress(method CompressionMethod, data []byte, expectedOutputSize uint32) ([]byte, error) {
	fn, ok := decompressFuncs[method]
	if !ok {
		return nil, fmt.Errorf("bulkdata: unknown compression method %q", method)
	}
	return fn(data, expectedOutputSize)
}

// Compress looks up method's compressor and applies it.
func Compress(method CompressionMethod, data []byte) ([]byte, error) {
	fn, ok := compressFuncs[method]
	if !ok {
		return nil, fmt.Errorf("bulkdata: unknown compression method %q", method)
	}
	return fn(data)
}

func decompressNone(data []byte, _ uint32) ([]byte, error) { return data, nil }

func decompressZLIB(data []byte, expectedOutputSize uint32) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if uint32(len(out)) != expectedOutputSize {
		return nil, fmt.Errorf("bulkdata: zlib decompressed size %d != expected %d", len(out), expectedOutputSize)
	}
	return out, nil
}

func decompressOodle(data []byte, expectedOutputSize uint32) ([]byte, error) {
	if !oodle.IsDllExist() {
		if err := oodle.Download(); err != nil {
			return nil, fmt.Errorf("bulkdata: oodle library unavailable: %w", err)
		}
	}
	return oodle.Decompress(data, int64(expectedOutputSize))
}

func decompressLZ4(data []byte, _ uint32) ([]byte, error) {
	var out bytes.Buffer
	zr := lz4.NewReader(bytes.NewReader(data))
	if _, err := io.Copy(&out, zr); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func compressNone(data []byte) ([]byte, error) { return data, nil }

func compressZLIB(data []byte) ([]byte, error) {
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func compressOodle(data []byte) ([]byte, error) {
	return oodle.Compress(data, oodle.AlgoKraken, oodle.CompressionLevelOptimal3)
}

func compressLZ4(data []byte) ([]byte, error) {
	var out bytes.Buffer
	w := lz4.NewWriter(&out)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
