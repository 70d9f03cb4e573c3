// Package namebatch implements the shared, hashed, length-tagged name
// table codec described in spec §4.1. It is used by the zen writer and
// reader for both of its name-map-shaped tables (the package name map and
// the imported-package-names table); the legacy header keeps its own
// per-entry name table format (legacy/nametable.go).
package namebatch

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"github.com/gbudweiser/zenlegacycodec/codecerr"
	"github.com/gbudweiser/zenlegacycodec/namehash"
)

// HashAlgorithmID is the fixed hash-algorithm id constant emitted by every
// name batch (spec §4.1).
const HashAlgorithmID uint64 = 0xC1640000

// Entry is one decoded name-batch row: the literal string plus the
// per-entry hash that was stored alongside it (recomputed on encode,
// verified on decode callers' discretion).
type Entry struct {
	Value string
	Hash  uint64
}

// EncodeOptions controls the lossy/strict switch called out in spec §4.1
// and Open Question (c): Lossy downgrades non-ASCII names to '?' for
// compatibility with one specific consumer. The default (Lossy=false) is
// the UTF-16-preserving strict encoder.
type EncodeOptions struct {
	Lossy bool
}

// Encode writes names as a name batch. Strict mode (EncodeOptions{}) never
// loses information; Lossy mode replaces non-ASCII runes with '?' before
// hashing and storing, matching the LegacyToZen compatibility switch in
// spec Open Question (c).
func Encode(names []string, opts EncodeOptions) []byte {
	var buf bytes.Buffer

	count := uint32(len(names))
	writeU32(&buf, count)
	if count == 0 {
		return buf.Bytes()
	}

	encoded := make([][]byte, len(names))
	headers := make([]int16, len(names))
	hashes := make([]uint64, len(names))
	totalLen := 0

	for i, n := range names {
		s := n
		if opts.Lossy {
			s = lossyASCII(s)
		}
		hashes[i] = namehash.Hash64(s)
		if namehash.IsASCII(s) {
			encoded[i] = []byte(s)
			headers[i] = int16(len(encoded[i]))
		} else {
			units := utf16.Encode([]rune(s))
			b := make([]byte, len(units)*2)
			for j, u := range units {
				b[j*2] = byte(u)
				b[j*2+1] = byte(u >> 8)
			}
			encoded[i] = b
			headers[i] = int16(len(units)) + int16(-32768)
		}
		totalLen += len(encoded[i])
	}

	writeU32(&buf, uint32(totalLen))
	writeU64(&buf, HashAlgorithmID)
	for _, h := range hashes {
		writeU64(&buf, h)
	}
	for _, h := range headers {
		writeI16BE(&buf, h)
	}
	for _, e := range encoded {
		buf.Write(e)
	}
	return buf.Bytes()
}

func lossyASCII(s string) string {
	if namehash.IsASCII(s) {
		return s
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r > 127 {
			out = append(out, '?')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}

// Decode inverts Encode exactly, returning the ordered entries with their
// stored per-entry hash. It returns a codecerr.InputMalformed error on any
// truncated or inconsistent section, per spec §7. data must contain
// exactly one batch; use DecodeWithLength when the caller does not already
// know the batch's exact byte length.
func Decode(data []byte) ([]Entry, error) {
	entries, _, err := DecodeWithLength(data)
	return entries, err
}

// DecodeWithLength behaves like Decode but additionally returns the number
// of leading bytes of data that made up the batch, so a caller can locate
// whatever follows it in a larger buffer (spec §6 zen header ordering,
// where the imported-package-names batch is immediately followed by a
// parallel i32 suffix array with no length prefix of its own).
func DecodeWithLength(data []byte) ([]Entry, int, error) {
	r := bytes.NewReader(data)
	count, err := readU32(r, "namebatch.count")
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, len(data) - r.Len(), nil
	}

	totalLen, err := readU32(r, "namebatch.totalLen")
	if err != nil {
		return nil, 0, err
	}
	algoID, err := readU64(r, "namebatch.hashAlgorithmId")
	if err != nil {
		return nil, 0, err
	}
	if algoID != HashAlgorithmID {
		return nil, 0, codecerr.Malformedf("namebatch.hashAlgorithmId", 0, "unexpected hash algorithm id 0x%X", algoID)
	}

	hashes := make([]uint64, count)
	for i := range hashes {
		h, err := readU64(r, "namebatch.hash")
		if err != nil {
			return nil, 0, err
		}
		hashes[i] = h
	}

	headers := make([]int16, count)
	for i := range headers {
		h, err := readI16BE(r, "namebatch.header")
		if err != nil {
			return nil, 0, err
		}
		headers[i] = h
	}

	stringBytes := make([]byte, totalLen)
	if _, err := r.Read(stringBytes); err != nil && totalLen > 0 {
		return nil, 0, codecerr.Malformed("namebatch.strings", 0, err)
	}

	entries := make([]Entry, count)
	pos := 0
	for i := range entries {
		h := headers[i]
		var s string
		if h >= 0 {
			n := int(h)
			if pos+n > len(stringBytes) {
				return nil, 0, codecerr.Malformedf("namebatch.strings", int64(pos), "ascii string overruns batch")
			}
			if !namehash.ValidUTF8(stringBytes[pos : pos+n]) {
				return nil, 0, codecerr.Malformedf("namebatch.strings", int64(pos), "string is not valid UTF-8")
			}
			s = string(stringBytes[pos : pos+n])
			pos += n
		} else {
			units := int(h) - (-32768)
			n := units * 2
			if pos+n > len(stringBytes) {
				return nil, 0, codecerr.Malformedf("namebatch.strings", int64(pos), "utf16 string overruns batch")
			}
			u16 := make([]uint16, units)
			for j := 0; j < units; j++ {
				u16[j] = uint16(stringBytes[pos+j*2]) | uint16(stringBytes[pos+j*2+1])<<8
			}
			s = string(utf16.Decode(u16))
			pos += n
		}
		entries[i] = Entry{Value: s, Hash: hashes[i]}
	}
	return entries, len(data) - r.Len(), nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeI16BE(buf *bytes.Buffer, v int16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	buf.Write(b[:])
}

func readU32(r *bytes.Reader, section string) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, codecerr.Malformed(section, 0, err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU64(r *bytes.Reader, section string) (uint64, error) {
	var b [8]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, codecerr.Malformed(section, 0, err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readI16BE(r *bytes.Reader, section string) (int16, error) {
	var b [2]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, codecerr.Malformed(section, 0, err)
	}
	return int16(binary.BigEndian.Uint16(b[:])), nil
}
