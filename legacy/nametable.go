package legacy

import (
	"bytes"
	"encoding/binary"

	"github.com/gbudweiser/zenlegacycodec/codecerr"
)

// encodeNameTable writes the legacy header's own name table format (spec
// §6 item 6): each entry is a length-prefixed UTF-8 string (length field
// includes the trailing null) followed by a u32 name hash, written as
// zero. This is distinct from the shared namebatch codec (§4.1), which is
// used on the zen side; the legacy format predates it and keeps its own
// simpler per-entry layout.
func encodeNameTable(names []string) []byte {
	var buf bytes.Buffer
	for _, n := range names {
		writeLengthPrefixedCString(&buf, n)
		var h [4]byte // name hash, always written as zero (spec §6)
		buf.Write(h[:])
	}
	return buf.Bytes()
}

// decodeNameTable inverts encodeNameTable for exactly `count` entries,
// reporting the number of bytes consumed from data.
func decodeNameTable(data []byte, count int) ([]string, int, error) {
	names := make([]string, 0, count)
	pos := 0
	for i := 0; i < count; i++ {
		s, n, err := readLengthPrefixedCString(data[pos:])
		if err != nil {
			return nil, 0, codecerr.Malformed("legacy.nameTable", int64(pos), err)
		}
		pos += n
		if pos+4 > len(data) {
			return nil, 0, codecerr.Malformedf("legacy.nameTable", int64(pos), "truncated name hash field")
		}
		pos += 4 // discard stored hash; recomputed on demand via namehash
		names = append(names, s)
	}
	return names, pos, nil
}

func writeLengthPrefixedCString(buf *bytes.Buffer, s string) {
	b := []byte(s)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)+1))
	buf.Write(lenBuf[:])
	buf.Write(b)
	buf.WriteByte(0)
}

func readLengthPrefixedCString(data []byte) (string, int, error) {
	if len(data) < 4 {
		return "", 0, codecerr.Malformedf("legacy.cstring", 0, "truncated length prefix")
	}
	n := int(binary.LittleEndian.Uint32(data[0:4]))
	if n < 1 || 4+n > len(data) {
		return "", 0, codecerr.Malformedf("legacy.cstring", 0, "invalid string length %d", n)
	}
	s := string(data[4 : 4+n-1]) // drop trailing null
	return s, 4 + n, nil
}
