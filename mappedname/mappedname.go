// Package mappedname implements the MappedName name-table reference (spec
// §3): a (index, number) pair shared verbatim by both the legacy and zen
// formats wherever a name-map entry is referenced.
package mappedname

import (
	"encoding/binary"
	"io"

	"github.com/gbudweiser/zenlegacycodec/codecerr"
	"github.com/gbudweiser/zenlegacycodec/namehash"
)

// MappedName is a name-table reference. Number encodes the numeric
// suffix: semantic form "Base_<k>" corresponds to (index_of("Base"), k+1);
// Number == 0 means no suffix.
type MappedName struct {
	Index  uint32
	Number uint32
}

// Render resolves m against a name map, producing its semantic string
// form, e.g. "Actor_3" for (index_of("Actor"), 4).
func (m MappedName) Render(nameMap []string) (string, error) {
	if int(m.Index) >= len(nameMap) {
		return "", codecerr.InvariantViolatedf("mapped name index %d out of range (name map has %d entries)", m.Index, len(nameMap))
	}
	return namehash.RenderName(nameMap[m.Index], m.Number), nil
}

// WriteTo writes m as two little-endian i32 fields, matching the legacy
// wire layout ("two MappedName-style i32 pairs") and the zen MappedName
// encoding alike.
func (m MappedName) WriteTo(w io.Writer) error {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], m.Index)
	binary.LittleEndian.PutUint32(buf[4:8], m.Number)
	_, err := w.Write(buf[:])
	return err
}

// ReadFrom reads a MappedName as two little-endian i32 fields.
func ReadFrom(r io.Reader) (MappedName, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return MappedName{}, codecerr.IO(err)
	}
	return MappedName{
		Index:  binary.LittleEndian.Uint32(buf[0:4]),
		Number: binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}
