package legacy

import (
	"github.com/google/uuid"
)

// GUID is the legacy header's 16-byte package/custom-version identifier,
// backed by google/uuid so it round-trips through a real UUID parser
// instead of raw byte slicing (spec §6 item 2, item 5 "package guid").
type GUID [16]byte

// ParseGUID parses a canonical UUID string ("xxxxxxxx-xxxx-...") into a GUID.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, err
	}
	return GUID(u), nil
}

// NewRandomGUID generates a random v4 GUID, used when synthesizing a
// package guid for output that carried none on input.
func NewRandomGUID() GUID {
	return GUID(uuid.New())
}

func (g GUID) String() string {
	return uuid.UUID(g).String()
}

// readGUID reads a 16-byte GUID from the start of b (no byte
// reordering; the legacy format stores the raw 16 bytes as-is).
func readGUID(b []byte) GUID {
	var g GUID
	copy(g[:], b)
	return g
}

func writeGUID(b []byte, g GUID) {
	copy(b, g[:])
}
