// Package namehash wraps the CityHash64 primitive shared by every name,
// path, package-id and public-export-hash computation in the codec. It
// generalizes the teacher's uecastoc.hashString (CityHash64 over the
// lowercased byte form of a string) into the two encodings spec §4.1
// requires: ASCII when every code point is <= 127, UTF-16LE otherwise.
package namehash

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tenfyzhong/cityhash"
)

// IsASCII reports whether s contains only code points <= 127, matching the
// name-batch header's sign convention (spec §3 "Name batch").
func IsASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

// LowerBytes renders s in the encoding the hash and the name-batch string
// table both use: lowercase ASCII bytes when s is all-ASCII, else
// lowercase UTF-16LE bytes.
func LowerBytes(s string) []byte {
	lower := strings.ToLower(s)
	if IsASCII(lower) {
		return []byte(lower)
	}
	return utf16LEBytes(lower)
}

func utf16LEBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

// CodeUnitCount returns the UTF-16 code-unit count of s, used by the
// name-batch header's negative-length convention.
func CodeUnitCount(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// ValidUTF8 reports whether b decodes as valid UTF-8; malformed input
// strings are rejected by the name-batch decoder rather than silently
// reinterpreted.
func ValidUTF8(b []byte) bool { return utf8.Valid(b) }

// Hash64 computes CityHash64 over the lowercase byte form of s (ASCII or
// UTF-16LE per LowerBytes), matching spec §4.1's per-entry hash and the
// public-export-hash law of §8.
func Hash64(s string) uint64 {
	return cityhash.CityHash64(LowerBytes(s))
}

// Hash64Bytes computes CityHash64 directly over pre-encoded bytes, used
// when the caller already has the lowercase form (e.g. a path already
// normalized by namehash.NormalizePath).
func Hash64Bytes(b []byte) uint64 {
	return cityhash.CityHash64(b)
}

// NormalizePath lowercases and forward-slash-normalizes an object/package
// path for hashing, matching the consumer's expectation that
// "/Game/Library" and "/Game\\Library" hash identically.
func NormalizePath(path string) string {
	return strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
}

// PathHash64 hashes a normalized path, used for package ids and
// public-export hashes (spec §4.3, §8 scenarios 3-4).
func PathHash64(path string) uint64 {
	return Hash64(NormalizePath(path))
}

// RenderName renders a MappedName's semantic form "Base" or "Base_<k>"
// given the base string and the 1-based `number` field (0 means no
// suffix), matching spec §3's MappedName convention.
func RenderName(base string, number uint32) string {
	if number == 0 {
		return base
	}
	return base + "_" + itoa(number-1)
}

func itoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
