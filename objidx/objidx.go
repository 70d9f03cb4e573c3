// Package objidx implements the two reference encodings described in spec
// §3: PackageObjectIndex (the zen tagged 64-bit reference) and
// PackageIndex (the legacy signed 32-bit reference), plus the PackageId
// and PublicExportHash helpers used to compute foreign-package references.
package objidx

import "github.com/gbudweiser/zenlegacycodec/namehash"

// ObjectKind discriminates the four PackageObjectIndex variants (spec §3).
type ObjectKind int

const (
	KindNull ObjectKind = iota
	KindExport
	KindScriptImport
	KindPackageImport
)

// typeBits occupy the top two bits of the packed u64, matching the design
// note's "bit-packed representation that matches the on-wire layout"
// guidance: reads and writes are trivial masks/shifts.
const (
	typeShift = 62
	typeMask  = uint64(0x3) << typeShift
	valueMask = ^typeMask
)

// PackageObjectIndex is the opaque 64-bit zen reference (spec §3). The
// zero value is Null.
type PackageObjectIndex uint64

// Null is the canonical null PackageObjectIndex.
const Null PackageObjectIndex = 0

func packed(kind ObjectKind, value uint64) PackageObjectIndex {
	return PackageObjectIndex((uint64(kind) << typeShift) | (value & valueMask))
}

// NewExport builds an Export(local_export_index) reference.
func NewExport(localExportIndex uint32) PackageObjectIndex {
	return packed(KindExport, uint64(localExportIndex))
}

// NewScriptImport builds a ScriptImport(hash) reference. hash is masked to
// 62 bits to fit the u62 payload described in spec §3.
func NewScriptImport(hash uint64) PackageObjectIndex {
	return packed(KindScriptImport, hash)
}

// NewPackageImport builds a PackageImport(package_slot, hash_slot)
// reference, packing both slots into the 62-bit payload at 31 bits each;
// a slot value of 2^31 or more does not round-trip through AsPackageImport.
func NewPackageImport(packageSlot, hashSlot uint32) PackageObjectIndex {
	value := (uint64(packageSlot) << 31) | uint64(hashSlot)
	return packed(KindPackageImport, value)
}

// IsNull reports whether idx is the Null variant.
func (idx PackageObjectIndex) IsNull() bool {
	return idx == Null
}

// Kind returns the discriminant of idx. The zero value (Null) has no type
// bits set, so a zero PackageObjectIndex is always KindNull regardless of
// the packed type bits, matching "Null" being the canonical zero.
func (idx PackageObjectIndex) Kind() ObjectKind {
	if idx == Null {
		return KindNull
	}
	return ObjectKind((uint64(idx) & typeMask) >> typeShift)
}

// AsExport returns the local export index and true iff idx is an Export reference.
func (idx PackageObjectIndex) AsExport() (uint32, bool) {
	if idx.Kind() != KindExport {
		return 0, false
	}
	return uint32(uint64(idx) & valueMask), true
}

// AsScriptImport returns the script-import hash and true iff idx is a ScriptImport reference.
func (idx PackageObjectIndex) AsScriptImport() (uint64, bool) {
	if idx.Kind() != KindScriptImport {
		return 0, false
	}
	return uint64(idx) & valueMask, true
}

// AsPackageImport returns the (package_slot, hash_slot) pair and true iff
// idx is a PackageImport reference.
func (idx PackageObjectIndex) AsPackageImport() (packageSlot, hashSlot uint32, ok bool) {
	if idx.Kind() != KindPackageImport {
		return 0, 0, false
	}
	v := uint64(idx) & valueMask
	return uint32(v >> 31), uint32(v & 0x7FFFFFFF), true
}

// PackageIndex is the legacy signed 32-bit reference (spec §3). Zero is
// null, positive n refers to export n-1, negative n refers to import -n-1.
type PackageIndex int32

// NullIndex is the canonical null legacy reference.
const NullIndex PackageIndex = 0

// NewExportIndex builds a PackageIndex referring to export exportSlot (0-based).
func NewExportIndex(exportSlot int) PackageIndex {
	return PackageIndex(exportSlot + 1)
}

// NewImportIndex builds a PackageIndex referring to import importSlot (0-based).
func NewImportIndex(importSlot int) PackageIndex {
	return PackageIndex(-(importSlot + 1))
}

// IsNull reports whether p is the null reference.
func (p PackageIndex) IsNull() bool { return p == NullIndex }

// IsExport reports whether p refers to an export, returning its 0-based slot.
func (p PackageIndex) IsExport() (int, bool) {
	if p > 0 {
		return int(p) - 1, true
	}
	return 0, false
}

// IsImport reports whether p refers to an import, returning its 0-based slot.
func (p PackageIndex) IsImport() (int, bool) {
	if p < 0 {
		return int(-p) - 1, true
	}
	return 0, false
}

// PackageID is the 64-bit identifier of a package derived from its
// lowercase path, with the top bit cleared per spec §4.3 / §8 scenario 4.
type PackageID uint64

// NewPackageID computes the PackageID for packagePath, matching
// "CityHash64(lowercase(package_path)) with top bit cleared".
func NewPackageID(packagePath string) PackageID {
	h := namehash.PathHash64(packagePath)
	return PackageID(h &^ (uint64(1) << 63))
}

// PublicExportHash is CityHash64 over a lowercase in-package export path
// or rendered name, used both as the zen Public-flagged export's stored
// hash and as a foreign PackageImport's hash-slot key (spec §3, §8).
type PublicExportHash uint64

// NewPublicExportHash computes the hash for a rendered export name/path.
func NewPublicExportHash(exportPathOrName string) PublicExportHash {
	return PublicExportHash(namehash.PathHash64(exportPathOrName))
}
