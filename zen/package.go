// Package zen implements the content-addressed zen package container (spec
// §3 "Zen package", §6 "Zen header"): the data model and the single-pass
// header serializer/reader.
package zen

import (
	"github.com/gbudweiser/zenlegacycodec/mappedname"
	"github.com/gbudweiser/zenlegacycodec/objidx"
)

// FilterFlag mirrors the legacy NotForClient/NotForServer bits as a
// tri-state enum (spec §3 "Each zen export").
type FilterFlag int

const (
	FilterNone FilterFlag = iota
	FilterNotForClient
	FilterNotForServer
)

// BulkDataEntry is one 32-byte bulk-data map entry (spec §6 "bulk-data
// map (i64 byte length followed by 32-byte entries)"). It mirrors the
// legacy data-resource entry's serial_offset/serial_size/raw_size and
// carries the same legacy_bulk_data_flags selector bulkdata.MethodFromFlags
// decodes, plus the export filter/misc Flags field.
type BulkDataEntry struct {
	SerialOffset        int64
	SerialSize          int64
	RawSize             int64
	LegacyBulkDataFlags uint32
	Flags               uint32
}

// Export is one zen export map entry (spec §3 "Each zen export"). Offsets
// are relative to CookedHeaderSize.
type Export struct {
	CookedSerialOffset int64
	CookedSerialSize   int64
	ObjectName         mappedname.MappedName
	ObjectFlags        uint32
	Filter             FilterFlag
	Class              objidx.PackageObjectIndex
	Super              objidx.PackageObjectIndex
	Template           objidx.PackageObjectIndex
	Outer              objidx.PackageObjectIndex
	// PublicExportHash is zero iff the export is not Public (spec §3 invariant).
	PublicExportHash uint64
}

// BundleCommand discriminates an export-bundle entry's operation (spec
// GLOSSARY "Export bundle").
type BundleCommand int

const (
	CommandCreate BundleCommand = iota
	CommandSerialize
)

// ExportBundleEntry is one (export, command) pair in the load-order bundle.
type ExportBundleEntry struct {
	LocalExportIndex uint32
	Command          BundleCommand
}

// DepArcKind indexes the four dependency-bundle arc slots in zen emission
// order: CreateBeforeCreate, SerializeBeforeCreate, CreateBeforeSerialize,
// SerializeBeforeSerialize (spec §3 invariant on arc order).
type DepArcKind int

const (
	CreateBeforeCreate DepArcKind = iota
	SerializeBeforeCreate
	CreateBeforeSerialize
	SerializeBeforeSerialize
	depArcKindCount
)

// DependencyBundleHeader is one per-export record of arc counts plus the
// base index into the flat DependencyBundleEntries array (spec GLOSSARY
// "Dependency bundle").
type DependencyBundleHeader struct {
	Counts          [depArcKindCount]int32
	FirstEntryIndex int32
}

// Package is the fully in-memory zen package (spec §3 "Zen package").
type Package struct {
	PackageName      mappedname.MappedName
	PackageFlags     uint32
	CookedHeaderSize uint32

	NameMap []string

	BulkDataMap []BulkDataEntry

	ImportedPublicExportHashes []uint64
	ImportMap                  []objidx.PackageObjectIndex

	ExportMap []Export

	ExportBundleEntries []ExportBundleEntry

	DependencyBundleHeaders []DependencyBundleHeader
	DependencyBundleEntries []objidx.PackageObjectIndex

	// ImportedPackageIds parallels ImportedPackageNames/ImportedPackageNameNumbers:
	// slot i is the foreign package id + name referenced by
	// PackageImport(i, _) entries in ImportMap.
	ImportedPackageIds         []objidx.PackageID
	ImportedPackageNames       []string
	ImportedPackageNameNumbers []int32

	// Body is the opaque post-header payload (export serialized bytes);
	// the core does not interpret its contents (spec §1).
	Body []byte
}

// NameIndex returns the name-map slot for s, appending it if absent.
func (p *Package) NameIndex(s string) uint32 {
	for i, n := range p.NameMap {
		if n == s {
			return uint32(i)
		}
	}
	p.NameMap = append(p.NameMap, s)
	return uint32(len(p.NameMap) - 1)
}

// MappedNameFor builds a mappedname.MappedName for (base, number),
// interning base into the name map.
func (p *Package) MappedNameFor(base string, number uint32) mappedname.MappedName {
	return mappedname.MappedName{Index: p.NameIndex(base), Number: number}
}
