// Package legacy implements the legacy header+exports package format (spec
// §3, §6): the data model, the per-name table codec used by the legacy
// header (distinct from the shared namebatch codec the zen side uses),
// and the two-pass header serializer/reader.
//
// This generalizes the teacher's uecastoc.UAssetResource/ExportObject
// (GregorBudweiser-UEcastoc/uasset.go), which parsed only the subset of
// fields one particular mod tool cared about, into the full header
// described by spec §6.
package legacy

import (
	"encoding/json"

	"github.com/gbudweiser/zenlegacycodec/mappedname"
	"github.com/gbudweiser/zenlegacycodec/objidx"
)

// ArcKind indexes the four preload-arc slots in legacy emission order:
// SerializeBeforeSerialize, CreateBeforeSerialize, SerializeBeforeCreate,
// CreateBeforeCreate (spec §3 invariant on preload-dependency arc order).
type ArcKind int

const (
	SerializeBeforeSerialize ArcKind = iota
	CreateBeforeSerialize
	SerializeBeforeCreate
	CreateBeforeCreate
	arcKindCount
)

// CustomVersion is one entry of the legacy header's custom-version vector
// (spec §6 item 2).
type CustomVersion struct {
	Guid    GUID
	Version int32
}

// EngineVersion is the legacy header's packed engine-version record (spec
// §6 item 5).
type EngineVersion struct {
	Major, Minor, Patch uint16
	Changelist          int32
	Branch              string
}

// Export is one legacy export table entry (spec §3 "Each legacy export").
type Export struct {
	Class, Super, Template, Outer objidx.PackageIndex
	ObjectName                    mappedname.MappedName
	ObjectFlags                   uint32
	SerialSize                    int64
	SerialOffset                  int64
	NotForClient                  bool
	NotForServer                  bool
	IsAsset                       bool
	GeneratePublicHash            bool

	// ArcCounts[k] is the number of preload dependency slots of ArcKind k
	// starting at FirstExportDependencyIndex (spec §3, §4.2 dependency
	// translation).
	ArcCounts                  [arcKindCount]int32
	FirstExportDependencyIndex int32
}

// Import is one legacy import table entry (spec §3 "Each legacy import").
type Import struct {
	ClassPackage mappedname.MappedName
	ClassName    mappedname.MappedName
	Outer        objidx.PackageIndex
	ObjectName   mappedname.MappedName
	// PackageName is the optional explicit source-package name field,
	// present "when not filter-editor-only" (spec §6 item 6). Nil omits it.
	PackageName *mappedname.MappedName
	// Optional is the trailing boolean flag (spec §6 item 6, "optional i32
	// as boolean"). Present iff OptionalPresent.
	Optional        bool
	OptionalPresent bool
}

// DataResourceEntry is one bulk-data resource table entry (spec §3, §6
// item 6 "data-resource block").
type DataResourceEntry struct {
	Flags                 uint32
	SerialOffset           int64
	DuplicateSerialOffset  int64
	SerialSize             int64
	RawSize                int64
	OuterIndex             int32
	LegacyBulkDataFlags    uint32
}

// Package is the fully in-memory legacy package (spec §3 "Legacy
// package"). It excludes the exports blob bytes, which travel alongside
// as a plain []byte per §1 ("export bodies are treated as opaque byte
// ranges").
type Package struct {
	Name         string
	PackageFlags uint32

	// Unversioned, when true, zeroes the version fields on output (spec §6
	// item 1 "all set to zero when the unversioned flag is on").
	Unversioned             bool
	FileVersionUE4          int32
	FileVersionUE5          int32
	LicenseeVersion         int32
	CustomVersions          []CustomVersion
	EngineVersion           EngineVersion
	CompatibleEngineVersion EngineVersion

	FolderName string
	PackageGUID GUID

	NameMap []string
	Imports []Import
	Exports []Export

	// PreloadDependencies is the flat four-arc-ordered array every
	// export's FirstExportDependencyIndex slices into (spec §3, §6).
	PreloadDependencies []objidx.PackageIndex

	DataResources []DataResourceEntry

	// HasFailedImportMapEntries is set by the converter when any import
	// resolution fell back to a placeholder or synthetic name (spec §7
	// UnresolvedReference recovery policy). It is not part of the header
	// wire format: Serialize does not write it and Parse leaves it false.
	HasFailedImportMapEntries bool
}

// NameIndex returns the name-map slot for s, appending it if absent. Used
// by converters building a Package incrementally.
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

// DebugDump renders the export and import tables as indented JSON, for use
// in tests and debug-level log lines. Mirrors the teacher's
// json.MarshalIndent dump of ParseUexp's export list, extended to cover
// imports since this package carries both tables together.
func (p *Package) DebugDump() ([]byte, error) {
	return json.MarshalIndent(struct {
		Name    string
		Imports []Import
		Exports []Export
	}{p.Name, p.Imports, p.Exports}, "", "  ")
}
