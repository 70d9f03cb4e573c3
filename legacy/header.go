package legacy

import (
	"bytes"
	"encoding/binary"

	"github.com/gbudweiser/zenlegacycodec/codecerr"
	"github.com/gbudweiser/zenlegacycodec/objidx"
)

// Magic and fixed version constants from spec §6 item 1.
const (
	Magic            uint32 = 0x9E2A83C1
	LegacyVersion    int32  = -8
	LegacyUE3Version int32  = 0
)

// exportRecordSize is the fixed on-disk width of one export table entry
// (spec §6 item 6 "export entries"): four i32 references (16) + object
// name/number (8) + flags u32 (4) + size i64 (8) + offset i64 (8) +
// forced-export i32 (4) + filter bits i32 (4) + inherited-instance i32 (4)
// + pkg flags u32 (4) + not-always-loaded i32 (4) + is-asset i32 (4) +
// generate-public-hash i32 (4) + five dependency i32 fields (20) = 92.
const exportRecordSize = 16 + 8 + 4 + 8 + 8 + 4 + 4 + 4 + 4 + 4 + 4 + 4 + 20

// dataResourceEntrySize is the fixed on-disk width of one data-resource
// block entry (spec §6 item 6 "data-resource block").
const dataResourceEntrySize = 4 + 8 + 8 + 8 + 8 + 4 + 4

// filterFlags packs NotForClient/NotForServer into the export record's
// single "filter bits" i32 field.
const (
	filterNotForClient = 1 << 0
	filterNotForServer = 1 << 1
)

// Serialize produces the legacy header bytes and the exports blob for pkg,
// implementing the two-pass strategy of spec §4.2 "Two-pass
// serialization": the header is built once with placeholder export
// offsets to learn its size, then built again with the real
// serial_offset/bulk_data_start values substituted in. exportBodies must
// have the same length and order as pkg.Exports; each body's length must
// equal the corresponding export's SerialSize.
func Serialize(pkg *Package, exportBodies [][]byte) (headerBytes []byte, exportsBlob []byte, err error) {
	if len(exportBodies) != len(pkg.Exports) {
		return nil, nil, codecerr.InvariantViolatedf("export body count %d does not match export count %d", len(exportBodies), len(pkg.Exports))
	}

	placeholderOffsets := make([]int64, len(pkg.Exports))
	firstPass := build(pkg, placeholderOffsets, 0, 0)
	headerSize := int32(len(firstPass))

	realOffsets := make([]int64, len(pkg.Exports))
	cursor := int64(headerSize)
	for i, e := range pkg.Exports {
		realOffsets[i] = cursor
		cursor += e.SerialSize
	}
	bulkDataStart := cursor

	secondPass := build(pkg, realOffsets, headerSize, bulkDataStart)

	blob := make([]byte, 0, cursor-int64(headerSize))
	for _, b := range exportBodies {
		blob = append(blob, b...)
	}

	return secondPass, blob, nil
}

// build performs one full deterministic write of the legacy header given
// the export serial offsets/header-size/bulk-data-start known so far
// (zero-valued on the first pass). Every section's byte width is
// independent of these values, so both passes produce a header of
// identical length.
func build(pkg *Package, serialOffsets []int64, totalHeaderSize int32, bulkDataStart int64) []byte {
	nameTableBytes := encodeNameTable(pkg.NameMap)
	importsBytes := encodeImports(pkg.Imports)
	exportsBytes := encodeExports(pkg.Exports, serialOffsets)
	dependsBytes := make([]byte, 4*len(pkg.Exports))
	assetRegistryBytes := make([]byte, 4)
	preloadBytes := encodePreloadArray(pkg.PreloadDependencies)
	dataResourceBytes := encodeDataResources(pkg.DataResources)

	var buf bytes.Buffer

	writeU32(&buf, Magic)
	ue4, ue5, licensee := pkg.FileVersionUE4, pkg.FileVersionUE5, pkg.LicenseeVersion
	if pkg.Unversioned {
		ue4, ue5, licensee = 0, 0, 0
	}
	writeI32(&buf, LegacyVersion)
	writeI32(&buf, LegacyUE3Version)
	writeI32(&buf, ue4)
	writeI32(&buf, ue5)
	writeI32(&buf, licensee)

	if pkg.Unversioned {
		writeI32(&buf, 0)
	} else {
		writeI32(&buf, int32(len(pkg.CustomVersions)))
		for _, cv := range pkg.CustomVersions {
			buf.Write(cv.Guid[:])
			writeI32(&buf, cv.Version)
		}
	}

	writeI32(&buf, totalHeaderSize)
	writeLengthPrefixedCString(&buf, pkg.FolderName)

	writeU32(&buf, pkg.PackageFlags)

	// Compute every absolute section offset before writing the summary,
	// since each section's size is already fully determined above.
	headerFixedPrefix := buf.Len()
	summarySize := summaryTailSize(pkg)
	nameOffset := int32(headerFixedPrefix + summarySize)
	importOffset := nameOffset + int32(len(nameTableBytes))
	exportOffset := importOffset + int32(len(importsBytes))
	dependsOffset := exportOffset + int32(len(exportsBytes))
	assetRegistryOffset := dependsOffset + int32(len(dependsBytes))
	preloadOffset := assetRegistryOffset + int32(len(assetRegistryBytes))
	dataResourceOffset := preloadOffset + int32(len(preloadBytes))

	writeI32(&buf, int32(len(pkg.NameMap)))
	writeI32(&buf, nameOffset)
	writeI32(&buf, 0) // soft-object-paths count
	writeI32(&buf, 0) // soft-object-paths offset
	writeI32(&buf, 0) // gatherable-text count
	writeI32(&buf, 0) // gatherable-text offset
	writeI32(&buf, int32(len(pkg.Exports)))
	writeI32(&buf, exportOffset)
	writeI32(&buf, int32(len(pkg.Imports)))
	writeI32(&buf, importOffset)
	writeI32(&buf, dependsOffset)
	writeI32(&buf, 0) // soft-package-refs count
	writeI32(&buf, 0) // soft-package-refs offset
	writeI32(&buf, 0) // searchable-names offset
	writeI32(&buf, 0) // thumbnail-table offset
	buf.Write(pkg.PackageGUID[:])
	writeI32(&buf, int32(len(pkg.Exports))) // generation record: export_count
	writeI32(&buf, int32(len(pkg.NameMap))) // generation record: name_count
	writeEngineVersion(&buf, pkg.EngineVersion)
	writeEngineVersion(&buf, pkg.CompatibleEngineVersion)
	writeI32(&buf, 0) // compression flags
	writeI32(&buf, 0) // compressed chunks count
	writeU32(&buf, 0) // package source
	writeI32(&buf, 0) // additional packages to cook count
	writeI32(&buf, 0) // asset-registry-data offset (dedicated field distinct from the zeroed block below)
	writeI64(&buf, bulkDataStart)
	writeI32(&buf, 0) // world-tile-info offset
	writeI32(&buf, 0) // chunk-id count
	writeI32(&buf, int32(len(pkg.PreloadDependencies)))
	writeI32(&buf, preloadOffset)
	writeI32(&buf, 0) // names-referenced-from-export-data count
	writeI64(&buf, -1) // payload-toc offset
	writeI32(&buf, dataResourceOffset)

	buf.Write(nameTableBytes)
	buf.Write(importsBytes)
	buf.Write(exportsBytes)
	buf.Write(dependsBytes)
	buf.Write(assetRegistryBytes)
	buf.Write(preloadBytes)
	buf.Write(dataResourceBytes)

	return buf.Bytes()
}

// summaryTailSize returns the byte size of the summary fields following
// the folder-name/package-flags prefix (i.e. everything from the name
// count field through the data-resource offset field), which is fixed
// given pkg's engine-version branch string lengths.
func summaryTailSize(pkg *Package) int {
	fixed := 4*2 + 4*2 + 4*2 + 4*2 + 4*2 + 4 + 4*2 + 4 + 4 +
		16 + 4 + 4 +
		4 + 4 + 4 + 4 + 4 +
		8 +
		4 + 4 +
		4 + 4 +
		4 +
		8 +
		4
	return fixed + engineVersionSize(pkg.EngineVersion) + engineVersionSize(pkg.CompatibleEngineVersion)
}

func engineVersionSize(v EngineVersion) int {
	return 2 + 2 + 2 + 4 + 4 + len(v.Branch) + 1
}

func writeEngineVersion(buf *bytes.Buffer, v EngineVersion) {
	writeU16(buf, v.Major)
	writeU16(buf, v.Minor)
	writeU16(buf, v.Patch)
	writeI32(buf, v.Changelist)
	writeLengthPrefixedCString(buf, v.Branch)
}

func readEngineVersion(data []byte, pos int) (EngineVersion, int, error) {
	if pos+10 > len(data) {
		return EngineVersion{}, 0, codecerr.Malformedf("legacy.engineVersion", int64(pos), "truncated")
	}
	v := EngineVersion{
		Major:      binary.LittleEndian.Uint16(data[pos : pos+2]),
		Minor:      binary.LittleEndian.Uint16(data[pos+2 : pos+4]),
		Patch:      binary.LittleEndian.Uint16(data[pos+4 : pos+6]),
		Changelist: int32(binary.LittleEndian.Uint32(data[pos+6 : pos+10])),
	}
	branch, n, err := readLengthPrefixedCString(data[pos+10:])
	if err != nil {
		return EngineVersion{}, 0, err
	}
	v.Branch = branch
	return v, 10 + n, nil
}

func encodeImports(imports []Import) []byte {
	var buf bytes.Buffer
	for _, im := range imports {
		_ = im.ClassPackage.WriteTo(&buf)
		_ = im.ClassName.WriteTo(&buf)
		writeI32(&buf, int32(im.Outer))
		_ = im.ObjectName.WriteTo(&buf)
		if im.PackageName != nil {
			_ = im.PackageName.WriteTo(&buf)
		}
		if im.OptionalPresent {
			if im.Optional {
				writeI32(&buf, 1)
			} else {
				writeI32(&buf, 0)
			}
		}
	}
	return buf.Bytes()
}

func encodeExports(exports []Export, serialOffsets []int64) []byte {
	var buf bytes.Buffer
	for i, e := range exports {
		writeI32(&buf, int32(e.Class))
		writeI32(&buf, int32(e.Super))
		writeI32(&buf, int32(e.Template))
		writeI32(&buf, int32(e.Outer))
		_ = e.ObjectName.WriteTo(&buf)
		writeU32(&buf, e.ObjectFlags)
		writeI64(&buf, e.SerialSize)
		writeI64(&buf, serialOffsets[i])
		writeI32(&buf, 0) // forced-export
		var filter int32
		if e.NotForClient {
			filter |= filterNotForClient
		}
		if e.NotForServer {
			filter |= filterNotForServer
		}
		writeI32(&buf, filter)
		writeI32(&buf, 0) // inherited-instance
		writeU32(&buf, 0) // pkg flags
		writeI32(&buf, 0) // not-always-loaded
		writeBoolI32(&buf, e.IsAsset)
		writeBoolI32(&buf, e.GeneratePublicHash)
		writeI32(&buf, e.FirstExportDependencyIndex)
		writeI32(&buf, e.ArcCounts[SerializeBeforeSerialize])
		writeI32(&buf, e.ArcCounts[CreateBeforeSerialize])
		writeI32(&buf, e.ArcCounts[SerializeBeforeCreate])
		writeI32(&buf, e.ArcCounts[CreateBeforeCreate])
	}
	return buf.Bytes()
}

func encodePreloadArray(deps []objidx.PackageIndex) []byte {
	buf := make([]byte, 4*len(deps))
	for i, d := range deps {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], uint32(int32(d)))
	}
	return buf
}

func encodeDataResources(entries []DataResourceEntry) []byte {
	var buf bytes.Buffer
	writeU32(&buf, 0) // data-resource block version
	writeI32(&buf, int32(len(entries)))
	for _, e := range entries {
		writeU32(&buf, e.Flags)
		writeI64(&buf, e.SerialOffset)
		writeI64(&buf, e.DuplicateSerialOffset)
		writeI64(&buf, e.SerialSize)
		writeI64(&buf, e.RawSize)
		writeI32(&buf, e.OuterIndex)
		writeU32(&buf, e.LegacyBulkDataFlags)
	}
	return buf.Bytes()
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeI32(buf *bytes.Buffer, v int32) {
	writeU32(buf, uint32(v))
}

func writeI64(buf *bytes.Buffer, v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

func writeBoolI32(buf *bytes.Buffer, v bool) {
	if v {
		writeI32(buf, 1)
	} else {
		writeI32(buf, 0)
	}
}
