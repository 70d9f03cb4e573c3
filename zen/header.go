package zen

import (
	"bytes"
	"encoding/binary"

	"github.com/gbudweiser/zenlegacycodec/codecerr"
	"github.com/gbudweiser/zenlegacycodec/mappedname"
	"github.com/gbudweiser/zenlegacycodec/namebatch"
	"github.com/gbudweiser/zenlegacycodec/objidx"
)

// summaryFieldsSize is the fixed byte width of the summary fields that
// precede the first section (spec §6 "the section-offset fields in the
// summary are the sole contract"): PackageName MappedName (8) +
// PackageFlags u32 (4) + CookedHeaderSize u32 (4) + nine i32 section
// offsets (36).
const summaryFieldsSize = 8 + 4 + 4 + 9*4

const bulkDataEntrySize = 8 + 8 + 8 + 4 + 4 // = 32, see BulkDataEntry doc

// Serialize produces the zen header+body byte stream for pkg, writing
// sections in the fixed order spec §6 prescribes: summary -> name batch
// -> bulk-data map -> imported-public-export-hashes -> import map ->
// export map -> export-bundle entries -> dependency-bundle headers ->
// dependency-bundle entries -> imported-package-names -> opaque body.
//
// Every section's size is known before any byte is written (no field
// embeds another section's yet-to-be-computed value), so unlike the
// legacy writer this needs only a single forward pass; the summary's
// offset fields are nonetheless filled in "back-patched" conceptually,
// matching spec §4.3's "single-pass serialization with a back-patched
// summary": they are computed from section sizes before the summary
// bytes are emitted, not discovered by a second full write.
func Serialize(pkg *Package, lossyNames bool) []byte {
	opts := namebatch.EncodeOptions{Lossy: lossyNames}
	nameBatch := namebatch.Encode(pkg.NameMap, opts)
	bulkDataBytes := encodeBulkDataMap(pkg.BulkDataMap)
	hashesBytes := encodeU64Array(pkg.ImportedPublicExportHashes)
	importMapBytes := encodeU64Array(packageObjectIndexArray(pkg.ImportMap))
	exportMapBytes := encodeExportMap(pkg.ExportMap)
	bundleEntriesBytes := encodeExportBundleEntries(pkg.ExportBundleEntries)
	depHeadersBytes := encodeDependencyBundleHeaders(pkg.DependencyBundleHeaders)
	depEntriesBytes := encodeU64Array(packageObjectIndexArray(pkg.DependencyBundleEntries))
	importedPackageNamesBatch := namebatch.Encode(pkg.ImportedPackageNames, opts)
	importedPackageNumbers := encodeI32Array(pkg.ImportedPackageNameNumbers)

	nameOffset := int32(summaryFieldsSize)
	bulkDataOffset := nameOffset + int32(len(nameBatch))
	hashesOffset := bulkDataOffset + 8 + int32(len(bulkDataBytes))
	importMapOffset := hashesOffset + int32(len(hashesBytes))
	exportMapOffset := importMapOffset + int32(len(importMapBytes))
	bundleEntriesOffset := exportMapOffset + int32(len(exportMapBytes))
	depHeadersOffset := bundleEntriesOffset + int32(len(bundleEntriesBytes))
	depEntriesOffset := depHeadersOffset + int32(len(depHeadersBytes))
	importedPackageNamesOffset := depEntriesOffset + int32(len(depEntriesBytes))

	var buf bytes.Buffer
	_ = pkg.PackageName.WriteTo(&buf)
	writeU32(&buf, pkg.PackageFlags)
	writeU32(&buf, pkg.CookedHeaderSize)
	writeI32(&buf, nameOffset)
	writeI32(&buf, bulkDataOffset)
	writeI32(&buf, hashesOffset)
	writeI32(&buf, importMapOffset)
	writeI32(&buf, exportMapOffset)
	writeI32(&buf, bundleEntriesOffset)
	writeI32(&buf, depHeadersOffset)
	writeI32(&buf, depEntriesOffset)
	writeI32(&buf, importedPackageNamesOffset)

	buf.Write(nameBatch)
	writeI64(&buf, int64(len(bulkDataBytes)))
	buf.Write(bulkDataBytes)
	buf.Write(hashesBytes)
	buf.Write(importMapBytes)
	buf.Write(exportMapBytes)
	buf.Write(bundleEntriesBytes)
	buf.Write(depHeadersBytes)
	buf.Write(depEntriesBytes)
	buf.Write(importedPackageNamesBatch)
	buf.Write(importedPackageNumbers)

	buf.Write(pkg.Body)
	return buf.Bytes()
}

func packageObjectIndexArray(in []objidx.PackageObjectIndex) []uint64 {
	out := make([]uint64, len(in))
	for i, v := range in {
		out[i] = uint64(v)
	}
	return out
}

func encodeBulkDataMap(entries []BulkDataEntry) []byte {
	buf := make([]byte, bulkDataEntrySize*len(entries))
	for i, e := range entries {
		o := i * bulkDataEntrySize
		binary.LittleEndian.PutUint64(buf[o:o+8], uint64(e.SerialOffset))
		binary.LittleEndian.PutUint64(buf[o+8:o+16], uint64(e.SerialSize))
		binary.LittleEndian.PutUint64(buf[o+16:o+24], uint64(e.RawSize))
		binary.LittleEndian.PutUint32(buf[o+24:o+28], e.LegacyBulkDataFlags)
		binary.LittleEndian.PutUint32(buf[o+28:o+32], e.Flags)
	}
	return buf
}

func encodeU64Array(in []uint64) []byte {
	buf := make([]byte, 8*len(in))
	for i, v := range in {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], v)
	}
	return buf
}

func encodeI32Array(in []int32) []byte {
	buf := make([]byte, 4*len(in))
	for i, v := range in {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], uint32(v))
	}
	return buf
}

const exportMapEntrySize = 8 + 8 + 8 + 4 + 4 + 8 + 8 + 8 + 8 + 8

func encodeExportMap(exports []Export) []byte {
	var buf bytes.Buffer
	for _, e := range exports {
		writeI64(&buf, e.CookedSerialOffset)
		writeI64(&buf, e.CookedSerialSize)
		_ = e.ObjectName.WriteTo(&buf)
		writeU32(&buf, e.ObjectFlags)
		writeI32(&buf, int32(e.Filter))
		writeU64(&buf, uint64(e.Class))
		writeU64(&buf, uint64(e.Super))
		writeU64(&buf, uint64(e.Template))
		writeU64(&buf, uint64(e.Outer))
		writeU64(&buf, e.PublicExportHash)
	}
	return buf.Bytes()
}

func encodeExportBundleEntries(entries []ExportBundleEntry) []byte {
	buf := make([]byte, 8*len(entries))
	for i, e := range entries {
		o := i * 8
		binary.LittleEndian.PutUint32(buf[o:o+4], e.LocalExportIndex)
		binary.LittleEndian.PutUint32(buf[o+4:o+8], uint32(e.Command))
	}
	return buf
}

const dependencyBundleHeaderSize = 4*int(depArcKindCount) + 4

func encodeDependencyBundleHeaders(headers []DependencyBundleHeader) []byte {
	var buf bytes.Buffer
	for _, h := range headers {
		for _, c := range h.Counts {
			writeI32(&buf, c)
		}
		writeI32(&buf, h.FirstEntryIndex)
	}
	return buf.Bytes()
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeI32(buf *bytes.Buffer, v int32) { writeU32(buf, uint32(v)) }

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeI64(buf *bytes.Buffer, v int64) { writeU64(buf, uint64(v)) }

// Parse decodes a zen header+body byte stream into a Package. The wire
// format carries no per-table counts for the fixed-size tables, so Parse
// recovers each one (ImportMap, ExportMap, DependencyBundleEntries and the
// rest) by dividing the gap between consecutive section offsets by the
// table's entry size.
func Parse(data []byte) (*Package, error) {
	if len(data) < summaryFieldsSize {
		return nil, codecerr.Malformedf("zen.summary", 0, "truncated summary")
	}
	pkg := &Package{}
	pos := 0
	pn, err := mappedname.ReadFrom(bytes.NewReader(data[pos : pos+8]))
	if err != nil {
		return nil, err
	}
	pkg.PackageName = pn
	pos += 8
	pkg.PackageFlags = binary.LittleEndian.Uint32(data[pos : pos+4])
	pos += 4
	pkg.CookedHeaderSize = binary.LittleEndian.Uint32(data[pos : pos+4])
	pos += 4

	nameOffset := readI32(data, pos)
	pos += 4
	bulkDataOffset := readI32(data, pos)
	pos += 4
	hashesOffset := readI32(data, pos)
	pos += 4
	importMapOffset := readI32(data, pos)
	pos += 4
	exportMapOffset := readI32(data, pos)
	pos += 4
	bundleEntriesOffset := readI32(data, pos)
	pos += 4
	depHeadersOffset := readI32(data, pos)
	pos += 4
	depEntriesOffset := readI32(data, pos)
	pos += 4
	importedPackageNamesOffset := readI32(data, pos)
	pos += 4

	entries, err := namebatch.Decode(data[nameOffset:bulkDataOffset])
	if err != nil {
		return nil, err
	}
	pkg.NameMap = entryValues(entries)

	if int(bulkDataOffset)+8 > len(data) {
		return nil, codecerr.Malformedf("zen.bulkDataMap", int64(bulkDataOffset), "truncated length prefix")
	}
	bulkLen := int64(binary.LittleEndian.Uint64(data[bulkDataOffset : bulkDataOffset+8]))
	bulkStart := int(bulkDataOffset) + 8
	pkg.BulkDataMap = decodeBulkDataMap(data[bulkStart : bulkStart+int(bulkLen)])

	hashesCount := (int(importMapOffset) - int(hashesOffset)) / 8
	pkg.ImportedPublicExportHashes = decodeU64Array(data[hashesOffset:importMapOffset], hashesCount)

	importCount := (int(exportMapOffset) - int(importMapOffset)) / 8
	rawImports := decodeU64Array(data[importMapOffset:exportMapOffset], importCount)
	pkg.ImportMap = make([]objidx.PackageObjectIndex, importCount)
	for i, v := range rawImports {
		pkg.ImportMap[i] = objidx.PackageObjectIndex(v)
	}

	exportCount := (int(bundleEntriesOffset) - int(exportMapOffset)) / exportMapEntrySize
	exports, err := decodeExportMap(data[exportMapOffset:bundleEntriesOffset], exportCount)
	if err != nil {
		return nil, err
	}
	pkg.ExportMap = exports

	bundleCount := (int(depHeadersOffset) - int(bundleEntriesOffset)) / 8
	pkg.ExportBundleEntries = decodeExportBundleEntries(data[bundleEntriesOffset:depHeadersOffset], bundleCount)

	headerCount := (int(depEntriesOffset) - int(depHeadersOffset)) / dependencyBundleHeaderSize
	pkg.DependencyBundleHeaders = decodeDependencyBundleHeaders(data[depHeadersOffset:depEntriesOffset], headerCount)

	entryCount := (int(importedPackageNamesOffset) - int(depEntriesOffset)) / 8
	rawDeps := decodeU64Array(data[depEntriesOffset:importedPackageNamesOffset], entryCount)
	pkg.DependencyBundleEntries = make([]objidx.PackageObjectIndex, entryCount)
	for i, v := range rawDeps {
		pkg.DependencyBundleEntries[i] = objidx.PackageObjectIndex(v)
	}

	importedNamesEntries, n, err := namebatch.DecodeWithLength(data[importedPackageNamesOffset:])
	if err != nil {
		return nil, err
	}
	pkg.ImportedPackageNames = entryValues(importedNamesEntries)
	numbersStart := int(importedPackageNamesOffset) + n
	numberCount := len(pkg.ImportedPackageNames)
	bodyStart := numbersStart + numberCount*4
	if bodyStart > len(data) {
		return nil, codecerr.Malformedf("zen.importedPackageNumbers", int64(numbersStart), "truncated suffix array")
	}
	pkg.ImportedPackageNameNumbers = make([]int32, numberCount)
	for i := 0; i < numberCount; i++ {
		pkg.ImportedPackageNameNumbers[i] = readI32(data, numbersStart+i*4)
	}

	// bodyStart is the physical end of the section list (spec §6's fixed
	// summary->...->imported-package-names ordering); pkg.CookedHeaderSize
	// is carried-through legacy-header-size metadata (spec §4.3) and has
	// no relationship to this zen container's own physical layout.
	pkg.Body = data[bodyStart:]
	return pkg, nil
}

func decodeBulkDataMap(data []byte) []BulkDataEntry {
	count := len(data) / bulkDataEntrySize
	out := make([]BulkDataEntry, count)
	for i := 0; i < count; i++ {
		o := i * bulkDataEntrySize
		out[i] = BulkDataEntry{
			SerialOffset:        int64(binary.LittleEndian.Uint64(data[o : o+8])),
			SerialSize:          int64(binary.LittleEndian.Uint64(data[o+8 : o+16])),
			RawSize:             int64(binary.LittleEndian.Uint64(data[o+16 : o+24])),
			LegacyBulkDataFlags: binary.LittleEndian.Uint32(data[o+24 : o+28]),
			Flags:               binary.LittleEndian.Uint32(data[o+28 : o+32]),
		}
	}
	return out
}

func decodeU64Array(data []byte, count int) []uint64 {
	out := make([]uint64, count)
	for i := 0; i < count; i++ {
		out[i] = binary.LittleEndian.Uint64(data[i*8 : i*8+8])
	}
	return out
}

func decodeExportMap(data []byte, count int) ([]Export, error) {
	out := make([]Export, count)
	for i := 0; i < count; i++ {
		o := i * exportMapEntrySize
		if o+exportMapEntrySize > len(data) {
			return nil, codecerr.Malformedf("zen.exportMap", int64(o), "truncated export entry %d", i)
		}
		rec := data[o : o+exportMapEntrySize]
		out[i] = Export{
			CookedSerialOffset: int64(binary.LittleEndian.Uint64(rec[0:8])),
			CookedSerialSize:   int64(binary.LittleEndian.Uint64(rec[8:16])),
			ObjectName: mappedname.MappedName{
				Index:  binary.LittleEndian.Uint32(rec[16:20]),
				Number: binary.LittleEndian.Uint32(rec[20:24]),
			},
			ObjectFlags:      binary.LittleEndian.Uint32(rec[24:28]),
			Filter:           FilterFlag(int32(binary.LittleEndian.Uint32(rec[28:32]))),
			Class:            objidx.PackageObjectIndex(binary.LittleEndian.Uint64(rec[32:40])),
			Super:            objidx.PackageObjectIndex(binary.LittleEndian.Uint64(rec[40:48])),
			Template:         objidx.PackageObjectIndex(binary.LittleEndian.Uint64(rec[48:56])),
			Outer:            objidx.PackageObjectIndex(binary.LittleEndian.Uint64(rec[56:64])),
			PublicExportHash: binary.LittleEndian.Uint64(rec[64:72]),
		}
	}
	return out, nil
}

func decodeExportBundleEntries(data []byte, count int) []ExportBundleEntry {
	out := make([]ExportBundleEntry, count)
	for i := 0; i < count; i++ {
		o := i * 8
		out[i] = ExportBundleEntry{
			LocalExportIndex: binary.LittleEndian.Uint32(data[o : o+4]),
			Command:          BundleCommand(binary.LittleEndian.Uint32(data[o+4 : o+8])),
		}
	}
	return out
}

func decodeDependencyBundleHeaders(data []byte, count int) []DependencyBundleHeader {
	out := make([]DependencyBundleHeader, count)
	for i := 0; i < count; i++ {
		o := i * dependencyBundleHeaderSize
		var h DependencyBundleHeader
		for k := 0; k < int(depArcKindCount); k++ {
			h.Counts[k] = readI32(data, o+k*4)
		}
		h.FirstEntryIndex = readI32(data, o+4*int(depArcKindCount))
		out[i] = h
	}
	return out
}

func readI32(data []byte, pos int) int32 {
	return int32(binary.LittleEndian.Uint32(data[pos : pos+4]))
}

func entryValues(entries []namebatch.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}
