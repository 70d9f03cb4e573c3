package legacy

import (
	"encoding/binary"

	"github.com/gbudweiser/zenlegacycodec/codecerr"
	"github.com/gbudweiser/zenlegacycodec/mappedname"
	"github.com/gbudweiser/zenlegacycodec/objidx"
)

// Parse decodes a legacy header byte stream into a Package. It does not
// read the exports blob; callers slice exports out of the companion
// exports file themselves using the parsed Export.SerialOffset/SerialSize
// (spec §1 "file I/O... out of scope").
func Parse(data []byte) (*Package, error) {
	pos := 0
	magic, pos, err := readU32At(data, pos, "legacy.magic")
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, codecerr.Malformedf("legacy.magic", 0, "bad magic 0x%X", magic)
	}

	var legacyVersion, legacyUE3Version, ue4, ue5, licensee int32
	legacyVersion, pos, err = readI32At(data, pos, "legacy.version")
	if err != nil {
		return nil, err
	}
	_ = legacyVersion
	legacyUE3Version, pos, err = readI32At(data, pos, "legacy.ue3version")
	if err != nil {
		return nil, err
	}
	_ = legacyUE3Version
	ue4, pos, err = readI32At(data, pos, "legacy.ue4version")
	if err != nil {
		return nil, err
	}
	ue5, pos, err = readI32At(data, pos, "legacy.ue5version")
	if err != nil {
		return nil, err
	}
	licensee, pos, err = readI32At(data, pos, "legacy.licenseeVersion")
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		FileVersionUE4:  ue4,
		FileVersionUE5:  ue5,
		LicenseeVersion: licensee,
	}
	pkg.Unversioned = ue4 == 0 && ue5 == 0 && licensee == 0

	var customCount int32
	customCount, pos, err = readI32At(data, pos, "legacy.customVersionCount")
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < customCount; i++ {
		if pos+20 > len(data) {
			return nil, codecerr.Malformedf("legacy.customVersions", int64(pos), "truncated custom version entry")
		}
		cv := CustomVersion{}
		copy(cv.Guid[:], data[pos:pos+16])
		cv.Version = int32(binary.LittleEndian.Uint32(data[pos+16 : pos+20]))
		pkg.CustomVersions = append(pkg.CustomVersions, cv)
		pos += 20
	}

	_, pos, err = readI32At(data, pos, "legacy.totalHeaderSize")
	if err != nil {
		return nil, err
	}
	pkg.FolderName, pos, err = readCStringAt(data, pos, "legacy.folderName")
	if err != nil {
		return nil, err
	}

	pkg.PackageFlags, pos, err = readU32At(data, pos, "legacy.packageFlags")
	if err != nil {
		return nil, err
	}

	nameCount, pos, err := readI32At(data, pos, "legacy.nameCount")
	if err != nil {
		return nil, err
	}
	nameOffset, pos, err := readI32At(data, pos, "legacy.nameOffset")
	if err != nil {
		return nil, err
	}
	pos += 16 // soft-object-paths count+offset, gatherable-text count+offset

	exportCount, pos, err := readI32At(data, pos, "legacy.exportCount")
	if err != nil {
		return nil, err
	}
	exportOffset, pos, err := readI32At(data, pos, "legacy.exportOffset")
	if err != nil {
		return nil, err
	}
	importCount, pos, err := readI32At(data, pos, "legacy.importCount")
	if err != nil {
		return nil, err
	}
	importOffset, pos, err := readI32At(data, pos, "legacy.importOffset")
	if err != nil {
		return nil, err
	}
	_, pos, err = readI32At(data, pos, "legacy.dependsOffset") // depends offset, unused on read
	if err != nil {
		return nil, err
	}
	pos += 8 // soft-package-refs count+offset
	pos += 4 // searchable-names offset
	pos += 4 // thumbnail-table offset

	if pos+16 > len(data) {
		return nil, codecerr.Malformedf("legacy.packageGuid", int64(pos), "truncated")
	}
	copy(pkg.PackageGUID[:], data[pos:pos+16])
	pos += 16
	pos += 8 // generation record (export_count, name_count) — redundant with summary fields

	pkg.EngineVersion, pos, err = readEngineVersion(data, pos)
	if err != nil {
		return nil, err
	}
	pkg.CompatibleEngineVersion, pos, err = readEngineVersion(data, pos)
	if err != nil {
		return nil, err
	}

	pos += 4 // compression flags
	pos += 4 // compressed chunks count
	pos += 4 // package source
	pos += 4 // additional packages to cook count
	pos += 4 // asset-registry-data offset

	_, pos, err = readI64At(data, pos, "legacy.bulkDataStart")
	if err != nil {
		return nil, err
	}
	pos += 4 // world-tile-info offset
	pos += 4 // chunk-id count

	preloadCount, pos, err := readI32At(data, pos, "legacy.preloadCount")
	if err != nil {
		return nil, err
	}
	preloadOffset, pos, err := readI32At(data, pos, "legacy.preloadOffset")
	if err != nil {
		return nil, err
	}
	pos += 4 // names-referenced-from-export-data count
	pos += 8 // payload-toc offset
	_, pos, err = readI32At(data, pos, "legacy.dataResourceOffset")
	if err != nil {
		return nil, err
	}

	names, _, err := decodeNameTable(sliceFrom(data, int(nameOffset)), int(nameCount))
	if err != nil {
		return nil, err
	}
	pkg.NameMap = names

	imports, err := decodeImports(sliceFrom(data, int(importOffset)), int(importCount))
	if err != nil {
		return nil, err
	}
	pkg.Imports = imports

	exports, err := decodeExports(sliceFrom(data, int(exportOffset)), int(exportCount))
	if err != nil {
		return nil, err
	}
	pkg.Exports = exports

	preload, err := decodePreloadArray(sliceFrom(data, int(preloadOffset)), int(preloadCount))
	if err != nil {
		return nil, err
	}
	pkg.PreloadDependencies = preload

	return pkg, nil
}

func sliceFrom(data []byte, offset int) []byte {
	if offset < 0 || offset > len(data) {
		return nil
	}
	return data[offset:]
}

// decodeImports reads the fixed (class-package, class-name, outer,
// object-name) quadruple of every import. The trailing optional
// package-name MappedName and optional boolean flag (spec §6 item 6) are
// conditioned on the filter-editor-only bit of the source asset, which
// this core does not model; Parse always treats them as absent, matching
// how Serialize emits them by default (Import.PackageName == nil,
// Import.OptionalPresent == false).
func decodeImports(data []byte, count int) ([]Import, error) {
	imports := make([]Import, 0, count)
	pos := 0
	for i := 0; i < count; i++ {
		cp, err := mappedname.ReadFrom(bytesReaderAt(data, &pos))
		if err != nil {
			return nil, err
		}
		cn, err := mappedname.ReadFrom(bytesReaderAt(data, &pos))
		if err != nil {
			return nil, err
		}
		outer, pos2, err := readI32At(data, pos, "legacy.import.outer")
		if err != nil {
			return nil, err
		}
		pos = pos2
		on, err := mappedname.ReadFrom(bytesReaderAt(data, &pos))
		if err != nil {
			return nil, err
		}
		imports = append(imports, Import{
			ClassPackage: cp,
			ClassName:    cn,
			Outer:        objidx.PackageIndex(outer),
			ObjectName:   on,
		})
	}
	return imports, nil
}

func decodeExports(data []byte, count int) ([]Export, error) {
	exports := make([]Export, 0, count)
	pos := 0
	for i := 0; i < count; i++ {
		if pos+exportRecordSize > len(data) {
			return nil, codecerr.Malformedf("legacy.exports", int64(pos), "truncated export record %d", i)
		}
		rec := data[pos : pos+exportRecordSize]
		pos += exportRecordSize

		e := Export{
			Class:    objidx.PackageIndex(int32(binary.LittleEndian.Uint32(rec[0:4]))),
			Super:    objidx.PackageIndex(int32(binary.LittleEndian.Uint32(rec[4:8]))),
			Template: objidx.PackageIndex(int32(binary.LittleEndian.Uint32(rec[8:12]))),
			Outer:    objidx.PackageIndex(int32(binary.LittleEndian.Uint32(rec[12:16]))),
			ObjectName: mappedname.MappedName{
				Index:  binary.LittleEndian.Uint32(rec[16:20]),
				Number: binary.LittleEndian.Uint32(rec[20:24]),
			},
			ObjectFlags:  binary.LittleEndian.Uint32(rec[24:28]),
			SerialSize:   int64(binary.LittleEndian.Uint64(rec[28:36])),
			SerialOffset: int64(binary.LittleEndian.Uint64(rec[36:44])),
		}
		filter := int32(binary.LittleEndian.Uint32(rec[48:52]))
		e.NotForClient = filter&filterNotForClient != 0
		e.NotForServer = filter&filterNotForServer != 0
		e.IsAsset = binary.LittleEndian.Uint32(rec[64:68]) != 0
		e.GeneratePublicHash = binary.LittleEndian.Uint32(rec[68:72]) != 0
		e.FirstExportDependencyIndex = int32(binary.LittleEndian.Uint32(rec[72:76]))
		e.ArcCounts[SerializeBeforeSerialize] = int32(binary.LittleEndian.Uint32(rec[76:80]))
		e.ArcCounts[CreateBeforeSerialize] = int32(binary.LittleEndian.Uint32(rec[80:84]))
		e.ArcCounts[SerializeBeforeCreate] = int32(binary.LittleEndian.Uint32(rec[84:88]))
		e.ArcCounts[CreateBeforeCreate] = int32(binary.LittleEndian.Uint32(rec[88:92]))
		exports = append(exports, e)
	}
	return exports, nil
}

func decodePreloadArray(data []byte, count int) ([]objidx.PackageIndex, error) {
	if len(data) < count*4 {
		return nil, codecerr.Malformedf("legacy.preloadArray", 0, "truncated")
	}
	out := make([]objidx.PackageIndex, count)
	for i := 0; i < count; i++ {
		out[i] = objidx.PackageIndex(int32(binary.LittleEndian.Uint32(data[i*4 : i*4+4])))
	}
	return out, nil
}

func readU32At(data []byte, pos int, section string) (uint32, int, error) {
	if pos+4 > len(data) {
		return 0, 0, codecerr.Malformedf(section, int64(pos), "truncated")
	}
	return binary.LittleEndian.Uint32(data[pos : pos+4]), pos + 4, nil
}

func readI32At(data []byte, pos int, section string) (int32, int, error) {
	v, p, err := readU32At(data, pos, section)
	return int32(v), p, err
}

func readI64At(data []byte, pos int, section string) (int64, int, error) {
	if pos+8 > len(data) {
		return 0, 0, codecerr.Malformedf(section, int64(pos), "truncated")
	}
	return int64(binary.LittleEndian.Uint64(data[pos : pos+8])), pos + 8, nil
}

func readCStringAt(data []byte, pos int, section string) (string, int, error) {
	s, n, err := readLengthPrefixedCString(data[pos:])
	if err != nil {
		return "", 0, codecerr.Malformed(section, int64(pos), err)
	}
	return s, pos + n, nil
}

// bytesReaderAt returns an io.Reader-compatible stream that reads from
// data starting at *pos, advancing *pos as bytes are consumed, so the
// mappedname.ReadFrom helper (which takes an io.Reader) can be threaded
// through a flat byte slice without an intermediate bytes.Reader per field.
func bytesReaderAt(data []byte, pos *int) *posReader {
	return &posReader{data: data, pos: pos}
}

type posReader struct {
	data []byte
	pos  *int
}

func (r *posReader) Read(p []byte) (int, error) {
	n := copy(p, r.data[*r.pos:])
	*r.pos += n
	if n < len(p) {
		return n, codecerr.Malformedf("legacy.posReader", int64(*r.pos), "short read")
	}
	return n, nil
}
