package convert

import (
	"github.com/gbudweiser/zenlegacycodec/legacy"
	"github.com/gbudweiser/zenlegacycodec/objidx"
	"github.com/gbudweiser/zenlegacycodec/zen"
)

// legacyArcToZenArc is the inverse of zenArcToLegacyArc, used by
// buildDependencyBundles to re-emit every legacy arc in zen order
// (CreateBeforeCreate, SerializeBeforeCreate, CreateBeforeSerialize,
// SerializeBeforeSerialize; spec §4.3 "Build dependency bundles by
// carrying every legacy arc through in the zen order").
var legacyArcToZenArc = map[legacy.ArcKind]zen.DepArcKind{
	legacy.CreateBeforeCreate:       zen.CreateBeforeCreate,
	legacy.SerializeBeforeCreate:    zen.SerializeBeforeCreate,
	legacy.CreateBeforeSerialize:    zen.CreateBeforeSerialize,
	legacy.SerializeBeforeSerialize: zen.SerializeBeforeSerialize,
}

// buildDependencyBundles reads each legacy export's four preload-arc
// slices and re-emits them as zen DependencyBundleHeader/Entries records,
// one header per export, translating every reference through importMap.
func buildDependencyBundles(pkg *legacy.Package, importMap []objidx.PackageObjectIndex) ([]zen.DependencyBundleHeader, []objidx.PackageObjectIndex) {
	headers := make([]zen.DependencyBundleHeader, len(pkg.Exports))
	var entries []objidx.PackageObjectIndex

	for i, e := range pkg.Exports {
		hdr := zen.DependencyBundleHeader{FirstEntryIndex: int32(len(entries))}

		if e.FirstExportDependencyIndex >= 0 {
			for _, legacyKind := range [...]legacy.ArcKind{legacy.CreateBeforeCreate, legacy.SerializeBeforeCreate, legacy.CreateBeforeSerialize, legacy.SerializeBeforeSerialize} {
				count := e.ArcCounts[legacyKind]
				zenKind := legacyArcToZenArc[legacyKind]
				base := e.FirstExportDependencyIndex
				offset := arcOffsetWithin(e, legacyKind)
				for k := int32(0); k < count; k++ {
					idx := int(base) + int(offset) + int(k)
					if idx < 0 || idx >= len(pkg.PreloadDependencies) {
						continue
					}
					entries = append(entries, legacyRefToZenRef(pkg.PreloadDependencies[idx], importMap))
				}
				hdr.Counts[zenKind] = count
			}
		}

		headers[i] = hdr
	}

	return headers, entries
}

// arcOffsetWithin returns the flat preload-array offset (from
// e.FirstExportDependencyIndex) where kind's slice begins, given the
// fixed legacy emission order SerializeBeforeSerialize, CreateBeforeSerialize,
// SerializeBeforeCreate, CreateBeforeCreate (spec §3, §6 item 6).
func arcOffsetWithin(e legacy.Export, kind legacy.ArcKind) int32 {
	var offset int32
	for _, k := range [...]legacy.ArcKind{legacy.SerializeBeforeSerialize, legacy.CreateBeforeSerialize, legacy.SerializeBeforeCreate, legacy.CreateBeforeCreate} {
		if k == kind {
			return offset
		}
		offset += e.ArcCounts[k]
	}
	return offset
}
