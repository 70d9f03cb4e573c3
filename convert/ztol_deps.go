package convert

import (
	"github.com/gbudweiser/zenlegacycodec/legacy"
	"github.com/gbudweiser/zenlegacycodec/objidx"
	"github.com/gbudweiser/zenlegacycodec/zen"
)

// zenArcToLegacyArc maps a zen dependency-bundle arc slot to its legacy
// ArcKind counterpart (both enumerate the same four relations, only in
// different on-wire orders; spec §3 invariant on arc order).
var zenArcToLegacyArc = [...]legacy.ArcKind{
	zen.CreateBeforeCreate:       legacy.CreateBeforeCreate,
	zen.SerializeBeforeCreate:    legacy.SerializeBeforeCreate,
	zen.CreateBeforeSerialize:    legacy.CreateBeforeSerialize,
	zen.SerializeBeforeSerialize: legacy.SerializeBeforeSerialize,
}

// translateDependencies implements spec §4.2's "Dependency translation":
// read each zen export's dependency-bundle header and four arc slices,
// translate every slot-local reference through toLegacyRef, apply the
// four legacy-invariant augmentation rules, and flatten the result into
// legacyPkg.PreloadDependencies in legacy arc order.
func translateDependencies(zenPkg *zen.Package, legacyPkg *legacy.Package, toLegacyRef func(objidx.PackageObjectIndex) objidx.PackageIndex) error {
	for i := range legacyPkg.Exports {
		var arcs [4][]objidx.PackageIndex // indexed by legacy.ArcKind

		if i < len(zenPkg.DependencyBundleHeaders) {
			hdr := zenPkg.DependencyBundleHeaders[i]
			cursor := hdr.FirstEntryIndex
			for zenKind := zen.DepArcKind(0); int(zenKind) < len(hdr.Counts); zenKind++ {
				count := hdr.Counts[zenKind]
				legacyKind := zenArcToLegacyArc[zenKind]
				for k := int32(0); k < count; k++ {
					idx := int(cursor) + int(k)
					if idx < 0 || idx >= len(zenPkg.DependencyBundleEntries) {
						continue
					}
					ref := toLegacyRef(zenPkg.DependencyBundleEntries[idx])
					arcs[legacyKind] = append(arcs[legacyKind], ref)
				}
				cursor += count
			}
		}

		e := &legacyPkg.Exports[i]

		augment := func(kind legacy.ArcKind, ref objidx.PackageIndex) {
			if ref.IsNull() {
				return
			}
			for _, existing := range arcs[kind] {
				if existing == ref {
					return
				}
			}
			arcs[kind] = append(arcs[kind], ref)
		}

		augment(legacy.CreateBeforeCreate, e.Outer)
		if !e.Super.IsNull() {
			already := false
			for _, existing := range arcs[legacy.CreateBeforeCreate] {
				if existing == e.Super {
					already = true
					break
				}
			}
			if !already {
				augment(legacy.SerializeBeforeSerialize, e.Super)
			}
		}
		augment(legacy.SerializeBeforeCreate, e.Class)
		augment(legacy.SerializeBeforeCreate, e.Template)

		total := len(arcs[legacy.SerializeBeforeSerialize]) + len(arcs[legacy.CreateBeforeSerialize]) +
			len(arcs[legacy.SerializeBeforeCreate]) + len(arcs[legacy.CreateBeforeCreate])
		if total == 0 {
			e.FirstExportDependencyIndex = -1
			e.ArcCounts = [4]int32{}
			continue
		}

		e.FirstExportDependencyIndex = int32(len(legacyPkg.PreloadDependencies))
		for _, kind := range [...]legacy.ArcKind{legacy.SerializeBeforeSerialize, legacy.CreateBeforeSerialize, legacy.SerializeBeforeCreate, legacy.CreateBeforeCreate} {
			e.ArcCounts[kind] = int32(len(arcs[kind]))
			legacyPkg.PreloadDependencies = append(legacyPkg.PreloadDependencies, arcs[kind]...)
		}
	}
	return nil
}
