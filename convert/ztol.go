package convert

import (
	"go.uber.org/zap"

	"github.com/gbudweiser/zenlegacycodec/bulkdata"
	"github.com/gbudweiser/zenlegacycodec/codecerr"
	"github.com/gbudweiser/zenlegacycodec/legacy"
	"github.com/gbudweiser/zenlegacycodec/mappedname"
	"github.com/gbudweiser/zenlegacycodec/objidx"
	"github.com/gbudweiser/zenlegacycodec/zen"
)

// objectFlag bits the converters inspect; mirrors the subset of UObject
// flags the spec's invariants reference (Public/Standalone/Transactional).
const (
	flagPublic        uint32 = 1 << 0
	flagStandalone    uint32 = 1 << 1
	flagTransactional uint32 = 1 << 2
)

// ZenToLegacy runs the full state machine of spec §4.2: summary & name-map
// init, bulk-data mirroring, import-map construction, export-map
// construction, dependency translation, import-table finalization, and
// two-pass header serialization. Bulk-data payload bytes themselves are
// never fetched here (spec §1).
func ZenToLegacy(zenBytes []byte, ctx Context, opts Options) (headerBytes, exportsBytes []byte, err error) {
	log := opts.logger().Named("zen_to_legacy")

	// State: INIT
	zenPkg, err := zen.Parse(zenBytes)
	if err != nil {
		return nil, nil, err
	}

	// State: NAMES — summary & name-map initialization.
	legacyPkg := &legacy.Package{
		PackageFlags: zenPkg.PackageFlags,
		Unversioned:  opts.Unversioned,
		NameMap:      append([]string(nil), zenPkg.NameMap...),
	}
	packageName, err := zenPkg.PackageName.Render(zenPkg.NameMap)
	if err != nil {
		return nil, nil, err
	}
	legacyPkg.Name = packageName
	legacyPkg.FolderName = packageName

	// State: NAMES (cont'd) — bulk-data resource mirroring (stage b).
	legacyPkg.DataResources = bulkdata.MirrorZenToLegacy(zenPkg.BulkDataMap)

	log.Info("initialized name map and bulk data", zap.Int("names", len(legacyPkg.NameMap)), zap.Int("bulkDataResources", len(legacyPkg.DataResources)))

	// State: IMPORTS — import-map construction via recursive resolution.
	// Every direct ImportMap slot is registered first so it keeps its
	// natural claim on a stable final position; export reference fields
	// (Class/Super/Template/Outer) are resolved in the same dedup table
	// next, since a zen export's Class can itself be a bare
	// ScriptImport/PackageImport never listed in ImportMap.
	dedup := newImportDedup()
	degraded := false
	state := &resolveState{zenPkg: zenPkg, ctx: ctx, degrade: func(reason string) {
		degraded = true
		log.Warn("import resolution degraded", zap.String("reason", reason))
	}}
	for slot, idx := range zenPkg.ImportMap {
		if ri, ok := state.resolveImport(idx); ok {
			dedup.add(slot, ri)
		}
	}

	refSlot := len(zenPkg.ImportMap)
	registerRef := func(idx objidx.PackageObjectIndex) {
		if idx.IsNull() {
			return
		}
		if _, isExport := idx.AsExport(); isExport {
			return
		}
		if ri, ok := state.resolveImport(idx); ok {
			dedup.add(refSlot, ri)
			refSlot++
		}
	}
	for _, e := range zenPkg.ExportMap {
		registerRef(e.Class)
		registerRef(e.Super)
		registerRef(e.Template)
		registerRef(e.Outer)
	}
	legacyPkg.HasFailedImportMapEntries = degraded

	// State: IMPORTS (cont'd) — import table finalization (stable-position
	// remapping). Slots that zen referenced directly keep their original
	// position when possible; everything discovered only via export-field
	// resolution is appended in discovery order.
	finalImports, relocation := finalizeImportTable(dedup, len(zenPkg.ImportMap))
	legacyImports := make([]legacy.Import, len(finalImports))
	for i, ri := range finalImports {
		legacyImports[i] = legacy.Import{
			ClassPackage: legacyPkg.MappedNameFor(ri.ClassPackage, 0),
			ClassName:    legacyPkg.MappedNameFor(ri.ClassName, 0),
			ObjectName:   legacyPkg.MappedNameFor(ri.ObjectName, 0),
		}
	}
	// Outer references within the import table itself are resolved after
	// every import has a final slot, since an import's outer is another
	// import in this same table.
	for i, ri := range finalImports {
		if ri.Outer == nil {
			continue
		}
		if outerSlot, ok := dedup.index[ri.Outer.key()]; ok {
			legacyImports[i].Outer = objidx.NewImportIndex(relocation[outerSlot])
		}
	}
	legacyPkg.Imports = legacyImports

	toLegacyRef := func(idx objidx.PackageObjectIndex) objidx.PackageIndex {
		if idx.IsNull() {
			return objidx.NullIndex
		}
		if n, ok := idx.AsExport(); ok {
			return objidx.NewExportIndex(int(n))
		}
		ri, ok := state.resolveImport(idx)
		if !ok || ri == nil {
			return objidx.NullIndex
		}
		dedupSlot, ok := dedup.index[ri.key()]
		if !ok {
			return objidx.NullIndex
		}
		finalSlot, ok := relocation[dedupSlot]
		if !ok {
			return objidx.NullIndex
		}
		return objidx.NewImportIndex(finalSlot)
	}

	// State: EXPORTS — export-map construction with index remapping.
	legacyExports := make([]legacy.Export, len(zenPkg.ExportMap))
	for i, e := range zenPkg.ExportMap {
		name, _ := e.ObjectName.Render(zenPkg.NameMap)
		mn := mappedname.MappedName{Index: legacyPkg.NameIndex(name), Number: e.ObjectName.Number}

		outerIsNull := e.Outer.IsNull()
		isPublic := e.ObjectFlags&flagPublic != 0
		isAsset := outerIsNull && (e.ObjectFlags&(flagPublic|flagStandalone|flagTransactional)) == (flagPublic | flagStandalone | flagTransactional)
		generatePublicHash := !isPublic && e.PublicExportHash != 0

		legacyExports[i] = legacy.Export{
			Class:              toLegacyRef(e.Class),
			Super:              toLegacyRef(e.Super),
			Template:           toLegacyRef(e.Template),
			Outer:              toLegacyRef(e.Outer),
			ObjectName:         mn,
			ObjectFlags:        e.ObjectFlags,
			SerialSize:         e.CookedSerialSize,
			NotForClient:       e.Filter == zen.FilterNotForClient,
			NotForServer:       e.Filter == zen.FilterNotForServer,
			IsAsset:            isAsset,
			GeneratePublicHash: generatePublicHash,
		}
	}
	legacyPkg.Exports = legacyExports

	// State: BUNDLES/DEPENDENCIES — export-dependency flattening.
	if err := translateDependencies(zenPkg, legacyPkg, toLegacyRef); err != nil {
		return nil, nil, err
	}

	log.Info("export map built", zap.Int("exports", len(legacyPkg.Exports)), zap.Int("imports", len(legacyPkg.Imports)))
	if ce := log.Check(zap.DebugLevel, "legacy package tables"); ce != nil {
		if dump, err := legacyPkg.DebugDump(); err == nil {
			ce.Write(zap.ByteString("tables", dump))
		}
	}

	// State: SERIALIZE — two-pass header serialization.
	bodies := make([][]byte, len(zenPkg.ExportMap))
	for i, e := range zenPkg.ExportMap {
		start := e.CookedSerialOffset
		end := start + e.CookedSerialSize
		if start < 0 || end > int64(len(zenPkg.Body)) {
			return nil, nil, codecerr.InvariantViolatedf("export %d serial range [%d,%d) out of body bounds (len=%d)", i, start, end, len(zenPkg.Body))
		}
		bodies[i] = zenPkg.Body[start:end]
	}

	return legacy.Serialize(legacyPkg, bodies)
}

// finalizeImportTable produces the final import slot ordering (spec §4.2
// "Import table finalization"): entries reserved by a direct ImportMap
// slot keep that position when it is still free; everything else
// (imports discovered only via recursive class/outer resolution) is
// appended in discovery order. It returns the finalized ResolvedImport
// list and the relocation map from pre-finalization dedup slot to final
// slot.
func finalizeImportTable(dedup *importDedup, zenImportMapLen int) ([]*ResolvedImport, map[int]int) {
	n := len(dedup.order)

	reserved := make(map[int]int) // final slot -> dedup slot
	for zenSlot, dedupSlot := range dedup.bySlot {
		if zenSlot < zenImportMapLen {
			if _, taken := reserved[zenSlot]; !taken {
				reserved[zenSlot] = dedupSlot
			}
		}
	}

	placed := make([]bool, n) // dedup slot already placed somewhere
	want := zenImportMapLen
	if n > want {
		want = n
	}
	final := make([]*ResolvedImport, want)
	relocation := make(map[int]int, n)

	for slot := 0; slot < zenImportMapLen; slot++ {
		if dedupSlot, ok := reserved[slot]; ok {
			final[slot] = dedup.order[dedupSlot]
			relocation[dedupSlot] = slot
			placed[dedupSlot] = true
		}
	}

	next := 0
	for slot := 0; slot < len(final); slot++ {
		if final[slot] != nil {
			continue
		}
		for next < n && placed[next] {
			next++
		}
		if next >= n {
			continue
		}
		final[slot] = dedup.order[next]
		relocation[next] = slot
		placed[next] = true
		next++
	}
	for next < n {
		if !placed[next] {
			final = append(final, dedup.order[next])
			relocation[next] = len(final) - 1
			placed[next] = true
		}
		next++
	}

	// Compact out interior nils (zen ImportMap slots that were Null and so
	// never claimed a reservation), renumbering relocation to match the
	// final compacted positions.
	compacted := make([]*ResolvedImport, 0, len(final))
	remap := make([]int, len(final))
	for slot, ri := range final {
		if ri == nil {
			remap[slot] = -1
			continue
		}
		remap[slot] = len(compacted)
		compacted = append(compacted, ri)
	}
	for dedupSlot, slot := range relocation {
		relocation[dedupSlot] = remap[slot]
	}

	return compacted, relocation
}
