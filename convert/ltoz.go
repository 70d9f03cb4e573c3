package convert

import (
	"go.uber.org/zap"

	"github.com/gbudweiser/zenlegacycodec/bulkdata"
	"github.com/gbudweiser/zenlegacycodec/legacy"
	"github.com/gbudweiser/zenlegacycodec/zen"
)

// LegacyToZen runs the full state machine of spec §4.3: import
// translation, export-map construction, export-bundle ordering,
// dependency-bundle translation, and summary/offset emission.
// bulkBytes is the optional companion bulk file; pass a nil slice when
// the asset carries no out-of-line bulk data. With no bulk bytes, a
// package without data resources gets an empty bulk-data map, and one
// whose data resources over-index the empty file gets a single
// zero-length entry (see bulkdata.BuildZenBulkDataMap).
func LegacyToZen(headerBytes, exportsBytes, bulkBytes []byte, ctx Context, opts Options) ([]byte, error) {
	log := opts.logger().Named("legacy_to_zen")

	// State: INIT
	pkg, err := legacy.Parse(headerBytes)
	if err != nil {
		return nil, err
	}

	state := newLtozState(pkg, ctx)

	// State: IMPORTS — import translation (script/package/null classification).
	importMap := state.buildImportMap()
	log.Info("translated imports", zap.Int("imports", len(pkg.Imports)), zap.Int("foreignPackages", len(state.packageIDs)), zap.Int("publicHashes", len(state.hashes)))

	// State: EXPORTS — cooked layout + export-map construction.
	layout, body := computeExportBodyLayout(pkg, exportsBytes, int64(len(headerBytes)))
	exportMap := state.buildExportMap(importMap, layout)

	// State: BUNDLES/DEPENDENCIES.
	cycles := 0
	bundleEntries := buildExportBundle(pkg, func(from, to bundleNode) {
		cycles++
		log.Warn("export-bundle cycle broken", zap.Int("fromExport", from.export), zap.Int("toExport", to.export))
	})
	depHeaders, depEntries := buildDependencyBundles(pkg, importMap)
	if cycles > 0 {
		log.Warn("export dependency graph had cycles", zap.Int("count", cycles))
	}

	// State: FINALIZE/SERIALIZE — assemble the zen package and emit bytes.
	zenPkg := &zen.Package{
		PackageFlags:     pkg.PackageFlags,
		CookedHeaderSize: uint32(len(headerBytes)),
		NameMap:          append([]string(nil), pkg.NameMap...),

		ImportedPublicExportHashes: state.hashes,
		ImportMap:                 importMap,

		ExportMap: exportMap,

		ExportBundleEntries: bundleEntries,

		DependencyBundleHeaders: depHeaders,
		DependencyBundleEntries: depEntries,

		ImportedPackageIds:         state.packageIDs,
		ImportedPackageNames:       state.packageNames,
		ImportedPackageNameNumbers: state.packageNumbers,

		BulkDataMap: bulkdata.BuildZenBulkDataMap(pkg.DataResources, int64(len(bulkBytes))),

		Body: body,
	}
	zenPkg.PackageName = zenPkg.MappedNameFor(pkg.FolderName, 0)

	log.Info("serializing zen package", zap.Int("exports", len(zenPkg.ExportMap)), zap.Int("bodyBytes", len(zenPkg.Body)))

	return zen.Serialize(zenPkg, opts.LossyNames), nil
}
