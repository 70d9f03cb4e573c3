package convert_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/convert"
	"github.com/gbudweiser/zenlegacycodec/legacy"
	"github.com/gbudweiser/zenlegacycodec/mappedname"
	"github.com/gbudweiser/zenlegacycodec/objidx"
	"github.com/gbudweiser/zenlegacycodec/scriptdb"
	"github.com/gbudweiser/zenlegacycodec/zen"
)

// buildSampleZenPackage returns a minimal but structurally complete zen
// package: one export deriving from a script class, matching spec §8
// scenario 1 (pure script-class import, no foreign packages involved).
func buildSampleZenPackage() *zen.Package {
	pkg := &zen.Package{
		PackageFlags:     0x1,
		CookedHeaderSize: 16,
		NameMap:          []string{"MyActor"},
	}
	pkg.PackageName = pkg.MappedNameFor("/Game/MyActor", 0)
	pkg.ImportMap = []objidx.PackageObjectIndex{objidx.NewScriptImport(0xDEAD)}
	pkg.ExportMap = []zen.Export{
		{
			CookedSerialOffset: 0,
			CookedSerialSize:   4,
			ObjectName:         mappedname.MappedName{Index: 0, Number: 0},
			ObjectFlags:        1, // Public
			Class:              objidx.NewScriptImport(0xDEAD),
			Outer:              objidx.Null,
			PublicExportHash:   0,
		},
	}
	pkg.ExportBundleEntries = []zen.ExportBundleEntry{
		{LocalExportIndex: 0, Command: zen.CommandCreate},
		{LocalExportIndex: 0, Command: zen.CommandSerialize},
	}
	pkg.DependencyBundleHeaders = []zen.DependencyBundleHeader{{FirstEntryIndex: 0}}
	pkg.Body = []byte{0xAA, 0xBB, 0xCC, 0xDD}
	return pkg
}

func sampleContext() convert.Context {
	db := scriptdb.NewInMemory([]scriptdb.Entry{
		{Hash: 0xE000, Path: "/Script/Engine", HasOuter: false},
		{Hash: 0xDEAD, Path: "/Script/Engine/Actor", OuterHash: 0xE000, HasOuter: true, IsClass: true},
	})
	return convert.Context{ScriptObjects: db}
}

func TestZenToLegacyBasicScriptImport(t *testing.T) {
	zenPkg := buildSampleZenPackage()
	zenBytes := zen.Serialize(zenPkg, false)

	headerBytes, exportsBytes, err := convert.ZenToLegacy(zenBytes, sampleContext(), convert.Options{})
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, exportsBytes)

	legacyPkg, err := legacy.Parse(headerBytes)
	require.NoError(t, err)
	require.False(t, legacyPkg.HasFailedImportMapEntries)
	require.Len(t, legacyPkg.Imports, 1)
	require.Len(t, legacyPkg.Exports, 1)

	className, err := legacyPkg.Imports[0].ClassName.Render(legacyPkg.NameMap)
	require.NoError(t, err)
	require.Equal(t, "Class", className)

	classPkg, err := legacyPkg.Imports[0].ClassPackage.Render(legacyPkg.NameMap)
	require.NoError(t, err)
	require.Equal(t, "/Script/CoreUObject", classPkg)

	importName, err := legacyPkg.Imports[0].ObjectName.Render(legacyPkg.NameMap)
	require.NoError(t, err)
	require.Equal(t, "Actor", importName)

	classRef, ok := legacyPkg.Exports[0].Class.IsImport()
	require.True(t, ok)
	require.Equal(t, 0, classRef)
}

func TestZenToLegacyDegradesOnUnknownScriptHash(t *testing.T) {
	zenPkg := buildSampleZenPackage()
	zenBytes := zen.Serialize(zenPkg, false)

	emptyDB := scriptdb.NewInMemory(nil)
	headerBytes, _, err := convert.ZenToLegacy(zenBytes, convert.Context{ScriptObjects: emptyDB}, convert.Options{})
	require.NoError(t, err)

	legacyPkg, err := legacy.Parse(headerBytes)
	require.NoError(t, err)
	require.Len(t, legacyPkg.Imports, 1)
	importName, err := legacyPkg.Imports[0].ObjectName.Render(legacyPkg.NameMap)
	require.NoError(t, err)
	require.Equal(t, "__ScriptImport_dead__", importName)
}

func buildSampleLegacyPackage() *legacy.Package {
	pkg := &legacy.Package{
		PackageFlags: 0x1,
		FolderName:   "/Game/MyActor",
		NameMap:      []string{"MyActor", "Actor", "/Script/Engine"},
	}
	pkg.Imports = []legacy.Import{
		{
			// Package root import: its path starts with /Script/, so
			// translateImport classifies it as a script import before the
			// null-outer (implicit package) rule applies.
			ClassPackage: pkg.MappedNameFor("/Script/CoreUObject", 0),
			ClassName:    pkg.MappedNameFor("Package", 0),
			Outer:        objidx.NullIndex,
			ObjectName:   pkg.MappedNameFor("/Script/Engine", 0),
		},
		{
			ClassPackage: pkg.MappedNameFor("/Script/CoreUObject", 0),
			ClassName:    pkg.MappedNameFor("Class", 0),
			Outer:        objidx.NewImportIndex(0),
			ObjectName:   pkg.MappedNameFor("Actor", 0),
		},
	}
	pkg.Exports = []legacy.Export{
		{
			Class:                      objidx.NewImportIndex(1),
			Super:                      objidx.NullIndex,
			Template:                   objidx.NullIndex,
			Outer:                      objidx.NullIndex,
			ObjectName:                 mappedname.MappedName{Index: 0, Number: 0},
			ObjectFlags:                1,
			SerialSize:                 4,
			FirstExportDependencyIndex: -1,
		},
	}
	return pkg
}

func TestLegacyToZenBasicImportTranslation(t *testing.T) {
	pkg := buildSampleLegacyPackage()
	bodies := [][]byte{{1, 2, 3, 4}}
	headerBytes, exportsBlob, err := legacy.Serialize(pkg, bodies)
	require.NoError(t, err)

	zenBytes, err := convert.LegacyToZen(headerBytes, exportsBlob, nil, convert.Context{}, convert.Options{})
	require.NoError(t, err)

	zenPkg, err := zen.Parse(zenBytes)
	require.NoError(t, err)
	require.Len(t, zenPkg.ExportMap, 1)
	require.Len(t, zenPkg.ImportMap, 2)

	_, _, ok := zenPkg.ImportMap[0].AsScriptImport()
	require.True(t, ok)
}

// buildDependencyArcZenPackage returns a two-export zen package where
// export 1 depends on export 0 via both a SerializeBeforeCreate and a
// CreateBeforeSerialize arc, matching spec §8 scenario 5's arc shape.
func buildDependencyArcZenPackage() *zen.Package {
	pkg := &zen.Package{
		PackageFlags:     0x1,
		CookedHeaderSize: 16,
		NameMap:          []string{"First", "Second"},
	}
	pkg.PackageName = pkg.MappedNameFor("/Game/Pair", 0)
	pkg.ExportMap = []zen.Export{
		{
			CookedSerialOffset: 0,
			CookedSerialSize:   4,
			ObjectName:         mappedname.MappedName{Index: 0, Number: 0},
			ObjectFlags:        1,
			Class:              objidx.Null,
			Outer:              objidx.Null,
		},
		{
			CookedSerialOffset: 4,
			CookedSerialSize:   4,
			ObjectName:         mappedname.MappedName{Index: 1, Number: 0},
			ObjectFlags:        1,
			Class:              objidx.Null,
			Outer:              objidx.Null,
		},
	}
	pkg.ExportBundleEntries = []zen.ExportBundleEntry{
		{LocalExportIndex: 0, Command: zen.CommandCreate},
		{LocalExportIndex: 0, Command: zen.CommandSerialize},
		{LocalExportIndex: 1, Command: zen.CommandCreate},
		{LocalExportIndex: 1, Command: zen.CommandSerialize},
	}
	// Export 0 has no dependency-bundle entries; export 1 references
	// export 0 once as SerializeBeforeCreate and once as CreateBeforeSerialize.
	pkg.DependencyBundleHeaders = []zen.DependencyBundleHeader{
		{FirstEntryIndex: 0},
		{
			Counts:          [4]int32{0, 1, 1, 0},
			FirstEntryIndex: 0,
		},
	}
	pkg.DependencyBundleEntries = []objidx.PackageObjectIndex{
		objidx.NewExport(0),
		objidx.NewExport(0),
	}
	pkg.Body = []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xBB, 0xBB, 0xBB, 0xBB}
	return pkg
}

func TestZenToLegacyDependencyArcTranslation(t *testing.T) {
	zenPkg := buildDependencyArcZenPackage()
	zenBytes := zen.Serialize(zenPkg, false)

	headerBytes, _, err := convert.ZenToLegacy(zenBytes, convert.Context{}, convert.Options{})
	require.NoError(t, err)

	legacyPkg, err := legacy.Parse(headerBytes)
	require.NoError(t, err)
	require.Len(t, legacyPkg.Exports, 2)

	second := legacyPkg.Exports[1]
	require.EqualValues(t, 1, second.ArcCounts[legacy.SerializeBeforeCreate])
	require.EqualValues(t, 1, second.ArcCounts[legacy.CreateBeforeSerialize])

	start := second.FirstExportDependencyIndex
	require.GreaterOrEqual(t, start, int32(0))
	total := second.ArcCounts[legacy.SerializeBeforeSerialize] + second.ArcCounts[legacy.CreateBeforeSerialize] +
		second.ArcCounts[legacy.SerializeBeforeCreate] + second.ArcCounts[legacy.CreateBeforeCreate]
	slice := legacyPkg.PreloadDependencies[start : start+total]
	for _, ref := range slice {
		idx, ok := ref.IsExport()
		require.True(t, ok)
		require.Equal(t, 0, idx)
	}
}

// buildCyclicLegacyPackage returns two legacy exports each listing the
// other as a CreateBeforeCreate preload dependency, forcing
// buildExportBundle's cycle-breaking path (spec §9 "graph with cycles").
func buildCyclicLegacyPackage() *legacy.Package {
	pkg := &legacy.Package{
		PackageFlags: 0x1,
		FolderName:   "/Game/Cyclic",
		NameMap:      []string{"First", "Second"},
	}
	pkg.PreloadDependencies = []objidx.PackageIndex{
		objidx.NewExportIndex(1), // export 0's CreateBeforeCreate dep: export 1
		objidx.NewExportIndex(0), // export 1's CreateBeforeCreate dep: export 0
	}
	pkg.Exports = []legacy.Export{
		{
			ObjectName:                 mappedname.MappedName{Index: 0, Number: 0},
			ObjectFlags:                1,
			SerialSize:                 4,
			SerialOffset:               0,
			Class:                      objidx.NullIndex,
			Super:                      objidx.NullIndex,
			Template:                   objidx.NullIndex,
			Outer:                      objidx.NullIndex,
			FirstExportDependencyIndex: 0,
			ArcCounts:                  [4]int32{0, 0, 0, 1},
		},
		{
			ObjectName:                 mappedname.MappedName{Index: 1, Number: 0},
			ObjectFlags:                1,
			SerialSize:                 4,
			SerialOffset:               4,
			Class:                      objidx.NullIndex,
			Super:                      objidx.NullIndex,
			Template:                   objidx.NullIndex,
			Outer:                      objidx.NullIndex,
			FirstExportDependencyIndex: 1,
			ArcCounts:                  [4]int32{0, 0, 0, 1},
		},
	}
	return pkg
}

func TestLegacyToZenBreaksExportBundleCycle(t *testing.T) {
	pkg := buildCyclicLegacyPackage()
	bodies := [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}}
	headerBytes, exportsBlob, err := legacy.Serialize(pkg, bodies)
	require.NoError(t, err)

	zenBytes, err := convert.LegacyToZen(headerBytes, exportsBlob, nil, convert.Context{}, convert.Options{})
	require.NoError(t, err)

	zenPkg, err := zen.Parse(zenBytes)
	require.NoError(t, err)
	require.Len(t, zenPkg.ExportMap, 2)
	// Both exports must still get a Create and a Serialize entry despite
	// the dropped back edge.
	require.Len(t, zenPkg.ExportBundleEntries, 4)
}

func TestRoundTripZenToLegacyToZenPreservesExportCount(t *testing.T) {
	zenPkg := buildSampleZenPackage()
	zenBytes := zen.Serialize(zenPkg, false)

	headerBytes, exportsBytes, err := convert.ZenToLegacy(zenBytes, sampleContext(), convert.Options{})
	require.NoError(t, err)

	backToZenBytes, err := convert.LegacyToZen(headerBytes, exportsBytes, nil, convert.Context{}, convert.Options{})
	require.NoError(t, err)

	roundTripped, err := zen.Parse(backToZenBytes)
	require.NoError(t, err)
	require.Len(t, roundTripped.ExportMap, len(zenPkg.ExportMap))
	require.Equal(t, zenPkg.Body, roundTripped.Body)
}
