package legacy_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/legacy"
	"github.com/gbudweiser/zenlegacycodec/mappedname"
	"github.com/gbudweiser/zenlegacycodec/objidx"
)

func samplePackage() *legacy.Package {
	pkg := &legacy.Package{
		PackageFlags:    0x1,
		FileVersionUE4:  522,
		FileVersionUE5:  1004,
		LicenseeVersion: 0,
		FolderName:      "/Game/MyAsset",
		NameMap:         []string{"MyAsset", "Class", "Outer"},
	}
	pkg.Imports = []legacy.Import{
		{
			ClassPackage: pkg.MappedNameFor("/Script/CoreUObject", 0),
			ClassName:    pkg.MappedNameFor("Class", 0),
			Outer:        objidx.NullIndex,
			ObjectName:   pkg.MappedNameFor("Outer", 0),
		},
	}
	pkg.Exports = []legacy.Export{
		{
			Class:        objidx.NewImportIndex(0),
			Super:        objidx.NullIndex,
			Template:     objidx.NullIndex,
			Outer:        objidx.NullIndex,
			ObjectName:   mappedname.MappedName{Index: 0, Number: 0},
			ObjectFlags:  1,
			SerialSize:   4,
			NotForClient: true,
		},
	}
	return pkg
}

func TestSerializeParseRoundTrip(t *testing.T) {
	pkg := samplePackage()
	bodies := [][]byte{{1, 2, 3, 4}}

	headerBytes, exportsBlob, err := legacy.Serialize(pkg, bodies)
	require.NoError(t, err)
	require.Equal(t, bodies[0], exportsBlob)

	got, err := legacy.Parse(headerBytes)
	require.NoError(t, err)

	require.Equal(t, pkg.FolderName, got.FolderName)
	require.Equal(t, pkg.PackageFlags, got.PackageFlags)
	require.Equal(t, pkg.FileVersionUE4, got.FileVersionUE4)
	require.Equal(t, pkg.FileVersionUE5, got.FileVersionUE5)
	require.Equal(t, pkg.NameMap, got.NameMap)
	require.Len(t, got.Imports, 1)
	require.Equal(t, pkg.Imports[0].ClassPackage, got.Imports[0].ClassPackage)
	require.Equal(t, pkg.Imports[0].ObjectName, got.Imports[0].ObjectName)

	require.Len(t, got.Exports, 1)
	require.Equal(t, pkg.Exports[0].Class, got.Exports[0].Class)
	require.Equal(t, pkg.Exports[0].SerialSize, got.Exports[0].SerialSize)
	require.True(t, got.Exports[0].NotForClient)
	require.Equal(t, int64(len(headerBytes)), got.Exports[0].SerialOffset)
}

func TestSerializeRejectsBodyCountMismatch(t *testing.T) {
	pkg := samplePackage()
	_, _, err := legacy.Serialize(pkg, nil)
	require.Error(t, err)
}

func TestSerializeUnversionedZeroesVersionFields(t *testing.T) {
	pkg := samplePackage()
	pkg.Unversioned = true
	headerBytes, _, err := legacy.Serialize(pkg, [][]byte{{1, 2, 3, 4}})
	require.NoError(t, err)

	got, err := legacy.Parse(headerBytes)
	require.NoError(t, err)
	require.True(t, got.Unversioned)
	require.Zero(t, got.FileVersionUE4)
	require.Zero(t, got.FileVersionUE5)
}

func TestDebugDumpContainsTableNames(t *testing.T) {
	pkg := samplePackage()
	dump, err := pkg.DebugDump()
	require.NoError(t, err)
	require.Contains(t, string(dump), "Imports")
	require.Contains(t, string(dump), "Exports")
}
