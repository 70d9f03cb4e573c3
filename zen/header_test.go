package zen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/mappedname"
	"github.com/gbudweiser/zenlegacycodec/objidx"
	"github.com/gbudweiser/zenlegacycodec/zen"
)

func samplePackage() *zen.Package {
	pkg := &zen.Package{
		PackageFlags:     0x1,
		CookedHeaderSize: 16,
		NameMap:          []string{"MyAsset", "Class"},
	}
	pkg.PackageName = pkg.MappedNameFor("MyAsset", 0)
	pkg.ImportedPackageIds = []objidx.PackageID{objidx.NewPackageID("/Game/Other")}
	pkg.ImportedPackageNames = []string{"/Game/Other"}
	pkg.ImportedPackageNameNumbers = []int32{0}
	pkg.ImportedPublicExportHashes = []uint64{uint64(objidx.NewPublicExportHash("/Game/Other.Thing"))}
	pkg.ImportMap = []objidx.PackageObjectIndex{objidx.NewPackageImport(0, 0)}
	pkg.ExportMap = []zen.Export{
		{
			CookedSerialOffset: 0,
			CookedSerialSize:   4,
			ObjectName:         mappedname.MappedName{Index: 0, Number: 0},
			ObjectFlags:        1,
			Class:              objidx.NewPackageImport(0, 0),
			Outer:              objidx.Null,
			PublicExportHash:   0xABCD,
		},
	}
	pkg.ExportBundleEntries = []zen.ExportBundleEntry{
		{LocalExportIndex: 0, Command: zen.CommandCreate},
		{LocalExportIndex: 0, Command: zen.CommandSerialize},
	}
	pkg.DependencyBundleHeaders = []zen.DependencyBundleHeader{{FirstEntryIndex: 0}}
	pkg.Body = []byte{1, 2, 3, 4}
	return pkg
}

func TestSerializeParseRoundTrip(t *testing.T) {
	pkg := samplePackage()
	out := zen.Serialize(pkg, false)

	got, err := zen.Parse(out)
	require.NoError(t, err)

	require.Equal(t, pkg.PackageFlags, got.PackageFlags)
	require.Equal(t, pkg.CookedHeaderSize, got.CookedHeaderSize)
	require.Equal(t, pkg.NameMap, got.NameMap)
	require.Equal(t, pkg.ImportMap, got.ImportMap)
	require.Equal(t, pkg.ImportedPublicExportHashes, got.ImportedPublicExportHashes)
	require.Equal(t, pkg.ImportedPackageNames, got.ImportedPackageNames)
	require.Equal(t, pkg.ImportedPackageNameNumbers, got.ImportedPackageNameNumbers)

	require.Len(t, got.ExportMap, 1)
	require.Equal(t, pkg.ExportMap[0].Class, got.ExportMap[0].Class)
	require.Equal(t, pkg.ExportMap[0].PublicExportHash, got.ExportMap[0].PublicExportHash)
	require.Equal(t, pkg.ExportBundleEntries, got.ExportBundleEntries)
	require.Equal(t, pkg.Body, got.Body)
}

func TestParseRejectsTruncatedSummary(t *testing.T) {
	_, err := zen.Parse([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestSerializeLossyNamesEncoding(t *testing.T) {
	pkg := samplePackage()
	pkg.NameMap = []string{"héllo"}
	pkg.PackageName = pkg.MappedNameFor("héllo", 0)
	out := zen.Serialize(pkg, true)

	got, err := zen.Parse(out)
	require.NoError(t, err)
	require.Equal(t, []string{"h?llo"}, got.NameMap)
}
