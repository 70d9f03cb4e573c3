package objidx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/objidx"
)

func TestPackageObjectIndexKinds(t *testing.T) {
	require.True(t, objidx.Null.IsNull())
	require.Equal(t, objidx.KindNull, objidx.Null.Kind())

	exp := objidx.NewExport(7)
	n, ok := exp.AsExport()
	require.True(t, ok)
	require.Equal(t, uint32(7), n)
	require.Equal(t, objidx.KindExport, exp.Kind())

	script := objidx.NewScriptImport(0x1234567890)
	h, ok := script.AsScriptImport()
	require.True(t, ok)
	require.Equal(t, uint64(0x1234567890), h)

	pkgImport := objidx.NewPackageImport(3, 9)
	p, hSlot, ok := pkgImport.AsPackageImport()
	require.True(t, ok)
	require.Equal(t, uint32(3), p)
	require.Equal(t, uint32(9), hSlot)
}

func TestPackageIndexExportImportNull(t *testing.T) {
	require.True(t, objidx.NullIndex.IsNull())

	e := objidx.NewExportIndex(4)
	slot, ok := e.IsExport()
	require.True(t, ok)
	require.Equal(t, 4, slot)

	i := objidx.NewImportIndex(2)
	slot, ok = i.IsImport()
	require.True(t, ok)
	require.Equal(t, 2, slot)
}

func TestPackageIDClearsTopBit(t *testing.T) {
	id := objidx.NewPackageID("/Game/Foo")
	require.Zero(t, uint64(id)&(uint64(1)<<63))
}

func TestPublicExportHashIsDeterministic(t *testing.T) {
	a := objidx.NewPublicExportHash("/Game/Foo.Bar")
	b := objidx.NewPublicExportHash("/Game/Foo.Bar")
	require.Equal(t, a, b)

	c := objidx.NewPublicExportHash("/Game/Foo.Baz")
	require.NotEqual(t, a, c)
}
