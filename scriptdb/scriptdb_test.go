package scriptdb_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/scriptdb"
)

func TestInMemoryLookup(t *testing.T) {
	db := scriptdb.NewInMemory([]scriptdb.Entry{
		{Hash: 1, Path: "/Script/Engine", HasOuter: false},
		{Hash: 2, Path: "/Script/Engine/Actor", OuterHash: 1, HasOuter: true, IsClass: true},
	})

	e, ok := db.Lookup(2)
	require.True(t, ok)
	require.Equal(t, "/Script/Engine/Actor", e.Path)

	e, ok = db.LookupByPath("/Script/Engine")
	require.True(t, ok)
	require.Equal(t, uint64(1), e.Hash)

	_, ok = db.Lookup(999)
	require.False(t, ok)
}

func TestSingletonRoundTrip(t *testing.T) {
	db := scriptdb.NewInMemory([]scriptdb.Entry{{Hash: 7, Path: "/Script/Test"}})
	scriptdb.SetSingleton(db)
	require.Equal(t, scriptdb.Database(db), scriptdb.Singleton())

	scriptdb.SetSingleton(nil)
	require.Nil(t, scriptdb.Singleton())
}
