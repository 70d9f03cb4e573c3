package usmapcache_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/usmapcache"
)

func TestGetOrLoadParsesOnce(t *testing.T) {
	usmapcache.Reset()
	calls := 0
	load := func(path string) (*usmapcache.Mapping, error) {
		calls++
		return &usmapcache.Mapping{Path: path, Data: "parsed"}, nil
	}

	m1, err := usmapcache.GetOrLoad("/Game/Mappings.usmap", load)
	require.NoError(t, err)
	m2, err := usmapcache.GetOrLoad("/Game/Mappings.usmap", load)
	require.NoError(t, err)

	require.Same(t, m1, m2)
	require.Equal(t, 1, calls)
}

func TestResetClearsCache(t *testing.T) {
	usmapcache.Reset()
	load := func(path string) (*usmapcache.Mapping, error) {
		return &usmapcache.Mapping{Path: path}, nil
	}
	m1, err := usmapcache.GetOrLoad("/Game/A.usmap", load)
	require.NoError(t, err)

	usmapcache.Reset()
	m2, err := usmapcache.GetOrLoad("/Game/A.usmap", load)
	require.NoError(t, err)
	require.NotSame(t, m1, m2)
}
