package bulkdata_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/bulkdata"
	"github.com/gbudweiser/zenlegacycodec/legacy"
	"github.com/gbudweiser/zenlegacycodec/zen"
)

func TestMirrorZenToLegacyPreservesFields(t *testing.T) {
	entries := []zen.BulkDataEntry{
		{SerialOffset: 16, SerialSize: 32, RawSize: 32, LegacyBulkDataFlags: 1, Flags: 0},
	}
	out := bulkdata.MirrorZenToLegacy(entries)
	require.Len(t, out, 1)
	require.Equal(t, entries[0].SerialOffset, out[0].SerialOffset)
	require.Equal(t, entries[0].SerialSize, out[0].SerialSize)
	require.Equal(t, int64(-1), out[0].DuplicateSerialOffset)
}

func TestBuildZenBulkDataMapCarriesThroughWhenFits(t *testing.T) {
	entries := []legacy.DataResourceEntry{
		{SerialOffset: 0, SerialSize: 10, RawSize: 10},
	}
	out := bulkdata.BuildZenBulkDataMap(entries, 10)
	require.Len(t, out, 1)
	require.Equal(t, int64(0), out[0].SerialOffset)
}

func TestBuildZenBulkDataMapSynthesizesWhenOverIndexed(t *testing.T) {
	entries := []legacy.DataResourceEntry{
		{SerialOffset: 0, SerialSize: 100, RawSize: 100},
	}
	out := bulkdata.BuildZenBulkDataMap(entries, 10)
	require.Len(t, out, 1)
	require.Equal(t, int64(10), out[0].SerialSize)
}

func TestBuildZenBulkDataMapSynthesizesWhenEmpty(t *testing.T) {
	out := bulkdata.BuildZenBulkDataMap(nil, 42)
	require.Len(t, out, 1)
	require.Equal(t, int64(42), out[0].SerialSize)
}

func TestBuildZenBulkDataMapEmptyWhenNoBulkData(t *testing.T) {
	out := bulkdata.BuildZenBulkDataMap(nil, 0)
	require.Empty(t, out)
}
