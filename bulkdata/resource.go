package bulkdata

import (
	"github.com/gbudweiser/zenlegacycodec/legacy"
	"github.com/gbudweiser/zenlegacycodec/zen"
)

// MirrorZenToLegacy carries zen bulk-data-map entries through verbatim
// into legacy data-resource entries, 1:1 in order (spec §4.2 stage b,
// "bulk-data resource mirroring"). OuterIndex is always left at its legacy
// null (0) value: the zen bulk-data map carries no outer reference of its
// own to translate.
func MirrorZenToLegacy(entries []zen.BulkDataEntry) []legacy.DataResourceEntry {
	out := make([]legacy.DataResourceEntry, len(entries))
	for i, e := range entries {
		out[i] = legacy.DataResourceEntry{
			Flags:                 e.Flags,
			SerialOffset:          e.SerialOffset,
			DuplicateSerialOffset: -1,
			SerialSize:            e.SerialSize,
			RawSize:               e.RawSize,
			LegacyBulkDataFlags:   e.LegacyBulkDataFlags,
		}
	}
	return out
}

// BuildZenBulkDataMap implements spec §4.3's bulk-data map construction:
// carry through legacy data-resource entries verbatim when every entry's
// serial range fits inside the companion bulk file, or synthesize a
// single entry spanning the whole file when the originals over-index it
// (e.g. a legacy asset whose resources were tracked in a separate bulk
// file this core was not given). A package with no data resources and no
// bulk file produces no entries at all rather than a degenerate
// zero-size one.
func BuildZenBulkDataMap(entries []legacy.DataResourceEntry, bulkFileSize int64) []zen.BulkDataEntry {
	if len(entries) == 0 && bulkFileSize == 0 {
		return nil
	}

	fits := true
	for _, e := range entries {
		if e.SerialOffset < 0 || e.SerialOffset+e.SerialSize > bulkFileSize {
			fits = false
			break
		}
	}
	if !fits || len(entries) == 0 {
		return []zen.BulkDataEntry{{
			SerialOffset:        0,
			SerialSize:          bulkFileSize,
			RawSize:             bulkFileSize,
			LegacyBulkDataFlags: 0,
			Flags:               0,
		}}
	}

	out := make([]zen.BulkDataEntry, len(entries))
	for i, e := range entries {
		out[i] = zen.BulkDataEntry{
			SerialOffset:        e.SerialOffset,
			SerialSize:          e.SerialSize,
			RawSize:             e.RawSize,
			LegacyBulkDataFlags: e.LegacyBulkDataFlags,
			Flags:               e.Flags,
		}
	}
	return out
}
