package namebatch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/namebatch"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	names := []string{"Actor", "SkeletalMesh", "こんにちは", ""}
	encoded := namebatch.Encode(names, namebatch.EncodeOptions{})

	entries, err := namebatch.Decode(encoded)
	require.NoError(t, err)
	require.Len(t, entries, len(names))
	for i, n := range names {
		require.Equal(t, n, entries[i].Value)
	}
}

func TestEncodeEmptyBatch(t *testing.T) {
	encoded := namebatch.Encode(nil, namebatch.EncodeOptions{})
	entries, err := namebatch.Decode(encoded)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDecodeWithLengthLocatesTrailingData(t *testing.T) {
	names := []string{"Foo", "Bar"}
	encoded := namebatch.Encode(names, namebatch.EncodeOptions{})
	trailer := []byte{1, 2, 3, 4}
	buf := append(append([]byte(nil), encoded...), trailer...)

	entries, n, err := namebatch.DecodeWithLength(buf)
	require.NoError(t, err)
	require.Equal(t, len(encoded), n)
	require.Equal(t, trailer, buf[n:])
	require.Len(t, entries, 2)
}

func TestLossyEncodingReplacesNonASCII(t *testing.T) {
	names := []string{"héllo"}
	encoded := namebatch.Encode(names, namebatch.EncodeOptions{Lossy: true})
	entries, err := namebatch.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, "h?llo", entries[0].Value)
}

func TestDecodeRejectsBadHashAlgorithmID(t *testing.T) {
	encoded := namebatch.Encode([]string{"Foo"}, namebatch.EncodeOptions{})
	// Corrupt the 8-byte hash-algorithm-id field, which sits right after
	// the u32 count and u32 total-length fields.
	encoded[8] ^= 0xFF
	_, err := namebatch.Decode(encoded)
	require.Error(t, err)
}
