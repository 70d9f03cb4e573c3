package bulkdata_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/bulkdata"
)

func TestMethodFlagsRoundTrip(t *testing.T) {
	for _, m := range []bulkdata.CompressionMethod{bulkdata.MethodNone, bulkdata.MethodZlib, bulkdata.MethodOodle, bulkdata.MethodLZ4} {
		flags := bulkdata.FlagsForMethod(m)
		require.Equal(t, m, bulkdata.MethodFromFlags(flags))
	}
}

func TestCompressDecompressZlibRoundTrip(t *testing.T) {
	data := []byte("hello legacy world")
	compressed, err := bulkdata.Compress(bulkdata.MethodZlib, data)
	require.NoError(t, err)

	decompressed, err := bulkdata.Decompress(bulkdata.MethodZlib, compressed, uint32(len(data)))
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestCompressDecompressLZ4RoundTrip(t *testing.T) {
	data := []byte("hello legacy world, again and again")
	compressed, err := bulkdata.Compress(bulkdata.MethodLZ4, data)
	require.NoError(t, err)

	decompressed, err := bulkdata.Decompress(bulkdata.MethodLZ4, compressed, uint32(len(data)))
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestDecompressUnknownMethod(t *testing.T) {
	_, err := bulkdata.Decompress(bulkdata.CompressionMethod("bogus"), nil, 0)
	require.Error(t, err)
}
