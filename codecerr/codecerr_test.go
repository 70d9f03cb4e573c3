package codecerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/codecerr"
)

func TestMalformedfIsMatchesSentinel(t *testing.T) {
	err := codecerr.Malformedf("legacy.magic", 0, "bad magic 0x%X", 1)
	require.True(t, errors.Is(err, codecerr.InputMalformed))
	require.False(t, errors.Is(err, codecerr.ExternalIO))
}

func TestUnresolvedfIsMatchesSentinel(t *testing.T) {
	err := codecerr.Unresolvedf("import", "unknown hash 0x%X", 0xDEAD)
	require.True(t, errors.Is(err, codecerr.UnresolvedReference))
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := codecerr.IO(cause)
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, codecerr.ExternalIO)
	require.Contains(t, err.Error(), "boom")
}

func TestInvariantViolatedfMessage(t *testing.T) {
	err := codecerr.InvariantViolatedf("export %d out of range", 3)
	require.Contains(t, err.Error(), "export 3 out of range")
}
