package namehash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/namehash"
)

func TestIsASCII(t *testing.T) {
	require.True(t, namehash.IsASCII("Actor_3"))
	require.False(t, namehash.IsASCII("こんにちは"))
}

func TestHash64StableAndCaseInsensitive(t *testing.T) {
	a := namehash.Hash64("Actor")
	b := namehash.Hash64("actor")
	require.Equal(t, a, b)

	c := namehash.Hash64("Pawn")
	require.NotEqual(t, a, c)
}

func TestPathHash64NormalizesSeparators(t *testing.T) {
	a := namehash.PathHash64("/Game/Library")
	b := namehash.PathHash64(`/Game\Library`)
	require.Equal(t, a, b)
}

func TestRenderName(t *testing.T) {
	require.Equal(t, "Actor", namehash.RenderName("Actor", 0))
	require.Equal(t, "Actor_0", namehash.RenderName("Actor", 1))
	require.Equal(t, "Actor_3", namehash.RenderName("Actor", 4))
}

func TestCodeUnitCount(t *testing.T) {
	require.Equal(t, 5, namehash.CodeUnitCount("Actor"))
	require.Equal(t, 5, namehash.CodeUnitCount("こんにちは"))
}

func TestValidUTF8(t *testing.T) {
	require.True(t, namehash.ValidUTF8([]byte("Actor")))
	require.False(t, namehash.ValidUTF8([]byte{0xff, 0xfe, 0xfd}))
}
