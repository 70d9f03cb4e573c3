package mappedname_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gbudweiser/zenlegacycodec/mappedname"
)

func TestWriteToReadFromRoundTrip(t *testing.T) {
	m := mappedname.MappedName{Index: 12, Number: 5}
	var buf bytes.Buffer
	require.NoError(t, m.WriteTo(&buf))
	require.Equal(t, 8, buf.Len())

	got, err := mappedname.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestRenderNoSuffix(t *testing.T) {
	m := mappedname.MappedName{Index: 0, Number: 0}
	s, err := m.Render([]string{"Actor"})
	require.NoError(t, err)
	require.Equal(t, "Actor", s)
}

func TestRenderWithSuffix(t *testing.T) {
	m := mappedname.MappedName{Index: 0, Number: 4}
	s, err := m.Render([]string{"Actor"})
	require.NoError(t, err)
	require.Equal(t, "Actor_3", s)
}

func TestRenderOutOfRangeIndex(t *testing.T) {
	m := mappedname.MappedName{Index: 3, Number: 0}
	_, err := m.Render([]string{"Actor"})
	require.Error(t, err)
}

func TestReadFromTruncated(t *testing.T) {
	_, err := mappedname.ReadFrom(bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)
}
