package tap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddListRemoveRoundTrip(t *testing.T) {
	r := NewRegistry(t.TempDir())

	require.NoError(t, r.Add("user/repo"))
	require.NoError(t, r.Add("other/tap"))

	names, err := r.List()
	require.NoError(t, err)
	require.Equal(t, []string{"other/tap", "user/repo"}, names)

	require.NoError(t, r.Remove("user/repo"))
	names, err = r.List()
	require.NoError(t, err)
	require.Equal(t, []string{"other/tap"}, names)
}

func TestAddIsIdempotent(t *testing.T) {
	r := NewRegistry(t.TempDir())
	require.NoError(t, r.Add("user/repo"))
	require.NoError(t, r.Add("user/repo"))

	names, err := r.List()
	require.NoError(t, err)
	require.Equal(t, []string{"user/repo"}, names)
}

func TestRemoveUnknownTapIsError(t *testing.T) {
	r := NewRegistry(t.TempDir())
	require.Error(t, r.Remove("never/added"))
}

func TestListOfEmptyRegistryIsEmpty(t *testing.T) {
	r := NewRegistry(t.TempDir())
	names, err := r.List()
	require.NoError(t, err)
	require.Empty(t, names)
}
