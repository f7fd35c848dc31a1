package lockfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plyght/wax/pkg/state"
)

func TestGenerateReadsInstallState(t *testing.T) {
	store := state.NewFormulaStore(t.TempDir())
	require.NoError(t, store.Insert(state.InstalledPackage{Name: "tree", Version: "2.2.1", PlatformTag: "arm64_sonoma"}))
	require.NoError(t, store.Insert(state.InstalledPackage{Name: "jq", Version: "1.7", PlatformTag: "arm64_sonoma"}))

	f, err := Generate(store)
	require.NoError(t, err)
	require.Len(t, f.Packages, 2)
	require.Equal(t, Entry{Version: "2.2.1", Bottle: "arm64_sonoma"}, f.Packages["tree"])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wax.lock")
	f := &File{Packages: map[string]Entry{
		"nginx": {Version: "1.25.3", Bottle: "arm64_sonoma"},
	}}
	require.NoError(t, Save(f, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, f.Packages, loaded.Packages)
}

func TestLoadRejectsEntryMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wax.lock")
	require.NoError(t, Save(&File{Packages: map[string]Entry{"nginx": {Bottle: "arm64_sonoma"}}}, path))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadOfMissingFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.lock"))
	require.Error(t, err)
}
