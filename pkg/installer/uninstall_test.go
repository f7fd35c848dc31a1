package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plyght/wax/pkg/layout"
	"github.com/plyght/wax/pkg/state"
)

// uninstallTestLayout points HOME at an isolated temp dir and returns the
// resulting user-mode Layout, since Uninstall resolves its own Layout from
// the installed package's recorded Mode rather than taking one as a param.
func uninstallTestLayout(t *testing.T) *layout.Layout {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	l, err := layout.Select(true, false)
	require.NoError(t, err)
	return l
}

func TestUninstallRemovesTheWholeCellarPackageDirectory(t *testing.T) {
	l := uninstallTestLayout(t)

	versionPath := l.CellarVersionPath("tree", "2.2.1")
	writeExtractedBottle(t, versionPath)

	binLink := filepath.Join(l.BinPath(), "tree")
	require.NoError(t, os.MkdirAll(l.BinPath(), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(versionPath, "bin", "tree"), binLink))

	store := state.NewFormulaStore(t.TempDir())
	require.NoError(t, store.Insert(state.InstalledPackage{
		Name:         "tree",
		Version:      "2.2.1",
		Mode:         "user",
		SymlinkPaths: []string{binLink},
	}))

	o := &Orchestrator{FormulaStore: store}
	report, err := o.Uninstall("tree", false)
	require.NoError(t, err)
	require.Equal(t, "tree", report.Name)

	_, err = os.Stat(l.CellarPackagePath("tree"))
	require.True(t, os.IsNotExist(err), "expected the whole package directory to be gone, not just the version directory")

	table, err := store.Load()
	require.NoError(t, err)
	_, stillThere := table["tree"]
	require.False(t, stillThere)
}

func TestUninstallDryRunLeavesCellarUntouched(t *testing.T) {
	l := uninstallTestLayout(t)

	versionPath := l.CellarVersionPath("tree", "2.2.1")
	writeExtractedBottle(t, versionPath)

	store := state.NewFormulaStore(t.TempDir())
	require.NoError(t, store.Insert(state.InstalledPackage{Name: "tree", Version: "2.2.1", Mode: "user"}))

	o := &Orchestrator{FormulaStore: store}
	report, err := o.Uninstall("tree", true)
	require.NoError(t, err)
	require.True(t, report.DryRun)

	_, err = os.Stat(l.CellarPackagePath("tree"))
	require.NoError(t, err)

	table, err := store.Load()
	require.NoError(t, err)
	_, stillThere := table["tree"]
	require.True(t, stillThere)
}
