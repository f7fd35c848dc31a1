package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plyght/wax/pkg/metadata"
	"github.com/plyght/wax/pkg/resolver"
)

func TestInsertLoadListRoundTrip(t *testing.T) {
	store := NewFormulaStore(t.TempDir())

	pkg := InstalledPackage{Name: "tree", Version: "2.2.1", PlatformTag: "arm64_sonoma", Mode: "user"}
	require.NoError(t, store.Insert(pkg))

	table, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, pkg, table["tree"])

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "tree", list[0].Name)
}

func TestLoadOfMissingStoreIsEmptyNotError(t *testing.T) {
	store := NewFormulaStore(t.TempDir())
	table, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, table)
}

func TestInsertReplacesExistingEntry(t *testing.T) {
	store := NewFormulaStore(t.TempDir())
	require.NoError(t, store.Insert(InstalledPackage{Name: "tree", Version: "2.2.0"}))
	require.NoError(t, store.Insert(InstalledPackage{Name: "tree", Version: "2.2.1"}))

	table, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "2.2.1", table["tree"].Version)
	require.Len(t, table, 1)
}

func TestRemoveOfUnknownNameIsNotInstalled(t *testing.T) {
	store := NewFormulaStore(t.TempDir())
	_, err := store.Remove("tree")
	require.Error(t, err)
}

func TestRemoveDeletesEntry(t *testing.T) {
	store := NewFormulaStore(t.TempDir())
	require.NoError(t, store.Insert(InstalledPackage{Name: "tree", Version: "2.2.1"}))

	pkg, err := store.Remove("tree")
	require.NoError(t, err)
	require.Equal(t, "2.2.1", pkg.Version)

	table, err := store.Load()
	require.NoError(t, err)
	require.NotContains(t, table, "tree")
}

func TestDependentsOfScansInstalledSet(t *testing.T) {
	store := NewFormulaStore(t.TempDir())
	require.NoError(t, store.Insert(InstalledPackage{Name: "oniguruma", Version: "6.9.9"}))
	require.NoError(t, store.Insert(InstalledPackage{Name: "jq", Version: "1.7"}))

	set := resolver.NewFormulaSet([]*metadata.Formula{
		{Name: "jq", RuntimeDeps: []string{"oniguruma"}},
		{Name: "oniguruma"},
	})

	dependents, err := store.DependentsOf("oniguruma", set)
	require.NoError(t, err)
	require.Equal(t, []string{"jq"}, dependents)
}

func TestCaskStoreIsSeparateFromFormulaStore(t *testing.T) {
	dir := t.TempDir()
	formulae := NewFormulaStore(dir)
	casks := NewCaskStore(dir)

	require.NoError(t, formulae.Insert(InstalledPackage{Name: "tree", Version: "2.2.1"}))
	require.NoError(t, casks.Insert(InstalledPackage{Name: "firefox", Version: "120.0", IsCask: true}))

	formulaTable, err := formulae.Load()
	require.NoError(t, err)
	require.NotContains(t, formulaTable, "firefox")

	caskTable, err := casks.Load()
	require.NoError(t, err)
	require.NotContains(t, caskTable, "tree")
}
