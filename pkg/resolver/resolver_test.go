package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plyght/wax/pkg/metadata"
	"github.com/plyght/wax/pkg/waxerr"
)

func formula(name string, deps ...string) *metadata.Formula {
	return &metadata.Formula{Name: name, RuntimeDeps: deps}
}

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}

func TestResolveProducesTopologicalOrder(t *testing.T) {
	set := NewFormulaSet([]*metadata.Formula{
		formula("jq", "oniguruma"),
		formula("oniguruma"),
	})
	order, err := Resolve("jq", set, nil)
	require.NoError(t, err)
	require.Less(t, indexOf(order, "oniguruma"), indexOf(order, "jq"))
	require.Equal(t, []string{"oniguruma", "jq"}, order)
}

func TestResolvePreservesDependencyListOrderNotHash(t *testing.T) {
	set := NewFormulaSet([]*metadata.Formula{
		formula("app", "zlib", "alpha"),
		formula("zlib"),
		formula("alpha"),
	})
	order, err := Resolve("app", set, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"zlib", "alpha", "app"}, order)
}

func TestResolveDetectsCycle(t *testing.T) {
	set := NewFormulaSet([]*metadata.Formula{
		formula("a", "b"),
		formula("b", "c"),
		formula("c", "a"),
	})
	order, err := Resolve("a", set, nil)
	require.Nil(t, order)
	require.True(t, waxerr.Is(err, waxerr.ErrDependencyCycle))
	require.Contains(t, err.Error(), "a → b → c → a")
}

func TestResolveUnknownDependencyIsFormulaNotFound(t *testing.T) {
	set := NewFormulaSet([]*metadata.Formula{formula("app", "missing")})
	_, err := Resolve("app", set, nil)
	require.True(t, waxerr.Is(err, waxerr.ErrFormulaNotFound))
}

func TestResolvePrunesAlreadyInstalledExceptRoot(t *testing.T) {
	set := NewFormulaSet([]*metadata.Formula{
		formula("jq", "oniguruma"),
		formula("oniguruma"),
	})
	installed := map[string]struct{}{"oniguruma": {}}
	order, err := Resolve("jq", set, installed)
	require.NoError(t, err)
	require.Equal(t, []string{"jq"}, order)
}

func TestResolveKeepsRootEvenIfAlreadyInstalled(t *testing.T) {
	set := NewFormulaSet([]*metadata.Formula{formula("tree")})
	installed := map[string]struct{}{"tree": {}}
	order, err := Resolve("tree", set, installed)
	require.NoError(t, err)
	require.Equal(t, []string{"tree"}, order)
}

func TestResolveDoesNotRevisitSharedDependency(t *testing.T) {
	set := NewFormulaSet([]*metadata.Formula{
		formula("app", "libA", "libB"),
		formula("libA", "shared"),
		formula("libB", "shared"),
		formula("shared"),
	})
	order, err := Resolve("app", set, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"shared", "libA", "libB", "app"}, order)
}
