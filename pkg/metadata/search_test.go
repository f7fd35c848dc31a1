package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchScoreTiers(t *testing.T) {
	score, ok := MatchScore("tree", "", "tree")
	require.True(t, ok)
	require.Equal(t, 1000, score)

	score, ok = MatchScore("treeutils", "", "tree")
	require.True(t, ok)
	require.Equal(t, 900, score)

	score, ok = MatchScore("subtree", "", "tree")
	require.True(t, ok)
	require.Equal(t, 850, score)

	score, ok = MatchScore("display-tree", "", "tree")
	require.True(t, ok)
	require.Equal(t, 850, score)

	score, ok = MatchScore("jq", "a tool to browse tree structures", "tree")
	require.True(t, ok)
	require.Equal(t, 600, score)

	score, ok = MatchScore("jq", "Display directories as trees", "tree")
	require.True(t, ok)
	require.Equal(t, 300, score)

	_, ok = MatchScore("jq", "", "tree")
	require.False(t, ok)
}

func TestSearchRanksFormulaeAboveWeakerCaskMatchesAndMarksInstalled(t *testing.T) {
	formulae := []*Formula{
		{Name: "tree", Description: "Display directories as trees", Version: "2.2.1"},
		{Name: "jq", Description: "Lightweight JSON processor", Version: "1.7"},
	}
	casks := []*Cask{
		{Token: "treesheets", Description: "A tree-shaped spreadsheet", Version: "1.0"},
	}

	installedFormulae := map[string]struct{}{"tree": {}}
	results := Search(formulae, casks, "tree", installedFormulae, nil)

	require.Len(t, results, 2)
	require.Equal(t, "tree", results[0].Name)
	require.True(t, results[0].Installed)
	require.False(t, results[0].IsCask)
	require.Equal(t, "treesheets", results[1].Name)
	require.True(t, results[1].IsCask)
}

func TestSearchExcludesNonMatches(t *testing.T) {
	formulae := []*Formula{{Name: "jq", Description: "Lightweight JSON processor", Version: "1.7"}}
	results := Search(formulae, nil, "nonexistent-package-xyz", nil, nil)
	require.Empty(t, results)
}
