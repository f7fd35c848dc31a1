package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plyght/wax/pkg/platform"
)

const sampleFormulaJSON = `{
	"name": "tree",
	"full_name": "tree",
	"desc": "Display directories as trees",
	"homepage": "https://formulae.brew.sh",
	"versions": {"stable": "2.2.1"},
	"dependencies": [],
	"build_dependencies": [],
	"bottle": {
		"stable": {
			"files": {
				"arm64_sonoma": {"url": "https://ghcr.io/v2/homebrew/core/tree/blobs/sha256:aaa", "sha256": "aaa"},
				"all": {"url": "https://ghcr.io/v2/homebrew/core/tree/blobs/sha256:bbb", "sha256": "bbb"}
			}
		}
	}
}`

func TestFormulaUnmarshalLiftsNestedBottleFiles(t *testing.T) {
	var f Formula
	require.NoError(t, json.Unmarshal([]byte(sampleFormulaJSON), &f))

	require.Equal(t, "tree", f.Name)
	require.Equal(t, "2.2.1", f.Version)
	require.NotNil(t, f.Bottle)
	require.Equal(t, "aaa", f.Bottle.Files["arm64_sonoma"].SHA256)
	require.Equal(t, "bbb", f.Bottle.Files[platform.AllTag].SHA256)
}

func TestFormulaMarshalRoundTrips(t *testing.T) {
	var f Formula
	require.NoError(t, json.Unmarshal([]byte(sampleFormulaJSON), &f))

	data, err := json.Marshal(&f)
	require.NoError(t, err)

	var f2 Formula
	require.NoError(t, json.Unmarshal(data, &f2))
	require.Equal(t, f.Name, f2.Name)
	require.Equal(t, f.Version, f2.Version)
	require.Equal(t, f.Bottle.Files, f2.Bottle.Files)
}

func TestFormulaWithNoBottleIsNotBottledForAnyTag(t *testing.T) {
	f := Formula{Name: "source-only"}
	require.False(t, f.BottledFor("arm64_sonoma"))
}

func TestQualifiedNameUsesTapPrefix(t *testing.T) {
	f := Formula{Name: "foo", Tap: "user/repo"}
	require.Equal(t, "user/repo/foo", f.QualifiedName())

	core := Formula{Name: "foo"}
	require.Equal(t, "foo", core.QualifiedName())
}
