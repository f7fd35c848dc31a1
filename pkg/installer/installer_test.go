package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plyght/wax/pkg/bottle"
	"github.com/plyght/wax/pkg/layout"
	"github.com/plyght/wax/pkg/metadata"
	"github.com/plyght/wax/pkg/state"
	"github.com/plyght/wax/pkg/waxerr"
)

func writeExtractedBottle(t *testing.T, root string) {
	t.Helper()
	binDir := filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "tree"), []byte("#!/bin/sh\n"), 0o755))
}

func TestVersionEqualExactMatch(t *testing.T) {
	require.True(t, versionEqual("2.2.1", "2.2.1"))
}

func TestVersionEqualSemverNormalizedMatch(t *testing.T) {
	require.True(t, versionEqual("2.2.1", "v2.2.1"))
	require.False(t, versionEqual("2.2.1", "2.2.2"))
}

func TestVersionEqualFallsBackToExactMatchForNonSemver(t *testing.T) {
	require.True(t, versionEqual("1.2.3_1", "1.2.3_1"))
	require.False(t, versionEqual("1.2.3_1", "1.2.3_2"))
}

func writeCacheFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestOutdatedReportsFormulaAndCaskVersionMismatches(t *testing.T) {
	cacheDir := t.TempDir()
	writeCacheFile(t, cacheDir, "formulae.json", `[
		{"name":"tree","full_name":"tree","versions":{"stable":"2.2.1"}},
		{"name":"jq","full_name":"jq","versions":{"stable":"1.7"}}
	]`)
	writeCacheFile(t, cacheDir, "casks.json", `[
		{"token":"firefox","full_token":"firefox","version":"128.0"}
	]`)
	meta, err := metadata.NewClient(metadata.WithCacheDir(cacheDir))
	require.NoError(t, err)

	formulaStore := state.NewFormulaStore(t.TempDir())
	require.NoError(t, formulaStore.Insert(state.InstalledPackage{Name: "tree", Version: "2.2.1"}))
	require.NoError(t, formulaStore.Insert(state.InstalledPackage{Name: "jq", Version: "1.6"}))

	caskStore := state.NewCaskStore(t.TempDir())
	require.NoError(t, caskStore.Insert(state.InstalledPackage{Name: "firefox", Version: "127.0", IsCask: true}))

	o := &Orchestrator{Meta: meta, FormulaStore: formulaStore}
	outdated, err := o.Outdated(caskStore)
	require.NoError(t, err)

	require.Len(t, outdated, 2)
	require.Equal(t, "firefox", outdated[0].Name)
	require.True(t, outdated[0].IsCask)
	require.Equal(t, "127.0", outdated[0].InstalledVersion)
	require.Equal(t, "128.0", outdated[0].LatestVersion)
	require.Equal(t, "jq", outdated[1].Name)
	require.False(t, outdated[1].IsCask)
}

func TestOutdatedIsEmptyWhenEverythingCurrent(t *testing.T) {
	cacheDir := t.TempDir()
	writeCacheFile(t, cacheDir, "formulae.json", `[{"name":"tree","full_name":"tree","versions":{"stable":"2.2.1"}}]`)
	writeCacheFile(t, cacheDir, "casks.json", `[]`)
	meta, err := metadata.NewClient(metadata.WithCacheDir(cacheDir))
	require.NoError(t, err)

	formulaStore := state.NewFormulaStore(t.TempDir())
	require.NoError(t, formulaStore.Insert(state.InstalledPackage{Name: "tree", Version: "2.2.1"}))

	o := &Orchestrator{Meta: meta, FormulaStore: formulaStore}
	outdated, err := o.Outdated(state.NewCaskStore(t.TempDir()))
	require.NoError(t, err)
	require.Empty(t, outdated)
}

func TestMoveIntoCellarRenamesWithinSameFilesystem(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "extracted")
	to := filepath.Join(dir, "cellar", "tree", "2.2.1")
	writeExtractedBottle(t, from)
	require.NoError(t, os.MkdirAll(filepath.Dir(to), 0o755))

	require.NoError(t, moveIntoCellar(from, to))

	_, err := os.Stat(filepath.Join(to, "bin", "tree"))
	require.NoError(t, err)
	_, err = os.Stat(from)
	require.True(t, os.IsNotExist(err))
}

func TestApplyOneCreatesCellarSymlinksAndState(t *testing.T) {
	dir := t.TempDir()
	l := layout.NewForTest(layout.User, dir)
	store := state.NewFormulaStore(t.TempDir())
	o := &Orchestrator{FormulaStore: store}

	extracted := filepath.Join(t.TempDir(), "tree-2.2.1")
	writeExtractedBottle(t, extracted)

	res := &bottle.Result{ExtractedRoot: extracted, Name: "tree", Version: "2.2.1"}
	require.NoError(t, o.applyOne("tree", res, l, "arm64_sonoma"))

	_, err := os.Stat(filepath.Join(l.CellarVersionPath("tree", "2.2.1"), "bin", "tree"))
	require.NoError(t, err)

	linkTarget, err := os.Readlink(filepath.Join(l.BinPath(), "tree"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(l.CellarVersionPath("tree", "2.2.1"), "bin", "tree"), linkTarget)

	table, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "2.2.1", table["tree"].Version)
	require.Equal(t, "arm64_sonoma", table["tree"].PlatformTag)
	require.NotEmpty(t, table["tree"].SymlinkPaths)
}

func TestApplyPhaseSkipsDownstreamOfAFailure(t *testing.T) {
	dir := t.TempDir()
	l := layout.NewForTest(layout.User, dir)
	store := state.NewFormulaStore(t.TempDir())
	o := &Orchestrator{FormulaStore: store}

	okExtracted := filepath.Join(t.TempDir(), "oniguruma-6.9.9")
	writeExtractedBottle(t, okExtracted)

	order := []string{"oniguruma", "jq", "jq-dependent"}
	results := []downloadResult{
		{name: "oniguruma", bottle: &bottle.Result{ExtractedRoot: okExtracted, Name: "oniguruma", Version: "6.9.9"}},
		{name: "jq", err: waxerr.BottleNotAvailable("arm64_sonoma")},
		{name: "jq-dependent", bottle: &bottle.Result{ExtractedRoot: okExtracted, Name: "jq-dependent", Version: "1.0"}},
	}

	report := &Report{Skipped: make(map[string]string), Failures: make(map[string]error)}
	o.applyPhase(order, results, l, "arm64_sonoma", report)

	require.Equal(t, []string{"oniguruma"}, report.Installed)
	require.Contains(t, report.Failures, "jq")
	require.Contains(t, report.Skipped, "jq-dependent")
	require.Contains(t, report.Skipped["jq-dependent"], "jq")
}

func TestApplyPhaseStopsOnApplicationFailureToo(t *testing.T) {
	dir := t.TempDir()
	l := layout.NewForTest(layout.User, dir)
	store := state.NewFormulaStore(t.TempDir())
	o := &Orchestrator{FormulaStore: store}

	order := []string{"broken", "after"}
	results := []downloadResult{
		{name: "broken", bottle: &bottle.Result{ExtractedRoot: filepath.Join(t.TempDir(), "does-not-exist"), Name: "broken", Version: "1.0"}},
		{name: "after", bottle: &bottle.Result{ExtractedRoot: filepath.Join(t.TempDir(), "also-missing"), Name: "after", Version: "1.0"}},
	}

	report := &Report{Skipped: make(map[string]string), Failures: make(map[string]error)}
	o.applyPhase(order, results, l, "arm64_sonoma", report)

	require.Empty(t, report.Installed)
	require.Contains(t, report.Failures, "broken")
	require.Contains(t, report.Skipped, "after")
}
