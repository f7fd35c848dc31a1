package symlink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plyght/wax/pkg/layout"
)

func newTestLayout(t *testing.T) *layout.Layout {
	t.Helper()
	dir := t.TempDir()
	l, err := layout.Select(true, false)
	require.NoError(t, err)
	// Point the layout's prefix at an isolated temp dir rather than the
	// real user prefix, mirroring the teacher's test-only path overrides.
	return layoutWithPrefix(l, dir)
}

func layoutWithPrefix(l *layout.Layout, prefix string) *layout.Layout {
	return layout.NewForTest(l.Mode, prefix)
}

func writeCellarTree(t *testing.T, l *layout.Layout, name, version string) {
	t.Helper()
	binDir := filepath.Join(l.CellarVersionPath(name, version), "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\n"), 0o755))
}

func TestCreateSymlinksLinksIntoCellar(t *testing.T) {
	l := newTestLayout(t)
	writeCellarTree(t, l, "tree", "2.2.1")

	created, err := CreateSymlinks(l, "tree", "2.2.1", false)
	require.NoError(t, err)
	require.Len(t, created, 1)

	target, err := os.Readlink(created[0])
	require.NoError(t, err)
	require.Equal(t, filepath.Join(l.CellarVersionPath("tree", "2.2.1"), "bin", "tree"), target)
}

func TestCreateSymlinksIsIdempotent(t *testing.T) {
	l := newTestLayout(t)
	writeCellarTree(t, l, "tree", "2.2.1")

	_, err := CreateSymlinks(l, "tree", "2.2.1", false)
	require.NoError(t, err)

	created, err := CreateSymlinks(l, "tree", "2.2.1", false)
	require.NoError(t, err)
	require.Empty(t, created)
}

func TestCreateSymlinksDryRunMakesNoChanges(t *testing.T) {
	l := newTestLayout(t)
	writeCellarTree(t, l, "tree", "2.2.1")

	created, err := CreateSymlinks(l, "tree", "2.2.1", true)
	require.NoError(t, err)
	require.Len(t, created, 1)
	_, statErr := os.Lstat(created[0])
	require.True(t, os.IsNotExist(statErr))
}

func TestCreateSymlinksConflictRollsBack(t *testing.T) {
	l := newTestLayout(t)
	writeCellarTree(t, l, "tree", "2.2.1")

	require.NoError(t, os.MkdirAll(l.BinPath(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(l.BinPath(), "tree"), []byte("not a symlink"), 0o644))

	_, err := CreateSymlinks(l, "tree", "2.2.1", false)
	require.Error(t, err)
}

func TestRemoveSymlinksOnlyRemovesOwnedLinks(t *testing.T) {
	l := newTestLayout(t)
	writeCellarTree(t, l, "tree", "2.2.1")
	_, err := CreateSymlinks(l, "tree", "2.2.1", false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(l.SharePath(), 0o755))
	require.NoError(t, os.Symlink("/etc/hosts", filepath.Join(l.SharePath(), "foreign")))

	removed, err := RemoveSymlinks(l, "tree", "2.2.1", false)
	require.NoError(t, err)
	require.Len(t, removed, 1)

	_, statErr := os.Lstat(filepath.Join(l.BinPath(), "tree"))
	require.True(t, os.IsNotExist(statErr))
	_, statErr = os.Lstat(filepath.Join(l.SharePath(), "foreign"))
	require.NoError(t, statErr)
}

func TestRemoveSymlinksSkipsMissingTargetsSilently(t *testing.T) {
	l := newTestLayout(t)
	writeCellarTree(t, l, "tree", "2.2.1")

	removed, err := RemoveSymlinks(l, "tree", "2.2.1", false)
	require.NoError(t, err)
	require.Empty(t, removed)
}
