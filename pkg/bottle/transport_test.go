package bottle

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeJoinRejectsAbsolutePaths(t *testing.T) {
	_, err := safeJoin("/tmp/extract", "/etc/passwd")
	require.Error(t, err)
}

func TestSafeJoinRejectsParentTraversal(t *testing.T) {
	_, err := safeJoin("/tmp/extract", "../../etc/passwd")
	require.Error(t, err)
}

func TestSafeJoinAcceptsNestedRelativePath(t *testing.T) {
	joined, err := safeJoin("/tmp/extract", "tree/2.2.1/bin/tree")
	require.NoError(t, err)
	require.Equal(t, "/tmp/extract/tree/2.2.1/bin/tree", joined)
}

func writeArchive(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	archivePath := filepath.Join(dir, "bottle.tar.gz")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	return archivePath
}

func TestExtractTarGzAndLocateRoot(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeArchive(t, dir, map[string]string{
		"tree/2.2.1/bin/tree": "#!/bin/sh\n",
	})

	extractDir := filepath.Join(dir, "extracted")
	require.NoError(t, os.MkdirAll(extractDir, 0o755))
	require.NoError(t, extractTarGz(archivePath, extractDir))

	root, name, version, err := locateRoot(extractDir)
	require.NoError(t, err)
	require.Equal(t, "tree", name)
	require.Equal(t, "2.2.1", version)
	require.Equal(t, filepath.Join(extractDir, "tree", "2.2.1"), root)

	data, err := os.ReadFile(filepath.Join(root, "bin", "tree"))
	require.NoError(t, err)
	require.Equal(t, "#!/bin/sh\n", string(data))
}

func TestExtractTarGzRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archivePath := writeArchive(t, dir, map[string]string{
		"../../etc/passwd": "evil",
	})

	extractDir := filepath.Join(dir, "extracted")
	require.NoError(t, os.MkdirAll(extractDir, 0o755))
	require.Error(t, extractTarGz(archivePath, extractDir))
}

func TestLocateRootRejectsMultipleTopLevelDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tree"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "jq"), 0o755))

	_, _, _, err := locateRoot(dir)
	require.Error(t, err)
}

func TestVerifyChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "body")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	err := verifyChecksum(path, "0000000000000000000000000000000000000000000000000000000000000000")
	require.Error(t, err)
}

func TestVerifyChecksumMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "body")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	sum := sha256.Sum256([]byte("hello"))
	require.NoError(t, verifyChecksum(path, hex.EncodeToString(sum[:])))
}
