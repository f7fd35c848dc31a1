// Package bottle implements wax's bottle transport (spec.md C5): registry
// auth, streaming download, SHA-256 verification, and gzip+tar extraction
// into a fresh temp directory.
package bottle

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/pingcap/errors"

	"github.com/plyght/wax/pkg/registry"
	"github.com/plyght/wax/pkg/waxerr"
)

// Transport fetches one (url, sha256) bottle pair and extracts it.
type Transport struct {
	tokens   *registry.TokenClient
	progress Progress
	tmpDir   string
}

// NewTransport builds a Transport. tmpDir is the parent of all per-task
// temp directories this Transport creates; progress may be nil (treated as
// NoProgress).
func NewTransport(tmpDir string, progress Progress) *Transport {
	if progress == nil {
		progress = NoProgress{}
	}
	return &Transport{
		tokens:   registry.NewTokenClient(),
		progress: progress,
		tmpDir:   tmpDir,
	}
}

// Result is the outcome of one successful Fetch: the root directory the
// archive extracted to, which the orchestrator moves into the Cellar.
type Result struct {
	ExtractedRoot string
	Name          string
	Version       string
}

// Fetch downloads, verifies, and extracts one bottle (spec.md §4.5
// steps 1-4). pkgName is used only for progress labeling.
func (t *Transport) Fetch(ctx context.Context, pkgName, url, expectedSHA256 string) (*Result, error) {
	taskDir, err := os.MkdirTemp(t.tmpDir, "wax-bottle-*")
	if err != nil {
		return nil, errors.Trace(err)
	}
	cleanupTask := true
	defer func() {
		if cleanupTask {
			_ = os.RemoveAll(taskDir)
		}
	}()

	archivePath := filepath.Join(taskDir, "bottle.tar.gz")
	if err := t.download(ctx, pkgName, url, archivePath); err != nil {
		return nil, err
	}

	if err := verifyChecksum(archivePath, expectedSHA256); err != nil {
		_ = os.Remove(archivePath)
		return nil, err
	}

	extractDir := filepath.Join(taskDir, "extracted")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return nil, errors.Trace(err)
	}
	if err := extractTarGz(archivePath, extractDir); err != nil {
		return nil, err
	}

	root, name, version, err := locateRoot(extractDir)
	if err != nil {
		return nil, err
	}

	cleanupTask = false // ownership of taskDir passes to the caller via root
	return &Result{ExtractedRoot: root, Name: name, Version: version}, nil
}

// download streams the bottle to disk, attaching a registry bearer token
// if the URL is hosted on the container registry (spec.md §4.5 steps 1-2).
func (t *Transport) download(ctx context.Context, pkgName, url, to string) error {
	req, err := grab.NewRequest(to, url)
	if err != nil {
		return errors.Trace(err)
	}
	req.HTTPRequest = req.HTTPRequest.WithContext(ctx)

	if registry.IsRegistryHost(url, registry.DefaultHost) {
		host, repo, err := registry.RepoFromURL(url)
		if err != nil {
			return err
		}
		token, err := t.tokens.Token(ctx, host, repo)
		if err != nil {
			return err
		}
		req.HTTPRequest.Header.Set("Authorization", "Bearer "+token)
	}

	client := grab.NewClient()
	resp := client.Do(req)

	t.progress.Start(pkgName, url, resp.Size())
	defer t.progress.Finish(pkgName)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-ticker.C:
			t.progress.SetCurrent(pkgName, resp.BytesComplete())
		case <-resp.Done:
			break loop
		}
	}

	if err := resp.Err(); err != nil {
		_ = os.Remove(to)
		return waxerr.Http("download from %s failed: %v", url, err)
	}
	return nil
}

func verifyChecksum(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return errors.Trace(err)
	}
	actual := hex.EncodeToString(h.Sum(nil))
	if actual != strings.TrimSpace(expected) {
		return waxerr.ChecksumMismatch(expected, actual)
	}
	return nil
}

// extractTarGz extracts a gzip-wrapped tar archive to dir, rejecting
// absolute paths and ".." segments (spec.md §6 archive-format contract).
func extractTarGz(archivePath, dir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Trace(err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Trace(err)
		}

		target, err := safeJoin(dir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)|0o700); err != nil {
				return errors.Trace(err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Trace(err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)|0o600)
			if err != nil {
				return errors.Trace(err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return errors.Trace(err)
			}
			out.Close()
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Trace(err)
			}
			_ = os.Symlink(hdr.Linkname, target)
		}
	}
	return nil
}

// safeJoin joins dir and name, rejecting absolute paths and any ".."
// traversal outside dir.
func safeJoin(dir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", waxerr.Install("archive entry %q has an absolute path", name)
	}
	joined := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, joined)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", waxerr.Install("archive entry %q escapes the extraction directory", name)
	}
	return joined, nil
}

// locateRoot finds the archive's single top-level {name}/{version}
// directory and returns its path plus the parsed name and version
// (spec.md §4.5 step 4, §6 archive-format contract).
func locateRoot(extractDir string) (root, name, version string, err error) {
	entries, readErr := os.ReadDir(extractDir)
	if readErr != nil {
		return "", "", "", errors.Trace(readErr)
	}
	var topDirs []string
	for _, e := range entries {
		if e.IsDir() {
			topDirs = append(topDirs, e.Name())
		}
	}
	if len(topDirs) != 1 {
		return "", "", "", waxerr.Install("archive does not contain exactly one top-level directory (found %d)", len(topDirs))
	}
	name = topDirs[0]
	nameDir := filepath.Join(extractDir, name)

	versionEntries, readErr := os.ReadDir(nameDir)
	if readErr != nil {
		return "", "", "", errors.Trace(readErr)
	}
	var versionDirs []string
	for _, e := range versionEntries {
		if e.IsDir() {
			versionDirs = append(versionDirs, e.Name())
		}
	}
	if len(versionDirs) != 1 {
		return "", "", "", waxerr.Install("archive's %s/ does not contain exactly one version directory (found %d)", name, len(versionDirs))
	}
	version = versionDirs[0]
	return filepath.Join(nameDir, version), name, version, nil
}
