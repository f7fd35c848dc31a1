// Package symlink creates and removes the symlinks that mirror a Cellar
// installation's subdirectories into the prefix (spec.md C7).
package symlink

import (
	"os"
	"path/filepath"

	"github.com/pingcap/errors"

	"github.com/plyght/wax/pkg/layout"
	"github.com/plyght/wax/pkg/waxerr"
)

// CreateSymlinks mirrors {cellar}/{name}/{version}/{subdir}/* under
// {prefix}/{subdir}/* for each supported subdir present in the Cellar
// install. Non-recursive per subdir. Idempotent against symlinks that
// already resolve into this package's Cellar directory. Conflicts roll
// back everything created so far in this call (spec.md §4.7).
func CreateSymlinks(l *layout.Layout, name, version string, dryRun bool) ([]string, error) {
	versionDir := l.CellarVersionPath(name, version)
	var created []string

	rollback := func() {
		for _, p := range created {
			_ = os.Remove(p)
		}
	}

	for _, subdir := range layout.Subdirs() {
		srcSubdir := filepath.Join(versionDir, subdir)
		entries, err := os.ReadDir(srcSubdir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			rollback()
			return nil, errors.Trace(err)
		}

		dstSubdir := l.SubdirPath(subdir)
		for _, entry := range entries {
			src := filepath.Join(srcSubdir, entry.Name())
			dst := filepath.Join(dstSubdir, entry.Name())

			action, err := planOne(dst, versionDir)
			if err != nil {
				rollback()
				return nil, err
			}
			switch action {
			case actionSkip:
				continue
			case actionCreate:
				if dryRun {
					created = append(created, dst)
					continue
				}
				if err := os.MkdirAll(dstSubdir, 0o755); err != nil {
					rollback()
					return nil, errors.Trace(err)
				}
				if err := os.Symlink(src, dst); err != nil {
					rollback()
					return nil, errors.Trace(err)
				}
				created = append(created, dst)
			}
		}
	}
	return created, nil
}

type linkAction int

const (
	actionCreate linkAction = iota
	actionSkip
)

// planOne decides what to do for one prospective symlink path: create,
// skip (already owned), or error on a genuine conflict.
func planOne(dst, versionDir string) (linkAction, error) {
	info, err := os.Lstat(dst)
	if os.IsNotExist(err) {
		return actionCreate, nil
	}
	if err != nil {
		return actionSkip, errors.Trace(err)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return actionSkip, waxerr.Install("symlink conflict at %s", dst)
	}

	target, err := os.Readlink(dst)
	if err != nil {
		return actionSkip, waxerr.Install("symlink conflict at %s", dst)
	}
	if !resolvesInto(dst, target, versionDir) {
		return actionSkip, waxerr.Install("symlink conflict at %s", dst)
	}
	// Already points into this package's Cellar directory: idempotent no-op.
	return actionSkip, nil
}

// resolvesInto reports whether a symlink at dst with the given (possibly
// relative) target resolves into versionDir. Uses link-target inspection
// only, never file content, per spec.md §4.7.
func resolvesInto(dst, target, versionDir string) bool {
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(dst), target)
	}
	rel, err := filepath.Rel(versionDir, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !filepathHasDotDotPrefix(rel))
}

func filepathHasDotDotPrefix(rel string) bool {
	return rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

// RemoveSymlinks removes only the symlinks at the would-be mirrored paths
// that currently resolve into this package's Cellar. Foreign or missing
// symlinks are skipped silently. Returns the list of actually-removed
// paths (spec.md §4.7, §8 invariant 7).
func RemoveSymlinks(l *layout.Layout, name, version string, dryRun bool) ([]string, error) {
	versionDir := l.CellarVersionPath(name, version)
	var removed []string

	for _, subdir := range layout.Subdirs() {
		srcSubdir := filepath.Join(versionDir, subdir)
		entries, err := os.ReadDir(srcSubdir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, errors.Trace(err)
		}

		dstSubdir := l.SubdirPath(subdir)
		for _, entry := range entries {
			dst := filepath.Join(dstSubdir, entry.Name())

			info, err := os.Lstat(dst)
			if err != nil {
				continue // missing: skip silently
			}
			if info.Mode()&os.ModeSymlink == 0 {
				continue // foreign file: skip silently
			}
			target, err := os.Readlink(dst)
			if err != nil || !resolvesInto(dst, target, versionDir) {
				continue // foreign symlink: skip silently
			}

			if !dryRun {
				if err := os.Remove(dst); err != nil {
					return removed, errors.Trace(err)
				}
			}
			removed = append(removed, dst)
		}
	}
	return removed, nil
}
