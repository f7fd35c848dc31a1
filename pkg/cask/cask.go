// Package cask gates GUI-application (cask) operations to macOS. The
// concrete DMG/PKG/ZIP mechanics are a named collaborator interface, out
// of scope per spec.md §1; only the platform-gating contract lives here
// (spec.md C11).
package cask

import (
	"runtime"

	"github.com/plyght/wax/pkg/metadata"
	"github.com/plyght/wax/pkg/state"
	"github.com/plyght/wax/pkg/waxerr"
)

// Artifact is the named collaborator interface the out-of-scope DMG/PKG/ZIP
// subsystem implements to hand wax a normalized, already-unpacked cask
// install ready to be recorded in state.
type Artifact interface {
	// Apply installs the artifact and returns the InstalledPackage record
	// to persist.
	Apply(c *metadata.Cask) (state.InstalledPackage, error)
}

func requireDarwin(feature string) error {
	if runtime.GOOS != "darwin" {
		return waxerr.PlatformNotSupported(feature)
	}
	return nil
}

// Install gates and then delegates to artifact for the concrete install
// mechanics, persisting the resulting record in the cask state store.
func Install(c *metadata.Cask, artifact Artifact, store *state.Store) (state.InstalledPackage, error) {
	if err := requireDarwin("cask: macOS only"); err != nil {
		return state.InstalledPackage{}, err
	}
	pkg, err := artifact.Apply(c)
	if err != nil {
		return state.InstalledPackage{}, err
	}
	pkg.IsCask = true
	if err := store.Insert(pkg); err != nil {
		return state.InstalledPackage{}, err
	}
	return pkg, nil
}

// Uninstall gates and removes a cask's state record. The artifact's own
// on-disk removal (DMG/PKG unregister) is the out-of-scope collaborator's
// responsibility; this only gates and updates state.
func Uninstall(name string, store *state.Store) (state.InstalledPackage, error) {
	if err := requireDarwin("cask: macOS only"); err != nil {
		return state.InstalledPackage{}, err
	}
	return store.Remove(name)
}
