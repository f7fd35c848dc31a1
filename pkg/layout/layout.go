// Package layout chooses the install mode (user vs. global) and derives
// the Cellar and prefix subdirectory paths as pure functions of the chosen
// prefix (spec.md C6).
package layout

import (
	"os"
	"path/filepath"

	"github.com/pingcap/errors"

	"github.com/plyght/wax/pkg/platform"
	"github.com/plyght/wax/pkg/waxerr"
)

// Mode selects the root install prefix.
type Mode int

const (
	// Global installs into the Homebrew-compatible system prefix.
	Global Mode = iota
	// User installs into a home-directory prefix.
	User
)

func (m Mode) String() string {
	if m == User {
		return "user"
	}
	return "global"
}

// Layout is the set of pure path derivations for one resolved prefix.
type Layout struct {
	Mode   Mode
	prefix string
}

// userPrefixSuffix is the fixed User-mode prefix relative to $HOME.
const userPrefixSuffix = ".local/wax"

// subdirs are the prefix subdirectories the symlink manager knows about.
var subdirs = []string{"bin", "lib", "include", "share", "etc", "sbin"}

// Subdirs returns the supported Cellar/prefix subdirectory names.
func Subdirs() []string { return append([]string(nil), subdirs...) }

// Select implements spec.md §4.6's mode-selection contract:
//   - user && global both set → error
//   - user → User mode, ~/.local/wax
//   - global → Global mode, the platform prefix
//   - neither → Detect()
func Select(wantUser, wantGlobal bool) (*Layout, error) {
	if wantUser && wantGlobal {
		return nil, waxerr.Install("--user and --global are mutually exclusive")
	}
	if wantUser {
		return newUser()
	}
	if wantGlobal {
		return newGlobal()
	}
	return Detect()
}

func newUser() (*Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Layout{Mode: User, prefix: filepath.Join(home, userPrefixSuffix)}, nil
}

func newGlobal() (*Layout, error) {
	prefix, err := platform.HomebrewPrefix()
	if err != nil {
		return nil, err
	}
	return &Layout{Mode: Global, prefix: prefix}, nil
}

// Detect chooses Global if the global prefix is writable, else User.
func Detect() (*Layout, error) {
	global, err := newGlobal()
	if err == nil && writable(global.prefix) {
		return global, nil
	}
	return newUser()
}

// writable reports whether dir (or its nearest existing ancestor) can be
// written to, probed by creating and removing a temp file, grounded on the
// teacher's utils.IsExist/IsNotExist idiom generalized into a real
// writability probe.
func writable(dir string) bool {
	probeDir := dir
	for {
		if info, err := os.Stat(probeDir); err == nil {
			if !info.IsDir() {
				return false
			}
			break
		}
		parent := filepath.Dir(probeDir)
		if parent == probeDir {
			return false
		}
		probeDir = parent
	}
	probe := filepath.Join(probeDir, ".wax-write-probe")
	f, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(probe)
	return true
}

// Validate confirms the chosen prefix (or its nearest existing ancestor) is
// writable.
func (l *Layout) Validate() error {
	if !writable(l.prefix) {
		return waxerr.Install("permission denied at %s", l.prefix)
	}
	return nil
}

// NewForTest builds a Layout pointed at an arbitrary prefix, bypassing
// Select's platform detection, for use by other packages' tests that need
// an isolated temp-dir prefix (e.g. the symlink manager's tests).
func NewForTest(mode Mode, prefix string) *Layout {
	return &Layout{Mode: mode, prefix: prefix}
}

// Prefix returns the root install prefix.
func (l *Layout) Prefix() string { return l.prefix }

// CellarPath returns {prefix}/Cellar.
func (l *Layout) CellarPath() string { return filepath.Join(l.prefix, "Cellar") }

// CellarVersionPath returns {prefix}/Cellar/{name}/{version}.
func (l *Layout) CellarVersionPath(name, version string) string {
	return filepath.Join(l.CellarPath(), name, version)
}

// CellarPackagePath returns {prefix}/Cellar/{name}.
func (l *Layout) CellarPackagePath(name string) string {
	return filepath.Join(l.CellarPath(), name)
}

// SubdirPath returns {prefix}/{subdir}.
func (l *Layout) SubdirPath(subdir string) string {
	return filepath.Join(l.prefix, subdir)
}

// BinPath returns {prefix}/bin.
func (l *Layout) BinPath() string { return l.SubdirPath("bin") }

// LibPath returns {prefix}/lib.
func (l *Layout) LibPath() string { return l.SubdirPath("lib") }

// IncludePath returns {prefix}/include.
func (l *Layout) IncludePath() string { return l.SubdirPath("include") }

// SharePath returns {prefix}/share.
func (l *Layout) SharePath() string { return l.SubdirPath("share") }

// EtcPath returns {prefix}/etc.
func (l *Layout) EtcPath() string { return l.SubdirPath("etc") }

// SbinPath returns {prefix}/sbin.
func (l *Layout) SbinPath() string { return l.SubdirPath("sbin") }
