// Package lockfile serializes the installed set to a portable, human
// readable file and replays it via the installer (spec.md C10), realized
// with BurntSushi/toml's keyed-table format, grounded on the teacher's
// pkg/localdata/config.go TOML read/write pattern.
package lockfile

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"

	"github.com/plyght/wax/pkg/state"
	"github.com/plyght/wax/pkg/waxerr"
)

// Entry is one {version, bottle-platform-tag} pin.
type Entry struct {
	Version string `toml:"version"`
	Bottle  string `toml:"bottle"`
}

// File is the parsed shape of wax.lock: a single [packages] table.
type File struct {
	Packages map[string]Entry `toml:"packages"`
}

// Generate reads the formula install-state store and emits a File pinning
// every installed package to its installed version and platform tag.
func Generate(store *state.Store) (*File, error) {
	installed, err := store.List()
	if err != nil {
		return nil, err
	}
	f := &File{Packages: make(map[string]Entry, len(installed))}
	for _, pkg := range installed {
		f.Packages[pkg.Name] = Entry{Version: pkg.Version, Bottle: pkg.PlatformTag}
	}
	return f, nil
}

// Save writes f to path atomically (write to temp file, rename).
func Save(f *File, path string) error {
	tmp := path + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Trace(err)
	}
	if err := toml.NewEncoder(out).Encode(f); err != nil {
		out.Close()
		return waxerr.Lockfile("could not encode %s: %v", path, err)
	}
	if err := out.Close(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.Rename(tmp, path))
}

// Load parses path. Unknown fields are ignored by BurntSushi/toml's
// default decoding; an entry without a version surfaces as
// waxerr.Lockfile. No other field of an entry is checked.
func Load(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, waxerr.Lockfile("could not parse %s: %v", path, err)
	}
	for name, entry := range f.Packages {
		if entry.Version == "" {
			return nil, waxerr.Lockfile("entry %q is missing a version", name)
		}
	}
	return &f, nil
}
