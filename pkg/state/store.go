// Package state is the single source of truth for "is X installed?"
// (spec.md C8): a durable, keyed table of InstalledPackage records.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	"github.com/pingcap/errors"

	"github.com/plyght/wax/pkg/resolver"
	"github.com/plyght/wax/pkg/waxerr"
)

const (
	formulaeStateFile = "installed.json"
	casksStateFile    = "installed_casks.json"
	fallbackStateDir  = ".wax"
)

// DataDir resolves wax's state directory: macOS application-support dir,
// Linux XDG data dir, or ~/.wax as a last resort.
func DataDir() (string, error) {
	if dir, err := xdg.DataFile(filepath.Join("wax", ".keep")); err == nil {
		return filepath.Dir(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Annotatef(err, "could not resolve a home directory for the wax state store")
	}
	return filepath.Join(home, fallbackStateDir), nil
}

// Store is a persisted, name-keyed table of InstalledPackage records.
type Store struct {
	dir  string
	file string
}

// NewFormulaStore opens the formula install-state store at dir/installed.json.
func NewFormulaStore(dir string) *Store {
	return &Store{dir: dir, file: formulaeStateFile}
}

// NewCaskStore opens the cask install-state store at dir/installed_casks.json.
func NewCaskStore(dir string) *Store {
	return &Store{dir: dir, file: casksStateFile}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, s.file)
}

// Load returns the full installed-package table, or an empty map if the
// store file does not exist yet.
func (s *Store) Load() (map[string]InstalledPackage, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]InstalledPackage{}, nil
		}
		return nil, errors.Trace(err)
	}
	var table map[string]InstalledPackage
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, waxerr.Json("%v", err)
	}
	if table == nil {
		table = map[string]InstalledPackage{}
	}
	return table, nil
}

// Insert replaces any existing entry for pkg.Name and persists durably
// (write-then-rename).
func (s *Store) Insert(pkg InstalledPackage) error {
	table, err := s.Load()
	if err != nil {
		return err
	}
	table[pkg.Name] = pkg
	return s.save(table)
}

// Remove deletes the entry for name and persists, or returns
// waxerr.NotInstalled(name) if it is absent.
func (s *Store) Remove(name string) (InstalledPackage, error) {
	table, err := s.Load()
	if err != nil {
		return InstalledPackage{}, err
	}
	pkg, ok := table[name]
	if !ok {
		return InstalledPackage{}, waxerr.NotInstalled(name)
	}
	delete(table, name)
	if err := s.save(table); err != nil {
		return InstalledPackage{}, err
	}
	return pkg, nil
}

// List returns every installed package, sorted by name for deterministic
// output.
func (s *Store) List() ([]InstalledPackage, error) {
	table, err := s.Load()
	if err != nil {
		return nil, err
	}
	out := make([]InstalledPackage, 0, len(table))
	for _, pkg := range table {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DependentsOf scans the installed set for packages whose resolved
// dependency set (per the formula index in set) contains name. This is
// O(installed × avg-deps); fine at the scale this store targets (spec.md
// §9 open question).
func (s *Store) DependentsOf(name string, set resolver.FormulaSet) ([]string, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var dependents []string
	for _, pkg := range all {
		if pkg.Name == name {
			continue
		}
		order, err := resolver.Resolve(pkg.Name, set, nil)
		if err != nil {
			continue // a package whose formula vanished from the index can't be analyzed; skip it
		}
		for _, dep := range order {
			if dep == name {
				dependents = append(dependents, pkg.Name)
				break
			}
		}
	}
	return dependents, nil
}

func (s *Store) save(table map[string]InstalledPackage) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Trace(err)
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.Rename(tmp, s.path()))
}
