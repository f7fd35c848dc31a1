// Package tap tracks the set of known taps and defines the narrow
// collaborator interface an external Git-cloning subsystem implements to
// contribute extra formulae into the resolver's set (spec.md §1 "Custom
// tap Git cloning... out of scope"). Only the registry and the interface
// contract live here.
package tap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pingcap/errors"

	"github.com/plyght/wax/pkg/metadata"
	"github.com/plyght/wax/pkg/waxerr"
)

const registryFile = "taps.json"

// Source is the out-of-scope collaborator that clones a tap's Git
// repository and parses its formulae. Registry only records which taps
// are known; it never fetches or parses anything itself.
type Source interface {
	// Formulae returns the tap's contributed formulae for merging into
	// the resolver's FormulaSet.
	Formulae(qualifiedTap string) ([]*metadata.Formula, error)
}

// Registry is the durable, name-keyed set of known taps (spec.md §6
// "taps.json").
type Registry struct {
	dir string
}

// NewRegistry opens the tap registry at dir/taps.json.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

func (r *Registry) path() string {
	return filepath.Join(r.dir, registryFile)
}

// List returns every known tap name, sorted.
func (r *Registry) List() ([]string, error) {
	taps, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(taps))
	for name := range taps {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Add registers a tap name ("user/repo"), a no-op if already present.
func (r *Registry) Add(name string) error {
	taps, err := r.load()
	if err != nil {
		return err
	}
	taps[name] = struct{}{}
	return r.save(taps)
}

// Remove deregisters a tap name, or waxerr.Tap if it was never added.
func (r *Registry) Remove(name string) error {
	taps, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := taps[name]; !ok {
		return waxerr.Tap("tap %q is not added", name)
	}
	delete(taps, name)
	return r.save(taps)
}

func (r *Registry) load() (map[string]struct{}, error) {
	data, err := os.ReadFile(r.path())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, errors.Trace(err)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, waxerr.Tap("could not parse %s: %v", r.path(), err)
	}
	taps := make(map[string]struct{}, len(names))
	for _, n := range names {
		taps[n] = struct{}{}
	}
	return taps, nil
}

func (r *Registry) save(taps map[string]struct{}) error {
	names := make([]string, 0, len(taps))
	for n := range taps {
		names = append(names, n)
	}
	sort.Strings(names)

	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return errors.Trace(err)
	}
	tmp := r.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.Rename(tmp, r.path()))
}
