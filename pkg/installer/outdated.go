package installer

import (
	"sort"

	"github.com/plyght/wax/pkg/resolver"
	"github.com/plyght/wax/pkg/state"
)

// OutdatedPackage names one installed package whose recorded version
// differs from the formula/cask index's current version.
type OutdatedPackage struct {
	Name             string
	InstalledVersion string
	LatestVersion    string
	IsCask           bool
}

// Outdated compares every installed formula against the formula index and
// every installed cask against the cask index, returning the ones whose
// installed version no longer matches, sorted by name. Uses the same
// versionEqual comparison as Upgrade and Sync so the three never disagree
// about whether a given package is current.
func (o *Orchestrator) Outdated(caskStore *state.Store) ([]OutdatedPackage, error) {
	var outdated []OutdatedPackage

	formulae, err := o.Meta.LoadFormulae()
	if err != nil {
		return nil, err
	}
	set := resolver.NewFormulaSet(formulae)

	installed, err := o.FormulaStore.Load()
	if err != nil {
		return nil, err
	}
	for name, pkg := range installed {
		formula, ok := set.Lookup(name)
		if !ok {
			continue
		}
		if !versionEqual(pkg.Version, formula.Version) {
			outdated = append(outdated, OutdatedPackage{
				Name:             name,
				InstalledVersion: pkg.Version,
				LatestVersion:    formula.Version,
			})
		}
	}

	if caskStore != nil {
		casks, err := o.Meta.LoadCasks()
		if err != nil {
			return nil, err
		}
		installedCasks, err := caskStore.Load()
		if err != nil {
			return nil, err
		}
		for name, pkg := range installedCasks {
			for _, c := range casks {
				if c.Token != name && c.FullToken != name {
					continue
				}
				if !versionEqual(pkg.Version, c.Version) {
					outdated = append(outdated, OutdatedPackage{
						Name:             name,
						InstalledVersion: pkg.Version,
						LatestVersion:    c.Version,
						IsCask:           true,
					})
				}
				break
			}
		}
	}

	sort.Slice(outdated, func(i, j int) bool { return outdated[i].Name < outdated[j].Name })
	return outdated, nil
}
