package installer

import (
	"os"
	"sort"

	"github.com/pingcap/errors"

	"github.com/plyght/wax/pkg/layout"
	"github.com/plyght/wax/pkg/logging"
	"github.com/plyght/wax/pkg/resolver"
	"github.com/plyght/wax/pkg/symlink"
	"github.com/plyght/wax/pkg/waxerr"
)

// UninstallReport summarizes the outcome of an Uninstall call.
type UninstallReport struct {
	Name       string
	Version    string
	Dependents []string
	DryRun     bool
}

// Uninstall removes a package's symlinks, Cellar directory, and state
// entry (spec.md §4.9 "Uninstall"). A non-empty dependent set is reported
// but never blocks the operation; confirmation is the CLI's concern.
func (o *Orchestrator) Uninstall(name string, dryRun bool) (*UninstallReport, error) {
	table, err := o.FormulaStore.Load()
	if err != nil {
		return nil, err
	}
	pkg, ok := table[name]
	if !ok {
		return nil, waxerr.NotInstalled(name)
	}

	var dependents []string
	if o.Meta != nil {
		if formulae, err := o.Meta.LoadFormulae(); err == nil {
			set := resolver.NewFormulaSet(formulae)
			if deps, err := o.FormulaStore.DependentsOf(name, set); err == nil {
				dependents = deps
			}
		}
	}
	sort.Strings(dependents)

	report := &UninstallReport{Name: name, Version: pkg.Version, Dependents: dependents, DryRun: dryRun}
	if dryRun {
		return report, nil
	}

	l, err := layoutForMode(pkg.Mode)
	if err != nil {
		return nil, err
	}

	if _, err := symlink.RemoveSymlinks(l, pkg.Name, pkg.Version, false); err != nil {
		logging.L().Warn("symlink removal reported an error; continuing with Cellar removal")
	}

	if err := os.RemoveAll(l.CellarPackagePath(pkg.Name)); err != nil {
		return nil, errors.Trace(err)
	}

	if _, err := o.FormulaStore.Remove(name); err != nil {
		return nil, err
	}
	return report, nil
}

func layoutForMode(mode string) (*layout.Layout, error) {
	if mode == "user" {
		return layout.Select(true, false)
	}
	return layout.Select(false, true)
}
