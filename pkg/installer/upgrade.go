package installer

import (
	"context"

	"github.com/plyght/wax/pkg/resolver"
	"github.com/plyght/wax/pkg/waxerr"
)

// UpgradeReport summarizes the outcome of an Upgrade call.
type UpgradeReport struct {
	Name          string
	OldVersion    string
	NewVersion    string
	AlreadyLatest bool
}

// Upgrade replaces an installed package with the formula index's current
// version (spec.md §4.9 "Upgrade"). Not atomic: a failure between the
// uninstall and install steps leaves the package uninstalled, a
// documented limitation (spec.md §9 open question).
func (o *Orchestrator) Upgrade(ctx context.Context, name string, opts Options) (*UpgradeReport, error) {
	table, err := o.FormulaStore.Load()
	if err != nil {
		return nil, err
	}
	pkg, ok := table[name]
	if !ok {
		return nil, waxerr.NotInstalled(name)
	}

	formulae, err := o.Meta.LoadFormulae()
	if err != nil {
		return nil, err
	}
	set := resolver.NewFormulaSet(formulae)
	formula, ok := set.Lookup(name)
	if !ok {
		return nil, waxerr.FormulaNotFound(name)
	}

	if versionEqual(formula.Version, pkg.Version) {
		return &UpgradeReport{Name: name, OldVersion: pkg.Version, NewVersion: pkg.Version, AlreadyLatest: true}, nil
	}

	if opts.DryRun {
		return &UpgradeReport{Name: name, OldVersion: pkg.Version, NewVersion: formula.Version}, nil
	}

	if _, err := o.Uninstall(name, false); err != nil {
		return nil, err
	}
	if _, err := o.Install(ctx, []string{name}, opts); err != nil {
		return nil, err
	}
	return &UpgradeReport{Name: name, OldVersion: pkg.Version, NewVersion: formula.Version}, nil
}
