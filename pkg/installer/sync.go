package installer

import (
	"context"
	"sort"

	"github.com/plyght/wax/pkg/lockfile"
	"github.com/plyght/wax/pkg/resolver"
	"github.com/plyght/wax/pkg/waxerr"
)

// SyncReport summarizes the outcome of a Sync call.
type SyncReport struct {
	Installed []string
	Skipped   map[string]string
	Failures  map[string]error
}

// Sync replays a lockfile: every entry already installed at its pinned
// version is skipped, everything else is routed through Install (spec.md
// §4.10). A pinned version the formula index no longer carries as the
// current stable version surfaces as waxerr.Lockfile, since this core's
// formula index has no historical-version lookup.
func (o *Orchestrator) Sync(ctx context.Context, path string, opts Options) (*SyncReport, error) {
	f, err := lockfile.Load(path)
	if err != nil {
		return nil, err
	}

	installedTable, err := o.FormulaStore.Load()
	if err != nil {
		return nil, err
	}

	formulae, err := o.Meta.LoadFormulae()
	if err != nil {
		return nil, err
	}
	set := resolver.NewFormulaSet(formulae)

	names := make([]string, 0, len(f.Packages))
	for name := range f.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	report := &SyncReport{
		Skipped:  make(map[string]string),
		Failures: make(map[string]error),
	}

	for _, name := range names {
		entry := f.Packages[name]

		if pkg, ok := installedTable[name]; ok && versionEqual(pkg.Version, entry.Version) {
			report.Skipped[name] = "already installed at pinned version"
			continue
		}

		formula, ok := set.Lookup(name)
		if !ok {
			report.Failures[name] = waxerr.FormulaNotFound(name)
			continue
		}
		if !versionEqual(formula.Version, entry.Version) {
			report.Failures[name] = waxerr.Lockfile("version %s of %s not available", entry.Version, name)
			continue
		}

		sub, err := o.Install(ctx, []string{name}, opts)
		if err != nil {
			report.Failures[name] = err
			continue
		}
		report.Installed = append(report.Installed, sub.Installed...)
	}

	return report, nil
}
