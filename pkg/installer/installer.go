// Package installer is wax's orchestrator (spec.md C9): it coordinates the
// metadata client, resolver, bottle transport, layout, symlink manager,
// and install-state store across install/uninstall/upgrade/sync, with
// bounded-concurrency downloads and a strictly sequential application
// phase.
package installer

import (
	"context"
	"fmt"
	"os"
	"time"

	copydir "github.com/otiai10/copy"
	"github.com/pingcap/errors"
	"golang.org/x/sync/errgroup"

	"github.com/plyght/wax/pkg/bottle"
	"github.com/plyght/wax/pkg/layout"
	"github.com/plyght/wax/pkg/logging"
	"github.com/plyght/wax/pkg/metadata"
	"github.com/plyght/wax/pkg/platform"
	"github.com/plyght/wax/pkg/resolver"
	"github.com/plyght/wax/pkg/state"
	"github.com/plyght/wax/pkg/symlink"
	"github.com/plyght/wax/pkg/waxerr"
)

// maxConcurrentDownloads is the fixed bound on simultaneous
// download+verify+extract tasks within one installer invocation
// (spec.md §5).
const maxConcurrentDownloads = 8

// Orchestrator coordinates C3-C8 for install, uninstall, upgrade, and sync.
type Orchestrator struct {
	Meta         *metadata.Client
	FormulaStore *state.Store
	TmpDir       string
	Progress     bottle.Progress
}

// Options control one Install/Upgrade/Sync call.
type Options struct {
	User            bool
	Global          bool
	DryRun          bool
	BuildFromSource bool
}

// Report summarizes the outcome of an Install call.
type Report struct {
	Roots            []string
	Order            []string
	AlreadyInstalled []string
	Installed        []string
	Skipped          map[string]string // name -> reason
	Failures         map[string]error
	Elapsed          time.Duration
	DryRun           bool
}

// downloadResult is one download-phase task's outcome, indexed positionally
// so results reorder naturally into topological order for the sequential
// application phase (spec.md §5 "Download tasks may complete out of order;
// a small buffer reorders them").
type downloadResult struct {
	name   string
	bottle *bottle.Result
	err    error
}

// Install resolves, downloads (bounded parallelism), and applies
// (strictly sequential) the given root package names (spec.md §4.9).
func (o *Orchestrator) Install(ctx context.Context, roots []string, opts Options) (*Report, error) {
	start := time.Now()

	formulae, err := o.Meta.LoadFormulae()
	if err != nil {
		return nil, err
	}
	set := resolver.NewFormulaSet(formulae)

	installedTable, err := o.FormulaStore.Load()
	if err != nil {
		return nil, err
	}
	installedSet := make(map[string]struct{}, len(installedTable))
	for name := range installedTable {
		installedSet[name] = struct{}{}
	}

	var mergedOrder []string
	seen := make(map[string]struct{})
	for _, root := range roots {
		if _, ok := set.Lookup(root); !ok {
			return nil, waxerr.FormulaNotFound(root)
		}
		order, err := resolver.Resolve(root, set, installedSet)
		if err != nil {
			return nil, err
		}
		for _, name := range order {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			mergedOrder = append(mergedOrder, name)
		}
	}

	l, err := layout.Select(opts.User, opts.Global)
	if err != nil {
		return nil, err
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		Roots:    roots,
		Order:    mergedOrder,
		Skipped:  make(map[string]string),
		Failures: make(map[string]error),
		DryRun:   opts.DryRun,
	}

	var toProcess []string
	for _, name := range mergedOrder {
		if _, ok := installedTable[name]; ok {
			report.AlreadyInstalled = append(report.AlreadyInstalled, name)
			continue
		}
		toProcess = append(toProcess, name)
	}

	logging.Verbose("installing %v with %d dependencies", roots, len(toProcess)-len(roots))

	if opts.DryRun {
		report.Elapsed = time.Since(start)
		return report, nil
	}

	if len(toProcess) == 0 {
		report.Elapsed = time.Since(start)
		return report, nil
	}

	lock, err := acquirePrefixLock(l)
	if err != nil {
		return nil, err
	}
	defer lock.release()

	results, err := o.downloadPhase(ctx, toProcess, set, opts)
	if err != nil {
		return nil, err
	}

	tag, _ := platform.Detect()
	o.applyPhase(toProcess, results, l, tag, report)

	report.Elapsed = time.Since(start)
	return report, nil
}

// downloadPhase fetches every package in order with at most
// maxConcurrentDownloads concurrent tasks. Every task runs to completion
// regardless of sibling failures (spec.md §7): errors are captured
// per-package, not propagated to abort the group.
func (o *Orchestrator) downloadPhase(ctx context.Context, order []string, set resolver.FormulaSet, opts Options) ([]downloadResult, error) {
	results := make([]downloadResult, len(order))

	var g errgroup.Group
	g.SetLimit(maxConcurrentDownloads)

	transport := bottle.NewTransport(o.TmpDir, o.Progress)

	for i, name := range order {
		i, name := i, name
		g.Go(func() error {
			results[i] = o.downloadOne(ctx, transport, name, set, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Trace(err)
	}
	return results, nil
}

func (o *Orchestrator) downloadOne(ctx context.Context, transport *bottle.Transport, name string, set resolver.FormulaSet, opts Options) downloadResult {
	formula, ok := set.Lookup(name)
	if !ok {
		return downloadResult{name: name, err: waxerr.FormulaNotFound(name)}
	}

	tag, err := platform.Detect()
	if err != nil {
		return downloadResult{name: name, err: err}
	}

	file, err := platform.BottleTagFor(formula.Bottle)
	if err != nil {
		if !opts.BuildFromSource {
			return downloadResult{name: name, err: err}
		}
		return downloadResult{name: name, err: waxerr.Build("source builds are not implemented by this core; formula %q has no bottle for %s", name, tag)}
	}

	res, err := transport.Fetch(ctx, name, file.URL, file.SHA256)
	if err != nil {
		return downloadResult{name: name, err: err}
	}
	return downloadResult{name: name, bottle: res}
}

// applyPhase walks order strictly sequentially, moving each successfully
// downloaded package into the Cellar, linking it, and persisting state.
// The first failure (download or application) stops the phase; everything
// after it is marked skipped (spec.md §4.9 step 7, §7).
func (o *Orchestrator) applyPhase(order []string, results []downloadResult, l *layout.Layout, tag string, report *Report) {
	for i, name := range order {
		res := results[i]
		if res.err != nil {
			report.Failures[name] = res.err
			o.skipRemaining(order[i+1:], name, report)
			return
		}

		if err := o.applyOne(name, res.bottle, l, tag); err != nil {
			report.Failures[name] = err
			o.skipRemaining(order[i+1:], name, report)
			return
		}
		report.Installed = append(report.Installed, name)
	}
}

func (o *Orchestrator) skipRemaining(rest []string, failedName string, report *Report) {
	for _, name := range rest {
		report.Skipped[name] = fmt.Sprintf("skipped: dependency %s failed", failedName)
	}
}

// applyOne commits one package: move the extracted Cellar version
// directory into place (the single commit point, spec.md §9), create
// symlinks, then persist state after symlinks succeed.
func (o *Orchestrator) applyOne(name string, res *bottle.Result, l *layout.Layout, tag string) error {
	versionDir := l.CellarVersionPath(res.Name, res.Version)
	if err := os.MkdirAll(l.CellarPackagePath(res.Name), 0o755); err != nil {
		return errors.Trace(err)
	}
	if err := moveIntoCellar(res.ExtractedRoot, versionDir); err != nil {
		return err
	}

	created, err := symlink.CreateSymlinks(l, res.Name, res.Version, false)
	if err != nil {
		return err
	}

	return o.FormulaStore.Insert(state.InstalledPackage{
		Name:         res.Name,
		Version:      res.Version,
		PlatformTag:  tag,
		InstalledAt:  time.Now().Unix(),
		Mode:         l.Mode.String(),
		SymlinkPaths: created,
	})
}

// moveIntoCellar renames the extracted directory into the Cellar, falling
// back to a recursive copy+delete when rename fails across filesystem
// boundaries (spec.md §4.9 step 7).
func moveIntoCellar(from, to string) error {
	if err := os.Rename(from, to); err == nil {
		return nil
	}
	if err := copydir.Copy(from, to); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.RemoveAll(from))
}
