// Package resolver builds a dependency DAG over formulae and produces a
// topologically sorted install order (spec.md C4).
package resolver

import (
	"github.com/plyght/wax/pkg/metadata"
	"github.com/plyght/wax/pkg/waxerr"
)

// FormulaSet looks up a formula by its canonical or tap-qualified name.
type FormulaSet interface {
	Lookup(name string) (*metadata.Formula, bool)
}

// mapFormulaSet is the simplest FormulaSet: a name-keyed map.
type mapFormulaSet map[string]*metadata.Formula

func (m mapFormulaSet) Lookup(name string) (*metadata.Formula, bool) {
	f, ok := m[name]
	return f, ok
}

// NewFormulaSet builds a FormulaSet from a flat list of formulae, keyed by
// canonical name (and by qualified name for tap formulae).
func NewFormulaSet(formulae []*metadata.Formula) FormulaSet {
	m := make(mapFormulaSet, len(formulae))
	for _, f := range formulae {
		m[f.Name] = f
		if f.Tap != "" {
			m[f.QualifiedName()] = f
		}
	}
	return m
}

// Resolve computes the install order for root, a DFS over runtime
// dependencies only, with cycle detection and "already installed" pruning
// (spec.md §4.4). installed is the set of names already present in install
// state; names in it are dropped from the result unless they equal root.
func Resolve(root string, set FormulaSet, installed map[string]struct{}) ([]string, error) {
	r := &resolution{
		set:     set,
		visited: make(map[string]bool),
		onStack: make(map[string]bool),
	}
	if err := r.visit(root); err != nil {
		return nil, err
	}

	order := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if name == root {
			order = append(order, name)
			continue
		}
		if _, skip := installed[name]; skip {
			continue
		}
		order = append(order, name)
	}
	return order, nil
}

type resolution struct {
	set     FormulaSet
	visited map[string]bool
	onStack map[string]bool
	stack   []string
	order   []string
}

func (r *resolution) visit(name string) error {
	if r.onStack[name] {
		cycle := append(append([]string{}, r.stack...), name)
		return waxerr.DependencyCycle(cycle)
	}
	if r.visited[name] {
		return nil
	}

	formula, ok := r.set.Lookup(name)
	if !ok {
		return waxerr.FormulaNotFound(name)
	}

	r.onStack[name] = true
	r.stack = append(r.stack, name)

	// Iterate in the order given by the metadata source; ties broken by
	// that order, not by hash (spec.md §4.4 determinism requirement).
	for _, dep := range formula.RuntimeDeps {
		if err := r.visit(dep); err != nil {
			return err
		}
	}

	r.stack = r.stack[:len(r.stack)-1]
	r.onStack[name] = false
	r.visited[name] = true
	r.order = append(r.order, name)
	return nil
}
