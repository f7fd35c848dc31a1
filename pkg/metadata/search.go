package metadata

import (
	"sort"
	"strings"
)

// MatchScore ranks how well a candidate name/description pair matches
// query, using the tiered heuristic from the original wax's
// calculate_match_score: exact name match scores highest, then prefix,
// then substring, then a whole-word match, then a word-prefix match,
// then an exact word match in the description, then a short substring
// match within a name word, then a plain substring match in the
// description, then (for hyphenated queries) a space-normalized
// description match. ok is false when none of these tiers match.
func MatchScore(name, description, query string) (int, bool) {
	q := strings.ToLower(query)
	n := strings.ToLower(name)

	if n == q {
		return 1000, true
	}
	if strings.HasPrefix(n, q) {
		return 900, true
	}
	if strings.Contains(n, q) {
		return 850, true
	}

	nameWords := splitWords(n)
	for _, w := range nameWords {
		if w == q {
			return 800, true
		}
	}
	for _, w := range nameWords {
		if strings.HasPrefix(w, q) {
			return 700, true
		}
	}

	if description == "" {
		return 0, false
	}
	d := strings.ToLower(description)

	for _, w := range splitWords(d) {
		if w == q {
			return 600, true
		}
	}
	for _, w := range nameWords {
		if strings.Contains(w, q) && len(w) < len(q)*3 {
			return 400, true
		}
	}
	if strings.Contains(d, q) {
		return 300, true
	}
	if strings.Contains(q, "-") {
		if strings.Contains(d, strings.ReplaceAll(q, "-", " ")) {
			return 250, true
		}
	}
	return 0, false
}

func splitWords(s string) []string {
	isSep := func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}
	return strings.FieldsFunc(s, isSep)
}

// SearchResult is one ranked hit from Search.
type SearchResult struct {
	Name        string
	Description string
	Version     string
	IsCask      bool
	Installed   bool
}

const (
	maxFormulaResults = 20
	maxCaskResults    = 20
)

// Search ranks formulae and casks against query with MatchScore, formulae
// first then casks, each group sorted by descending score then name,
// matching the original's per-category cap-then-concatenate behavior
// (capped here at maxFormulaResults/maxCaskResults instead of a
// core/tap split, since this core's Formula already carries Tap and
// QualifiedName covers both the bare and tap-qualified name).
func Search(formulae []*Formula, casks []*Cask, query string, installedFormulae, installedCasks map[string]struct{}) []SearchResult {
	type scored struct {
		result SearchResult
		score  int
	}

	var formulaHits []scored
	for _, f := range formulae {
		score, ok := MatchScore(f.Name, f.Description, query)
		if !ok {
			if s, okQualified := MatchScore(f.QualifiedName(), f.Description, query); okQualified {
				score, ok = s, true
			}
		}
		if !ok {
			continue
		}
		_, installed := installedFormulae[f.Name]
		formulaHits = append(formulaHits, scored{
			result: SearchResult{Name: f.QualifiedName(), Description: f.Description, Version: f.Version, Installed: installed},
			score:  score,
		})
	}
	sort.SliceStable(formulaHits, func(i, j int) bool {
		if formulaHits[i].score != formulaHits[j].score {
			return formulaHits[i].score > formulaHits[j].score
		}
		return formulaHits[i].result.Name < formulaHits[j].result.Name
	})
	if len(formulaHits) > maxFormulaResults {
		formulaHits = formulaHits[:maxFormulaResults]
	}

	var caskHits []scored
	for _, c := range casks {
		best, ok := MatchScore(c.Token, c.Description, query)
		for _, alias := range c.Name {
			if s, okAlias := MatchScore(alias, c.Description, query); okAlias && (!ok || s > best) {
				best, ok = s, true
			}
		}
		if !ok {
			continue
		}
		_, installed := installedCasks[c.Token]
		caskHits = append(caskHits, scored{
			result: SearchResult{Name: c.Token, Description: c.Description, Version: c.Version, IsCask: true, Installed: installed},
			score:  best,
		})
	}
	sort.SliceStable(caskHits, func(i, j int) bool {
		if caskHits[i].score != caskHits[j].score {
			return caskHits[i].score > caskHits[j].score
		}
		return caskHits[i].result.Name < caskHits[j].result.Name
	})
	if len(caskHits) > maxCaskResults {
		caskHits = caskHits[:maxCaskResults]
	}

	results := make([]SearchResult, 0, len(formulaHits)+len(caskHits))
	for _, h := range formulaHits {
		results = append(results, h.result)
	}
	for _, h := range caskHits {
		results = append(results, h.result)
	}
	return results
}
