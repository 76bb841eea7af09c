package rewire

import (
	"strings"

	"github.com/routelab/rewire/log"
)

const replacementSuffix = "_Replacement"

// PatternRule pairs a pattern with its replacement. Both are compound
// class bodies from a pattern file; the pattern side is flattened at
// load time. Rules are applied in declaration order.
type PatternRule struct {
	Name        string
	Pattern     *Router
	Replacement *Router
}

// PatternSet collects the rules read from pattern files.
type PatternSet struct {
	rules     []*PatternRule
	attempted int
}

// NewPatternSet returns an empty pattern set.
func NewPatternSet() *PatternSet { return &PatternSet{} }

// Rules returns the registered rules in declaration order.
func (ps *PatternSet) Rules() []*PatternRule { return ps.rules }

// Attempted counts pattern files given, readable or not; the caller
// warns when it stays zero.
func (ps *PatternSet) Attempted() int { return ps.attempted }

// ReadPatternFile reads one pattern file. A pattern file is an ordinary
// configuration file: every compound class pair named X and
// X_Replacement registers a rule. Read and parse problems go through
// errh.
func (ps *PatternSet) ReadPatternFile(path string, errh ErrorHandler) {
	ps.attempted++
	pf := ReadRouterFile(path, errh)
	if pf == nil {
		return
	}
	ps.AddPatterns(pf, path, errh)
}

// AddPatterns registers every X / X_Replacement compound class pair
// found in an already parsed router.
func (ps *PatternSet) AddPatterns(pf *Router, path string, errh ErrorHandler) {
	for i := 0; i < pf.NTypes(); i++ {
		name := pf.TypeName(i)
		rep := pf.TypeClass(i)
		if rep == nil || len(name) <= len(replacementSuffix) || !strings.HasSuffix(name, replacementSuffix) {
			continue
		}
		base := strings.TrimSuffix(name, replacementSuffix)
		ti := pf.TypeIndex(base)
		if ti < 0 || pf.TypeClass(ti) == nil {
			continue
		}
		pat := pf.TypeClass(ti)
		pat.Flatten(errh)
		ps.rules = append(ps.rules, &PatternRule{Name: base, Pattern: pat, Replacement: rep})
		log.DEBUG("registered pattern %s from %s", base, path)
	}
}

// Optimize rewrites the router to fixpoint: rules are tried in
// declaration order, the first accepted match is replaced, and the scan
// restarts, until a full pass fires nothing. Provenance stamps keep a
// rule from endlessly re-matching its own replacement; convergence
// across rules is the pattern author's responsibility.
func Optimize(r *Router, ps *PatternSet, errh ErrorHandler) {
	// clear flags so the current element complement cannot read as
	// replacement output
	for i := 0; i < r.NElements(); i++ {
		r.Element(i).Flags = 0
	}

	any := true
	for any {
		any = false
		for k, rule := range ps.Rules() {
			m := NewMatcher(rule.Pattern, r, k+1, errh)
			if m.NextMatch() {
				m.Replace(rule.Replacement, rule.Name, "", errh)
				any = true
				break
			}
		}
	}
}
