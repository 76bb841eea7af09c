package rewire

import (
	"strconv"
	"strings"

	"github.com/routelab/rewire/log"
)

// uniqueifyPrefix appends @1, @2, ... to basePrefix until no element
// name in r begins with the result plus a slash, so expanding a
// replacement under the prefix collides with nothing.
func uniqueifyPrefix(basePrefix string, r *Router) string {
	for count := 1; ; count++ {
		prefix := basePrefix + "@" + strconv.Itoa(count)
		taken := false
		for i := 0; i < r.NElements(); i++ {
			n := r.EName(i)
			if len(n) > len(prefix)+1 && strings.HasPrefix(n, prefix) && n[len(prefix)] == '/' {
				taken = true
				break
			}
		}
		if !taken {
			return prefix
		}
	}
}

// replaceConfig substitutes the match's placeholder bindings into a
// configuration string.
func (m *Matcher) replaceConfig(config string) string {
	confvec := SplitArgs(config)
	changed := false
	for i, arg := range confvec {
		if len(arg) <= 1 || arg[0] != '$' {
			continue
		}
		if v, ok := m.defs[arg]; ok {
			confvec[i] = v
			changed = true
		}
	}
	if !changed {
		return config
	}
	return JoinArgs(confvec)
}

// Replace splices the replacement router into the body over the last
// accepted match: expand under a fresh prefix, stamp provenance and
// substitute placeholders on the new elements, wire the recorded
// boundary connections to the replacement's boundary pseudoelement,
// tombstone the matched region, compact, and flatten. The matcher is
// spent afterwards; the driver builds a fresh one per attempt.
func (m *Matcher) Replace(replacement *Router, tryPrefix, landmark string, errh ErrorHandler) {
	prefix := uniqueifyPrefix(tryPrefix, m.body)
	log.DEBUG("pattern %d: splicing replacement under %s", m.patid, prefix)

	oldN := m.body.NElements()
	pp := m.body.SpliceCompound(replacement, prefix, landmark)

	for i := oldN; i < m.body.NElements(); i++ {
		e := m.body.Element(i)
		e.Flags = m.patid
		e.Configuration = m.replaceConfig(e.Configuration)
	}

	for i := range m.toPPFrom {
		m.body.AddConnection(m.toPPFrom[i], Hookup{Idx: pp, Port: m.toPPTo[i].Port}, landmark)
	}
	for i := range m.fromPPFrom {
		m.body.AddConnection(Hookup{Idx: pp, Port: m.fromPPFrom[i].Port}, m.fromPPTo[i], landmark)
	}

	for i := 0; i < oldN; i++ {
		if m.backMatch[i] >= 0 {
			m.body.MarkDeleted(i)
		}
	}
	m.body.RemoveDeleted()

	m.body.Flatten(errh)
}
