package rewire

import "github.com/routelab/rewire/log"

// Matcher finds occurrences of a pattern in a body router and validates
// them. The pattern's input and output tunnel pseudoelements demarcate
// its boundary; matched occurrences record how external body connections
// attach to the boundary ports so a replacement can be wired in.
type Matcher struct {
	pat   *Router
	body  *Router
	patid int

	patInputIdx  int
	patOutputIdx int

	cm        *connectionMatcher
	match     []int
	backMatch []int
	defs      map[string]string

	toPPFrom   []Hookup
	toPPTo     []Hookup
	fromPPFrom []Hookup
	fromPPTo   []Hookup
}

// NewMatcher prepares a matcher for one pattern against one body.
// patid is the pattern's 1-based id, used for provenance stamping.
// Malformed patterns (active tunnels, tunnels not named input or output)
// are reported through errh; behavior under malformedness is undefined
// and callers are expected to treat NErrors() > 0 as fatal.
func NewMatcher(pat, body *Router, patid int, errh ErrorHandler) *Matcher {
	m := &Matcher{
		pat:          pat,
		body:         body,
		patid:        patid,
		patInputIdx:  -1,
		patOutputIdx: -1,
	}
	for i := 0; i < pat.NElements(); i++ {
		e := pat.Element(i)
		if e.Type != TunnelType {
			continue
		}
		switch {
		case e.TunnelInput != "" || e.TunnelOutput != "":
			errh.LErrorf(e.Landmark, "pattern has active connection tunnels")
		case e.Name == "input" && m.patInputIdx < 0:
			m.patInputIdx = i
		case e.Name == "output" && m.patOutputIdx < 0:
			m.patOutputIdx = i
		default:
			errh.LErrorf(e.Landmark, "connection tunnel with funny name `%s'", e.Name)
		}
	}
	m.cm = newConnectionMatcher(pat, body)
	m.match = m.cm.match
	return m
}

// Defs exposes the placeholder bindings of the last accepted match.
func (m *Matcher) Defs() map[string]string { return m.defs }

// checkInto resolves an external body connection arriving at a matched
// element. It looks for the pattern input-tunnel edge feeding the same
// inside endpoint, preferring the smallest tunnel endpoint, and accepts
// only if every pattern edge leaving that tunnel port is mirrored by a
// body edge leaving houtside.
func (m *Matcher) checkInto(houtside, hinside Hookup) bool {
	phf := m.pat.HookupFrom()
	pht := m.pat.HookupTo()
	phinside := Hookup{Idx: m.backMatch[hinside.Idx], Port: hinside.Port}
	success := Hookup{Idx: m.pat.NElements(), Port: 0}

	for i := range phf {
		if pht[i] != phinside || phf[i].Idx != m.patInputIdx || !phf[i].Less(success) {
			continue
		}
		pfromPhf := m.pat.FindConnectionsFrom(phf[i])
		fromOutside := m.body.FindConnectionsFrom(houtside)
		covered := true
		for _, ph := range pfromPhf {
			want := Hookup{Idx: m.match[ph.Idx], Port: ph.Port}
			if want.IndexIn(fromOutside) < 0 {
				covered = false
				break
			}
		}
		if covered {
			success = phf[i]
		}
	}

	if success.Idx < m.pat.NElements() {
		m.toPPFrom = append(m.toPPFrom, houtside)
		m.toPPTo = append(m.toPPTo, success)
		return true
	}
	return false
}

// checkOutOf is the symmetric resolution for an external body connection
// leaving a matched element through the pattern's output tunnel.
func (m *Matcher) checkOutOf(hinside, houtside Hookup) bool {
	phf := m.pat.HookupFrom()
	pht := m.pat.HookupTo()
	phinside := Hookup{Idx: m.backMatch[hinside.Idx], Port: hinside.Port}
	success := Hookup{Idx: m.pat.NElements(), Port: 0}

	for i := range phf {
		if phf[i] != phinside || pht[i].Idx != m.patOutputIdx || !pht[i].Less(success) {
			continue
		}
		ptoPht := m.pat.FindConnectionsTo(pht[i])
		toOutside := m.body.FindConnectionsTo(houtside)
		covered := true
		for _, ph := range ptoPht {
			want := Hookup{Idx: m.match[ph.Idx], Port: ph.Port}
			if want.IndexIn(toOutside) < 0 {
				covered = false
				break
			}
		}
		if covered {
			success = pht[i]
		}
	}

	if success.Idx < m.pat.NElements() {
		m.fromPPFrom = append(m.fromPPFrom, success)
		m.fromPPTo = append(m.fromPPTo, houtside)
		return true
	}
	return false
}

// checkMatch validates the enumerator's current candidate mapping:
// configuration unification, the all-previously-replaced rejection,
// connection consistency with boundary resolution, and full tunnel
// coverage. On success the boundary vectors and defs describe the match.
func (m *Matcher) checkMatch() bool {
	m.toPPFrom = m.toPPFrom[:0]
	m.toPPTo = m.toPPTo[:0]
	m.fromPPFrom = m.fromPPFrom[:0]
	m.fromPPTo = m.fromPPTo[:0]
	m.defs = make(map[string]string)

	for i := range m.match {
		if m.match[i] >= 0 {
			if !MatchConfig(m.pat.EConfiguration(i), m.body.EConfiguration(m.match[i]), m.defs) {
				return false
			}
		}
	}

	m.backMatch = make([]int, m.body.NElements())
	for i := range m.backMatch {
		m.backMatch[i] = -1
	}
	allPreviousMatch := true
	for i := range m.match {
		if j := m.match[i]; j >= 0 {
			m.backMatch[j] = i
			if m.body.Element(j).Flags != m.patid {
				allPreviousMatch = false
			}
		}
	}
	// a match made up entirely of elements this pattern already
	// produced would loop forever
	if allPreviousMatch {
		return false
	}

	hfrom := m.body.HookupFrom()
	hto := m.body.HookupTo()
	for i := range hfrom {
		hf, ht := hfrom[i], hto[i]
		pf, pt := m.backMatch[hf.Idx], m.backMatch[ht.Idx]
		switch {
		case pf >= 0 && pt >= 0:
			if !m.pat.HasConnection(Hookup{Idx: pf, Port: hf.Port}, Hookup{Idx: pt, Port: ht.Port}) {
				return false
			}
		case pf < 0 && pt >= 0:
			if !m.checkInto(hf, ht) {
				return false
			}
		case pf >= 0 && pt < 0:
			if !m.checkOutOf(hf, ht) {
				return false
			}
		}
	}

	// every pattern edge leaving input and entering output must have
	// been covered above
	phf := m.pat.HookupFrom()
	pht := m.pat.HookupTo()
	for i := range phf {
		if phf[i].Idx == m.patInputIdx && phf[i].IndexIn(m.toPPTo) < 0 {
			return false
		}
		if pht[i].Idx == m.patOutputIdx && pht[i].IndexIn(m.fromPPFrom) < 0 {
			return false
		}
	}

	return true
}

// NextMatch advances to the next accepted occurrence of the pattern,
// resuming after the previous one. Returns false when no further
// occurrence exists.
func (m *Matcher) NextMatch() bool {
	for m.cm.nextMatch() {
		if m.checkMatch() {
			log.DEBUG("pattern %d matched (%d elements)", m.patid, len(m.match))
			return true
		}
	}
	return false
}
