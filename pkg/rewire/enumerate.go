package rewire

// connectionMatcher enumerates injective partial mappings from pattern
// elements to body elements that are feasible under typed connectivity.
// It is a resumable state machine: one cursor per decision level, a
// stack discipline for backtracking, and a record of which pattern
// elements each level bound so retreat can unbind them.
//
// Decision levels come in two runs. First, one level per pattern
// connection whose endpoints are both non-tunnel, in pattern connection
// order; the cursor walks the body connection list looking for an edge
// whose endpoint types and ports agree and whose already-mapped
// endpoints are consistent. Second, one level per non-tunnel pattern
// element untouched by those connections; the cursor walks the body
// element list. Tunnel elements are never bound; tombstoned body
// elements are skipped.
type connectionMatcher struct {
	pat  *Router
	body *Router

	// pattern element type, translated into the body's type table;
	// -1 when the body has no such type (the element can never bind),
	// -2 for tunnels
	ptype []int

	pconns []int // pattern connection indices, both endpoints non-tunnel
	loose  []int // non-tunnel pattern elements with no pconn incident

	cursors []int   // per level, last tried position in the body list
	bound   [][]int // per level, pattern elements it bound
	match   []int   // pattern element -> body element, -1 unmapped
	used    []bool  // body elements already claimed, for injectivity

	started bool
}

func newConnectionMatcher(pat, body *Router) *connectionMatcher {
	cm := &connectionMatcher{pat: pat, body: body}

	n := pat.NElements()
	cm.ptype = make([]int, n)
	for i := 0; i < n; i++ {
		if pat.Element(i).Type == TunnelType {
			cm.ptype[i] = -2
		} else {
			cm.ptype[i] = body.TypeIndex(pat.TypeName(pat.Element(i).Type))
		}
	}

	touched := make([]bool, n)
	for k := 0; k < pat.NHookup(); k++ {
		f, t := pat.Connection(k)
		if cm.ptype[f.Idx] == -2 || cm.ptype[t.Idx] == -2 {
			continue
		}
		cm.pconns = append(cm.pconns, k)
		touched[f.Idx] = true
		touched[t.Idx] = true
	}
	for i := 0; i < n; i++ {
		if cm.ptype[i] != -2 && !touched[i] {
			cm.loose = append(cm.loose, i)
		}
	}

	levels := len(cm.pconns) + len(cm.loose)
	cm.cursors = make([]int, levels)
	cm.bound = make([][]int, levels)
	cm.match = make([]int, n)
	for i := range cm.match {
		cm.match[i] = -1
	}
	cm.used = make([]bool, body.NElements())
	return cm
}

// nextMatch advances to the next complete feasible mapping, resuming
// from the previous one. Returns false once the space is exhausted.
func (cm *connectionMatcher) nextMatch() bool {
	levels := len(cm.pconns) + len(cm.loose)
	if levels == 0 {
		return false
	}

	var level int
	if !cm.started {
		cm.started = true
		level = 0
		cm.cursors[0] = -1
	} else {
		level = levels - 1
		cm.unbind(level)
	}

	for level >= 0 {
		if cm.advance(level) {
			level++
			if level == levels {
				return true
			}
			cm.cursors[level] = -1
		} else {
			level--
			if level >= 0 {
				cm.unbind(level)
			}
		}
	}
	return false
}

func (cm *connectionMatcher) unbind(level int) {
	for _, pi := range cm.bound[level] {
		cm.used[cm.match[pi]] = false
		cm.match[pi] = -1
	}
	cm.bound[level] = cm.bound[level][:0]
}

func (cm *connectionMatcher) advance(level int) bool {
	if level < len(cm.pconns) {
		return cm.advanceConnection(level)
	}
	return cm.advanceLoose(level)
}

func (cm *connectionMatcher) advanceConnection(level int) bool {
	pf, pt := cm.pat.Connection(cm.pconns[level])
	for k := cm.cursors[level] + 1; k < cm.body.NHookup(); k++ {
		bf, bt := cm.body.Connection(k)
		if bf.Port != pf.Port || bt.Port != pt.Port {
			continue
		}
		if !cm.bindable(pf.Idx, bf.Idx) || !cm.bindable(pt.Idx, bt.Idx) {
			continue
		}
		if pf.Idx == pt.Idx && bf.Idx != bt.Idx {
			continue
		}
		if pf.Idx != pt.Idx && bf.Idx == bt.Idx &&
			cm.match[pf.Idx] < 0 && cm.match[pt.Idx] < 0 {
			continue
		}
		cm.bind(level, pf.Idx, bf.Idx)
		if cm.match[pt.Idx] < 0 {
			cm.bind(level, pt.Idx, bt.Idx)
		}
		cm.cursors[level] = k
		return true
	}
	return false
}

func (cm *connectionMatcher) advanceLoose(level int) bool {
	pi := cm.loose[level-len(cm.pconns)]
	for k := cm.cursors[level] + 1; k < cm.body.NElements(); k++ {
		be := cm.body.Element(k)
		if !be.live() || be.Type != cm.ptype[pi] || cm.used[k] {
			continue
		}
		cm.bind(level, pi, k)
		cm.cursors[level] = k
		return true
	}
	return false
}

// bindable reports whether pattern element pi may map to body element
// bi: either already mapped there, or unmapped with bi live, unclaimed,
// and of the right type.
func (cm *connectionMatcher) bindable(pi, bi int) bool {
	if cm.match[pi] >= 0 {
		return cm.match[pi] == bi
	}
	be := cm.body.Element(bi)
	return be.live() && be.Type == cm.ptype[pi] && !cm.used[bi]
}

func (cm *connectionMatcher) bind(level, pi, bi int) {
	if cm.match[pi] >= 0 {
		return
	}
	cm.match[pi] = bi
	cm.used[bi] = true
	cm.bound[level] = append(cm.bound[level], pi)
}
