package rewire

import "strconv"

const maxCompoundExpansions = 1 << 16

// SpliceCompound splices a compound class body into the router under
// prefix. The boundary is a tunnel element named exactly prefix, active
// in both directions: connections into it re-emerge from prefix/input
// (the image of the body's input pseudoelement), and connections into
// prefix/output (the image of the body's output) re-emerge from it.
// Returns the boundary element's index; every created element has an
// index at or above the pre-splice element count.
func (r *Router) SpliceCompound(class *Router, prefix, landmark string) int {
	pp := r.AddElement(prefix, TunnelType, "", landmark)
	r.spliceBody(class, prefix, pp, landmark, 0)
	return pp
}

func (r *Router) spliceBody(class *Router, prefix string, pp int, landmark string, flags int) {
	inName := r.uniqueName(prefix + "/input")
	outName := r.uniqueName(prefix + "/output")

	ppe := r.Element(pp)
	ppe.TunnelOutput = inName
	ppe.TunnelInput = outName

	in := r.AddElement(inName, TunnelType, "", landmark)
	r.Element(in).TunnelInput = prefix
	r.Element(in).Flags = flags
	out := r.AddElement(outName, TunnelType, "", landmark)
	r.Element(out).TunnelOutput = prefix
	r.Element(out).Flags = flags

	nmap := make([]int, class.NElements())
	for j := 0; j < class.NElements(); j++ {
		be := class.Element(j)
		if be.Type == TunnelType && be.TunnelInput == "" && be.TunnelOutput == "" {
			if be.Name == "input" {
				nmap[j] = in
				continue
			}
			if be.Name == "output" {
				nmap[j] = out
				continue
			}
		}
		ti := r.DeclareType(class.TypeName(be.Type), class.TypeClass(be.Type))
		ni := r.AddElement(r.uniqueName(prefix+"/"+be.Name), ti, be.Configuration, be.Landmark)
		ne := r.Element(ni)
		ne.Flags = flags
		if be.TunnelInput != "" {
			ne.TunnelInput = prefix + "/" + be.TunnelInput
		}
		if be.TunnelOutput != "" {
			ne.TunnelOutput = prefix + "/" + be.TunnelOutput
		}
		nmap[j] = ni
	}

	for k := 0; k < class.NHookup(); k++ {
		f, t := class.Connection(k)
		r.AddConnection(
			Hookup{Idx: nmap[f.Idx], Port: f.Port},
			Hookup{Idx: nmap[t.Idx], Port: t.Port},
			landmark)
	}
}

func (r *Router) uniqueName(name string) string {
	if r.EIndex(name) < 0 {
		return name
	}
	for n := 2; ; n++ {
		salted := name + "@" + strconv.Itoa(n)
		if r.EIndex(salted) < 0 {
			return salted
		}
	}
}

// Flatten expands every compound element into primitive form, resolves
// active tunnels into direct connections, and compacts. A pattern's bare
// input/output pseudoelements are not active and survive. Idempotent.
func (r *Router) Flatten(errh ErrorHandler) {
	expansions := 0
	for i := 0; i < r.NElements(); i++ {
		e := r.Element(i)
		if !e.live() || e.Type == TunnelType {
			continue
		}
		class := r.TypeClass(e.Type)
		if class == nil {
			continue
		}
		if expansions++; expansions > maxCompoundExpansions {
			errh.LErrorf(e.Landmark, "compound elements nested too deeply")
			break
		}
		prefix := e.Name
		landmark := e.Landmark
		flags := e.Flags
		e.Type = TunnelType
		e.Configuration = ""
		r.spliceBody(class, prefix, i, landmark, flags)
	}
	r.removeTunnels()
	r.RemoveDeleted()
}

// removeTunnels adds the transitive closure of connections through active
// tunnels, then tombstones the tunnels themselves. The scan walks the
// connection list while appending to it, so chained tunnels resolve in a
// single pass.
func (r *Router) removeTunnels() {
	for k := 0; k < r.NHookup(); k++ {
		t := r.hookupTo[k]
		te := r.Element(t.Idx)
		if te.Type != TunnelType || te.TunnelOutput == "" {
			continue
		}
		o := r.EIndex(te.TunnelOutput)
		if o < 0 {
			continue
		}
		from := r.hookupFrom[k]
		for _, y := range r.FindConnectionsFrom(Hookup{Idx: o, Port: t.Port}) {
			if !r.HasConnection(from, y) {
				r.AddConnection(from, y, r.hookupLandmark[k])
			}
		}
	}
	for i := 0; i < r.NElements(); i++ {
		e := r.Element(i)
		if e.live() && e.Type == TunnelType && (e.TunnelInput != "" || e.TunnelOutput != "") {
			r.MarkDeleted(i)
		}
	}
}
