package rewire

// TunnelType is the reserved type index for connection tunnel pseudoelements.
// Every router interns it at slot 0.
const TunnelType = 0

const tunnelTypeName = "<tunnel>"

// Hookup is one endpoint of a connection: an element index plus a port.
type Hookup struct {
	Idx  int
	Port int
}

// Less orders endpoints lexicographically by (Idx, Port).
func (h Hookup) Less(o Hookup) bool {
	return h.Idx < o.Idx || (h.Idx == o.Idx && h.Port < o.Port)
}

// IndexIn returns the position of h in v, or -1.
func (h Hookup) IndexIn(v []Hookup) int {
	for i := range v {
		if v[i] == h {
			return i
		}
	}
	return -1
}

// Element is a node in a router graph. Type indexes the router's type
// table; -1 marks a tombstoned element awaiting compaction. Flags records
// which pattern inserted the element (0 for pre-existing elements).
// TunnelInput and TunnelOutput name paired tunnel elements; both empty for
// ordinary elements and for a pattern's bare input/output pseudoelements.
type Element struct {
	Name          string
	Type          int
	Configuration string
	Landmark      string
	Flags         int
	TunnelInput   string
	TunnelOutput  string
}

func (e *Element) live() bool { return e.Type >= 0 }

// Router holds elements, connections and a type table. Elements and
// connections keep insertion order; that order is part of the matching
// contract, since the enumerator's backtracking walks it.
type Router struct {
	elements  []Element
	elemIndex map[string]int

	hookupFrom     []Hookup
	hookupTo       []Hookup
	hookupLandmark []string

	typeNames   []string
	typeClasses []*Router
	typeIndex   map[string]int
}

// NewRouter returns an empty router with the tunnel type interned.
func NewRouter() *Router {
	r := &Router{
		elemIndex: make(map[string]int),
		typeIndex: make(map[string]int),
	}
	r.DeclareType(tunnelTypeName, nil)
	return r
}

// NElements returns the element count, tombstones included.
func (r *Router) NElements() int { return len(r.elements) }

// Element returns the element at index i.
func (r *Router) Element(i int) *Element { return &r.elements[i] }

// EName returns the name of element i.
func (r *Router) EName(i int) string { return r.elements[i].Name }

// EIndex returns the index of the element with the given name, or -1.
func (r *Router) EIndex(name string) int {
	if i, ok := r.elemIndex[name]; ok {
		return i
	}
	return -1
}

// EConfiguration returns element i's configuration string.
func (r *Router) EConfiguration(i int) string { return r.elements[i].Configuration }

// AddElement appends an element and returns its index. The caller is
// responsible for name uniqueness.
func (r *Router) AddElement(name string, typ int, config, landmark string) int {
	i := len(r.elements)
	r.elements = append(r.elements, Element{
		Name:          name,
		Type:          typ,
		Configuration: config,
		Landmark:      landmark,
	})
	r.elemIndex[name] = i
	return i
}

// MarkDeleted tombstones element i; the element and its connections stay
// visible until RemoveDeleted runs.
func (r *Router) MarkDeleted(i int) { r.elements[i].Type = -1 }

// NTypes returns the type table size.
func (r *Router) NTypes() int { return len(r.typeNames) }

// TypeName returns the name of type i.
func (r *Router) TypeName(i int) string { return r.typeNames[i] }

// TypeClass returns the compound class body for type i, or nil for a
// primitive type.
func (r *Router) TypeClass(i int) *Router { return r.typeClasses[i] }

// TypeIndex returns the index of the named type, or -1.
func (r *Router) TypeIndex(name string) int {
	if i, ok := r.typeIndex[name]; ok {
		return i
	}
	return -1
}

// DeclareType interns a type name, attaching a class body when one is
// given. An already interned type keeps its body unless it had none.
func (r *Router) DeclareType(name string, class *Router) int {
	if i, ok := r.typeIndex[name]; ok {
		if r.typeClasses[i] == nil {
			r.typeClasses[i] = class
		}
		return i
	}
	i := len(r.typeNames)
	r.typeNames = append(r.typeNames, name)
	r.typeClasses = append(r.typeClasses, class)
	r.typeIndex[name] = i
	return i
}

// NHookup returns the connection count.
func (r *Router) NHookup() int { return len(r.hookupFrom) }

// Connection returns connection i as its two endpoints.
func (r *Router) Connection(i int) (from, to Hookup) {
	return r.hookupFrom[i], r.hookupTo[i]
}

// HookupFrom exposes the from-endpoint vector; callers must not mutate it.
func (r *Router) HookupFrom() []Hookup { return r.hookupFrom }

// HookupTo exposes the to-endpoint vector; callers must not mutate it.
func (r *Router) HookupTo() []Hookup { return r.hookupTo }

// AddConnection appends a connection.
func (r *Router) AddConnection(from, to Hookup, landmark string) {
	r.hookupFrom = append(r.hookupFrom, from)
	r.hookupTo = append(r.hookupTo, to)
	r.hookupLandmark = append(r.hookupLandmark, landmark)
}

// HasConnection reports whether the exact connection from -> to exists.
func (r *Router) HasConnection(from, to Hookup) bool {
	for i := range r.hookupFrom {
		if r.hookupFrom[i] == from && r.hookupTo[i] == to {
			return true
		}
	}
	return false
}

// FindConnectionsFrom returns the to-endpoints of every connection whose
// from-endpoint equals h, in insertion order.
func (r *Router) FindConnectionsFrom(h Hookup) []Hookup {
	var out []Hookup
	for i := range r.hookupFrom {
		if r.hookupFrom[i] == h {
			out = append(out, r.hookupTo[i])
		}
	}
	return out
}

// FindConnectionsTo returns the from-endpoints of every connection whose
// to-endpoint equals h, in insertion order.
func (r *Router) FindConnectionsTo(h Hookup) []Hookup {
	var out []Hookup
	for i := range r.hookupTo {
		if r.hookupTo[i] == h {
			out = append(out, r.hookupFrom[i])
		}
	}
	return out
}

// RemoveDeleted compacts the router: tombstoned elements disappear, the
// survivors keep their relative order, and connections touching a
// tombstone are dropped. Only safe at a rewrite boundary, when no scratch
// state holds element indices.
func (r *Router) RemoveDeleted() {
	remap := make([]int, len(r.elements))
	kept := r.elements[:0]
	n := 0
	for i := range r.elements {
		if r.elements[i].live() {
			remap[i] = n
			kept = append(kept, r.elements[i])
			n++
		} else {
			remap[i] = -1
			delete(r.elemIndex, r.elements[i].Name)
		}
	}
	r.elements = kept
	for i := range r.elements {
		r.elemIndex[r.elements[i].Name] = i
	}

	hf := r.hookupFrom[:0]
	ht := r.hookupTo[:0]
	hl := r.hookupLandmark[:0]
	for i := range r.hookupFrom {
		f, t := r.hookupFrom[i], r.hookupTo[i]
		if remap[f.Idx] < 0 || remap[t.Idx] < 0 {
			continue
		}
		hf = append(hf, Hookup{remap[f.Idx], f.Port})
		ht = append(ht, Hookup{remap[t.Idx], t.Port})
		hl = append(hl, r.hookupLandmark[i])
	}
	r.hookupFrom = hf
	r.hookupTo = ht
	r.hookupLandmark = hl
}
