package rewire

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hucsmn/peg"
)

// Configuration-language grammar. A file is a sequence of statements:
//
//	name :: Class(config);          declaration
//	a [1] -> [0] b -> c;            connection chain (ports default to 0)
//	Class(config)                   anonymous element, usable in chains
//	elementclass Name { ... };      compound class
//	connectiontunnel a -> b;        active tunnel pair
//
// Inside a compound body the reserved names input and output denote the
// boundary tunnel pseudoelements and are auto-declared on first use.
// Comments are // to end of line and /* */ blocks.

// Parse captures.
type (
	identTok struct {
		text string
		line int
	}
	outPortTok struct{ port int }
	inPortTok  struct{ port int }
	confTok    struct{ text string }

	nodeCap struct {
		name   string // declared or referenced name; empty for anonymous
		class  string // class name; empty for a bare reference
		config string
		line   int
	}
	linkCap struct {
		outPort int
		inPort  int
	}
	chainCap struct {
		nodes []*nodeCap
		links []*linkCap
	}
	classCap struct {
		name string
		line int
		body *fileCap
	}
	tunnelCap struct {
		in   string
		out  string
		line int
	}
	fileCap struct{ stmts []peg.Capture }
)

func (*identTok) IsTerminal() bool   { return true }
func (*outPortTok) IsTerminal() bool { return true }
func (*inPortTok) IsTerminal() bool  { return true }
func (*confTok) IsTerminal() bool    { return true }
func (*nodeCap) IsTerminal() bool    { return false }
func (*linkCap) IsTerminal() bool    { return false }
func (*chainCap) IsTerminal() bool   { return false }
func (*classCap) IsTerminal() bool   { return false }
func (*tunnelCap) IsTerminal() bool  { return false }
func (*fileCap) IsTerminal() bool    { return false }

func identCons(lit string, pos peg.Position) (peg.Capture, error) {
	return &identTok{text: lit, line: pos.Line + 1}, nil
}

func outPortCons(lit string, _ peg.Position) (peg.Capture, error) {
	n, err := strconv.Atoi(lit)
	if err != nil {
		return nil, err
	}
	return &outPortTok{port: n}, nil
}

func inPortCons(lit string, _ peg.Position) (peg.Capture, error) {
	n, err := strconv.Atoi(lit)
	if err != nil {
		return nil, err
	}
	return &inPortTok{port: n}, nil
}

func confCons(lit string, _ peg.Position) (peg.Capture, error) {
	return &confTok{text: lit}, nil
}

func nodeCons(caps []peg.Capture) (peg.Capture, error) {
	node := &nodeCap{}
	idents := 0
	for _, c := range caps {
		switch v := c.(type) {
		case *identTok:
			if idents == 0 {
				node.name = v.text
				node.line = v.line
			} else {
				node.class = v.text
			}
			idents++
		case *confTok:
			node.config = v.text
		}
	}
	if idents == 1 && hasConf(caps) {
		// single identifier with a config group is an anonymous element
		node.class = node.name
		node.name = ""
	}
	return node, nil
}

func hasConf(caps []peg.Capture) bool {
	for _, c := range caps {
		if _, ok := c.(*confTok); ok {
			return true
		}
	}
	return false
}

func linkCons(caps []peg.Capture) (peg.Capture, error) {
	link := &linkCap{}
	for _, c := range caps {
		switch v := c.(type) {
		case *outPortTok:
			link.outPort = v.port
		case *inPortTok:
			link.inPort = v.port
		}
	}
	return link, nil
}

func chainCons(caps []peg.Capture) (peg.Capture, error) {
	chain := &chainCap{}
	for _, c := range caps {
		switch v := c.(type) {
		case *nodeCap:
			chain.nodes = append(chain.nodes, v)
		case *linkCap:
			chain.links = append(chain.links, v)
		}
	}
	if len(chain.nodes) != len(chain.links)+1 {
		return nil, fmt.Errorf("malformed connection chain")
	}
	return chain, nil
}

func classCons(caps []peg.Capture) (peg.Capture, error) {
	cls := &classCap{}
	for _, c := range caps {
		switch v := c.(type) {
		case *identTok:
			cls.name = v.text
			cls.line = v.line
		case *fileCap:
			cls.body = v
		}
	}
	if cls.body == nil {
		cls.body = &fileCap{}
	}
	return cls, nil
}

func tunnelCons(caps []peg.Capture) (peg.Capture, error) {
	tun := &tunnelCap{}
	for _, c := range caps {
		if v, ok := c.(*identTok); ok {
			if tun.in == "" {
				tun.in = v.text
				tun.line = v.line
			} else {
				tun.out = v.text
			}
		}
	}
	return tun, nil
}

func fileCons(caps []peg.Capture) (peg.Capture, error) {
	return &fileCap{stmts: caps}, nil
}

var (
	lineComment  = peg.Seq(peg.T("//"), peg.Q0(peg.NS("\n")))
	blockComment = peg.Seq(peg.T("/*"),
		peg.Q0(peg.Seq(peg.Not(peg.T("*/")), peg.Dot)),
		peg.T("*/"))
	space  = peg.Alt(peg.S(" \t\r\n\v\f"), lineComment, blockComment)
	ws     = peg.Q0(space)
	ws1    = peg.Q1(space)
	ident  = peg.Seq(peg.Alt(peg.R('a', 'z', 'A', 'Z'), peg.S("_@")), peg.Q0(peg.Alt(peg.R('a', 'z', 'A', 'Z', '0', '9'), peg.S("_@/"))))
	number = peg.Q1(peg.R('0', '9'))

	routerGrammar = peg.Let(map[string]peg.Pattern{
		"file": peg.CC(fileCons,
			peg.Seq(ws, peg.Q0(peg.Seq(peg.V("stmt"), ws)))),
		"stmt": peg.Alt(
			peg.V("class"),
			peg.V("tunnel"),
			peg.V("chain"),
			peg.T(";")),
		"class": peg.CC(classCons,
			peg.Seq(peg.T("elementclass"), ws1, peg.CT(identCons, ident), ws,
				peg.T("{"), peg.V("file"), peg.T("}"), ws, peg.Q01(peg.T(";")))),
		"tunnel": peg.CC(tunnelCons,
			peg.Seq(peg.T("connectiontunnel"), ws1, peg.CT(identCons, ident), ws,
				peg.T("->"), ws, peg.CT(identCons, ident), ws, peg.T(";"))),
		"chain": peg.CC(chainCons,
			peg.Seq(peg.V("node"),
				peg.Q0(peg.Seq(ws, peg.V("link"), ws, peg.V("node"))),
				ws, peg.T(";"))),
		"link": peg.CC(linkCons,
			peg.Seq(
				peg.Q01(peg.Seq(peg.T("["), ws, peg.CT(outPortCons, number), ws, peg.T("]"), ws)),
				peg.T("->"),
				peg.Q01(peg.Seq(ws, peg.T("["), ws, peg.CT(inPortCons, number), ws, peg.T("]"))))),
		"node": peg.CC(nodeCons, peg.Alt(
			// name :: Class(config)
			peg.Seq(peg.CT(identCons, ident), ws, peg.T("::"), ws,
				peg.CT(identCons, ident), peg.Q01(peg.Seq(ws, peg.V("confgroup")))),
			// Class(config), anonymous
			peg.Seq(peg.CT(identCons, ident), ws, peg.V("confgroup")),
			// bare reference or bare class
			peg.CT(identCons, ident))),
		"confgroup": peg.Seq(peg.T("("), peg.CT(confCons, peg.V("confinner")), peg.T(")")),
		"confinner": peg.Q0(peg.Alt(
			argDQuote, argSQuote,
			peg.Seq(peg.T("("), peg.V("confinner"), peg.T(")")),
			peg.NS(`()"'`))),
	}, peg.V("file"))

	parserConfig = peg.Config{CallstackLimit: 0, LoopLimit: 0}
)

// ParseRouter parses configuration text into a router. Syntax errors are
// reported through errh and yield a nil router; semantic errors (bad
// references, redeclarations) are reported per landmark but still produce
// a router, so the caller's NErrors check decides whether to go on.
func ParseRouter(text, filename string, errh ErrorHandler) *Router {
	result, err := parserConfig.Match(routerGrammar, text)
	if err != nil {
		errh.Errorf("%s: %s", filename, err)
		return nil
	}
	if !result.Ok || result.N != len(text) {
		line := 1 + strings.Count(text[:result.N], "\n")
		errh.LErrorf(fmt.Sprintf("%s:%d", filename, line), "syntax error")
		return nil
	}
	if len(result.Captures) != 1 {
		errh.Errorf("%s: syntax error", filename)
		return nil
	}
	fc, ok := result.Captures[0].(*fileCap)
	if !ok {
		errh.Errorf("%s: syntax error", filename)
		return nil
	}

	r := NewRouter()
	ld := &loader{file: filename, errh: errh, r: r}
	ld.load(fc)
	return r
}

// ReadRouterFile reads and parses a configuration file. An empty path or
// "-" reads standard input. Returns nil when the file cannot be read or
// parsed.
func ReadRouterFile(path string, errh ErrorHandler) *Router {
	var data []byte
	var err error
	name := path
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
		name = "<stdin>"
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		errh.Errorf("%s", err)
		return nil
	}
	return ParseRouter(string(data), name, errh)
}

// loader walks parse captures into a router. Compound class bodies load
// through a child loader whose parent chain provides lexical scoping for
// class names.
type loader struct {
	file   string
	errh   ErrorHandler
	parent *loader
	r      *Router
}

func (ld *loader) landmark(line int) string {
	return ld.file + ":" + strconv.Itoa(line)
}

func (ld *loader) load(fc *fileCap) {
	for _, stmt := range fc.stmts {
		switch v := stmt.(type) {
		case *classCap:
			ld.loadClass(v)
		case *tunnelCap:
			ld.loadTunnel(v)
		case *chainCap:
			ld.loadChain(v)
		}
	}
}

func (ld *loader) loadClass(cls *classCap) {
	if i := ld.r.TypeIndex(cls.name); i >= 0 && ld.r.TypeClass(i) != nil {
		ld.errh.LErrorf(ld.landmark(cls.line), "element class `%s' redeclared", cls.name)
		return
	}
	body := NewRouter()
	child := &loader{file: ld.file, errh: ld.errh, parent: ld, r: body}
	child.load(cls.body)
	ld.r.DeclareType(cls.name, body)
}

func (ld *loader) loadTunnel(tun *tunnelCap) {
	lm := ld.landmark(tun.line)
	in := ld.tunnelElement(tun.in, lm)
	out := ld.tunnelElement(tun.out, lm)
	if in < 0 || out < 0 {
		return
	}
	ld.r.Element(in).TunnelOutput = tun.out
	ld.r.Element(out).TunnelInput = tun.in
}

func (ld *loader) tunnelElement(name, lm string) int {
	if i := ld.r.EIndex(name); i >= 0 {
		if ld.r.Element(i).Type != TunnelType {
			ld.errh.LErrorf(lm, "element `%s' is not a connection tunnel", name)
			return -1
		}
		return i
	}
	return ld.r.AddElement(name, TunnelType, "", lm)
}

func (ld *loader) loadChain(chain *chainCap) {
	idxs := make([]int, len(chain.nodes))
	for i, n := range chain.nodes {
		idxs[i] = ld.resolveNode(n)
	}
	for i, link := range chain.links {
		ld.r.AddConnection(
			Hookup{Idx: idxs[i], Port: link.outPort},
			Hookup{Idx: idxs[i+1], Port: link.inPort},
			ld.landmark(chain.nodes[i].line))
	}
}

func (ld *loader) resolveNode(n *nodeCap) int {
	lm := ld.landmark(n.line)
	if n.name != "" && n.class != "" {
		if i := ld.r.EIndex(n.name); i >= 0 {
			ld.errh.LErrorf(lm, "redeclaration of element `%s'", n.name)
			return i
		}
		return ld.r.AddElement(n.name, ld.internType(n.class), n.config, lm)
	}
	if n.class != "" {
		return ld.r.AddElement(ld.anonName(n.class), ld.internType(n.class), n.config, lm)
	}
	if i := ld.r.EIndex(n.name); i >= 0 {
		return i
	}
	if n.name == "input" || n.name == "output" {
		return ld.r.AddElement(n.name, TunnelType, "", lm)
	}
	// an unknown bare name instantiates an anonymous element of that class
	return ld.r.AddElement(ld.anonName(n.name), ld.internType(n.name), "", lm)
}

func (ld *loader) internType(name string) int {
	return ld.r.DeclareType(name, ld.lookupClass(name))
}

func (ld *loader) lookupClass(name string) *Router {
	for l := ld; l != nil; l = l.parent {
		if i := l.r.TypeIndex(name); i >= 0 && l.r.TypeClass(i) != nil {
			return l.r.TypeClass(i)
		}
	}
	return nil
}

func (ld *loader) anonName(class string) string {
	n := ld.r.NElements() + 1
	for {
		name := class + "@" + strconv.Itoa(n)
		if ld.r.EIndex(name) < 0 {
			return name
		}
		n++
	}
}
