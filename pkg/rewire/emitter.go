package rewire

import (
	"fmt"
	"os"
	"strings"
)

// ConfigurationString renders the router back into the configuration
// language: declarations in element-index order, then connectiontunnel
// pairs, then connections in hookup order. Tombstones and tunnel
// pseudoelements are not declared; zero ports are elided.
func (r *Router) ConfigurationString() string {
	var b strings.Builder

	for i := 0; i < r.NElements(); i++ {
		e := r.Element(i)
		if !e.live() || e.Type == TunnelType {
			continue
		}
		if e.Configuration == "" {
			fmt.Fprintf(&b, "%s :: %s;\n", e.Name, r.TypeName(e.Type))
		} else {
			fmt.Fprintf(&b, "%s :: %s(%s);\n", e.Name, r.TypeName(e.Type), e.Configuration)
		}
	}

	for i := 0; i < r.NElements(); i++ {
		e := r.Element(i)
		if e.live() && e.Type == TunnelType && e.TunnelOutput != "" {
			fmt.Fprintf(&b, "connectiontunnel %s -> %s;\n", e.Name, e.TunnelOutput)
		}
	}

	for k := 0; k < r.NHookup(); k++ {
		f, t := r.Connection(k)
		b.WriteString(r.EName(f.Idx))
		if f.Port != 0 {
			fmt.Fprintf(&b, " [%d]", f.Port)
		}
		b.WriteString(" -> ")
		if t.Port != 0 {
			fmt.Fprintf(&b, "[%d] ", t.Port)
		}
		b.WriteString(r.EName(t.Idx))
		b.WriteString(";\n")
	}

	return b.String()
}

// WriteRouterFile writes the router's configuration to path, or to
// standard output when path is empty. Returns 0 on success and a
// negative value after reporting through errh on failure.
func WriteRouterFile(r *Router, path string, errh ErrorHandler) int {
	text := r.ConfigurationString()
	if path == "" || path == "-" {
		if _, err := os.Stdout.WriteString(text); err != nil {
			errh.Errorf("%s", err)
			return -1
		}
		return 0
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		errh.Errorf("%s", err)
		return -1
	}
	return 0
}
