package rewire

// isPlaceholder reports whether arg is a well-formed $variable: a dollar
// sign followed by one or more alphanumeric or underscore characters.
func isPlaceholder(arg string) bool {
	if len(arg) <= 1 || arg[0] != '$' {
		return false
	}
	for j := 1; j < len(arg); j++ {
		c := arg[j]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}

// MatchConfig unifies a pattern configuration against a target
// configuration. Literal arguments must be equal; a $variable argument
// binds to whatever the target supplies, consistently with defs and with
// its other occurrences in this call. On success the new bindings are
// merged into defs; on failure defs is untouched.
func MatchConfig(pat, conf string, defs map[string]string) bool {
	patvec := SplitArgs(pat)
	confvec := SplitArgs(conf)

	if len(patvec) != len(confvec) {
		return false
	}

	myDefs := make(map[string]string)
	for i := range patvec {
		if patvec[i] == confvec[i] {
			continue
		}
		p := patvec[i]
		if !isPlaceholder(p) {
			return false
		}
		if v, ok := defs[p]; ok {
			if v != confvec[i] {
				return false
			}
		} else if v, ok := myDefs[p]; ok {
			if v != confvec[i] {
				return false
			}
		} else {
			myDefs[p] = confvec[i]
		}
	}

	for p, v := range myDefs {
		defs[p] = v
	}
	return true
}
