package rewire

import (
	"strings"

	"github.com/hucsmn/peg"
)

// Argument splitting for configuration strings. Arguments are separated
// by commas outside quotes and outside (), [], {} groups; surrounding
// whitespace is trimmed per argument. JoinArgs(SplitArgs(s)) is stable
// modulo that normalization.

var (
	argDQuote = peg.Seq(peg.T(`"`),
		peg.Q0(peg.Alt(peg.Seq(peg.T(`\`), peg.Dot), peg.NS(`"\`))),
		peg.T(`"`))
	argSQuote = peg.Seq(peg.T(`'`), peg.Q0(peg.NS(`'`)), peg.T(`'`))

	argGrammar = peg.Let(map[string]peg.Pattern{
		"arg": peg.Q0(peg.Alt(
			argDQuote, argSQuote,
			peg.Seq(peg.T("("), peg.V("inner"), peg.T(")")),
			peg.Seq(peg.T("["), peg.V("inner"), peg.T("]")),
			peg.Seq(peg.T("{"), peg.V("inner"), peg.T("}")),
			peg.NS(`,()[]{}'"`))),
		"inner": peg.Q0(peg.Alt(
			argDQuote, argSQuote,
			peg.Seq(peg.T("("), peg.V("inner"), peg.T(")")),
			peg.Seq(peg.T("["), peg.V("inner"), peg.T("]")),
			peg.Seq(peg.T("{"), peg.V("inner"), peg.T("}")),
			peg.NS(`()[]{}'"`))),
	}, peg.V("arg"))

	argConfig = peg.Config{CallstackLimit: 0, LoopLimit: 0}
)

// SplitArgs splits a configuration string into its argument vector. An
// empty or all-whitespace string yields no arguments.
func SplitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []string
	rest := s
	for {
		prefix, ok := argConfig.MatchedPrefix(argGrammar, rest)
		if !ok {
			prefix = ""
		}
		arg := prefix
		rest = rest[len(prefix):]
		if rest != "" && rest[0] != ',' {
			// unbalanced delimiter; keep the remainder verbatim
			arg += rest
			rest = ""
		}
		args = append(args, strings.TrimSpace(arg))
		if rest == "" {
			return args
		}
		rest = rest[1:]
	}
}

// JoinArgs reassembles an argument vector into a configuration string.
func JoinArgs(args []string) string {
	return strings.Join(args, ", ")
}
