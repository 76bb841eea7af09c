/*
Package rewire implements a pattern-based rewrite optimizer for dataflow
router configurations.

A router configuration declares named elements (typed processing nodes,
each with a configuration argument string) and connections between their
numbered ports. Pattern files pair compound classes X and X_Replacement;
rewire repeatedly finds a subgraph of the target isomorphic to some X,
unifying $variable placeholders across configuration arguments, and
splices X_Replacement in its place, until no pattern matches.

# Quick Start

	errh := rewire.NewFileErrorHandler(os.Stderr, "rewire")

	patterns := rewire.NewPatternSet()
	patterns.ReadPatternFile("fuse.click", errh)

	router := rewire.ReadRouterFile("router.click", errh)
	if router == nil || errh.NErrors() > 0 {
		os.Exit(1)
	}
	router.Flatten(errh)

	rewire.Optimize(router, patterns, errh)
	rewire.WriteRouterFile(router, "", errh)

# Patterns

A pattern is an ordinary compound class whose input and output
pseudoelements demarcate its boundary. Every edge the pattern draws from
input must be supplied by the surrounding graph for a match to be
accepted, and symmetrically for output. Configuration arguments of the
form $name bind to whatever the target supplies, consistently across all
elements of one match.

Elements inserted by a rewrite carry the pattern's id in their Flags
field; a region consisting entirely of one pattern's own output is never
re-matched by that pattern, which is what makes identity-shaped rules
terminate.
*/
package rewire
