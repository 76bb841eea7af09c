package rewire

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPatternLoading(t *testing.T) {
	Convey("pattern files register X / X_Replacement pairs", t, func() {
		ps := loadPatterns(`
			elementclass Fuse {
				input -> F -> G -> output;
			}
			elementclass Fuse_Replacement {
				input -> FG -> output;
			}
			elementclass Ignored {
				input -> Q -> output;
			}
		`)
		So(ps.Rules(), ShouldHaveLength, 1)
		So(ps.Rules()[0].Name, ShouldEqual, "Fuse")

		Convey("the pattern side is pre-flattened with its boundary intact", func() {
			pat := ps.Rules()[0].Pattern
			tunnels := 0
			for i := 0; i < pat.NElements(); i++ {
				if pat.Element(i).Type == TunnelType {
					tunnels++
				}
			}
			So(tunnels, ShouldEqual, 2)
			So(pat.EIndex("input"), ShouldBeGreaterThanOrEqualTo, 0)
			So(pat.EIndex("output"), ShouldBeGreaterThanOrEqualTo, 0)
		})
	})

	Convey("a replacement without a pattern registers nothing", t, func() {
		ps := loadPatterns(`
			elementclass Lonely_Replacement {
				input -> F -> output;
			}
		`)
		So(ps.Rules(), ShouldBeEmpty)
	})
}

func TestOptimizePassthrough(t *testing.T) {
	Convey("an identity rule rewrites once and terminates", t, func() {
		ps := loadPatterns(passthroughPattern)
		r := parseOK("A -> F -> B;")

		Optimize(r, ps, discardErrh())

		So(liveElements(r), ShouldResemble, []string{
			"A@1 :: A",
			"B@3 :: B",
			"X@1/F@2 :: F",
		})
		So(connections(r), ShouldResemble, []string{
			"A@1[0] -> [0]X@1/F@2",
			"X@1/F@2[0] -> [0]B@3",
		})

		Convey("the inserted element carries the pattern's provenance stamp", func() {
			So(r.Element(r.EIndex("X@1/F@2")).Flags, ShouldEqual, 1)
			So(r.Element(r.EIndex("A@1")).Flags, ShouldEqual, 0)
			So(r.Element(r.EIndex("B@3")).Flags, ShouldEqual, 0)
		})
	})
}

func TestOptimizeFusion(t *testing.T) {
	Convey("a fusion rule merges two elements and their arguments", t, func() {
		ps := loadPatterns(`
			elementclass X {
				input -> F($a) -> G($b) -> output;
			}
			elementclass X_Replacement {
				input -> FG($a, $b) -> output;
			}
		`)
		r := parseOK("src -> F(7) -> G(9) -> dst;")

		Optimize(r, ps, discardErrh())

		So(liveElements(r), ShouldResemble, []string{
			"X@1/FG@2 :: FG(7, 9)",
			"dst@4 :: dst",
			"src@1 :: src",
		})
		So(connections(r), ShouldResemble, []string{
			"X@1/FG@2[0] -> [0]dst@4",
			"src@1[0] -> [0]X@1/FG@2",
		})
	})
}

func TestOptimizeUnification(t *testing.T) {
	unifyRules := `
		elementclass X {
			input -> F($x) -> G($x) -> output;
		}
		elementclass X_Replacement {
			input -> FG($x) -> output;
		}
	`

	Convey("matching argument values unify and rewrite", t, func() {
		ps := loadPatterns(unifyRules)
		r := parseOK("s -> F(7) -> G(7) -> d;")
		Optimize(r, ps, discardErrh())

		So(liveElements(r), ShouldResemble, []string{
			"X@1/FG@2 :: FG(7)",
			"d@4 :: d",
			"s@1 :: s",
		})
	})

	Convey("conflicting argument values leave the router untouched", t, func() {
		ps := loadPatterns(unifyRules)
		r := parseOK("s -> F(7) -> G(8) -> d;")
		before := liveElements(r)
		beforeConns := connections(r)
		Optimize(r, ps, discardErrh())

		So(liveElements(r), ShouldResemble, before)
		So(connections(r), ShouldResemble, beforeConns)
	})
}

func TestOptimizeTunnelCoverage(t *testing.T) {
	fanRules := `
		elementclass X {
			f :: F; g :: G;
			input -> f; input -> g; f -> output; g -> output;
		}
		elementclass X_Replacement {
			input -> H -> output;
		}
	`

	Convey("a fan-out boundary requires every external edge", t, func() {
		Convey("with only one of the two feeds the match is rejected", func() {
			ps := loadPatterns(fanRules)
			r := parseOK(`
				s :: S; f :: F; g :: G; d :: D;
				s -> f; f -> d; g -> d;
			`)
			before := liveElements(r)
			Optimize(r, ps, discardErrh())
			So(liveElements(r), ShouldResemble, before)
		})

		Convey("with both feeds present the region is rewritten", func() {
			ps := loadPatterns(fanRules)
			r := parseOK(`
				s :: S; f :: F; g :: G; d :: D;
				s -> f; s -> g; f -> d; g -> d;
			`)
			Optimize(r, ps, discardErrh())

			So(liveElements(r), ShouldResemble, []string{
				"X@1/H@2 :: H",
				"d :: D",
				"s :: S",
			})
			So(connections(r), ShouldResemble, []string{
				"X@1/H@2[0] -> [0]d",
				"s[0] -> [0]X@1/H@2",
			})
		})
	})
}

func TestOptimizeConvergence(t *testing.T) {
	Convey("rules chain in declaration order until neither fires", t, func() {
		ps := loadPatterns(`
			elementclass P1 {
				input -> A -> output;
			}
			elementclass P1_Replacement {
				input -> B -> output;
			}
			elementclass P2 {
				input -> B -> output;
			}
			elementclass P2_Replacement {
				input -> C -> output;
			}
		`)
		So(ps.Rules(), ShouldHaveLength, 2)

		r := parseOK("s :: S; d :: D; x :: A; s -> x; x -> d;")
		Optimize(r, ps, discardErrh())

		So(liveElements(r), ShouldResemble, []string{
			"P2@1/C@2 :: C",
			"d :: D",
			"s :: S",
		})
		So(connections(r), ShouldResemble, []string{
			"P2@1/C@2[0] -> [0]d",
			"s[0] -> [0]P2@1/C@2",
		})

		Convey("the surviving element is stamped by the last rule to fire", func() {
			So(r.Element(r.EIndex("P2@1/C@2")).Flags, ShouldEqual, 2)
		})
	})
}

func TestOptimizeInvariants(t *testing.T) {
	Convey("after optimization the router is structurally sound", t, func() {
		ps := loadPatterns(passthroughPattern)
		r := parseOK("A -> F -> B;")
		Optimize(r, ps, discardErrh())

		names := map[string]bool{}
		for i := 0; i < r.NElements(); i++ {
			e := r.Element(i)
			So(e.live(), ShouldBeTrue)
			So(names[e.Name], ShouldBeFalse)
			names[e.Name] = true
		}
		for k := 0; k < r.NHookup(); k++ {
			f, to := r.Connection(k)
			So(f.Idx, ShouldBeBetweenOrEqual, 0, r.NElements()-1)
			So(to.Idx, ShouldBeBetweenOrEqual, 0, r.NElements()-1)
			So(f.Port, ShouldBeGreaterThanOrEqualTo, 0)
			So(to.Port, ShouldBeGreaterThanOrEqualTo, 0)
		}
	})
}
