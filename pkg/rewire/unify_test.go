package rewire

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMatchConfig(t *testing.T) {
	Convey("configuration unification", t, func() {
		Convey("equal literals match without binding", func() {
			defs := map[string]string{}
			So(MatchConfig("1, 2", "1, 2", defs), ShouldBeTrue)
			So(defs, ShouldBeEmpty)
		})

		Convey("different lengths never match", func() {
			So(MatchConfig("1, 2", "1", map[string]string{}), ShouldBeFalse)
			So(MatchConfig("", "1", map[string]string{}), ShouldBeFalse)
		})

		Convey("placeholders bind to target arguments", func() {
			defs := map[string]string{}
			So(MatchConfig("$a, $b", "1, 2", defs), ShouldBeTrue)
			So(defs, ShouldResemble, map[string]string{"$a": "1", "$b": "2"})
		})

		Convey("a placeholder must bind consistently within one call", func() {
			So(MatchConfig("$a, $a", "1, 1", map[string]string{}), ShouldBeTrue)
			So(MatchConfig("$a, $a", "1, 2", map[string]string{}), ShouldBeFalse)
		})

		Convey("prior bindings constrain later unification", func() {
			defs := map[string]string{"$a": "1"}
			So(MatchConfig("$a", "1", defs), ShouldBeTrue)
			So(MatchConfig("$a", "2", defs), ShouldBeFalse)
		})

		Convey("failure leaves the shared bindings untouched", func() {
			defs := map[string]string{}
			So(MatchConfig("$a, x", "1, y", defs), ShouldBeFalse)
			So(defs, ShouldBeEmpty)
		})

		Convey("malformed placeholders only match literally", func() {
			So(MatchConfig("$a-b", "1", map[string]string{}), ShouldBeFalse)
			So(MatchConfig("$", "1", map[string]string{}), ShouldBeFalse)
			So(MatchConfig("$a-b", "$a-b", map[string]string{}), ShouldBeTrue)
		})

		Convey("substituting the bindings back reproduces the target", func() {
			pat := "$x, fixed, $y"
			conf := "10, fixed, 20"
			defs := map[string]string{}
			So(MatchConfig(pat, conf, defs), ShouldBeTrue)

			patvec := SplitArgs(pat)
			for i, arg := range patvec {
				if v, ok := defs[arg]; ok {
					patvec[i] = v
				}
			}
			So(JoinArgs(patvec), ShouldEqual, conf)
		})
	})
}
