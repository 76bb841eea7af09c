package rewire

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseRouter(t *testing.T) {
	Convey("parsing configuration files", t, func() {
		Convey("declarations carry name, type, configuration and landmark", func() {
			r := parseOK("q :: Queue(10);")
			i := r.EIndex("q")
			So(i, ShouldEqual, 0)
			e := r.Element(i)
			So(r.TypeName(e.Type), ShouldEqual, "Queue")
			So(e.Configuration, ShouldEqual, "10")
			So(e.Landmark, ShouldEqual, "test.click:1")
			So(e.Flags, ShouldEqual, 0)
		})

		Convey("a declaration without parentheses has an empty configuration", func() {
			r := parseOK("d :: Discard;")
			So(r.Element(0).Configuration, ShouldEqual, "")
		})

		Convey("landmarks track line numbers", func() {
			r := parseOK("a :: A;\n\nb :: B;\n")
			So(r.Element(r.EIndex("b")).Landmark, ShouldEqual, "test.click:3")
		})

		Convey("connection chains with explicit and default ports", func() {
			r := parseOK("a :: A; b :: B; c :: C; a [1] -> [2] b -> c;")
			So(connections(r), ShouldResemble, []string{
				"a[1] -> [2]b",
				"b[0] -> [0]c",
			})
		})

		Convey("anonymous elements are named class@ordinal", func() {
			r := parseOK("Queue(10) -> Discard();")
			So(liveElements(r), ShouldResemble, []string{
				"Discard@2 :: Discard",
				"Queue@1 :: Queue(10)",
			})
			So(connections(r), ShouldResemble, []string{
				"Queue@1[0] -> [0]Discard@2",
			})
		})

		Convey("a bare unknown name instantiates anonymously each time", func() {
			r := parseOK("Idle -> Idle;")
			So(liveElements(r), ShouldResemble, []string{
				"Idle@1 :: Idle",
				"Idle@2 :: Idle",
			})
		})

		Convey("declared names are referenced, not re-instantiated", func() {
			r := parseOK("a :: A; a -> a;")
			So(r.NElements(), ShouldEqual, 1)
			So(connections(r), ShouldResemble, []string{"a[0] -> [0]a"})
		})

		Convey("comments are ignored", func() {
			r := parseOK(`
				// a line comment
				a :: A; /* an inline block */ b :: B;
				/* a
				   multiline block */
				a -> b;
			`)
			So(r.NElements(), ShouldEqual, 2)
			So(r.NHookup(), ShouldEqual, 1)
		})

		Convey("configurations keep quoted and grouped text verbatim", func() {
			r := parseOK(`f :: Filter("a -> b; (c)", rate(5, 6));`)
			So(r.Element(0).Configuration, ShouldEqual, `"a -> b; (c)", rate(5, 6)`)
		})

		Convey("input and output auto-declare as tunnels", func() {
			r := parseOK("input -> F -> output;")
			So(r.Element(r.EIndex("input")).Type, ShouldEqual, TunnelType)
			So(r.Element(r.EIndex("output")).Type, ShouldEqual, TunnelType)
		})

		Convey("elementclass declares a compound class", func() {
			r := parseOK(`
				elementclass C {
					input -> X -> output;
				}
				c :: C;
			`)
			ti := r.TypeIndex("C")
			So(ti, ShouldBeGreaterThan, 0)
			body := r.TypeClass(ti)
			So(body, ShouldNotBeNil)
			So(body.EIndex("input"), ShouldEqual, 0)
			So(body.EIndex("output"), ShouldBeGreaterThan, 0)
			So(liveElements(body), ShouldResemble, []string{"X@2 :: X"})
		})

		Convey("connectiontunnel declares an active pair", func() {
			r := parseOK("connectiontunnel t1 -> t2;")
			a := r.Element(r.EIndex("t1"))
			b := r.Element(r.EIndex("t2"))
			So(a.Type, ShouldEqual, TunnelType)
			So(a.TunnelOutput, ShouldEqual, "t2")
			So(b.TunnelInput, ShouldEqual, "t1")
		})
	})

	Convey("parse and semantic errors report through the handler", t, func() {
		Convey("syntax errors yield a nil router", func() {
			errh := discardErrh()
			r := ParseRouter("a :: ;", "bad.click", errh)
			So(r, ShouldBeNil)
			So(errh.NErrors(), ShouldBeGreaterThan, 0)
		})

		Convey("redeclaration is an error but parsing continues", func() {
			errh := discardErrh()
			r := ParseRouter("a :: A; a :: B;", "bad.click", errh)
			So(r, ShouldNotBeNil)
			So(errh.NErrors(), ShouldEqual, 1)
		})
	})
}

func TestEmitter(t *testing.T) {
	Convey("emitted configurations re-parse to the same router", t, func() {
		check := func(src string) {
			r := parseOK(src)
			r2 := parseOK(r.ConfigurationString())
			So(liveElements(r2), ShouldResemble, liveElements(r))
			So(connections(r2), ShouldResemble, connections(r))
		}

		check("a :: A; b :: B; a -> b;")
		check("q :: Queue(10, 'x,y'); d :: Discard; q [1] -> [3] d;")
		check("Queue(10) -> Discard();")
		check("s :: S; f :: F(7); s -> f; s -> f; f [1] -> s;")
	})

	Convey("declarations come out one per line with elided zero ports", t, func() {
		r := parseOK("a :: A(1);\nb :: B;\na -> b;\na [2] -> b;")
		So(r.ConfigurationString(), ShouldEqual,
			"a :: A(1);\nb :: B;\na -> b;\na [2] -> b;\n")
	})
}
