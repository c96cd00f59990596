package schema

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/johannes-adr/smith/pkg/errs"
)

func TestParseStructAndEnum(t *testing.T) {
	c := qt.New(t)
	f, err := Parse(`
struct Point{ x: u8 y: u8 }
enum Shape{ Dot Circle(Point) }
`)
	c.Assert(err, qt.IsNil)
	c.Assert(f.Decls, qt.HasLen, 2)

	point, ok := f.ByName("Point")
	c.Assert(ok, qt.IsTrue)
	c.Assert(point.Kind, qt.Equals, RootStruct)
	c.Assert(point.Fields, qt.HasLen, 2)
	c.Assert(point.Fields[0].Name, qt.Equals, "x")

	shape, ok := f.ByName("Shape")
	c.Assert(ok, qt.IsTrue)
	c.Assert(shape.Kind, qt.Equals, RootEnum)
	c.Assert(shape.Variants, qt.HasLen, 2)
	c.Assert(shape.Variants[0].Payload, qt.IsNil)
	c.Assert(shape.Variants[1].Payload, qt.Not(qt.IsNil))
}

func TestParseGenericDecl(t *testing.T) {
	c := qt.New(t)
	f, err := Parse(`enum Optional<T>{ Some(T) None }`)
	c.Assert(err, qt.IsNil)
	decl, ok := f.ByName("Optional")
	c.Assert(ok, qt.IsTrue)
	c.Assert(decl.IsGeneric(), qt.IsTrue)
	c.Assert(decl.Generics, qt.DeepEquals, []string{"T"})
}

func TestParseCharDesugarsToString(t *testing.T) {
	c := qt.New(t)
	f, err := Parse(`struct S{ c: char }`)
	c.Assert(err, qt.IsNil)
	decl, _ := f.ByName("S")
	c.Assert(decl.Fields[0].Type.Kind, qt.Equals, ExprPrimitive)
	c.Assert(decl.Fields[0].Type.Prim, qt.Equals, PrimString)
}

func TestParseDuplicateDeclIsError(t *testing.T) {
	c := qt.New(t)
	_, err := Parse(`
struct A{ x: u8 }
struct A{ y: u8 }
`)
	c.Assert(err, qt.Not(qt.IsNil))
	list, ok := err.(interface{ Errs() []*errs.Error })
	c.Assert(ok, qt.IsTrue)
	c.Assert(list.Errs(), qt.Not(qt.HasLen), 0)
	c.Assert(list.Errs()[0].Title, qt.Equals, "Duplicate Declaration")
}

func TestParseUnexpectedTokenReportsPosition(t *testing.T) {
	c := qt.New(t)
	_, err := Parse("struct A{ x u8 }")
	c.Assert(err, qt.Not(qt.IsNil))
	list, ok := err.(interface{ Errs() []*errs.Error })
	c.Assert(ok, qt.IsTrue)
	c.Assert(list.Errs()[0].Pos.Line, qt.Equals, 1)
}

func TestTypeExprPosIsStamped(t *testing.T) {
	c := qt.New(t)
	f, err := Parse("struct A{\n  x: u8\n}")
	c.Assert(err, qt.IsNil)
	decl, _ := f.ByName("A")
	// "x: u8" is on line 2; the field's type expression should carry that.
	c.Assert(decl.Fields[0].Type.Pos.Line, qt.Equals, 2)
}
