package generics

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/johannes-adr/smith/internal/schema"
	"github.com/johannes-adr/smith/pkg/errs"
)

func parse(c *qt.C, src string) *schema.File {
	f, err := schema.Parse(src)
	c.Assert(err, qt.IsNil)
	return f
}

func TestExpandMonomorphizesGenericClosure(t *testing.T) {
	c := qt.New(t)
	f := parse(c, `
enum Optional<T>{ Some(T) None }
struct Item{ id: u8 }
struct Holder{ items: Optional<Item> }
`)
	prog, err := Expand(f)
	c.Assert(err, qt.IsNil)

	names := make([]string, len(prog.Expanded))
	for i, d := range prog.Expanded {
		names[i] = d.Name
	}
	// Optional<Item> is instantiated while seeding Holder's field during the
	// first (generic-instantiation) pass, before the second pass appends
	// the non-generic base declarations themselves in their declared order.
	c.Assert(names, qt.DeepEquals, []string{"Optional<Item>", "Item", "Holder"})

	// The generic blueprint stays out of Expanded but is retained for
	// tooling that wants to inspect the unexpanded shape.
	_, ok := prog.Blueprints["Optional"]
	c.Assert(ok, qt.IsTrue)
}

func TestExpandUnknownTypeReportsPosition(t *testing.T) {
	c := qt.New(t)
	f := parse(c, `struct A{ x: Missing<u8> }`)
	_, err := Expand(f)
	c.Assert(err, qt.Not(qt.IsNil))
	list, ok := err.(interface{ Errs() []*errs.Error })
	c.Assert(ok, qt.IsTrue)
	c.Assert(list.Errs()[0].Title, qt.Equals, "Unknown Type")
	c.Assert(list.Errs()[0].Pos, qt.Equals, errs.Pos{Line: 1, Col: 14})
}

func TestExpandArityMismatch(t *testing.T) {
	c := qt.New(t)
	f := parse(c, `
enum Optional<T>{ Some(T) None }
struct A{ x: Optional<u8, u8> }
`)
	_, err := Expand(f)
	c.Assert(err, qt.Not(qt.IsNil))
	list, ok := err.(interface{ Errs() []*errs.Error })
	c.Assert(ok, qt.IsTrue)
	c.Assert(list.Errs()[0].Title, qt.Equals, "Generic Arity Mismatch")
}
