package resolve

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/johannes-adr/smith/internal/generics"
	"github.com/johannes-adr/smith/internal/schema"
	"github.com/johannes-adr/smith/internal/typetable"
)

func compile(c *qt.C, src string) *typetable.Table {
	f, err := schema.Parse(src)
	c.Assert(err, qt.IsNil)
	prog, err := generics.Expand(f)
	c.Assert(err, qt.IsNil)
	table, err := Resolve(prog)
	c.Assert(err, qt.IsNil)
	return table
}

func TestResolveAssignsContiguousIds(t *testing.T) {
	c := qt.New(t)
	table := compile(c, `
enum Optional<T>{ Some(T) None }
struct Item{ id: u8 }
struct Holder{ items: Optional<Item> }
`)
	c.Assert(table.Len(), qt.Equals, 3)
	for i := 0; i < table.Len(); i++ {
		_, ok := table.Get(i)
		c.Assert(ok, qt.IsTrue)
	}
}

func TestResolveRewritesRefByID(t *testing.T) {
	c := qt.New(t)
	table := compile(c, `
struct Item{ id: u8 }
struct Holder{ item: Item }
`)
	_, holder, ok := table.ByName("Holder")
	c.Assert(ok, qt.IsTrue)
	c.Assert(holder.Fields, qt.HasLen, 1)

	ref, ok := holder.Fields[0].Type.(typetable.Ref)
	c.Assert(ok, qt.IsTrue)

	itemID, _, ok := table.ByName("Item")
	c.Assert(ok, qt.IsTrue)
	c.Assert(ref.ID, qt.Equals, itemID)
}

func TestResolveStructVsEnumKind(t *testing.T) {
	c := qt.New(t)
	table := compile(c, `
struct Item{ id: u8 }
enum Tag{ A B }
`)
	_, item, _ := table.ByName("Item")
	c.Assert(item.Kind(), qt.Equals, typetable.KindStruct)

	_, tag, _ := table.ByName("Tag")
	c.Assert(tag.Kind(), qt.Equals, typetable.KindEnum)
	c.Assert(tag.IndexOfVariant("A"), qt.Equals, 0)
	c.Assert(tag.IndexOfVariant("B"), qt.Equals, 1)
	c.Assert(tag.IndexOfVariant("Nope"), qt.Equals, -1)
}
