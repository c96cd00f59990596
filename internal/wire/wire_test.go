package wire_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"

	"github.com/johannes-adr/smith/internal/generics"
	"github.com/johannes-adr/smith/internal/resolve"
	"github.com/johannes-adr/smith/internal/schema"
	"github.com/johannes-adr/smith/internal/typetable"
	"github.com/johannes-adr/smith/internal/valueproto"
	"github.com/johannes-adr/smith/internal/wire"
)

func compile(t *testing.T, src string) *typetable.Table {
	t.Helper()
	f, err := schema.Parse(src)
	assert.NilError(t, err)
	prog, err := generics.Expand(f)
	assert.NilError(t, err)
	table, err := resolve.Resolve(prog)
	assert.NilError(t, err)
	return table
}

func TestStructRoundTripBytes(t *testing.T) {
	table := compile(t, `struct Point{ x: u8 y: u8 }`)
	id, decl, ok := table.ByName("Point")
	assert.Assert(t, ok)
	cursor := typetable.Ref{ID: id, Name: decl.Name}

	type Point struct {
		X uint8 `smith:"x"`
		Y uint8 `smith:"y"`
	}
	in := Point{X: 1, Y: 2}

	data, err := wire.NewSerializer(table).Encode(cursor, valueproto.NewNativeSource(in))
	assert.NilError(t, err)
	assert.DeepEqual(t, data, []byte{1, 2})

	var out Point
	sink, err := valueproto.NewNativeSink(&out)
	assert.NilError(t, err)
	assert.NilError(t, wire.NewDeserializer(table).Decode(cursor, data, sink))

	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestIntegerNarrowingRejected(t *testing.T) {
	table := compile(t, `struct S{ v: u8 }`)
	id, decl, _ := table.ByName("S")
	cursor := typetable.Ref{ID: id, Name: decl.Name}

	type S struct {
		V int `smith:"v"`
	}
	_, err := wire.NewSerializer(table).Encode(cursor, valueproto.NewNativeSource(S{V: 1000}))
	assert.Assert(t, err != nil)

	var wireErr *wire.Error
	assert.Assert(t, asWireError(err, &wireErr))
	assert.Equal(t, wireErr.Kind, wire.KindIntegerRange)
}

func asWireError(err error, target **wire.Error) bool {
	we, ok := err.(*wire.Error)
	if !ok {
		return false
	}
	*target = we
	return true
}
