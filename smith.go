// Package smith compiles a schema source into a dense type table and uses
// it to transcode values between Go, JSON, and the smith binary wire
// format, all through the value protocol defined in internal/valueproto.
package smith

import (
	"github.com/johannes-adr/smith/internal/generics"
	"github.com/johannes-adr/smith/internal/jsontranscode"
	"github.com/johannes-adr/smith/internal/resolve"
	"github.com/johannes-adr/smith/internal/schema"
	"github.com/johannes-adr/smith/internal/typetable"
	"github.com/johannes-adr/smith/internal/valueproto"
	"github.com/johannes-adr/smith/internal/wire"
)

// Smith is a compiled schema: an immutable, dense type table plus the
// machinery to encode/decode values against it. Safe for concurrent use by
// multiple goroutines calling Encode/Decode/JSONToBinary/BinaryToJSON —
// only the per-call Serializer/Deserializer carries mutable state.
type Smith struct {
	table *typetable.Table
}

// TypeRef names one declaration inside a compiled Smith, resolved once at
// TypeOf time so later Encode/Decode calls never re-walk the schema by name.
type TypeRef struct {
	table *typetable.Table
	typ   typetable.Type
}

// Compile parses src, expands every generic instantiation it reaches from a
// non-generic root declaration, and resolves the result into a dense type
// table. The returned error is a *pkg/errs list if compilation failed for
// schema reasons (parse, unknown type, arity mismatch).
func Compile(src string) (*Smith, error) {
	file, err := schema.Parse(src)
	if err != nil {
		return nil, err
	}
	prog, err := generics.Expand(file)
	if err != nil {
		return nil, err
	}
	table, err := resolve.Resolve(prog)
	if err != nil {
		return nil, err
	}
	return &Smith{table: table}, nil
}

// TypeOf looks up a declared struct or enum by its schema name (a generic
// instantiation must be named in its mangled form, e.g. "Order<OrderItem>").
func (s *Smith) TypeOf(name string) (TypeRef, bool) {
	id, decl, ok := s.table.ByName(name)
	if !ok {
		return TypeRef{}, false
	}
	return TypeRef{table: s.table, typ: typetable.Ref{ID: id, Name: decl.Name}}, true
}

// DeclKind reports whether a declaration is a struct or an enum.
type DeclKind = typetable.DeclKind

const (
	KindStruct = typetable.KindStruct
	KindEnum   = typetable.KindEnum
)

// DeclInfo summarizes one declaration in a compiled schema, for tooling that
// wants to list what a schema declares without reaching into internal/typetable.
type DeclInfo struct {
	ID   int
	Name string
	Kind DeclKind
}

// Types lists every declaration in table order (the order Compile assigned
// dense ids in), for use by a CLI's "types" subcommand or similar tooling.
func (s *Smith) Types() []DeclInfo {
	all := s.table.All()
	out := make([]DeclInfo, len(all))
	for i, d := range all {
		out[i] = DeclInfo{ID: i, Name: d.Name, Kind: d.Kind()}
	}
	return out
}

// Encode serializes value, a native Go value, as ref's binary wire form.
// Struct fields are matched to schema fields by name (via a `smith:"..."`
// tag, falling back to the Go field name with its first letter lower-cased)
// and must appear in the same order the schema declares them.
func (s *Smith) Encode(ref TypeRef, value any) ([]byte, error) {
	src := valueproto.NewNativeSource(value)
	return wire.NewSerializer(ref.table).Encode(ref.typ, src)
}

// Decode deserializes data as ref's type into out, a non-nil pointer. A
// pointer to a concrete struct/slice decodes directly into it; a pointer to
// `any` decodes into plain maps, slices, scalars, and valueproto.NativeEnum.
func (s *Smith) Decode(ref TypeRef, data []byte, out any) error {
	sink, err := valueproto.NewNativeSink(out)
	if err != nil {
		return err
	}
	return wire.NewDeserializer(ref.table).Decode(ref.typ, data, sink)
}

// JSONToBinary transcodes a JSON document directly into ref's binary wire
// form without building a Go value of ref's type along the way.
func (s *Smith) JSONToBinary(ref TypeRef, jsonText string) ([]byte, error) {
	src, err := jsontranscode.NewSource(jsonText)
	if err != nil {
		return nil, err
	}
	return wire.NewSerializer(ref.table).Encode(ref.typ, src)
}

// BinaryToJSON transcodes binary wire data directly into a JSON document.
func (s *Smith) BinaryToJSON(ref TypeRef, data []byte) (string, error) {
	sink := jsontranscode.NewSink()
	if err := wire.NewDeserializer(ref.table).Decode(ref.typ, data, sink); err != nil {
		return "", err
	}
	return string(sink.Bytes()), nil
}
