// Package typetable holds the resolved, dense representation of a compiled
// schema: a vector of declarations addressed by small integer id, and the
// Type values (primitives, arrays, and resolved custom-type references)
// that appear inside struct fields and enum variant payloads.
package typetable

import "fmt"

// BuiltinKind enumerates the schema's closed set of primitive types.
type BuiltinKind int

const (
	I8 BuiltinKind = iota
	I16
	I32
	U8
	U16
	U32
	U64
	F32
	F64
	UdInt
	Bool
	String
)

func (k BuiltinKind) String() string {
	switch k {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case UdInt:
		return "udInt"
	case Bool:
		return "bool"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Type is a resolved type occurring in a field or variant payload position.
type Type interface {
	isType()
	String() string
}

// Builtin is a resolved primitive type.
type Builtin struct {
	Kind BuiltinKind
}

func (Builtin) isType()          {}
func (b Builtin) String() string { return b.Kind.String() }

// Array is a resolved Array<T>.
type Array struct {
	Elem Type
}

func (Array) isType()          {}
func (a Array) String() string { return fmt.Sprintf("Array<%s>", a.Elem) }

// Ref is a resolved reference to a custom struct or enum declaration.
type Ref struct {
	ID   int
	Name string // mangled name, for diagnostics/codegen only
	Args []Type // resolved type arguments, kept for codegen of generic blueprints
}

func (Ref) isType() {}
func (r Ref) String() string {
	return r.Name
}

// DeclKind tags the variant a Decl holds.
type DeclKind int

const (
	KindStruct DeclKind = iota
	KindEnum
)

// Field is an ordered (name, type) pair inside a struct declaration.
type Field struct {
	Name string
	Type Type
}

// Variant is an ordered (name, optional payload type) pair inside an enum
// declaration. Payload == nil means a unit variant.
type Variant struct {
	Name    string
	Payload Type // nil for unit variants
}

// Decl is a single entry of the resolved type table: either a struct or an
// enum, never both.
type Decl struct {
	Name   string
	kind   DeclKind
	Fields []Field   // valid when Kind() == KindStruct
	Variants []Variant // valid when Kind() == KindEnum
}

// Kind reports whether this declaration is a struct or an enum.
func (d *Decl) Kind() DeclKind { return d.kind }

// NewStructDecl builds a struct declaration.
func NewStructDecl(name string, fields []Field) *Decl {
	return &Decl{Name: name, kind: KindStruct, Fields: fields}
}

// NewEnumDecl builds an enum declaration.
func NewEnumDecl(name string, variants []Variant) *Decl {
	return &Decl{Name: name, kind: KindEnum, Variants: variants}
}

// IndexOfVariant returns the zero-based ordinal of a variant by name, or -1.
func (d *Decl) IndexOfVariant(name string) int {
	for i, v := range d.Variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// Table is the dense, immutable vector of resolved declarations produced by
// the resolver. A type id is an index into this slice.
type Table struct {
	decls []*Decl
}

// NewTable wraps an already-ordered slice of declarations as a Table.
func NewTable(decls []*Decl) *Table {
	return &Table{decls: decls}
}

// Len reports the number of declarations in the table.
func (t *Table) Len() int { return len(t.decls) }

// Get returns the declaration at id, or (nil, false) if out of range.
func (t *Table) Get(id int) (*Decl, bool) {
	if id < 0 || id >= len(t.decls) {
		return nil, false
	}
	return t.decls[id], true
}

// ByName finds a declaration by its (possibly mangled) name. Used by
// TypeOf and diagnostics; not on any codec hot path.
func (t *Table) ByName(name string) (int, *Decl, bool) {
	for i, d := range t.decls {
		if d.Name == name {
			return i, d, true
		}
	}
	return 0, nil, false
}

// All returns the declarations in table order. Callers must not mutate it.
func (t *Table) All() []*Decl { return t.decls }
