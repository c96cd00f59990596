package schema

import (
	"fmt"
	"strings"
)

// TypeExpr is an unresolved type reference as written in (or desugared
// from) source: a primitive keyword, Array<T>, or Ident<args...>.
type TypeExpr struct {
	Kind TypeExprKind
	Pos  Pos
	// Prim is valid when Kind == ExprPrimitive.
	Prim PrimKind
	// Elem is valid when Kind == ExprArray.
	Elem *TypeExpr
	// Name and Args are valid when Kind == ExprCustom.
	Name string
	Args []*TypeExpr
}

type TypeExprKind int

const (
	ExprPrimitive TypeExprKind = iota
	ExprArray
	ExprCustom
)

// PrimKind enumerates the primitive keywords recognized by the grammar.
// Char is a distinct keyword at the syntax level but is desugared to String
// immediately after parsing (see Desugar), per the length-1-string
// resolution recorded in DESIGN.md.
type PrimKind int

const (
	PrimI8 PrimKind = iota
	PrimI16
	PrimI32
	PrimU8
	PrimU16
	PrimU32
	PrimU64
	PrimF32
	PrimF64
	PrimUdInt
	PrimBool
	PrimString
	PrimChar
)

var primNames = map[string]PrimKind{
	"i8":     PrimI8,
	"i16":    PrimI16,
	"i32":    PrimI32,
	"u8":     PrimU8,
	"u16":    PrimU16,
	"u32":    PrimU32,
	"u64":    PrimU64,
	"f32":    PrimF32,
	"f64":    PrimF64,
	"udInt":  PrimUdInt,
	"bool":   PrimBool,
	"string": PrimString,
	"char":   PrimChar,
}

func (k PrimKind) String() string {
	for name, v := range primNames {
		if v == k {
			return name
		}
	}
	return "?"
}

// Write appends the canonical textual form of a TypeExpr to b, used both for
// mangled-name construction (§3.4) and diagnostics.
func (t *TypeExpr) Write(b *strings.Builder) {
	switch t.Kind {
	case ExprPrimitive:
		b.WriteString(t.Prim.String())
	case ExprArray:
		b.WriteString("Array<")
		t.Elem.Write(b)
		b.WriteByte('>')
	case ExprCustom:
		b.WriteString(t.Name)
		if len(t.Args) > 0 {
			b.WriteByte('<')
			for i, a := range t.Args {
				if i > 0 {
					b.WriteByte(',')
				}
				a.Write(b)
			}
			b.WriteByte('>')
		}
	}
}

func (t *TypeExpr) String() string {
	var b strings.Builder
	t.Write(&b)
	return b.String()
}

// Desugar rewrites a PrimChar primitive to PrimString in place, recursively.
// Called once right after parsing, before the expander ever sees the tree.
func (t *TypeExpr) Desugar() {
	switch t.Kind {
	case ExprPrimitive:
		if t.Prim == PrimChar {
			t.Prim = PrimString
		}
	case ExprArray:
		t.Elem.Desugar()
	case ExprCustom:
		for _, a := range t.Args {
			a.Desugar()
		}
	}
}

// Field is a single struct field as written in source.
type Field struct {
	Name string
	Type *TypeExpr
	Pos  Pos
}

// VariantDecl is a single enum variant as written in source. Payload is nil
// for a unit variant.
type VariantDecl struct {
	Name    string
	Payload *TypeExpr // nil for unit variants
	Pos     Pos
}

// RootKind distinguishes struct from enum root declarations.
type RootKind int

const (
	RootStruct RootKind = iota
	RootEnum
)

// RootDecl is a top-level struct or enum declaration.
type RootDecl struct {
	Kind     RootKind
	Name     string
	Generics []string // generic parameter names, empty if non-generic
	Fields   []Field  // valid when Kind == RootStruct
	Variants []VariantDecl // valid when Kind == RootEnum
	Pos      Pos
}

func (r *RootDecl) IsGeneric() bool { return len(r.Generics) > 0 }

// File is the full parsed schema: an ordered list of root declarations.
type File struct {
	Decls []*RootDecl
}

// ByName looks up a root declaration by its bare (unmangled) name.
func (f *File) ByName(name string) (*RootDecl, bool) {
	for _, d := range f.Decls {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Clone deep-copies a RootDecl so the expander can substitute generic
// parameters without mutating the blueprint (mirrors deep_clone in
// original_source's parser.rs RootDeclaration trait).
func (r *RootDecl) Clone() *RootDecl {
	cp := &RootDecl{Kind: r.Kind, Name: r.Name, Pos: r.Pos}
	cp.Generics = append([]string(nil), r.Generics...)
	switch r.Kind {
	case RootStruct:
		cp.Fields = make([]Field, len(r.Fields))
		for i, f := range r.Fields {
			cp.Fields[i] = Field{Name: f.Name, Type: cloneTypeExpr(f.Type), Pos: f.Pos}
		}
	case RootEnum:
		cp.Variants = make([]VariantDecl, len(r.Variants))
		for i, v := range r.Variants {
			var payload *TypeExpr
			if v.Payload != nil {
				payload = cloneTypeExpr(v.Payload)
			}
			cp.Variants[i] = VariantDecl{Name: v.Name, Payload: payload, Pos: v.Pos}
		}
	}
	return cp
}

func cloneTypeExpr(t *TypeExpr) *TypeExpr {
	if t == nil {
		return nil
	}
	cp := &TypeExpr{Kind: t.Kind, Pos: t.Pos, Prim: t.Prim, Name: t.Name}
	if t.Elem != nil {
		cp.Elem = cloneTypeExpr(t.Elem)
	}
	if t.Args != nil {
		cp.Args = make([]*TypeExpr, len(t.Args))
		for i, a := range t.Args {
			cp.Args[i] = cloneTypeExpr(a)
		}
	}
	return cp
}

// TypeExprs returns every field/variant-payload type expression in this
// declaration, mutable in place — the generalized "get_field_implementors"
// accessor used by both the expander's seeding pass and its substitution
// pass.
func (r *RootDecl) TypeExprs() []**TypeExpr {
	var out []**TypeExpr
	switch r.Kind {
	case RootStruct:
		for i := range r.Fields {
			out = append(out, &r.Fields[i].Type)
		}
	case RootEnum:
		for i := range r.Variants {
			if r.Variants[i].Payload != nil {
				out = append(out, &r.Variants[i].Payload)
			}
		}
	}
	return out
}

func (r *RootDecl) String() string {
	return fmt.Sprintf("%s(generics=%v)", r.Name, r.Generics)
}
