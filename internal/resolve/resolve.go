// Package resolve assigns each expanded declaration a stable dense integer
// id and rewrites every CustomType reference inside fields/variants from
// by-name to by-id, producing the immutable typetable.Table the codec
// walks.
//
// Grounded on v2/app/legacymeta/schema.go's (*builder).decl: a
// map[string]uint32 that assigns an id the first time a name is seen and
// short-circuits afterward.
package resolve

import (
	"github.com/johannes-adr/smith/internal/generics"
	"github.com/johannes-adr/smith/internal/schema"
	"github.com/johannes-adr/smith/internal/typetable"
	"github.com/johannes-adr/smith/pkg/errs"
)

var errRange = errs.NewRange(
	"resolve",
	"hint: this indicates an internally-inconsistent schema or a bug in the generic expander",
	errs.WithRangeSize(50),
)

var errUnresolvedName = errRange.New("Unresolved Name", "mangled type name %q was not found in the expanded program")

// Resolve walks p.Expanded in its given (first-insertion) order, assigns
// each declaration a slot equal to its position, and rewrites all
// CustomType references to typetable.Ref values carrying that slot index.
func Resolve(p *generics.Program) (*typetable.Table, error) {
	ids := make(map[string]int, len(p.Expanded))
	for i, d := range p.Expanded {
		ids[d.Name] = i
	}

	var e errs.List
	var decls []*typetable.Decl
	func() {
		defer e.Bailout()
		decls = make([]*typetable.Decl, len(p.Expanded))
		for i, d := range p.Expanded {
			decls[i] = resolveDecl(d, ids, &e)
		}
	}()
	if err := e.AsError(); err != nil {
		return nil, err
	}
	return typetable.NewTable(decls), nil
}

func resolveDecl(d *schema.RootDecl, ids map[string]int, e *errs.List) *typetable.Decl {
	switch d.Kind {
	case schema.RootStruct:
		fields := make([]typetable.Field, len(d.Fields))
		for i, f := range d.Fields {
			fields[i] = typetable.Field{Name: f.Name, Type: resolveType(f.Type, ids, e)}
		}
		return typetable.NewStructDecl(d.Name, fields)
	case schema.RootEnum:
		variants := make([]typetable.Variant, len(d.Variants))
		for i, v := range d.Variants {
			var payload typetable.Type
			if v.Payload != nil {
				payload = resolveType(v.Payload, ids, e)
			}
			variants[i] = typetable.Variant{Name: v.Name, Payload: payload}
		}
		return typetable.NewEnumDecl(d.Name, variants)
	default:
		panic("unreachable root kind")
	}
}

var primKindMap = map[schema.PrimKind]typetable.BuiltinKind{
	schema.PrimI8:     typetable.I8,
	schema.PrimI16:    typetable.I16,
	schema.PrimI32:    typetable.I32,
	schema.PrimU8:     typetable.U8,
	schema.PrimU16:    typetable.U16,
	schema.PrimU32:    typetable.U32,
	schema.PrimU64:    typetable.U64,
	schema.PrimF32:    typetable.F32,
	schema.PrimF64:    typetable.F64,
	schema.PrimUdInt:  typetable.UdInt,
	schema.PrimBool:   typetable.Bool,
	schema.PrimString: typetable.String,
	// PrimChar is desugared to PrimString by the parser before this stage
	// ever runs (see schema.TypeExpr.Desugar).
}

func resolveType(t *schema.TypeExpr, ids map[string]int, e *errs.List) typetable.Type {
	switch t.Kind {
	case schema.ExprPrimitive:
		return typetable.Builtin{Kind: primKindMap[t.Prim]}
	case schema.ExprArray:
		return typetable.Array{Elem: resolveType(t.Elem, ids, e)}
	case schema.ExprCustom:
		mangled := t.String()
		id, ok := ids[mangled]
		if !ok {
			e.Fatalf(errUnresolvedName, errs.Pos(t.Pos), mangled)
		}
		args := make([]typetable.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = resolveType(a, ids, e)
		}
		return typetable.Ref{ID: id, Name: mangled, Args: args}
	default:
		panic("unreachable type expr kind")
	}
}
