// Package generics implements the work-list monomorphization algorithm of
// spec.md §4.2: it walks the fields/variants reachable from every
// non-generic root declaration, instantiates each concrete generic
// reference it finds, and produces a flat, deterministically ordered
// program of fully-monomorphic declarations for the resolver to consume.
//
// Grounded on pkg/clientgen/types.go's typeRegistry (a seen-map dedup
// visitor over named-type graphs), generalized from "already resolved ids"
// to "not yet assigned mangled names".
package generics

import (
	"github.com/johannes-adr/smith/internal/schema"
	"github.com/johannes-adr/smith/pkg/errs"
)

var errRange = errs.NewRange(
	"generics",
	"hint: every CustomType reference must name a struct/enum declared in the same schema, with exactly as many type arguments as it has generic parameters",
	errs.WithRangeSize(50),
)

var (
	errUnknownType    = errRange.New("Unknown Type", "type %q is not declared in this schema")
	errArityMismatch  = errRange.New("Generic Arity Mismatch", "type %q expects %d type argument(s), got %d")
	errGenericArgs    = errRange.New("Invalid Generic Parameter Use", "generic parameter %q cannot itself take type arguments")
)

// Program is the unresolved output of expansion: a deterministically
// ordered list of fully-monomorphic declarations (first-insertion order,
// resolving the Open Question in spec.md §9), plus the original generic
// blueprints for the code-generation interface named in spec.md §4.8.
type Program struct {
	Expanded   []*schema.RootDecl
	Blueprints map[string]*schema.RootDecl
}

// Expand computes the closed monomorphization of f reachable from every
// non-generic root declaration.
func Expand(f *schema.File) (*Program, error) {
	e := &engine{
		blueprints: map[string]*schema.RootDecl{},
		index:      map[string]int{},
	}
	for _, d := range f.Decls {
		e.blueprints[d.Name] = d
	}

	var prog *Program
	func() {
		defer e.errs.Bailout()

		for _, d := range f.Decls {
			if d.IsGeneric() {
				continue
			}
			for _, slot := range d.TypeExprs() {
				e.doTyp(*slot)
			}
		}

		for _, d := range f.Decls {
			if d.IsGeneric() {
				continue
			}
			cpy := d.Clone()
			cpy.Generics = nil
			e.register(d.Name, cpy)
		}

		blueprints := map[string]*schema.RootDecl{}
		for name, d := range e.blueprints {
			if d.IsGeneric() {
				blueprints[name] = d
			}
		}
		prog = &Program{Expanded: e.order, Blueprints: blueprints}
	}()
	if err := e.errs.AsError(); err != nil {
		return nil, err
	}
	return prog, nil
}

type engine struct {
	blueprints map[string]*schema.RootDecl // every root decl, by bare name
	index      map[string]int              // mangled name -> position in order
	order      []*schema.RootDecl
	errs       errs.List
}

func (e *engine) register(mangled string, decl *schema.RootDecl) {
	e.index[mangled] = len(e.order)
	e.order = append(e.order, decl)
}

// doTyp processes a single type reference reachable from a field or
// variant payload, instantiating it (and, recursively, its own generic
// dependencies) exactly once.
func (e *engine) doTyp(t *schema.TypeExpr) {
	switch t.Kind {
	case schema.ExprPrimitive:
		return
	case schema.ExprArray:
		e.doTyp(t.Elem)
		return
	case schema.ExprCustom:
		if len(t.Args) == 0 {
			// Base monomorphic reference — registered in the base-type pass,
			// so only its name and arity are checked here.
			blueprint, ok := e.blueprints[t.Name]
			if !ok {
				e.errs.Fatalf(errUnknownType, errs.Pos(t.Pos), t.Name)
			}
			if len(blueprint.Generics) != 0 {
				e.errs.Fatalf(errArityMismatch, errs.Pos(t.Pos), t.Name, len(blueprint.Generics), 0)
			}
			return
		}
		for _, a := range t.Args {
			e.doTyp(a)
		}
		mangled := Mangle(t)
		if _, ok := e.index[mangled]; ok {
			return
		}
		blueprint, ok := e.blueprints[t.Name]
		if !ok {
			e.errs.Fatalf(errUnknownType, errs.Pos(t.Pos), t.Name)
		}
		if len(blueprint.Generics) != len(t.Args) {
			e.errs.Fatalf(errArityMismatch, errs.Pos(t.Pos), t.Name, len(blueprint.Generics), len(t.Args))
		}
		expanded := e.expandGeneric(blueprint, t.Args, mangled)
		e.register(mangled, expanded)
	}
}

// expandGeneric deep-clones blueprint, substitutes each occurrence of its
// generic parameters with the corresponding concrete argument, and ensures
// transitive closure by re-running doTyp over every substituted field.
func (e *engine) expandGeneric(blueprint *schema.RootDecl, args []*schema.TypeExpr, mangledName string) *schema.RootDecl {
	cpy := blueprint.Clone()
	cpy.Name = mangledName
	cpy.Generics = nil
	for _, slot := range cpy.TypeExprs() {
		e.expandField(slot, blueprint, args)
		e.doTyp(*slot)
	}
	return cpy
}

// expandField replaces generic-parameter occurrences in *slot with the
// corresponding concrete argument from args, recursing into Array/CustomType
// structure exactly as original_source's generics_engine.rs expand_field
// does.
func (e *engine) expandField(slot **schema.TypeExpr, blueprint *schema.RootDecl, args []*schema.TypeExpr) {
	t := *slot
	switch t.Kind {
	case schema.ExprCustom:
		pos := indexOf(blueprint.Generics, t.Name)
		if pos >= 0 {
			if len(t.Args) > 0 {
				e.errs.Fatalf(errGenericArgs, errs.Pos(t.Pos), t.Name)
			}
			*slot = cloneArg(args[pos])
			return
		}
		for i := range t.Args {
			e.expandField(&t.Args[i], blueprint, args)
		}
	case schema.ExprArray:
		e.expandField(&t.Elem, blueprint, args)
	case schema.ExprPrimitive:
		return
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// cloneArg deep-copies a type expression so a single concrete argument can
// be substituted into multiple generic-parameter positions without aliasing.
func cloneArg(t *schema.TypeExpr) *schema.TypeExpr {
	cp := &schema.TypeExpr{Kind: t.Kind, Pos: t.Pos, Prim: t.Prim, Name: t.Name}
	if t.Elem != nil {
		cp.Elem = cloneArg(t.Elem)
	}
	if t.Args != nil {
		cp.Args = make([]*schema.TypeExpr, len(t.Args))
		for i, a := range t.Args {
			cp.Args[i] = cloneArg(a)
		}
	}
	return cp
}
