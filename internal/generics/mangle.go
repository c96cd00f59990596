package generics

import "github.com/johannes-adr/smith/internal/schema"

// Mangle computes the canonical textual form of a type expression, the key
// by which the expander deduplicates instantiations (spec §3.4). The
// printer itself lives on schema.TypeExpr since the parser's AST owns the
// type-expression shape; this is a thin, named entry point matching the
// package split recorded in SPEC_FULL.md.
func Mangle(t *schema.TypeExpr) string {
	return t.String()
}
