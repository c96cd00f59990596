package lsp

import (
	"github.com/johannes-adr/smith"
	"github.com/johannes-adr/smith/pkg/errs"
)

// Checker recompiles a single schema document and converts the resulting
// diagnostics into LSP form. Unlike the teacher's Checker, which proxies a
// whole-project build to a separate daemon process over gRPC, this one
// calls smith.Compile directly — a schema document is self-contained, so
// there is nothing to proxy to.
type Checker struct{}

func NewChecker() *Checker { return &Checker{} }

// Check compiles text and returns the diagnostics it produced, if any. A
// nil result means the document compiled cleanly.
func (c *Checker) Check(text string) []Diagnostic {
	_, err := smith.Compile(text)
	if err == nil {
		return nil
	}
	return diagnosticsFromError(err)
}

func diagnosticsFromError(err error) []Diagnostic {
	list, ok := err.(interface{ Errs() []*errs.Error })
	if !ok {
		return []Diagnostic{{
			Range:    Range{},
			Severity: SeverityError,
			Source:   "smith",
			Message:  err.Error(),
		}}
	}
	diags := make([]Diagnostic, 0, len(list.Errs()))
	for _, e := range list.Errs() {
		diags = append(diags, Diagnostic{
			Range:    posRange(e.Pos),
			Severity: SeverityError,
			Source:   "smith",
			Message:  e.Error(),
		})
	}
	return diags
}

// posRange converts a 1-based errs.Pos into a zero-based LSP Range one
// character wide, covering the single offending character. Non-positive
// lines and columns are clamped to 0.
func posRange(p errs.Pos) Range {
	line := p.Line - 1
	if line < 0 {
		line = 0
	}
	col := p.Col - 1
	if col < 0 {
		col = 0
	}
	pos := Position{Line: line, Character: col}
	return Range{Start: pos, End: Position{Line: pos.Line, Character: pos.Character + 1}}
}
