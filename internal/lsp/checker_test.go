package lsp

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/johannes-adr/smith/pkg/errs"
)

func TestCheckerCleanSchema(t *testing.T) {
	c := qt.New(t)
	checker := NewChecker()
	diags := checker.Check(`struct Point{ x: u8 y: u8 }`)
	c.Assert(diags, qt.HasLen, 0)
}

func TestCheckerReportsPositionedDiagnostic(t *testing.T) {
	c := qt.New(t)
	checker := NewChecker()
	diags := checker.Check(`struct Point{ x: NotAType }`)
	c.Assert(diags, qt.Not(qt.HasLen), 0)
	d := diags[0]
	c.Assert(d.Severity, qt.Equals, SeverityError)
	c.Assert(d.Message, qt.Not(qt.Equals), "")
	// A schema-level diagnostic always carries a real, non-zero-width
	// position once posRange has converted it from 1-based to 0-based:
	// NotAType starts at 1:18, which becomes 0:17.
	c.Assert(d.Range.Start.Line, qt.Equals, 0)
	c.Assert(d.Range.Start.Character, qt.Equals, 17)
}

func TestPosRangeClampsNonPositive(t *testing.T) {
	c := qt.New(t)
	r := posRange(errs.Pos{Line: 0, Col: 0})
	c.Assert(r.Start.Line, qt.Equals, 0)
	c.Assert(r.Start.Character, qt.Equals, 0)
	c.Assert(r.End.Character, qt.Equals, 1)
}
