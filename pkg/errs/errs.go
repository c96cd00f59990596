// Package errs implements the positioned compile-error accumulator used by
// the schema parser, expander, and resolver.
package errs

import (
	"fmt"
	"strings"
)

// Pos is a location in schema source text.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Error is a single positioned compile diagnostic.
type Error struct {
	Title   string
	Summary string
	Pos     Pos
	Hint    string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", e.Pos, e.Title, e.Summary)
	if e.Hint != "" {
		fmt.Fprintf(&b, "\n  hint: %s", e.Hint)
	}
	return b.String()
}

// Range mirrors the teacher's errors.Range: a named group of related error
// templates sharing a hint, used to construct concrete Templates.
type Range struct {
	name string
	hint string
}

// RangeOption configures a Range.
type RangeOption func(*Range)

// WithRangeSize is accepted for signature parity with the teacher's API;
// this package does not pre-allocate numeric code ranges.
func WithRangeSize(_ int) RangeOption {
	return func(*Range) {}
}

// NewRange creates a named error range with a shared hint message.
func NewRange(name, hint string, opts ...RangeOption) *Range {
	r := &Range{name: name, hint: hint}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Template is a reusable (title, summary) pair produced by a Range.
type Template struct {
	title   string
	summary string
	hint    string
}

// New creates a Template carrying this range's hint.
func (r *Range) New(title, summary string) *Template {
	return &Template{title: title, summary: summary, hint: r.hint}
}

// At instantiates a positioned Error from the template.
func (t *Template) At(pos Pos) *Error {
	return &Error{Title: t.title, Summary: t.summary, Pos: pos, Hint: t.hint}
}

// Atf is like At but formats the summary with args.
func (t *Template) Atf(pos Pos, args ...any) *Error {
	return &Error{Title: t.title, Summary: fmt.Sprintf(t.summary, args...), Pos: pos, Hint: t.hint}
}

// List accumulates positioned errors during a compile pass, in the style of
// the teacher's perr.List: callers append non-fatal diagnostics with Add or
// Addf and stop the pass immediately with Fatalf, which a deferred Bailout
// recovers from.
type List struct {
	errs []*Error
}

type bailout struct{ err *Error }

// Add appends a positioned error and continues.
func (l *List) Add(err *Error) {
	l.errs = append(l.errs, err)
}

// Addf appends a positioned error built from a template and continues.
func (l *List) Addf(t *Template, pos Pos, args ...any) {
	l.Add(t.Atf(pos, args...))
}

// Fatalf appends a positioned error and aborts the current pass via panic;
// the caller must recover with Bailout at the top of the pass.
func (l *List) Fatalf(t *Template, pos Pos, args ...any) {
	err := t.Atf(pos, args...)
	l.Add(err)
	panic(bailout{err})
}

// Bailout recovers a panic raised by Fatalf, turning it into a normal
// return. Call via `defer l.Bailout()` at the top of a compile pass.
func (l *List) Bailout() {
	if r := recover(); r != nil {
		if _, ok := r.(bailout); ok {
			return
		}
		panic(r)
	}
}

// Len reports the number of accumulated errors.
func (l *List) Len() int { return len(l.errs) }

// Errs returns the accumulated errors.
func (l *List) Errs() []*Error { return l.errs }

// AsError returns nil if the list is empty, otherwise a *ListError joining
// every accumulated diagnostic into one message while keeping the
// individual, positioned *Error values reachable via Errs() — callers that
// only want a message (a CLI printing to stderr) can treat it as a plain
// error, and callers that want structure back (the LSP server building
// Diagnostics) can type-assert for it.
func (l *List) AsError() error {
	if len(l.errs) == 0 {
		return nil
	}
	return &ListError{errs: l.errs}
}

// ListError is the error value returned by List.AsError.
type ListError struct {
	errs []*Error
}

func (e *ListError) Error() string {
	lines := make([]string, len(e.errs))
	for i, err := range e.errs {
		lines[i] = err.Error()
	}
	return fmt.Sprintf("%d error(s):\n%s", len(e.errs), strings.Join(lines, "\n"))
}

// Errs returns the positioned errors that make up this error.
func (e *ListError) Errs() []*Error { return e.errs }
