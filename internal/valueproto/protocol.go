// Package valueproto defines the value protocol named in spec.md §4.4: the
// seam that lets the binary codec, the JSON transcoder, and the native Go
// adapter interoperate without ever building an intermediate tree.
//
// Grounded on pkg/clientgen/types.go's typeRegistry.Visit (a driven visitor
// over a type graph), generalized here into a driving/driven interface
// pair per the design note in spec.md §9 ("implementations in statically
// typed languages will typically reify it as two small trait/interface
// pairs").
package valueproto

import "github.com/cockroachdb/errors"

// ScalarKind is the coarse family a ValueSource is asked to produce, or a
// ValueSink is told it is receiving. Exact wire width (i8 vs i32, u16 vs
// u64, …) is a property of the type cursor the codec already holds, not of
// the protocol — the protocol only needs to know which family of native Go
// value to marshal through.
type ScalarKind int

const (
	KindBool ScalarKind = iota
	KindSignedInt
	KindUnsignedInt
	KindFloat
	KindString
)

// Scalar is a single scalar value moving through the protocol.
type Scalar struct {
	Kind  ScalarKind
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
	Str   string
}

func BoolScalar(b bool) Scalar          { return Scalar{Kind: KindBool, Bool: b} }
func SignedScalar(i int64) Scalar       { return Scalar{Kind: KindSignedInt, Int: i} }
func UnsignedScalar(u uint64) Scalar    { return Scalar{Kind: KindUnsignedInt, Uint: u} }
func FloatScalar(f float64) Scalar      { return Scalar{Kind: KindFloat, Float: f} }
func StringScalar(s string) Scalar      { return Scalar{Kind: KindString, Str: s} }

// ValueSource is driven by the codec: it is asked to produce a value of a
// kind implied by the current type cursor. Implemented by the JSON reader
// (internal/jsontranscode) and the native Go reflect adapter
// (internal/valueproto/native.go), either of which can drive the binary
// serializer.
type ValueSource interface {
	// Scalar returns the next scalar value, coerced to kind's family.
	Scalar(kind ScalarKind) (Scalar, error)
	// BeginSeq opens a sequence and reports its length.
	BeginSeq() (length uint64, err error)
	// BeginMap opens a mapping of struct fields (enums use BeginEnum).
	BeginMap() error
	// NextMapKey returns the next key, or ok=false once exhausted.
	NextMapKey() (key string, ok bool, err error)
	// BeginEnum opens an enum visit, returning the selected variant's name.
	BeginEnum() (tag string, err error)
	// EndEnum closes an enum visit.
	EndEnum() error
}

// ValueSink receives values pushed by the binary deserializer. Implemented
// by the JSON writer (internal/jsontranscode) and the native Go adapter
// (internal/valueproto/native.go).
type ValueSink interface {
	Scalar(Scalar) error
	BeginSeq(length uint64) error
	EndSeq() error
	BeginMap() error
	PutMapKey(key string) error
	EndMap() error
	BeginEnum(tag string, hasPayload bool) error
	EndEnum() error
}

// ErrUpstream wraps a diagnostic raised by a ValueSource/ValueSink
// implementation (e.g. a malformed JSON document) so it can be
// distinguished from a codec-internal type-mismatch error — spec.md §7's
// MessageFromUpstream kind.
func ErrUpstream(err error) error {
	return errors.Wrap(err, "value protocol")
}
