package wire

import "github.com/cockroachdb/errors"

// Kind is the closed set of codec runtime error kinds from spec.md §7.
type Kind int

const (
	KindEndOfStream Kind = iota
	KindTrailingBytes
	KindUtf8Error
	KindIntegerRange
	KindTypeMismatch
	KindUnknownEnumVariant
	KindOrdinalOutOfRange
	KindMissingStructField
	KindWrongFieldOrder
	KindUnexpectedEnumKey
	KindMessageFromUpstream
)

func (k Kind) String() string {
	switch k {
	case KindEndOfStream:
		return "EndOfStream"
	case KindTrailingBytes:
		return "TrailingBytes"
	case KindUtf8Error:
		return "Utf8Error"
	case KindIntegerRange:
		return "IntegerRange"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindUnknownEnumVariant:
		return "UnknownEnumVariant"
	case KindOrdinalOutOfRange:
		return "OrdinalOutOfRange"
	case KindMissingStructField:
		return "MissingStructField"
	case KindWrongFieldOrder:
		return "WrongFieldOrder"
	case KindUnexpectedEnumKey:
		return "UnexpectedEnumKey"
	case KindMessageFromUpstream:
		return "MessageFromUpstream"
	default:
		return "Unknown"
	}
}

// Error is a single codec runtime error: eager, single-valued, and
// non-accumulating per spec.md §7 ("no partial success").
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: errors.Newf(format, args...).Error()}
}

func wrapErr(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: errors.Newf(format, args...).Error(), cause: cause}
}

// Is reports whether target is a *Error of the same kind as e, so callers can
// do errors.Is(err, &wire.Error{Kind: wire.KindIntegerRange}) style checks
// without a sentinel per kind (cockroachdb/errors propagates Unwrap through
// wrapping).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Kind == e.Kind
}
