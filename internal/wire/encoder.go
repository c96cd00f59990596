// Package wire implements the binary serializer and deserializer of
// spec.md §4.5/§4.6: a type-cursor-driven walk over the resolved type
// table that produces (or consumes) the bit-exact wire format of §6.2,
// speaking only the valueproto.ValueSource/ValueSink seam so it can be
// driven by, or drive, a JSON transcoder or the native Go adapter.
package wire

import (
	"math"

	"github.com/johannes-adr/smith/internal/typetable"
	"github.com/johannes-adr/smith/internal/valueproto"
)

// Serializer walks a ValueSource under a type-table-driven cursor and
// produces the binary wire form. Not safe for concurrent use (spec.md §5).
type Serializer struct {
	table *typetable.Table
	buf   []byte
}

// NewSerializer creates a Serializer against table. table's lifetime must
// enclose every call made against the returned Serializer.
func NewSerializer(table *typetable.Table) *Serializer {
	return &Serializer{table: table}
}

// Encode serializes a single value of type cursor, pulling scalars,
// sequences, mappings, and enum visits from src.
func (s *Serializer) Encode(cursor typetable.Type, src valueproto.ValueSource) ([]byte, error) {
	s.buf = s.buf[:0]
	if err := s.encodeValue(cursor, src); err != nil {
		return nil, err
	}
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	return out, nil
}

func (s *Serializer) encodeValue(t typetable.Type, src valueproto.ValueSource) error {
	switch tt := t.(type) {
	case typetable.Builtin:
		return s.encodeScalar(tt.Kind, src)
	case typetable.Array:
		return s.encodeArray(tt, src)
	case typetable.Ref:
		return s.encodeRef(tt, src)
	default:
		return newErr(KindTypeMismatch, "unknown type cursor %T", t)
	}
}

func (s *Serializer) encodeScalar(kind typetable.BuiltinKind, src valueproto.ValueSource) error {
	switch kind {
	case typetable.Bool:
		v, err := src.Scalar(valueproto.KindBool)
		if err != nil {
			return wrapErr(KindMessageFromUpstream, err, "reading bool")
		}
		if v.Bool {
			s.buf = append(s.buf, 1)
		} else {
			s.buf = append(s.buf, 0)
		}
		return nil

	case typetable.I8, typetable.I16, typetable.I32:
		v, err := src.Scalar(valueproto.KindSignedInt)
		if err != nil {
			return wrapErr(KindMessageFromUpstream, err, "reading signed integer")
		}
		return s.encodeSigned(kind, v.Int)

	case typetable.U8, typetable.U16, typetable.U32, typetable.U64:
		v, err := src.Scalar(valueproto.KindUnsignedInt)
		if err != nil {
			return wrapErr(KindMessageFromUpstream, err, "reading unsigned integer")
		}
		return s.encodeUnsigned(kind, v.Uint)

	case typetable.UdInt:
		v, err := src.Scalar(valueproto.KindUnsignedInt)
		if err != nil {
			return wrapErr(KindMessageFromUpstream, err, "reading udInt")
		}
		s.buf = putUdInt(s.buf, v.Uint)
		return nil

	case typetable.F32:
		v, err := src.Scalar(valueproto.KindFloat)
		if err != nil {
			return wrapErr(KindMessageFromUpstream, err, "reading f32")
		}
		var b [4]byte
		putBE32(b[:], math.Float32bits(float32(v.Float)))
		s.buf = append(s.buf, b[:]...)
		return nil

	case typetable.F64:
		v, err := src.Scalar(valueproto.KindFloat)
		if err != nil {
			return wrapErr(KindMessageFromUpstream, err, "reading f64")
		}
		var b [8]byte
		putBE64(b[:], math.Float64bits(v.Float))
		s.buf = append(s.buf, b[:]...)
		return nil

	case typetable.String:
		v, err := src.Scalar(valueproto.KindString)
		if err != nil {
			return wrapErr(KindMessageFromUpstream, err, "reading string")
		}
		for i := 0; i < len(v.Str); i++ {
			if v.Str[i] == 0 {
				return newErr(KindTypeMismatch, "string value contains an embedded NUL byte")
			}
		}
		s.buf = append(s.buf, v.Str...)
		s.buf = append(s.buf, 0)
		return nil

	default:
		return newErr(KindTypeMismatch, "unknown builtin kind %v", kind)
	}
}

func (s *Serializer) encodeSigned(kind typetable.BuiltinKind, v int64) error {
	switch kind {
	case typetable.I8:
		if v < math.MinInt8 || v > math.MaxInt8 {
			return newErr(KindIntegerRange, "value %d out of range for i8", v)
		}
		s.buf = append(s.buf, byte(int8(v)))
	case typetable.I16:
		if v < math.MinInt16 || v > math.MaxInt16 {
			return newErr(KindIntegerRange, "value %d out of range for i16", v)
		}
		var b [2]byte
		putBE16(b[:], uint16(int16(v)))
		s.buf = append(s.buf, b[:]...)
	case typetable.I32:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return newErr(KindIntegerRange, "value %d out of range for i32", v)
		}
		var b [4]byte
		putBE32(b[:], uint32(int32(v)))
		s.buf = append(s.buf, b[:]...)
	}
	return nil
}

func (s *Serializer) encodeUnsigned(kind typetable.BuiltinKind, v uint64) error {
	switch kind {
	case typetable.U8:
		if v > math.MaxUint8 {
			return newErr(KindIntegerRange, "value %d out of range for u8", v)
		}
		s.buf = append(s.buf, byte(v))
	case typetable.U16:
		if v > math.MaxUint16 {
			return newErr(KindIntegerRange, "value %d out of range for u16", v)
		}
		var b [2]byte
		putBE16(b[:], uint16(v))
		s.buf = append(s.buf, b[:]...)
	case typetable.U32:
		if v > math.MaxUint32 {
			return newErr(KindIntegerRange, "value %d out of range for u32", v)
		}
		var b [4]byte
		putBE32(b[:], uint32(v))
		s.buf = append(s.buf, b[:]...)
	case typetable.U64:
		var b [8]byte
		putBE64(b[:], v)
		s.buf = append(s.buf, b[:]...)
	}
	return nil
}

func (s *Serializer) encodeArray(t typetable.Array, src valueproto.ValueSource) error {
	length, err := src.BeginSeq()
	if err != nil {
		return wrapErr(KindMessageFromUpstream, err, "opening array")
	}
	s.buf = putUdInt(s.buf, length)
	for i := uint64(0); i < length; i++ {
		if err := s.encodeValue(t.Elem, src); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) encodeRef(t typetable.Ref, src valueproto.ValueSource) error {
	decl, ok := s.table.Get(t.ID)
	if !ok {
		return newErr(KindTypeMismatch, "type id %d not found in table", t.ID)
	}
	switch decl.Kind() {
	case typetable.KindStruct:
		return s.encodeStruct(decl, src)
	case typetable.KindEnum:
		return s.encodeEnum(decl, src)
	default:
		return newErr(KindTypeMismatch, "unknown declaration kind for %q", decl.Name)
	}
}

func (s *Serializer) encodeStruct(decl *typetable.Decl, src valueproto.ValueSource) error {
	if err := src.BeginMap(); err != nil {
		return wrapErr(KindMessageFromUpstream, err, "opening struct %q", decl.Name)
	}
	for _, f := range decl.Fields {
		key, ok, err := src.NextMapKey()
		if err != nil {
			return wrapErr(KindMessageFromUpstream, err, "reading field of %q", decl.Name)
		}
		if !ok {
			return newErr(KindMissingStructField, "struct %q missing field %q", decl.Name, f.Name)
		}
		if key != f.Name {
			return newErr(KindWrongFieldOrder, "struct %q expected field %q, got %q", decl.Name, f.Name, key)
		}
		if err := s.encodeValue(f.Type, src); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) encodeEnum(decl *typetable.Decl, src valueproto.ValueSource) error {
	tag, err := src.BeginEnum()
	if err != nil {
		return wrapErr(KindMessageFromUpstream, err, "opening enum %q", decl.Name)
	}
	idx := decl.IndexOfVariant(tag)
	if idx < 0 {
		return newErr(KindUnknownEnumVariant, "enum %q has no variant %q", decl.Name, tag)
	}
	s.buf = putUdInt(s.buf, uint64(idx))
	variant := decl.Variants[idx]
	if variant.Payload != nil {
		if err := s.encodeValue(variant.Payload, src); err != nil {
			return err
		}
	}
	if err := src.EndEnum(); err != nil {
		return wrapErr(KindMessageFromUpstream, err, "closing enum %q", decl.Name)
	}
	return nil
}

func putBE16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func putBE32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
func putBE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}
