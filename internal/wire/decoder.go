package wire

import (
	"math"
	"unicode/utf8"

	"github.com/johannes-adr/smith/internal/typetable"
	"github.com/johannes-adr/smith/internal/valueproto"
)

// Deserializer walks a byte slice under a type-table-driven cursor and
// pushes the decoded value into a ValueSink. Trailing bytes after the
// top-level value are a hard error (spec.md §7, TrailingBytes).
type Deserializer struct {
	table *typetable.Table
}

func NewDeserializer(table *typetable.Table) *Deserializer {
	return &Deserializer{table: table}
}

// Decode reads exactly one value of type cursor out of data and pushes it
// into sink. Any bytes left unconsumed after that value is an error.
func (d *Deserializer) Decode(cursor typetable.Type, data []byte, sink valueproto.ValueSink) error {
	r := newByteReader(data)
	if err := d.decodeValue(cursor, r, sink); err != nil {
		return err
	}
	if r.remaining() != 0 {
		return newErr(KindTrailingBytes, "%d byte(s) left after decoding the top-level value", r.remaining())
	}
	return nil
}

func (d *Deserializer) decodeValue(t typetable.Type, r *byteReader, sink valueproto.ValueSink) error {
	switch tt := t.(type) {
	case typetable.Builtin:
		return d.decodeScalar(tt.Kind, r, sink)
	case typetable.Array:
		return d.decodeArray(tt, r, sink)
	case typetable.Ref:
		return d.decodeRef(tt, r, sink)
	default:
		return newErr(KindTypeMismatch, "unknown type cursor %T", t)
	}
}

func (d *Deserializer) decodeScalar(kind typetable.BuiltinKind, r *byteReader, sink valueproto.ValueSink) error {
	switch kind {
	case typetable.Bool:
		b, err := r.readByte()
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.BoolScalar(b != 0))

	case typetable.I8:
		b, err := r.readByte()
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.SignedScalar(int64(int8(b))))

	case typetable.I16:
		b, err := r.readN(2)
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.SignedScalar(int64(int16(getBE16(b)))))

	case typetable.I32:
		b, err := r.readN(4)
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.SignedScalar(int64(int32(getBE32(b)))))

	case typetable.U8:
		b, err := r.readByte()
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.UnsignedScalar(uint64(b)))

	case typetable.U16:
		b, err := r.readN(2)
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.UnsignedScalar(uint64(getBE16(b))))

	case typetable.U32:
		b, err := r.readN(4)
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.UnsignedScalar(uint64(getBE32(b))))

	case typetable.U64:
		b, err := r.readN(8)
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.UnsignedScalar(getBE64(b)))

	case typetable.UdInt:
		v, err := readUdInt(r)
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.UnsignedScalar(v))

	case typetable.F32:
		b, err := r.readN(4)
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.FloatScalar(float64(math.Float32frombits(getBE32(b)))))

	case typetable.F64:
		b, err := r.readN(8)
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.FloatScalar(math.Float64frombits(getBE64(b))))

	case typetable.String:
		s, err := d.readTerminatedString(r)
		if err != nil {
			return err
		}
		return sinkScalar(sink, valueproto.StringScalar(s))

	default:
		return newErr(KindTypeMismatch, "unknown builtin kind %v", kind)
	}
}

func sinkScalar(sink valueproto.ValueSink, s valueproto.Scalar) error {
	if err := sink.Scalar(s); err != nil {
		return wrapErr(KindMessageFromUpstream, err, "writing scalar")
	}
	return nil
}

// readTerminatedString reads UTF-8 bytes up to (and consuming) the 0x00
// terminator byte that ends every string on the wire (spec.md §6.2).
func (d *Deserializer) readTerminatedString(r *byteReader) (string, error) {
	start := r.pos
	for {
		b, err := r.readByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			raw := r.data[start : r.pos-1]
			if !utf8.Valid(raw) {
				return "", newErr(KindUtf8Error, "string contains invalid UTF-8")
			}
			return string(raw), nil
		}
	}
}

func (d *Deserializer) decodeArray(t typetable.Array, r *byteReader, sink valueproto.ValueSink) error {
	length, err := readUdInt(r)
	if err != nil {
		return err
	}
	if err := sink.BeginSeq(length); err != nil {
		return wrapErr(KindMessageFromUpstream, err, "opening array")
	}
	for i := uint64(0); i < length; i++ {
		if err := d.decodeValue(t.Elem, r, sink); err != nil {
			return err
		}
	}
	if err := sink.EndSeq(); err != nil {
		return wrapErr(KindMessageFromUpstream, err, "closing array")
	}
	return nil
}

func (d *Deserializer) decodeRef(t typetable.Ref, r *byteReader, sink valueproto.ValueSink) error {
	decl, ok := d.table.Get(t.ID)
	if !ok {
		return newErr(KindTypeMismatch, "type id %d not found in table", t.ID)
	}
	switch decl.Kind() {
	case typetable.KindStruct:
		return d.decodeStruct(decl, r, sink)
	case typetable.KindEnum:
		return d.decodeEnum(decl, r, sink)
	default:
		return newErr(KindTypeMismatch, "unknown declaration kind for %q", decl.Name)
	}
}

func (d *Deserializer) decodeStruct(decl *typetable.Decl, r *byteReader, sink valueproto.ValueSink) error {
	if err := sink.BeginMap(); err != nil {
		return wrapErr(KindMessageFromUpstream, err, "opening struct %q", decl.Name)
	}
	for _, f := range decl.Fields {
		if err := sink.PutMapKey(f.Name); err != nil {
			return wrapErr(KindMessageFromUpstream, err, "writing field name of %q", decl.Name)
		}
		if err := d.decodeValue(f.Type, r, sink); err != nil {
			return err
		}
	}
	if err := sink.EndMap(); err != nil {
		return wrapErr(KindMessageFromUpstream, err, "closing struct %q", decl.Name)
	}
	return nil
}

func (d *Deserializer) decodeEnum(decl *typetable.Decl, r *byteReader, sink valueproto.ValueSink) error {
	varID, err := readUdInt(r)
	if err != nil {
		return err
	}
	if varID >= uint64(len(decl.Variants)) {
		return newErr(KindOrdinalOutOfRange, "enum %q has no variant at ordinal %d", decl.Name, varID)
	}
	variant := decl.Variants[varID]
	if err := sink.BeginEnum(variant.Name, variant.Payload != nil); err != nil {
		return wrapErr(KindMessageFromUpstream, err, "opening enum %q", decl.Name)
	}
	if variant.Payload != nil {
		if err := d.decodeValue(variant.Payload, r, sink); err != nil {
			return err
		}
	}
	if err := sink.EndEnum(); err != nil {
		return wrapErr(KindMessageFromUpstream, err, "closing enum %q", decl.Name)
	}
	return nil
}

func getBE16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func getBE32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func getBE64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
