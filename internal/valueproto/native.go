// native.go is the reflect-based adapter that lets the codec read from, and
// write into, plain Go values (structs, slices, and scalars) instead of a
// JSON document. It is the "native Go host" side of the value protocol
// named in spec.md §4.4 and wired up by smith.Encode/smith.Decode.
//
// Grounded on pkg/clientgen/types.go's reflect-walking type registry, the
// same reflect.StructField/StructTag idiom used there to read a field's
// wire name off a struct tag rather than its Go identifier.
package valueproto

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// NativeEnum is the concrete Go shape an enum value takes on the native
// side of the protocol: Go has no tagged-union type, so a struct carrying
// the selected variant's name and (if any) its payload stands in for one.
type NativeEnum struct {
	Tag string
	Val any
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

func fieldWireName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("smith")
	if tag == "-" {
		return "", false
	}
	if tag != "" {
		return tag, true
	}
	return strings.ToLower(f.Name[:1]) + f.Name[1:], true
}

// --- NativeSource: driving the codec from a Go value --------------------

type sourceFrame struct {
	keys   []string // nil for non-map (sequence or single-value) frames
	values []reflect.Value
	idx    int
}

func (f *sourceFrame) exhausted() bool { return f.idx >= len(f.values) }

// NativeSource implements ValueSource over an in-memory Go value, walking
// struct fields in their declared order and slice/array elements by index.
type NativeSource struct {
	stack      []*sourceFrame
	enumDepths []int
}

// NewNativeSource returns a ValueSource that reads v (and its fields and
// elements, recursively) to drive the binary serializer.
func NewNativeSource(v any) *NativeSource {
	return &NativeSource{stack: []*sourceFrame{{values: []reflect.Value{reflect.ValueOf(v)}}}}
}

func (s *NativeSource) peek() (reflect.Value, error) {
	for len(s.stack) > 1 && s.stack[len(s.stack)-1].exhausted() {
		s.stack = s.stack[:len(s.stack)-1]
	}
	top := s.stack[len(s.stack)-1]
	if top.exhausted() {
		return reflect.Value{}, errors.New("native source exhausted: value has fewer fields/elements than the schema expects")
	}
	v := top.values[top.idx]
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, nil
		}
		v = v.Elem()
	}
	return v, nil
}

func (s *NativeSource) advance() {
	top := s.stack[len(s.stack)-1]
	top.idx++
}

func (s *NativeSource) Scalar(kind ScalarKind) (Scalar, error) {
	v, err := s.peek()
	if err != nil {
		return Scalar{}, err
	}
	s.advance()
	switch kind {
	case KindBool:
		return BoolScalar(v.Bool()), nil
	case KindSignedInt:
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return SignedScalar(v.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return SignedScalar(int64(v.Uint())), nil
		}
		return Scalar{}, errors.Newf("cannot read %s as a signed integer", v.Kind())
	case KindUnsignedInt:
		switch v.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return UnsignedScalar(v.Uint()), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return UnsignedScalar(uint64(v.Int())), nil
		}
		return Scalar{}, errors.Newf("cannot read %s as an unsigned integer", v.Kind())
	case KindFloat:
		switch v.Kind() {
		case reflect.Float32, reflect.Float64:
			return FloatScalar(v.Float()), nil
		}
		return Scalar{}, errors.Newf("cannot read %s as a float", v.Kind())
	case KindString:
		if v.Kind() != reflect.String {
			return Scalar{}, errors.Newf("cannot read %s as a string", v.Kind())
		}
		return StringScalar(v.String()), nil
	default:
		return Scalar{}, errors.Newf("unknown scalar kind %v", kind)
	}
}

func (s *NativeSource) BeginSeq() (uint64, error) {
	v, err := s.peek()
	if err != nil {
		return 0, err
	}
	s.advance()
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return 0, errors.Newf("cannot read %s as a sequence", v.Kind())
	}
	length := v.Len()
	vals := make([]reflect.Value, length)
	for i := 0; i < length; i++ {
		vals[i] = v.Index(i)
	}
	s.stack = append(s.stack, &sourceFrame{values: vals})
	return uint64(length), nil
}

func (s *NativeSource) BeginMap() error {
	v, err := s.peek()
	if err != nil {
		return err
	}
	s.advance()
	if v.Kind() != reflect.Struct {
		return errors.Newf("cannot read %s as a struct", v.Kind())
	}
	var keys []string
	var values []reflect.Value
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, ok := fieldWireName(t.Field(i))
		if !ok {
			continue
		}
		keys = append(keys, name)
		values = append(values, v.Field(i))
	}
	s.stack = append(s.stack, &sourceFrame{keys: keys, values: values})
	return nil
}

func (s *NativeSource) NextMapKey() (string, bool, error) {
	// A nested struct or array field read just before this key leaves its
	// exhausted frames above this struct's frame; drop them so the key is
	// read from the topmost frame that still has values.
	for i := len(s.stack) - 1; i > 0 && s.stack[i].exhausted(); i-- {
		if !s.stack[i-1].exhausted() {
			s.stack = s.stack[:i]
			break
		}
	}
	top := s.stack[len(s.stack)-1]
	if top.keys == nil {
		return "", false, errors.New("current frame is not a struct")
	}
	if top.idx >= len(top.keys) {
		return "", false, nil
	}
	return top.keys[top.idx], true, nil
}

func (s *NativeSource) BeginEnum() (string, error) {
	v, err := s.peek()
	if err != nil {
		return "", err
	}
	s.advance()
	ne, ok := asNativeEnum(v)
	if !ok {
		return "", errors.Newf("cannot read %s as an enum (expected valueproto.NativeEnum)", v.Kind())
	}
	var values []reflect.Value
	if ne.Val != nil {
		values = []reflect.Value{reflect.ValueOf(ne.Val)}
	}
	s.enumDepths = append(s.enumDepths, len(s.stack))
	s.stack = append(s.stack, &sourceFrame{values: values})
	return ne.Tag, nil
}

// EndEnum unwinds the stack back to the depth recorded by the matching
// BeginEnum, not just one frame: a payload that is itself an array or
// struct pushes its own frames while being read, and those may still be
// sitting on the stack (possibly exhausted but not yet lazily popped) by
// the time the codec is done with the payload.
func (s *NativeSource) EndEnum() error {
	if len(s.enumDepths) == 0 {
		return errors.New("EndEnum without matching BeginEnum")
	}
	depth := s.enumDepths[len(s.enumDepths)-1]
	s.enumDepths = s.enumDepths[:len(s.enumDepths)-1]
	s.stack = s.stack[:depth]
	return nil
}

func asNativeEnum(v reflect.Value) (NativeEnum, bool) {
	if v.Type() == reflect.TypeOf(NativeEnum{}) {
		return v.Interface().(NativeEnum), true
	}
	return NativeEnum{}, false
}

// --- NativeSink: decoding into a Go value --------------------------------

type setter func(reflect.Value)

type sinkSlot struct {
	typ    reflect.Type
	set    setter
	isEnum bool // slot belongs to an in-progress enum payload
}

type sinkFrame interface {
	openSlot() (sinkSlot, error)
}

type seqFrame struct {
	elemType  reflect.Type
	sliceType reflect.Type
	dynamic   bool
	vals      []reflect.Value
	set       setter
}

func (f *seqFrame) openSlot() (sinkSlot, error) {
	return sinkSlot{typ: f.elemType, set: func(v reflect.Value) { f.vals = append(f.vals, v) }}, nil
}

func (f *seqFrame) finish() reflect.Value {
	if f.dynamic {
		out := make([]any, len(f.vals))
		for i, v := range f.vals {
			out[i] = v.Interface()
		}
		return reflect.ValueOf(out)
	}
	out := reflect.MakeSlice(f.sliceType, len(f.vals), len(f.vals))
	for i, v := range f.vals {
		out.Index(i).Set(v.Convert(f.sliceType.Elem()))
	}
	return out
}

type structFrame struct {
	dynamic bool
	dynMap  map[string]any
	structV reflect.Value
	typ     reflect.Type
	curKey  string
	set     setter
}

func (f *structFrame) openSlot() (sinkSlot, error) {
	if f.dynamic {
		key := f.curKey
		return sinkSlot{typ: anyType, set: func(v reflect.Value) { f.dynMap[key] = v.Interface() }}, nil
	}
	for i := 0; i < f.typ.NumField(); i++ {
		name, ok := fieldWireName(f.typ.Field(i))
		if ok && name == f.curKey {
			fv := f.structV.Field(i)
			return sinkSlot{typ: fv.Type(), set: func(v reflect.Value) { fv.Set(v.Convert(fv.Type())) }}, nil
		}
	}
	return sinkSlot{typ: anyType, set: func(reflect.Value) {}}, nil
}

func (f *structFrame) finish() reflect.Value {
	if f.dynamic {
		return reflect.ValueOf(f.dynMap)
	}
	return f.structV
}

type enumFrame struct {
	tag        string
	hasPayload bool
	val        any
	set        setter
}

func (f *enumFrame) openSlot() (sinkSlot, error) {
	return sinkSlot{typ: anyType, isEnum: true, set: func(v reflect.Value) { f.val = v.Interface() }}, nil
}

func (f *enumFrame) finish() reflect.Value {
	return reflect.ValueOf(NativeEnum{Tag: f.tag, Val: f.val})
}

// NativeSink implements ValueSink, writing a decoded value into out, which
// must be a non-nil pointer. A pointer to `any` decodes dynamically into
// plain maps/slices/scalars and valueproto.NativeEnum; a pointer to a
// concrete struct/slice type decodes directly into it field by field.
type NativeSink struct {
	root  reflect.Value
	rootT reflect.Type
	stack []sinkFrame
}

func NewNativeSink(out any) (*NativeSink, error) {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, errors.New("decode destination must be a non-nil pointer")
	}
	return &NativeSink{root: rv.Elem(), rootT: rv.Elem().Type()}, nil
}

func (s *NativeSink) openSlot() (sinkSlot, error) {
	if len(s.stack) == 0 {
		root := s.root
		return sinkSlot{typ: s.rootT, set: func(v reflect.Value) { root.Set(v.Convert(s.rootT)) }}, nil
	}
	return s.stack[len(s.stack)-1].openSlot()
}

func (s *NativeSink) Scalar(sc Scalar) error {
	slot, err := s.openSlot()
	if err != nil {
		return err
	}
	v, err := scalarToReflect(sc, slot.typ)
	if err != nil {
		return err
	}
	slot.set(v)
	return nil
}

func scalarToReflect(sc Scalar, typ reflect.Type) (reflect.Value, error) {
	dynamic := typ.Kind() == reflect.Interface
	switch sc.Kind {
	case KindBool:
		if dynamic {
			return reflect.ValueOf(sc.Bool), nil
		}
		return reflect.ValueOf(sc.Bool).Convert(typ), nil
	case KindSignedInt:
		if dynamic {
			return reflect.ValueOf(sc.Int), nil
		}
		return reflect.ValueOf(sc.Int).Convert(typ), nil
	case KindUnsignedInt:
		if dynamic {
			return reflect.ValueOf(sc.Uint), nil
		}
		return reflect.ValueOf(sc.Uint).Convert(typ), nil
	case KindFloat:
		if dynamic {
			return reflect.ValueOf(sc.Float), nil
		}
		return reflect.ValueOf(sc.Float).Convert(typ), nil
	case KindString:
		if dynamic {
			return reflect.ValueOf(sc.Str), nil
		}
		return reflect.ValueOf(sc.Str).Convert(typ), nil
	default:
		return reflect.Value{}, errors.Newf("unknown scalar kind %v", sc.Kind)
	}
}

func (s *NativeSink) BeginSeq(length uint64) error {
	slot, err := s.openSlot()
	if err != nil {
		return err
	}
	f := &seqFrame{set: slot.set}
	if slot.typ.Kind() == reflect.Interface {
		f.dynamic = true
		f.elemType = anyType
	} else if slot.typ.Kind() == reflect.Slice {
		f.sliceType = slot.typ
		f.elemType = slot.typ.Elem()
	} else {
		return errors.Newf("cannot decode a sequence into %s", slot.typ)
	}
	f.vals = make([]reflect.Value, 0, length)
	s.stack = append(s.stack, f)
	return nil
}

func (s *NativeSink) EndSeq() error {
	f, ok := s.popFrame().(*seqFrame)
	if !ok {
		return errors.New("EndSeq without matching BeginSeq")
	}
	f.set(f.finish())
	return nil
}

func (s *NativeSink) BeginMap() error {
	slot, err := s.openSlot()
	if err != nil {
		return err
	}
	f := &structFrame{set: slot.set}
	switch slot.typ.Kind() {
	case reflect.Interface:
		f.dynamic = true
		f.dynMap = map[string]any{}
	case reflect.Struct:
		f.structV = reflect.New(slot.typ).Elem()
		f.typ = slot.typ
	default:
		return errors.Newf("cannot decode a struct into %s", slot.typ)
	}
	s.stack = append(s.stack, f)
	return nil
}

func (s *NativeSink) PutMapKey(key string) error {
	f, ok := s.stack[len(s.stack)-1].(*structFrame)
	if !ok {
		return errors.New("PutMapKey outside a struct frame")
	}
	f.curKey = key
	return nil
}

func (s *NativeSink) EndMap() error {
	f, ok := s.popFrame().(*structFrame)
	if !ok {
		return errors.New("EndMap without matching BeginMap")
	}
	f.set(f.finish())
	return nil
}

func (s *NativeSink) BeginEnum(tag string, hasPayload bool) error {
	slot, err := s.openSlot()
	if err != nil {
		return err
	}
	s.stack = append(s.stack, &enumFrame{tag: tag, hasPayload: hasPayload, set: slot.set})
	return nil
}

func (s *NativeSink) EndEnum() error {
	f, ok := s.popFrame().(*enumFrame)
	if !ok {
		return errors.New("EndEnum without matching BeginEnum")
	}
	f.set(f.finish())
	return nil
}

func (s *NativeSink) popFrame() sinkFrame {
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return f
}
