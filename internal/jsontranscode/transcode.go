// Package jsontranscode adapts the value protocol (internal/valueproto) to
// JSON text via jsoniter's token-level Any/Stream APIs, so JSONToBinary and
// BinaryToJSON never build an intermediate generic document tree of their
// own — only jsoniter's lazily-evaluated Any, which is how the rest of this
// module's teacher (and the broader retrieval pack) reach for JSON.
package jsontranscode

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/cockroachdb/errors"
	"github.com/johannes-adr/smith/internal/valueproto"
)

// --- Source: reading JSON to drive the codec -----------------------------

type sourceFrame struct {
	keys   []string
	values []jsoniter.Any
	idx    int
}

func (f *sourceFrame) exhausted() bool { return f.idx >= len(f.values) }

// Source implements valueproto.ValueSource over a parsed JSON document.
type Source struct {
	stack      []*sourceFrame
	enumDepths []int
}

// NewSource parses jsonText and returns a ValueSource over it.
func NewSource(jsonText string) (*Source, error) {
	root := jsoniter.Get([]byte(jsonText))
	if err := root.LastError(); err != nil {
		return nil, errors.Wrap(err, "parsing JSON")
	}
	return &Source{stack: []*sourceFrame{{values: []jsoniter.Any{root}}}}, nil
}

func (s *Source) peek() (jsoniter.Any, error) {
	for len(s.stack) > 1 && s.stack[len(s.stack)-1].exhausted() {
		s.stack = s.stack[:len(s.stack)-1]
	}
	top := s.stack[len(s.stack)-1]
	if top.exhausted() {
		return nil, errors.New("JSON source exhausted: value has fewer fields/elements than the schema expects")
	}
	return top.values[top.idx], nil
}

func (s *Source) advance() { s.stack[len(s.stack)-1].idx++ }

func (s *Source) Scalar(kind valueproto.ScalarKind) (valueproto.Scalar, error) {
	v, err := s.peek()
	if err != nil {
		return valueproto.Scalar{}, err
	}
	s.advance()
	switch kind {
	case valueproto.KindBool:
		return valueproto.BoolScalar(v.ToBool()), v.LastError()
	case valueproto.KindSignedInt:
		return valueproto.SignedScalar(v.ToInt64()), v.LastError()
	case valueproto.KindUnsignedInt:
		return valueproto.UnsignedScalar(v.ToUint64()), v.LastError()
	case valueproto.KindFloat:
		return valueproto.FloatScalar(v.ToFloat64()), v.LastError()
	case valueproto.KindString:
		if v.ValueType() != jsoniter.StringValue {
			return valueproto.Scalar{}, errors.Newf("expected a JSON string, got %v", v.ValueType())
		}
		return valueproto.StringScalar(v.ToString()), v.LastError()
	default:
		return valueproto.Scalar{}, errors.Newf("unknown scalar kind %v", kind)
	}
}

func (s *Source) BeginSeq() (uint64, error) {
	v, err := s.peek()
	if err != nil {
		return 0, err
	}
	s.advance()
	if v.ValueType() != jsoniter.ArrayValue {
		return 0, errors.Newf("expected a JSON array, got %v", v.ValueType())
	}
	n := v.Size()
	vals := make([]jsoniter.Any, n)
	for i := 0; i < n; i++ {
		vals[i] = v.Get(i)
	}
	s.stack = append(s.stack, &sourceFrame{values: vals})
	return uint64(n), nil
}

func (s *Source) BeginMap() error {
	v, err := s.peek()
	if err != nil {
		return err
	}
	s.advance()
	if v.ValueType() != jsoniter.ObjectValue {
		return errors.Newf("expected a JSON object, got %v", v.ValueType())
	}
	keys := v.Keys()
	values := make([]jsoniter.Any, len(keys))
	for i, k := range keys {
		values[i] = v.Get(k)
	}
	s.stack = append(s.stack, &sourceFrame{keys: keys, values: values})
	return nil
}

func (s *Source) NextMapKey() (string, bool, error) {
	// A nested object or array field read just before this key leaves its
	// exhausted frames above this object's frame; drop them so the key is
	// read from the topmost frame that still has values.
	for i := len(s.stack) - 1; i > 0 && s.stack[i].exhausted(); i-- {
		if !s.stack[i-1].exhausted() {
			s.stack = s.stack[:i]
			break
		}
	}
	top := s.stack[len(s.stack)-1]
	if top.keys == nil {
		return "", false, errors.New("current JSON frame is not an object")
	}
	if top.idx >= len(top.keys) {
		return "", false, nil
	}
	return top.keys[top.idx], true, nil
}

func (s *Source) BeginEnum() (string, error) {
	v, err := s.peek()
	if err != nil {
		return "", err
	}
	s.advance()
	if v.ValueType() != jsoniter.ObjectValue {
		return "", errors.Newf("expected an enum object {\"tag\":...}, got %v", v.ValueType())
	}
	tagAny := v.Get("tag")
	if tagAny.ValueType() != jsoniter.StringValue {
		return "", errors.New(`enum object is missing a string "tag" key`)
	}
	tag := tagAny.ToString()
	var values []jsoniter.Any
	if valAny := v.Get("val"); valAny.ValueType() != jsoniter.InvalidValue {
		values = []jsoniter.Any{valAny}
	}
	s.enumDepths = append(s.enumDepths, len(s.stack))
	s.stack = append(s.stack, &sourceFrame{values: values})
	return tag, nil
}

// EndEnum unwinds the stack back to the depth recorded by the matching
// BeginEnum. A payload that is itself an array or object pushes its own
// frames while being read, and those may still be on the stack (possibly
// exhausted but not yet lazily popped) once the codec finishes with it.
func (s *Source) EndEnum() error {
	if len(s.enumDepths) == 0 {
		return errors.New("EndEnum without matching BeginEnum")
	}
	depth := s.enumDepths[len(s.enumDepths)-1]
	s.enumDepths = s.enumDepths[:len(s.enumDepths)-1]
	s.stack = s.stack[:depth]
	return nil
}

// --- Sink: writing JSON as the codec pushes values -----------------------

type sinkFrameKind int

const (
	sinkSeq sinkFrameKind = iota
	sinkMap
	sinkEnum
)

type sinkFrame struct {
	kind  sinkFrameKind
	count int
}

// Sink implements valueproto.ValueSink, streaming JSON text directly via a
// jsoniter.Stream rather than assembling a document and marshaling it.
type Sink struct {
	stream *jsoniter.Stream
	stack  []*sinkFrame
}

// NewSink returns a ValueSink that accumulates JSON text; call Bytes once
// the top-level value has been fully written.
func NewSink() *Sink {
	return &Sink{stream: jsoniter.NewStream(jsoniter.ConfigDefault, nil, 256)}
}

// Bytes returns the JSON text written so far.
func (s *Sink) Bytes() []byte {
	return s.stream.Buffer()
}

func (s *Sink) beforeValue() {
	if len(s.stack) == 0 {
		return
	}
	top := s.stack[len(s.stack)-1]
	if top.kind == sinkSeq {
		if top.count > 0 {
			s.stream.WriteMore()
		}
		top.count++
	}
}

func (s *Sink) Scalar(v valueproto.Scalar) error {
	s.beforeValue()
	switch v.Kind {
	case valueproto.KindBool:
		s.stream.WriteBool(v.Bool)
	case valueproto.KindSignedInt:
		s.stream.WriteInt64(v.Int)
	case valueproto.KindUnsignedInt:
		s.stream.WriteUint64(v.Uint)
	case valueproto.KindFloat:
		s.stream.WriteFloat64(v.Float)
	case valueproto.KindString:
		s.stream.WriteString(v.Str)
	default:
		return errors.Newf("unknown scalar kind %v", v.Kind)
	}
	return s.stream.Error
}

func (s *Sink) BeginSeq(uint64) error {
	s.beforeValue()
	s.stream.WriteArrayStart()
	s.stack = append(s.stack, &sinkFrame{kind: sinkSeq})
	return s.stream.Error
}

func (s *Sink) EndSeq() error {
	s.stack = s.stack[:len(s.stack)-1]
	s.stream.WriteArrayEnd()
	return s.stream.Error
}

func (s *Sink) BeginMap() error {
	s.beforeValue()
	s.stream.WriteObjectStart()
	s.stack = append(s.stack, &sinkFrame{kind: sinkMap})
	return s.stream.Error
}

func (s *Sink) PutMapKey(key string) error {
	top := s.stack[len(s.stack)-1]
	if top.count > 0 {
		s.stream.WriteMore()
	}
	top.count++
	s.stream.WriteObjectField(key)
	return s.stream.Error
}

func (s *Sink) EndMap() error {
	s.stack = s.stack[:len(s.stack)-1]
	s.stream.WriteObjectEnd()
	return s.stream.Error
}

func (s *Sink) BeginEnum(tag string, hasPayload bool) error {
	s.beforeValue()
	s.stream.WriteObjectStart()
	s.stream.WriteObjectField("tag")
	s.stream.WriteString(tag)
	if hasPayload {
		s.stream.WriteMore()
		s.stream.WriteObjectField("val")
	}
	s.stack = append(s.stack, &sinkFrame{kind: sinkEnum})
	return s.stream.Error
}

func (s *Sink) EndEnum() error {
	s.stack = s.stack[:len(s.stack)-1]
	s.stream.WriteObjectEnd()
	return s.stream.Error
}
