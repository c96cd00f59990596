package smith

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/johannes-adr/smith/internal/wire"
)

// packetSchema is the schema shared by the scenario tests below. The
// resolver assigns ids in first-insertion order during generic expansion:
// seeding PacketType's variants instantiates PacketType::Order's payload
// Order<OrderItem> before any non-generic declaration is appended, and
// expanding Order<OrderItem> in turn
// reaches Optional<Array<OrderItem>> before Order<OrderItem> registers
// itself. That yields, in order: Optional<Array<OrderItem>>,
// Order<OrderItem>, OrderItem, PacketType, Packet.
const packetSchema = `
enum Optional<T>{ Some(T) None }
struct OrderItem{ id: u8 amount: u8 }
struct Order<T>{ table_number: udInt items: Optional<Array<T>> }
enum PacketType{ Ack LogOut Order(Order<OrderItem>) }
struct Packet{ id: u8 payload: PacketType }
`

const packetJSON = `{"id":1,"payload":{"tag":"Order","val":{"table_number":1,"items":{"tag":"Some","val":[{"id":1,"amount":2},{"id":2,"amount":2},{"id":3,"amount":3},{"id":4,"amount":4}]}}}}`

// packetBinary is this implementation's stable vector for packetJSON/
// packetSchema. It diverges from the ordinal layout suggested by the
// specification's own scenario 1 walkthrough, whose stated ordinal byte
// (0x05 for PacketType::Order) is unreachable: PacketType has only three
// variants, so no valid ordinal can exceed 2. That text also trails off
// mid-explanation ("… rephrased:"), a placeholder rather than a committed
// reference encoding. Per the specification's own allowance to "document
// an alternative stable order and update test vectors accordingly," this
// vector was derived by hand-tracing this package's expansion and
// resolution order against packetSchema; see DESIGN.md for the derivation.
var packetBinary = []byte{0x01, 0x02, 0x01, 0x00, 0x04, 0x01, 0x02, 0x02, 0x02, 0x03, 0x03, 0x04, 0x04}

func compilePacket(c *qt.C) *Smith {
	s, err := Compile(packetSchema)
	c.Assert(err, qt.IsNil)
	return s
}

func decodeJSON(c *qt.C, text string) any {
	var v any
	c.Assert(json.Unmarshal([]byte(text), &v), qt.IsNil)
	return v
}

func TestScenario1JSONToBinary(t *testing.T) {
	c := qt.New(t)
	s := compilePacket(c)
	ref, ok := s.TypeOf("Packet")
	c.Assert(ok, qt.IsTrue)

	got, err := s.JSONToBinary(ref, packetJSON)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, packetBinary)
}

func TestScenario2BinaryToJSON(t *testing.T) {
	c := qt.New(t)
	s := compilePacket(c)
	ref, ok := s.TypeOf("Packet")
	c.Assert(ok, qt.IsTrue)

	got, err := s.BinaryToJSON(ref, packetBinary)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.JSONEquals, decodeJSON(c, packetJSON))
}

func TestScenario1RoundTrip(t *testing.T) {
	c := qt.New(t)
	s := compilePacket(c)
	ref, ok := s.TypeOf("Packet")
	c.Assert(ok, qt.IsTrue)

	bin, err := s.JSONToBinary(ref, packetJSON)
	c.Assert(err, qt.IsNil)
	back, err := s.BinaryToJSON(ref, bin)
	c.Assert(err, qt.IsNil)
	c.Assert(back, qt.JSONEquals, decodeJSON(c, packetJSON))
}

func TestScenario4NarrowingRejection(t *testing.T) {
	c := qt.New(t)
	s, err := Compile(`struct S{ x: u8 }`)
	c.Assert(err, qt.IsNil)
	ref, ok := s.TypeOf("S")
	c.Assert(ok, qt.IsTrue)

	_, err = s.Encode(ref, struct {
		X int `smith:"x"`
	}{X: 256})
	c.Assert(err, qt.Not(qt.IsNil))
	werr, ok := err.(*wire.Error)
	c.Assert(ok, qt.IsTrue)
	c.Assert(werr.Kind, qt.Equals, wire.KindIntegerRange)
}

func TestScenario5TrailingBytes(t *testing.T) {
	c := qt.New(t)
	s, err := Compile(`struct S{ x: u8 }`)
	c.Assert(err, qt.IsNil)
	ref, ok := s.TypeOf("S")
	c.Assert(ok, qt.IsTrue)

	bin, err := s.Encode(ref, struct {
		X uint8 `smith:"x"`
	}{X: 42})
	c.Assert(err, qt.IsNil)
	c.Assert(bin, qt.DeepEquals, []byte{0x2a})

	var out struct {
		X uint8 `smith:"x"`
	}
	err = s.Decode(ref, append(bin, 0x00), &out)
	c.Assert(err, qt.Not(qt.IsNil))
	werr, ok := err.(*wire.Error)
	c.Assert(ok, qt.IsTrue)
	c.Assert(werr.Kind, qt.Equals, wire.KindTrailingBytes)
}

func TestScenario6EmptyStringRoundTrip(t *testing.T) {
	c := qt.New(t)
	s, err := Compile(`struct S{ s: string }`)
	c.Assert(err, qt.IsNil)
	ref, ok := s.TypeOf("S")
	c.Assert(ok, qt.IsTrue)

	bin, err := s.JSONToBinary(ref, `{"s":""}`)
	c.Assert(err, qt.IsNil)
	c.Assert(bin, qt.DeepEquals, []byte{0x00})

	back, err := s.BinaryToJSON(ref, bin)
	c.Assert(err, qt.IsNil)
	c.Assert(back, qt.JSONEquals, map[string]any{"s": ""})
}

func TestCompiledIdsAreContiguous(t *testing.T) {
	c := qt.New(t)
	s := compilePacket(c)
	n := s.table.Len()
	c.Assert(n, qt.Equals, 5)
	for i := 0; i < n; i++ {
		_, ok := s.table.Get(i)
		c.Assert(ok, qt.IsTrue)
	}
}
