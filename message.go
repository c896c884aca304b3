package rosc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Message represents a decoded OSC message.
type Message struct {
	// Addr is the destination address, a string beginning with "/".
	// On the wire this slot carries an address pattern; senders that
	// dispatch by pattern on the receiving side put a concrete
	// address here.
	Addr string
	// Arguments is the values.
	Arguments []Argument
}

// ParseMessage decodes a message from buf.
func ParseMessage(buf []byte) (*Message, error) {
	// The address comes first, encoded as a string.
	var addr String
	buf, err := addr.Consume(buf)
	if err != nil {
		return nil, fmt.Errorf("reading address: %w", err)
	}
	if len(addr) == 0 || addr[0] != '/' {
		return nil, fmt.Errorf("address %q does not begin with '/'", addr)
	}
	// Then the type tag string, a ',' followed by one tag per
	// argument.
	var tags String
	buf, err = tags.Consume(buf)
	if err != nil {
		return nil, fmt.Errorf("reading type tags: %w", err)
	}
	if len(tags) == 0 || tags[0] != ',' {
		return nil, fmt.Errorf("invalid type tag string: %q", tags)
	}
	args := make([]Argument, len(tags)-1)
	for i, tag := range tags[1:] {
		a, err := newArgument(tag)
		if err != nil {
			return nil, err
		}
		buf, err = a.Consume(buf)
		if err != nil {
			return nil, fmt.Errorf("reading argument %d (%c): %w", i, tag, err)
		}
		args[i] = a
	}

	return &Message{
		Addr:      string(addr),
		Arguments: args,
	}, nil
}

// Append encodes the message and appends it to b.
func (m Message) Append(b []byte) []byte {
	b = String(m.Addr).Append(b)

	tags := make([]byte, 0, len(m.Arguments)+1)
	tags = append(tags, ',')
	for _, a := range m.Arguments {
		tags = append(tags, byte(a.TypeTag()))
	}
	b = String(tags).Append(b)

	for _, a := range m.Arguments {
		b = a.Append(b)
	}
	return b
}

// newArgument returns an empty argument for a type tag, ready to
// Consume its encoding.
func newArgument(tag rune) (Argument, error) {
	switch tag {
	case 'i':
		return new(Int32), nil
	case 'f':
		return new(Float32), nil
	case 's':
		return new(String), nil
	case 'b':
		return new(Blob), nil
	case 't':
		return new(TimeTag), nil
	case 'T':
		return True{}, nil
	case 'F':
		return False{}, nil
	case 'N':
		return Null{}, nil
	case 'I':
		return Impulse{}, nil
	}
	return nil, fmt.Errorf("unknown type tag %c", tag)
}

// Argument represents an OSC value.
type Argument interface {
	// TypeTag must return the type tag of the argument, a single character.
	TypeTag() rune
	// Append appends the binary representation of the argument to the
	// provided byte slice.
	Append([]byte) []byte
	// Consume fills in the argument from the provided bytes, returning any
	// remainder.
	Consume([]byte) ([]byte, error)
}

// Int32 is the OSC int32: a "32-bit big-endian two’s complement integer"
type Int32 int32

func (Int32) TypeTag() rune { return 'i' }

func (i Int32) Append(b []byte) []byte {
	return binary.BigEndian.AppendUint32(b, uint32(i))
}

func (i *Int32) Consume(b []byte) ([]byte, error) {
	if l := len(b); l < 4 {
		return nil, fmt.Errorf("expect int32, only %d bytes", l)
	}
	*i = Int32(binary.BigEndian.Uint32(b))
	return b[4:], nil
}

func (i Int32) String() string {
	return fmt.Sprintf("Int32(%d)", int32(i))
}

// Float32 is a normal float32: "32-bit big-endian IEEE 754 floating point
// number"
type Float32 float32

func (Float32) TypeTag() rune { return 'f' }

func (f Float32) Append(b []byte) []byte {
	return binary.BigEndian.AppendUint32(b, math.Float32bits(float32(f)))
}

func (f *Float32) Consume(b []byte) ([]byte, error) {
	if l := len(b); l < 4 {
		return nil, fmt.Errorf("expect float32, only %d bytes", l)
	}
	*f = Float32(math.Float32frombits(binary.BigEndian.Uint32(b)))
	return b[4:], nil
}

func (f Float32) String() string {
	return fmt.Sprintf("Float32(%f)", float32(f))
}

// String is an ASCII string; on the wire it's null-terminated and
// zero-padded to a multiple of 4 bytes.
type String string

func (String) TypeTag() rune { return 's' }

func (s String) Append(b []byte) []byte {
	b = append(b, s...)
	// Terminate, then pad until the total length is a multiple of 4.
	b = append(b, 0)
	for len(b)%4 > 0 {
		b = append(b, 0)
	}
	return b
}

func (s *String) Consume(b []byte) ([]byte, error) {
	end := bytes.IndexByte(b, 0)
	if end < 0 {
		return nil, fmt.Errorf("no termination in string %q", b)
	}
	*s = String(b[:end])
	// The terminator and padding bring the consumed length up to the
	// next multiple of 4. The spec requires the pad bytes to be zero,
	// so their values aren't checked, just skipped.
	end = min(end+4-end%4, len(b))
	return b[end:], nil
}

func (s String) String() string {
	return fmt.Sprintf("String(%q)", string(s))
}

// Blob is the OSC blob: an int32 byte count followed by that many
// bytes, zero-padded to a multiple of 4.
type Blob []byte

func (Blob) TypeTag() rune { return 'b' }

func (bl Blob) Append(b []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(bl)))
	b = append(b, bl...)
	for len(b)%4 > 0 {
		b = append(b, 0)
	}
	return b
}

func (bl *Blob) Consume(b []byte) ([]byte, error) {
	if l := len(b); l < 4 {
		return nil, fmt.Errorf("expect blob size, only %d bytes", l)
	}
	size := int(binary.BigEndian.Uint32(b))
	b = b[4:]
	if len(b) < size {
		return nil, fmt.Errorf("blob of %d bytes, only %d remain", size, len(b))
	}
	*bl = Blob(bytes.Clone(b[:size]))
	end := min(size+(4-size%4)%4, len(b))
	return b[end:], nil
}

func (bl Blob) String() string {
	return fmt.Sprintf("Blob(%x)", []byte(bl))
}

// TimeTag is an OSC timetag. On the wire it's a "64-bit big-endian
// fixed-point time tag" with the same encoding used by NTP. It's one
// of the non-standard types in the original spec, but mandatory in
// 1.1. It wraps a time.Time so it's easy to use; everything is
// assumed to be in UTC.
type TimeTag struct {
	time.Time
}

func (TimeTag) TypeTag() rune { return 't' }

// epoch is the starting point for TimeTags.
var epoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

func (t TimeTag) Append(b []byte) []byte {
	seconds := t.Sub(epoch).Seconds()
	if seconds <= 0 {
		// A go time could be well before epoch, cut off anything there.
		return append(b, 0, 0, 0, 0, 0, 0, 0, 0)
	}
	// The highest 4 bytes are the integer number of seconds and
	// the lowest four bytes are however much of the fractional part
	// fits in.
	const stepsPerSecond = float64(int64(1) << 32)
	base, frac := math.Modf(seconds)
	out := (uint64(base) << 32) + uint64(frac*stepsPerSecond)
	return binary.BigEndian.AppendUint64(b, out)
}

func (t *TimeTag) Consume(b []byte) ([]byte, error) {
	if l := len(b); l < 8 {
		return nil, fmt.Errorf("expected timetag (8 bytes), only %d bytes", l)
	}
	raw := binary.BigEndian.Uint64(b)
	seconds := float64(raw >> 32)
	seconds += float64(raw&0xffffffff) / float64(1<<32)
	*t = TimeTag{epoch.Add(time.Duration(seconds * float64(time.Second)))}
	return b[8:], nil
}

func (t TimeTag) String() string {
	return fmt.Sprintf("TimeTag(%v)", t.Time)
}

/*
   Additional mandatory types from the OSC 1.1 NIME paper
   (https://ccrma.stanford.edu/groups/osc/files/2009-NIME-OSC-1.1.pdf)
*/

// True is a boolean true, it contains no data.
type True struct{}

func (True) TypeTag() rune                    { return 'T' }
func (True) Append(b []byte) []byte           { return b }
func (True) Consume(b []byte) ([]byte, error) { return b, nil }
func (True) String() string                   { return "True" }

// False is a boolean false value, it contains no data.
type False struct{}

func (False) TypeTag() rune                    { return 'F' }
func (False) Append(b []byte) []byte           { return b }
func (False) Consume(b []byte) ([]byte, error) { return b, nil }
func (False) String() string                   { return "False" }

// Null is just an empty value.
type Null struct{}

func (Null) TypeTag() rune                    { return 'N' }
func (Null) Append(b []byte) []byte           { return b }
func (Null) Consume(b []byte) ([]byte, error) { return b, nil }
func (Null) String() string                   { return "Null" }

// Impulse (aka "bang", or "Infinitum" in OSC 1.0) is another empty type.
type Impulse struct{}

func (Impulse) TypeTag() rune                    { return 'I' }
func (Impulse) Append(b []byte) []byte           { return b }
func (Impulse) Consume(b []byte) ([]byte, error) { return b, nil }
func (Impulse) String() string                   { return "Impulse" }
