package frame

import (
	"errors"
	"fmt"
	"strconv"
)

// PayloadLen is the number of hex characters in one SAMI2 record after the
// leading '*' marker has been stripped. The trailing two characters carry the
// instrument checksum and are not decoded here.
const PayloadLen = 80

// Type identifies what a SAMI2 frame carries.
type Type uint8

const (
	TypeMeasurement Type = 4
	TypeBlank       Type = 5
)

func (t Type) String() string {
	switch t {
	case TypeMeasurement:
		return "measurement"
	case TypeBlank:
		return "blank"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrUnknownType    = errors.New("unknown frame type")
)

// Fields is the typed view of one decoded frame. It is created once per
// frame and never mutated afterwards.
type Fields struct {
	Type       Type
	Time       uint32 // seconds since the SAMI epoch
	DarkRef    uint16
	DarkSig    uint16
	Ref434     uint16
	Sig434     uint16
	Ref620     uint16
	Sig620     uint16
	Ratio434   uint16
	Ratio620   uint16
	Battery    uint16
	Thermistor uint16
}

// fieldSpec describes one fixed-width hex slice of the payload.
type fieldSpec struct {
	name  string
	start int // 0-indexed offset into the payload
	width int
	set   func(*Fields, uint64)
}

var layout = []fieldSpec{
	{"type", 4, 2, func(f *Fields, v uint64) { f.Type = Type(v) }},
	{"time", 6, 8, func(f *Fields, v uint64) { f.Time = uint32(v) }},
	{"darkref", 14, 4, func(f *Fields, v uint64) { f.DarkRef = uint16(v) }},
	{"darksig", 18, 4, func(f *Fields, v uint64) { f.DarkSig = uint16(v) }},
	{"ref434", 22, 4, func(f *Fields, v uint64) { f.Ref434 = uint16(v) }},
	{"sig434", 26, 4, func(f *Fields, v uint64) { f.Sig434 = uint16(v) }},
	{"ref620", 30, 4, func(f *Fields, v uint64) { f.Ref620 = uint16(v) }},
	{"sig620", 34, 4, func(f *Fields, v uint64) { f.Sig620 = uint16(v) }},
	{"ratio434", 38, 4, func(f *Fields, v uint64) { f.Ratio434 = uint16(v) }},
	{"ratio620", 42, 4, func(f *Fields, v uint64) { f.Ratio620 = uint16(v) }},
	{"battery", 70, 4, func(f *Fields, v uint64) { f.Battery = uint16(v) }},
	{"thermistor", 74, 4, func(f *Fields, v uint64) { f.Thermistor = uint16(v) }},
}

// Decode parses one 80-character hex payload into its typed fields. It is a
// pure function: the same payload always yields the same Fields.
func Decode(payload string) (Fields, error) {
	var f Fields
	if len(payload) != PayloadLen {
		return f, fmt.Errorf("%w: length %d, want %d", ErrMalformedFrame, len(payload), PayloadLen)
	}
	for _, spec := range layout {
		s := payload[spec.start : spec.start+spec.width]
		v, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return Fields{}, fmt.Errorf("%w: field %s %q is not hex", ErrMalformedFrame, spec.name, s)
		}
		spec.set(&f, v)
	}
	if f.Type != TypeMeasurement && f.Type != TypeBlank {
		return Fields{}, fmt.Errorf("%w: 0x%02X", ErrUnknownType, uint8(f.Type))
	}
	return f, nil
}
