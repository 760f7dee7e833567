package frame

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// Two records from the OOI PCO2W reference data set, marker stripped.
const (
	blankPayload       = "BC2705D5A7C0E10082005A0CA9090E07CB08E82DCA4B1C0082005A0CA9090E07CD08EC0C3208C38A"
	measurementPayload = "BC2704D5A7E2B1007E005A0CB1022F07C40443099F226D007F005A0CAF022F07C404400C3F08BE2E"
)

func TestDecodeBlank(t *testing.T) {
	f, err := Decode(blankPayload)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	want := Fields{
		Type:       TypeBlank,
		Time:       3584540897,
		DarkRef:    130,
		DarkSig:    90,
		Ref434:     3241,
		Sig434:     2318,
		Ref620:     1995,
		Sig620:     2280,
		Ratio434:   11722,
		Ratio620:   19228,
		Battery:    3122,
		Thermistor: 2243,
	}
	if f != want {
		t.Errorf("Decode() = %+v, want %+v", f, want)
	}
}

func TestDecodeMeasurementType(t *testing.T) {
	f, err := Decode(measurementPayload)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if f.Type != TypeMeasurement {
		t.Errorf("Type = %v, want %v", f.Type, TypeMeasurement)
	}
	if f.Ratio434 != 0x099F || f.Ratio620 != 0x226D {
		t.Errorf("ratios = %d/%d, want %d/%d", f.Ratio434, f.Ratio620, 0x099F, 0x226D)
	}
}

func TestDecodeDeterministic(t *testing.T) {
	a, err := Decode(measurementPayload)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Decode(measurementPayload)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("two decodes of the same payload differ: %+v vs %+v", a, b)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"too short", blankPayload[:79], ErrMalformedFrame},
		{"too long", blankPayload + "0", ErrMalformedFrame},
		{"empty", "", ErrMalformedFrame},
		{"bad hex in time", blankPayload[:6] + "ZZZZZZZZ" + blankPayload[14:], ErrMalformedFrame},
		{"type 0x07", blankPayload[:4] + "07" + blankPayload[6:], ErrUnknownType},
		{"type 0x00", blankPayload[:4] + "00" + blankPayload[6:], ErrUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.payload); !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// encode builds a synthetic payload from fields, the inverse of Decode.
// Unused positions are zero filled.
func encode(f Fields) string {
	b := []byte(strings.Repeat("0", PayloadLen))
	put := func(start, width int, v uint64) {
		copy(b[start:], fmt.Sprintf("%0*X", width, v))
	}
	put(4, 2, uint64(f.Type))
	put(6, 8, uint64(f.Time))
	put(14, 4, uint64(f.DarkRef))
	put(18, 4, uint64(f.DarkSig))
	put(22, 4, uint64(f.Ref434))
	put(26, 4, uint64(f.Sig434))
	put(30, 4, uint64(f.Ref620))
	put(34, 4, uint64(f.Sig620))
	put(38, 4, uint64(f.Ratio434))
	put(42, 4, uint64(f.Ratio620))
	put(70, 4, uint64(f.Battery))
	put(74, 4, uint64(f.Thermistor))
	return string(b)
}

func TestRoundTrip(t *testing.T) {
	want := Fields{
		Type:       TypeMeasurement,
		Time:       0xFFFFFFFF,
		DarkRef:    0xFFFF,
		DarkSig:    1,
		Ref434:     3241,
		Sig434:     2318,
		Ref620:     1995,
		Sig620:     2280,
		Ratio434:   8000,
		Ratio620:   6000,
		Battery:    3135,
		Thermistor: 1500,
	}
	got, err := Decode(encode(want))
	if err != nil {
		t.Fatalf("Decode(encode()) error: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
