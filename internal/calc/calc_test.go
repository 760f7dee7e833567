package calc

import (
	"errors"
	"math"
	"testing"
)

// Calibration of the OOI PCO2W reference deployment.
var fixtureCal = Calibration{CalT: 4.6539, CalA: 0.0422, CalB: 0.6761, CalC: -1.5798}

// Thermistor counts and published temperatures from the OOI PCO2W reference
// data set (12-bit hardware).
var thermFixture = []struct {
	raw  uint16
	degC float64
}{
	{2243, 7.3151},
	{2238, 7.4258},
	{1848, 16.2306},
	{1953, 13.8108},
	{2060, 11.3900},
	{2131, 9.8019},
	{2182, 8.6674},
	{2197, 8.3345},
	{2201, 8.2458},
	{2203, 8.2014},
	{2204, 8.1792},
	{2208, 8.0905},
	{2224, 7.7359},
	{2254, 7.0716},
}

func TestThermistorFixture(t *testing.T) {
	for _, tt := range thermFixture {
		got, err := Thermistor(tt.raw, Bits12)
		if err != nil {
			t.Fatalf("Thermistor(%d) error: %v", tt.raw, err)
		}
		if math.Abs(got-tt.degC) > 1e-3 {
			t.Errorf("Thermistor(%d) = %.4f, want %.4f", tt.raw, got, tt.degC)
		}
	}
}

// Counts 1005..2560 span roughly -0.6..39.6 degC on the 12-bit hardware; the
// conversion must be finite and strictly decreasing across that window.
func TestThermistorMonotonicInOperatingRange(t *testing.T) {
	prev := math.Inf(1)
	for raw := uint16(1005); raw <= 2560; raw++ {
		got, err := Thermistor(raw, Bits12)
		if err != nil {
			t.Fatalf("Thermistor(%d) error: %v", raw, err)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("Thermistor(%d) = %v, not finite", raw, got)
		}
		if got <= -5 || got >= 40 {
			t.Fatalf("Thermistor(%d) = %.4f, outside (-5, 40)", raw, got)
		}
		if got >= prev {
			t.Fatalf("Thermistor(%d) = %.4f, not below previous %.4f", raw, got, prev)
		}
		prev = got
	}
}

func TestThermistorDomain(t *testing.T) {
	tests := []struct {
		raw  uint16
		bits Bits
		ok   bool
	}{
		{0, Bits12, false},
		{4096, Bits12, false},
		{5000, Bits12, false},
		{1, Bits12, true},
		{4095, Bits12, true},
		{4096, Bits14, true},
		{16383, Bits14, true},
		{16384, Bits14, false},
	}
	for _, tt := range tests {
		_, err := Thermistor(tt.raw, tt.bits)
		if tt.ok && err != nil {
			t.Errorf("Thermistor(%d, %d-bit) error: %v", tt.raw, tt.bits, err)
		}
		if !tt.ok && !errors.Is(err, ErrDomain) {
			t.Errorf("Thermistor(%d, %d-bit) error = %v, want ErrDomain", tt.raw, tt.bits, err)
		}
	}
}

func TestBattery(t *testing.T) {
	if got, want := Battery(3135, Bits12), 11.480712890625; math.Abs(got-want) > 1e-9 {
		t.Errorf("Battery(3135, 12-bit) = %v, want %v", got, want)
	}
	if got, want := Battery(3135, Bits14), 2.35125; math.Abs(got-want) > 1e-9 {
		t.Errorf("Battery(3135, 14-bit) = %v, want %v", got, want)
	}
}

func TestPCO2HandComputed(t *testing.T) {
	// blank (8000, 6000), measurement (7000, 5500) at 25 degC: worked through
	// the documented formula chain by hand.
	blank := NewBlank(8000, 6000)
	got, err := PCO2(7000, 5500, blank, 25.0, fixtureCal, DefaultModel())
	if err != nil {
		t.Fatalf("PCO2() error: %v", err)
	}
	if want := 598.4196588160341; math.Abs(got-want) > 1e-6 {
		t.Errorf("PCO2() = %.7f, want %.7f", got, want)
	}
}

func TestPCO2EqualBlankIsDegenerate(t *testing.T) {
	// A measurement whose ratios equal the blank's has zero absorbance on
	// both channels; the 0/0 ratio must surface as a domain error, not a
	// crash or a number.
	blank := NewBlank(8000, 6000)
	if _, err := PCO2(8000, 6000, blank, 25.0, fixtureCal, DefaultModel()); !errors.Is(err, ErrDomain) {
		t.Errorf("PCO2(equal to blank) error = %v, want ErrDomain", err)
	}
}

func TestPCO2NonPositiveLogArgument(t *testing.T) {
	// Zero absorbance at 620 nm only: the absorbance ratio drops below e1,
	// leaving the RCO2 logarithm undefined.
	blank := NewBlank(8000, 6000)
	if _, err := PCO2(7000, 6000, blank, 25.0, fixtureCal, DefaultModel()); !errors.Is(err, ErrDomain) {
		t.Errorf("PCO2(zero A620) error = %v, want ErrDomain", err)
	}
}

func TestPCO2NegativeDiscriminant(t *testing.T) {
	blank := NewBlank(8000, 6000)
	cal := Calibration{CalT: 25.0, CalA: 1, CalB: 0, CalC: 2}
	if _, err := PCO2(7000, 5500, blank, 25.0, cal, DefaultModel()); !errors.Is(err, ErrDomain) {
		t.Errorf("PCO2(negative discriminant) error = %v, want ErrDomain", err)
	}
}

func TestPCO2ZeroBlank(t *testing.T) {
	if _, err := PCO2(7000, 5500, Blank{}, 25.0, fixtureCal, DefaultModel()); !errors.Is(err, ErrDomain) {
		t.Errorf("PCO2(zero blank) error = %v, want ErrDomain", err)
	}
}
