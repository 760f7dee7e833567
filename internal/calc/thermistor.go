package calc

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain reports an arithmetic precondition violation: a division by zero,
// a non-positive logarithm argument or a negative discriminant. It is always
// a per-record failure, never fatal to a stream.
var ErrDomain = errors.New("domain error")

// Bits is the ADC width of the SAMI hardware. Boards up to 2022 use a 12-bit
// converter; the 2023 Rev-K boards use 14 bits, which changes the full-scale
// count in the thermistor and battery conversions.
type Bits int

const (
	Bits12 Bits = 12
	Bits14 Bits = 14
)

func (b Bits) Valid() bool {
	return b == Bits12 || b == Bits14
}

func (b Bits) fullScale() float64 {
	if b == Bits14 {
		return 16384
	}
	return 4096
}

const thermistorGain = 17400.0

// Thermistor converts a raw thermistor count to degrees Celsius via the
// Steinhart-Hart polynomial documented for the SAMI2 pCO2 instrument:
//
//	x     = ln( (raw / (fullScale - raw)) * 17400 )
//	1/T_K = 0.0010183 + 0.000241*x + 0.00000015*x^3
//
// Counts at or beyond the converter rails have no defined temperature and
// return ErrDomain.
func Thermistor(raw uint16, bits Bits) (float64, error) {
	fs := bits.fullScale()
	r := float64(raw)
	if r <= 0 || r >= fs {
		return 0, fmt.Errorf("%w: thermistor count %d outside (0, %.0f)", ErrDomain, raw, fs)
	}
	x := math.Log(r / (fs - r) * thermistorGain)
	invT := 0.0010183 + 0.000241*x + 0.00000015*x*x*x
	return 1/invT - 273.15, nil
}

// Battery converts a raw battery count to volts. The divider constants differ
// between the 12-bit and 14-bit hardware revisions.
func Battery(raw uint16, bits Bits) float64 {
	if bits == Bits14 {
		return float64(raw) * 3.0 / 4000.0
	}
	return float64(raw) * 15.0 / 4096.0
}
