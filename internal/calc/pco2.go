package calc

import (
	"fmt"
	"math"
)

// blankScale normalizes raw absorbance ratio counts to the unit interval.
const blankScale = 16384.0

// Calibration holds the per-deployment coefficients printed on the reagent
// bag / calibration sheet of a SAMI2 unit. Never mutated after load.
type Calibration struct {
	CalT float64 `yaml:"calt"`
	CalA float64 `yaml:"cala"`
	CalB float64 `yaml:"calb"`
	CalC float64 `yaml:"calc"`
}

// Model holds the photometric model constants shared across the SAMI2 family.
// Sunburst has revised these between firmware generations, so they stay
// injectable rather than hard-coded.
type Model struct {
	E1 float64 `yaml:"e1"`
	E2 float64 `yaml:"e2"`
	E3 float64 `yaml:"e3"`
}

// DefaultModel returns the Sunburst-provided constants.
func DefaultModel() Model {
	return Model{E1: 0.0043, E2: 2.136, E3: 0.2105}
}

// Blank is the absorbance baseline taken from the most recent blank frame.
type Blank struct {
	A434 float64
	A620 float64
}

// NewBlank normalizes the raw ratio counts of a blank frame.
func NewBlank(ratio434, ratio620 uint16) Blank {
	return Blank{
		A434: float64(ratio434) / blankScale,
		A620: float64(ratio620) / blankScale,
	}
}

// PCO2 applies the SAMI2 calibration chain to one measurement frame's raw
// ratio counts, given the current blank baseline and the frame's thermistor
// temperature in Celsius:
//
//	A434   = -log10( (ratio434/16384) / blank.A434 )
//	A620   = -log10( (ratio620/16384) / blank.A620 )
//	R      = A620 / A434
//	RCO2   = -log10( (R - e1) / (e2 - e3*R) )
//	Tcor   = RCO2 + Tcoeff(RCO2, tempC) * (tempC - CalT)
//	pCO2   = 10^( (-CalB + sqrt(CalB^2 - 4*CalA*(CalC - Tcor))) / (2*CalA) )
//
// A measurement whose ratios equal the blank's produces A434 == 0 and is a
// degenerate record (ErrDomain), as are a non-positive RCO2 log argument and
// a negative discriminant.
func PCO2(ratio434, ratio620 uint16, blank Blank, tempC float64, cal Calibration, m Model) (float64, error) {
	if blank.A434 <= 0 || blank.A620 <= 0 {
		return 0, fmt.Errorf("%w: blank baseline is zero", ErrDomain)
	}
	ar434 := float64(ratio434) / blankScale / blank.A434
	ar620 := float64(ratio620) / blankScale / blank.A620
	if ar434 <= 0 || ar620 <= 0 {
		return 0, fmt.Errorf("%w: non-positive absorbance ratio", ErrDomain)
	}

	a434 := -math.Log10(ar434)
	a620 := -math.Log10(ar620)
	if a434 == 0 {
		return 0, fmt.Errorf("%w: zero absorbance at 434 nm", ErrDomain)
	}
	ratio := a620 / a434

	v1 := ratio - m.E1
	v2 := m.E2 - m.E3*ratio
	if v2 == 0 || v1/v2 <= 0 {
		return 0, fmt.Errorf("%w: non-positive RCO2 log argument", ErrDomain)
	}
	rco2 := -math.Log10(v1 / v2)

	dt := tempC - cal.CalT
	interim := rco2 + 0.008*dt
	tcoeff := 0.0075778 - 0.0012389*interim - 0.00048757*interim*interim
	tcor := rco2 + tcoeff*dt

	disc := cal.CalB*cal.CalB - 4*cal.CalA*(cal.CalC-tcor)
	if disc < 0 {
		return 0, fmt.Errorf("%w: negative discriminant", ErrDomain)
	}
	return math.Pow(10, (-cal.CalB+math.Sqrt(disc))/(2*cal.CalA)), nil
}
