package pipeline

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"pco2proc/internal/calc"
	"pco2proc/internal/frame"
)

// EpochOffsetDays shifts seconds-since-SAMI-epoch day counts onto the day
// numbering used in the output files (4*365.25 + 1).
const EpochOffsetDays = 4*365.25 + 1

const secondsPerDay = 86400.0

// ErrMissingBlank reports a measurement frame observed before any blank
// frame: its baseline is undefined and no pCO2 can be computed for it.
var ErrMissingBlank = errors.New("no blank recorded before measurement")

// Measurement is one fully converted output record.
type Measurement struct {
	Time     float64 `json:"time"` // SAMI-epoch days
	PCO2     float64 `json:"pco2"`
	TempC    float64 `json:"temp_c"`
	BatteryV float64 `json:"battery_v"`
	DarkRef  uint16  `json:"dark_ref"`
	DarkSig  uint16  `json:"dark_sig"`
	Ratio434 uint16  `json:"ratio434"`
	Ref434   uint16  `json:"ref434"`
	Sig434   uint16  `json:"sig434"`
	Ratio620 uint16  `json:"ratio620"`
	Ref620   uint16  `json:"ref620"`
	Sig620   uint16  `json:"sig620"`
}

// Record is one emitted stream element: either a Measurement or the error
// that invalidated it. Blank frames and undecodable frames emit nothing.
type Record struct {
	Measurement *Measurement
	Err         error
}

// Stats counts what happened to every frame fed through a Processor.
type Stats struct {
	Frames       int `json:"frames"`
	Blanks       int `json:"blanks"`
	Measurements int `json:"measurements"`
	Malformed    int `json:"malformed"`
	Dropped      int `json:"dropped"` // unknown frame types
	Invalid      int `json:"invalid"` // domain / missing-blank failures
}

// Processor folds a chronological frame sequence into measurement records,
// carrying the most recent blank baseline between frames. It is the only
// stateful piece of the pipeline and is not safe for concurrent use.
type Processor struct {
	cal   calc.Calibration
	model calc.Model
	bits  calc.Bits
	blank *calc.Blank
	stats Stats
}

func New(cal calc.Calibration, model calc.Model, bits calc.Bits) *Processor {
	return &Processor{cal: cal, model: model, bits: bits}
}

// Stats returns the counters accumulated so far.
func (p *Processor) Stats() Stats {
	return p.stats
}

// Ingest decodes one payload and advances the fold. For a blank frame it
// replaces the baseline and returns (nil, nil). For a measurement frame it
// returns the converted record, or an error wrapping calc.ErrDomain or
// ErrMissingBlank when the record is invalid. Decode failures wrap
// frame.ErrMalformedFrame or frame.ErrUnknownType.
func (p *Processor) Ingest(payload string) (*Measurement, error) {
	p.stats.Frames++
	f, err := frame.Decode(payload)
	if err != nil {
		if errors.Is(err, frame.ErrUnknownType) {
			p.stats.Dropped++
		} else {
			p.stats.Malformed++
		}
		return nil, err
	}

	if f.Type == frame.TypeBlank {
		b := calc.NewBlank(f.Ratio434, f.Ratio620)
		p.blank = &b
		p.stats.Blanks++
		log.Debugf("blank at t=%d: A434=%.5f A620=%.5f", f.Time, b.A434, b.A620)
		return nil, nil
	}

	p.stats.Measurements++
	if p.blank == nil {
		p.stats.Invalid++
		return nil, fmt.Errorf("%w: frame at t=%d", ErrMissingBlank, f.Time)
	}
	tempC, err := calc.Thermistor(f.Thermistor, p.bits)
	if err != nil {
		p.stats.Invalid++
		return nil, err
	}
	pco2, err := calc.PCO2(f.Ratio434, f.Ratio620, *p.blank, tempC, p.cal, p.model)
	if err != nil {
		p.stats.Invalid++
		return nil, err
	}

	return &Measurement{
		Time:     float64(f.Time)/secondsPerDay + EpochOffsetDays,
		PCO2:     pco2,
		TempC:    tempC,
		BatteryV: calc.Battery(f.Battery, p.bits),
		DarkRef:  f.DarkRef,
		DarkSig:  f.DarkSig,
		Ratio434: f.Ratio434,
		Ref434:   f.Ref434,
		Sig434:   f.Sig434,
		Ratio620: f.Ratio620,
		Ref620:   f.Ref620,
		Sig620:   f.Sig620,
	}, nil
}

// Source yields successive frame payloads, io.EOF when exhausted.
type Source interface {
	Next() (string, error)
}

// Run drains src through the processor and hands each emitted Record to
// emit. Malformed and unknown-type frames are logged and skipped; invalid
// measurements are emitted as error records so the output keeps its place in
// the sequence. Only a source failure or an emit failure stops the run.
func (p *Processor) Run(src Source, emit func(Record) error) (Stats, error) {
	for {
		payload, err := src.Next()
		if err == io.EOF {
			return p.stats, nil
		}
		if err != nil {
			return p.stats, fmt.Errorf("frame source: %w", err)
		}

		m, err := p.Ingest(payload)
		switch {
		case err == nil && m == nil:
			continue // blank frame, state updated
		case errors.Is(err, frame.ErrMalformedFrame), errors.Is(err, frame.ErrUnknownType):
			log.Warnf("skipping frame: %v", err)
			continue
		case err != nil:
			log.Warnf("invalid measurement: %v", err)
			if emitErr := emit(Record{Err: err}); emitErr != nil {
				return p.stats, emitErr
			}
		default:
			if emitErr := emit(Record{Measurement: m}); emitErr != nil {
				return p.stats, emitErr
			}
		}
	}
}
