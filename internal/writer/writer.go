// Package writer emits processed records as tab-separated text with the
// fixed column order expected by the downstream spreadsheet tooling.
package writer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"pco2proc/internal/pipeline"
)

// Columns is the fixed output column order.
var Columns = []string{
	"Time", "pCO2", "TempC", "BattV",
	"DarkRef", "DarkSig",
	"Ratio434", "Ref434", "Sig434",
	"Ratio620", "Ref620", "Sig620",
}

type RecordWriter struct {
	w           *bufio.Writer
	wroteHeader bool
}

func New(w io.Writer) *RecordWriter {
	return &RecordWriter{w: bufio.NewWriter(w)}
}

// Write appends one record. Invalid records become a comment line carrying
// the error so the output keeps one line per emitted record.
func (rw *RecordWriter) Write(rec pipeline.Record) error {
	if !rw.wroteHeader {
		if _, err := fmt.Fprintln(rw.w, strings.Join(Columns, "\t")); err != nil {
			return err
		}
		rw.wroteHeader = true
	}
	if rec.Err != nil {
		_, err := fmt.Fprintf(rw.w, "# invalid record: %v\n", rec.Err)
		return err
	}
	m := rec.Measurement
	_, err := fmt.Fprintf(rw.w, "%.6f\t%.2f\t%.4f\t%.2f\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
		m.Time, m.PCO2, m.TempC, m.BatteryV,
		m.DarkRef, m.DarkSig,
		m.Ratio434, m.Ref434, m.Sig434,
		m.Ratio620, m.Ref620, m.Sig620)
	return err
}

func (rw *RecordWriter) Flush() error {
	return rw.w.Flush()
}
