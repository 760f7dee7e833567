// Package reader assembles 80-character SAMI2 hex payloads from a line
// oriented log. The instrument terminal wraps long records across physical
// lines, so a payload is accumulated until it reaches exactly the frame
// length; framing is this collaborator's job, not the decoder's.
package reader

import (
	"bufio"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"pco2proc/internal/frame"
)

// Marker starts every SAMI2 record line.
const Marker = '*'

type FrameReader struct {
	s     *bufio.Scanner
	carry string
	line  int
}

func New(r io.Reader) *FrameReader {
	return &FrameReader{s: bufio.NewScanner(r)}
}

// Next returns the next complete 80-character payload, io.EOF when the input
// is exhausted. Partial or over-length accumulations are discarded with a
// warning and never stall the stream.
func (fr *FrameReader) Next() (string, error) {
	for fr.s.Scan() {
		fr.line++
		text := strings.TrimSpace(fr.s.Text())
		if text == "" {
			continue
		}

		if text[0] == Marker {
			if fr.carry != "" {
				log.Warnf("line %d: discarding %d-char partial record", fr.line, len(fr.carry))
			}
			fr.carry = text[1:]
		} else {
			if fr.carry == "" {
				log.Warnf("line %d: ignoring line outside a record", fr.line)
				continue
			}
			fr.carry += text
		}

		if len(fr.carry) < frame.PayloadLen {
			continue
		}
		if len(fr.carry) > frame.PayloadLen {
			log.Warnf("line %d: record overran %d chars, discarding", fr.line, frame.PayloadLen)
			fr.carry = ""
			continue
		}
		payload := fr.carry
		fr.carry = ""
		return payload, nil
	}
	if err := fr.s.Err(); err != nil {
		return "", err
	}
	if fr.carry != "" {
		log.Warnf("discarding %d-char partial record at end of input", len(fr.carry))
		fr.carry = ""
	}
	return "", io.EOF
}
