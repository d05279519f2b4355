//go:build linux

package sensor

import (
	"fmt"
	"log"

	"github.com/warthog618/go-gpiocdev"
)

// DefaultDataReadyPin is the BCM pin the HR sensor's data-ready interrupt
// line is wired to.
const DefaultDataReadyPin = 22

// ReadBPM is supplied by the caller and performs the actual register read
// over whatever bus the sensor is attached to (I2C/SPI), producing one BPM
// value per data-ready edge.
type ReadBPM func() (uint8, error)

// RealSource watches the sensor's data-ready GPIO line and calls readBPM
// on each rising edge: chip-open/line-request/defer-close, for an
// edge-triggered input rather than a polled one.
type RealSource struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	ch   chan uint8
}

// NewRealSource opens the data-ready line on pin and starts watching it.
func NewRealSource(pin int, readBPM ReadBPM) (*RealSource, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("sensor: open gpio chip: %w", err)
	}

	s := &RealSource{chip: chip, ch: make(chan uint8, 8)}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			bpm, err := readBPM()
			if err != nil {
				log.Printf("sensor: read bpm: %v", err)
				return
			}
			s.ch <- bpm
		}))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("sensor: request data-ready pin %d: %w", pin, err)
	}
	s.line = line

	return s, nil
}

func (s *RealSource) Readings() <-chan uint8 {
	return s.ch
}

func (s *RealSource) Close() error {
	var errs []error
	if s.line != nil {
		if err := s.line.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	close(s.ch)
	if len(errs) > 0 {
		return fmt.Errorf("sensor: close errors: %v", errs)
	}
	return nil
}
