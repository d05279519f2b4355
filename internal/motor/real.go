//go:build linux

package motor

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// DefaultPin is the BCM pin driving the vibration motor's control
// transistor.
const DefaultPin = 24

// RealDriver drives the motor through a GPIO output line: chip open,
// line request, defer close — an output line instead of an input.
type RealDriver struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealDriver opens the motor control line on pin, initially off.
func NewRealDriver(pin int) (*RealDriver, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("motor: open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("motor: request pin %d: %w", pin, err)
	}

	return &RealDriver{chip: chip, line: line}, nil
}

func (d *RealDriver) Start() error {
	if err := d.line.SetValue(1); err != nil {
		return fmt.Errorf("motor: start: %w", err)
	}
	return nil
}

func (d *RealDriver) Stop() error {
	if err := d.line.SetValue(0); err != nil {
		return fmt.Errorf("motor: stop: %w", err)
	}
	return nil
}

// Close releases the GPIO line, leaving the motor off.
func (d *RealDriver) Close() error {
	_ = d.Stop()
	var errs []error
	if d.line != nil {
		if err := d.line.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("motor: close errors: %v", errs)
	}
	return nil
}
