//go:build !linux

package motor

import "errors"

// RealDriver is not available on non-Linux build targets.
type RealDriver struct{}

// NewRealDriver returns an error on non-Linux platforms.
func NewRealDriver(pin int) (*RealDriver, error) {
	return nil, errors.New("motor: not supported on this platform (requires Linux)")
}

func (d *RealDriver) Start() error { return errors.New("motor: not supported") }
func (d *RealDriver) Stop() error  { return errors.New("motor: not supported") }
func (d *RealDriver) Close() error { return nil }
