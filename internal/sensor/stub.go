//go:build !linux

package sensor

import "errors"

// RealSource is not available on non-Linux build targets.
type RealSource struct{}

// ReadBPM is supplied by the caller on Linux builds; declared here too so
// callers can reference the type regardless of GOOS.
type ReadBPM func() (uint8, error)

// NewRealSource returns an error on non-Linux platforms.
func NewRealSource(pin int, readBPM ReadBPM) (*RealSource, error) {
	return nil, errors.New("sensor: not supported on this platform (requires Linux)")
}

func (s *RealSource) Readings() <-chan uint8 {
	return nil
}

func (s *RealSource) Close() error {
	return nil
}
