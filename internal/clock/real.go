package clock

import "time"

// Real is the Source backed by the host's wall clock.
type Real struct{}

// NewReal creates a Real clock source.
func NewReal() Real {
	return Real{}
}

func (Real) Now() time.Time {
	return time.Now().In(time.Local)
}
