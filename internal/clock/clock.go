// Package clock wraps wall-clock time behind an interface so the alarm
// controller and HR log can be driven by a virtual clock in tests,
// rather than depending on time.Now directly.
package clock

import "time"

// Source supplies the current wall-clock time.
type Source interface {
	// Now returns the current local time. DST resolution is delegated to
	// the Go runtime's tzdata the way the original defers to the libc
	// clock library — never re-implemented here.
	Now() time.Time
}
