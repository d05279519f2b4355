// Package timer models a process-wide scheduled-timer facility, the Go
// stand-in for the wearable firmware's FreeRTOS timer service
// (xTimerCreate/xTimerChangePeriod/xTimerStart/xTimerStop). The alarm
// controller depends on the Service interface, never on time.Timer
// directly, so tests can substitute a virtual clock.
package timer

import "time"

// Handle identifies a timer created by a Service.
type Handle uint64

// Service creates and drives timers. A timer is created once (dormant) and
// then started/stopped repeatedly across an owner's lifetime, matching
// xTimerCreate's create-once-reuse-many pattern.
type Service interface {
	// NewOneShot creates a dormant one-shot timer. cb fires once per Start
	// call, after the delay passed to Start.
	NewOneShot(name string, cb func()) Handle

	// NewPeriodic creates a dormant periodic timer with a fixed period.
	// Start ignores its delay argument for periodic timers: the first
	// (and every subsequent) fire happens `period` after Start, matching
	// xTimerStart(timer, 0) on a timer whose period was fixed at creation.
	NewPeriodic(name string, period time.Duration, cb func()) Handle

	// Start (re)arms h. For a one-shot timer it fires once after delay.
	// Calling Start on an already-running timer reschedules it.
	Start(h Handle, delay time.Duration)

	// Stop disarms h. Safe to call on an already-stopped timer.
	Stop(h Handle)
}
