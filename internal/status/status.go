// Package status provides a thread-safe status tracker for the smartalarm
// daemon. It is read by the HTTP diagnostics server and the daemon's
// heartbeat logging.
package status

import (
	"sync"
	"time"

	"github.com/infinitime/smartalarm/internal/alarm"
)

// Config contains daemon configuration for display.
type Config struct {
	StorageDir   string
	Broker       string
	HTTPAddr     string
	AlarmHours   uint8
	AlarmMinutes uint8
}

// Snapshot is a point-in-time view of daemon state. It is a value type —
// safe to use after the lock is released.
type Snapshot struct {
	Enabled               bool
	Alerting              bool
	InWindow              bool
	Phase                 alarm.SleepPhase
	HRSampleCount         int
	BackgroundHRInterval  *uint16
	BusConnected          bool
	StartTime             time.Time
	Now                   time.Time
	Config                Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the alarm state fields. Called from the daemon's select loop
// on every tick.
func (t *Tracker) Update(enabled, alerting, inWindow bool, phase alarm.SleepPhase, hrSampleCount int) {
	t.mu.Lock()
	t.snap.Enabled = enabled
	t.snap.Alerting = alerting
	t.snap.InWindow = inWindow
	t.snap.Phase = phase
	t.snap.HRSampleCount = hrSampleCount
	t.mu.Unlock()
}

// SetBusConnected sets the companion bus connection status.
func (t *Tracker) SetBusConnected(connected bool) {
	t.mu.Lock()
	t.snap.BusConnected = connected
	t.mu.Unlock()
}

// SetBackgroundHRInterval sets the current background HR sampling interval,
// nil meaning "absent/default."
func (t *Tracker) SetBackgroundHRInterval(v *uint16) {
	t.mu.Lock()
	t.snap.BackgroundHRInterval = v
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state. The Now field
// is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
