// Package bus abstracts the system message bus that delivers the one-shot
// "alarm went off" notification. The watch's own UI task is out of
// scope; this package only covers the boundary the alarm controller
// posts across.
package bus

import "time"

// Publisher posts the single discrete SmartAlarmFired message.
type Publisher interface {
	PostSmartAlarmFired(at time.Time) error
	Close() error
}

// ConnectionStatus reports whether a bus link is active, used by the
// daemon to feed the diagnostics status tracker.
type ConnectionStatus interface {
	IsConnected() bool
}
