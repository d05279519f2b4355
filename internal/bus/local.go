package bus

import "time"

// LocalBus delivers SmartAlarmFired to the watch's own UI task over an
// in-process channel — the faithful rendering of "the system task bus" as
// the single-process primitive it is on the actual firmware. No
// third-party dependency fits an in-process queue better than a plain Go
// channel (see DESIGN.md).
type LocalBus struct {
	ch chan time.Time
}

// NewLocalBus creates a LocalBus with the given channel buffer depth.
// Depth 1 is enough for a one-shot alarm; a slow consumer simply sees the
// notification a tick later rather than blocking the controller.
func NewLocalBus(depth int) *LocalBus {
	return &LocalBus{ch: make(chan time.Time, depth)}
}

// C returns the channel the UI task should receive SmartAlarmFired on.
func (b *LocalBus) C() <-chan time.Time {
	return b.ch
}

func (b *LocalBus) PostSmartAlarmFired(at time.Time) error {
	select {
	case b.ch <- at:
	default:
		// Buffer full: the consumer is behind. Drop rather than block —
		// a timer callback must never suspend.
	}
	return nil
}

func (b *LocalBus) Close() error {
	close(b.ch)
	return nil
}
