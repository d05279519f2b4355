package bus

import (
	"fmt"
	"time"
)

// Multi fans SmartAlarmFired out to every publisher in the slice — used by
// the daemon to notify both the on-watch UI task (LocalBus) and an
// optional companion-app bridge (MQTTPublisher) from one call site.
type Multi []Publisher

func (m Multi) PostSmartAlarmFired(at time.Time) error {
	var errs []error
	for _, p := range m {
		if err := p.PostSmartAlarmFired(at); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("bus: %d of %d publishers failed: %v", len(errs), len(m), errs)
	}
	return nil
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("bus: %d of %d close calls failed: %v", len(errs), len(m), errs)
	}
	return nil
}
