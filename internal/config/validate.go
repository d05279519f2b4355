package config

import (
	"fmt"

	"github.com/infinitime/smartalarm/internal/hrlog"
)

// Validate checks configuration correctness. It performs declarative
// validation only. It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Storage.Dir == "" {
		return fmt.Errorf("storage.dir must not be empty")
	}
	if cfg.Storage.CapacityOverride < 0 {
		return fmt.Errorf("storage.capacity_override must not be negative, got %d", cfg.Storage.CapacityOverride)
	}
	if cfg.Storage.CapacityOverride > hrlog.Capacity {
		return fmt.Errorf("storage.capacity_override %d exceeds compiled-in capacity %d", cfg.Storage.CapacityOverride, hrlog.Capacity)
	}
	if cfg.Alarm.Hours > 23 {
		return fmt.Errorf("alarm.hours must be 0-23, got %d", cfg.Alarm.Hours)
	}
	if cfg.Alarm.Minutes > 59 {
		return fmt.Errorf("alarm.minutes must be 0-59, got %d", cfg.Alarm.Minutes)
	}
	return nil
}
