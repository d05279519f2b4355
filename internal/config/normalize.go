package config

import (
	"strings"

	"github.com/infinitime/smartalarm/internal/hrlog"
)

// Normalize applies post-validation normalization. It is allowed to
// mutate configuration. It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Storage.Dir = strings.TrimRight(cfg.Storage.Dir, "/")

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = Default().HTTPAddr
	}

	// An explicit override equal to the compiled-in default is the same
	// as "unset" — drop it back to the 0 "use default" value that
	// hrlog.NewWithCapacity already understands.
	if cfg.Storage.CapacityOverride == hrlog.Capacity {
		cfg.Storage.CapacityOverride = 0
	}

	cfg.Bus.Broker = strings.TrimSpace(cfg.Bus.Broker)
}
