// Package config loads the smartalarm daemon's YAML configuration file:
// storage location, companion bus broker, default alarm time, and the HTTP
// diagnostics address.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the daemon's on-disk configuration shape.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Bus     BusConfig     `yaml:"bus"`
	Alarm   AlarmConfig   `yaml:"alarm"`
	HTTPAddr string       `yaml:"http_addr"`
}

// StorageConfig controls where persistent files (HR log, alarm settings,
// settings store) live.
type StorageConfig struct {
	Dir string `yaml:"dir"`

	// CapacityOverride replaces hrlog.Capacity for test builds that need a
	// small ring to exercise wrap-around quickly. Zero means "use the
	// compiled-in default."
	CapacityOverride int `yaml:"capacity_override,omitempty"`
}

// BusConfig controls the companion-bridge MQTT publisher. Broker empty
// disables it — the daemon then runs with the in-process local bus only.
type BusConfig struct {
	Broker string `yaml:"broker"`
}

// AlarmConfig is the default alarm setting used the first time the daemon
// runs, before any persisted settings record exists.
type AlarmConfig struct {
	Hours   uint8 `yaml:"hours"`
	Minutes uint8 `yaml:"minutes"`
	Enabled bool  `yaml:"enabled"`
}

// Default returns the built-in configuration used when no file is present.
func Default() Config {
	return Config{
		Storage:  StorageConfig{Dir: "/var/lib/smartalarm"},
		Alarm:    AlarmConfig{Hours: 7, Minutes: 0},
		HTTPAddr: ":8080",
	}
}

// Load reads and parses the YAML file at path over Default(): fields the
// file does not set keep their default values, while a field the file sets
// explicitly (even to a zero value) replaces the default. A missing file is
// not an error: Load returns Default() unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}
