// Package simulator drives a real alarm.Controller and hrlog.Log against
// the fake clock/storage/timer adapters so a whole night's worth of heart
// rate samples can be replayed in well under a second, using the same
// fake-stack wiring as the controller's own test suite.
package simulator

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is the on-disk shape of a simulated night: a start time, the
// target alarm time, and a list of (offset, bpm) samples to feed in.
type Scenario struct {
	Start   time.Time
	Alarm   ScenarioAlarm
	Samples []ScenarioSample
}

// ScenarioAlarm is the target wake time, in the scenario's local clock.
type ScenarioAlarm struct {
	Hours   uint8 `yaml:"hours"`
	Minutes uint8 `yaml:"minutes"`
}

// ScenarioSample is one heart-rate reading, offset from Scenario.Start.
type ScenarioSample struct {
	Offset time.Duration `yaml:"offset"`
	BPM    uint8         `yaml:"bpm"`
}

// LoadScenario reads and validates a scenario file. Samples are sorted by
// offset: a hand-written fixture is allowed to list them out of order.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("simulator: read %s: %w", path, err)
	}

	var raw struct {
		Start   string           `yaml:"start"`
		Alarm   ScenarioAlarm    `yaml:"alarm"`
		Samples []ScenarioSample `yaml:"samples"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Scenario{}, fmt.Errorf("simulator: parse %s: %w", path, err)
	}

	start, err := time.Parse(time.RFC3339, raw.Start)
	if err != nil {
		return Scenario{}, fmt.Errorf("simulator: parse start time %q: %w", raw.Start, err)
	}

	if raw.Alarm.Hours > 23 {
		return Scenario{}, fmt.Errorf("simulator: alarm.hours must be 0-23, got %d", raw.Alarm.Hours)
	}
	if raw.Alarm.Minutes > 59 {
		return Scenario{}, fmt.Errorf("simulator: alarm.minutes must be 0-59, got %d", raw.Alarm.Minutes)
	}

	samples := raw.Samples
	sort.Slice(samples, func(i, j int) bool { return samples[i].Offset < samples[j].Offset })

	return Scenario{Start: start, Alarm: raw.Alarm, Samples: samples}, nil
}

// ExampleScenario returns a small built-in scenario (a flat resting
// period followed by a run of noisy, light-sleep-shaped samples) used by
// the CLI's "example" subcommand to seed a new fixture file.
func ExampleScenario() Scenario {
	samples := make([]ScenarioSample, 0, 40)
	offset := time.Duration(0)
	for i := 0; i < 20; i++ {
		bpm := uint8(58 + (i % 2))
		samples = append(samples, ScenarioSample{Offset: offset, BPM: bpm})
		offset += 31 * time.Second
	}
	for i := 0; i < 20; i++ {
		bpm := uint8(64 + (i%5)*2)
		samples = append(samples, ScenarioSample{Offset: offset, BPM: bpm})
		offset += 31 * time.Second
	}
	return Scenario{
		Start:   time.Date(2026, 8, 3, 22, 0, 0, 0, time.UTC),
		Alarm:   ScenarioAlarm{Hours: 6, Minutes: 30},
		Samples: samples,
	}
}

// Save writes the scenario to path as YAML, in the shape LoadScenario
// expects.
func (s Scenario) Save(path string) error {
	doc := struct {
		Start   string           `yaml:"start"`
		Alarm   ScenarioAlarm    `yaml:"alarm"`
		Samples []ScenarioSample `yaml:"samples"`
	}{
		Start:   s.Start.UTC().Format(time.RFC3339),
		Alarm:   s.Alarm,
		Samples: s.Samples,
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("simulator: marshal scenario: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("simulator: write %s: %w", path, err)
	}
	return nil
}
