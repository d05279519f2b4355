package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event                string     `json:"event,omitempty"`
	Reason               string     `json:"reason,omitempty"`
	Enabled              bool       `json:"enabled"`
	Alerting             bool       `json:"alerting"`
	InWindow             bool       `json:"in_window"`
	Phase                string     `json:"phase"`
	HRSampleCount        int        `json:"hr_sample_count"`
	BackgroundHRInterval *uint16    `json:"background_hr_interval_seconds,omitempty"`
	UptimeSeconds        int64      `json:"uptime_seconds"`
	StartTime            string     `json:"start_time"`
	Timestamp            string     `json:"timestamp"`
	Bus                  BusStatus  `json:"bus"`
	Config               ConfigJSON `json:"config"`
}

// BusStatus reports companion bus connection state.
type BusStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	StorageDir   string `json:"storage_dir"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
	AlarmHours   uint8  `json:"alarm_hours"`
	AlarmMinutes uint8  `json:"alarm_minutes"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Enabled:              snap.Enabled,
		Alerting:             snap.Alerting,
		InWindow:             snap.InWindow,
		Phase:                snap.Phase.String(),
		HRSampleCount:        snap.HRSampleCount,
		BackgroundHRInterval: snap.BackgroundHRInterval,
		UptimeSeconds:        int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:            snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:            snap.Now.UTC().Format(time.RFC3339),
		Bus:                  BusStatus{Connected: snap.BusConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			StorageDir:   snap.Config.StorageDir,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			AlarmHours:   snap.Config.AlarmHours,
			AlarmMinutes: snap.Config.AlarmMinutes,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for a bus system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
