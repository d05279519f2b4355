package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Storage.Dir == "" {
		t.Error("expected a non-empty default storage dir")
	}
	if cfg.Alarm.Hours != 7 || cfg.Alarm.Minutes != 0 {
		t.Errorf("expected default alarm 07:00, got %02d:%02d", cfg.Alarm.Hours, cfg.Alarm.Minutes)
	}
	if cfg.HTTPAddr == "" {
		t.Error("expected a non-empty default HTTP address")
	}
}

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected Default() for a missing file, got %+v", cfg)
	}
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected Default() for an empty path, got %+v", cfg)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smartalarm.yaml")
	body := `
storage:
  dir: /data/smartalarm
bus:
  broker: tcp://192.168.1.50:1883
alarm:
  hours: 6
  minutes: 45
  enabled: true
http_addr: ":9090"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Dir != "/data/smartalarm" {
		t.Errorf("Storage.Dir: got %q", cfg.Storage.Dir)
	}
	if cfg.Bus.Broker != "tcp://192.168.1.50:1883" {
		t.Errorf("Bus.Broker: got %q", cfg.Bus.Broker)
	}
	if cfg.Alarm.Hours != 6 || cfg.Alarm.Minutes != 45 || !cfg.Alarm.Enabled {
		t.Errorf("Alarm: got %+v", cfg.Alarm)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr: got %q", cfg.HTTPAddr)
	}
}

func TestLoad_MalformedYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("storage: [this is not a mapping"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestValidate_DefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsEmptyStorageDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dir = ""
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected an error for empty storage.dir")
	}
}

func TestValidate_RejectsNegativeCapacityOverride(t *testing.T) {
	cfg := Default()
	cfg.Storage.CapacityOverride = -1
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected an error for negative capacity_override")
	}
}

func TestValidate_RejectsCapacityOverrideAboveCompiledLimit(t *testing.T) {
	cfg := Default()
	cfg.Storage.CapacityOverride = 10000
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected an error for an out-of-range capacity_override")
	}
}

func TestValidate_RejectsOutOfRangeAlarmTime(t *testing.T) {
	cfg := Default()
	cfg.Alarm.Hours = 24
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected an error for alarm.hours=24")
	}

	cfg = Default()
	cfg.Alarm.Minutes = 60
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected an error for alarm.minutes=60")
	}
}

func TestNormalize_TrimsTrailingSlashFromStorageDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dir = "/data/smartalarm/"
	Normalize(&cfg)
	if cfg.Storage.Dir != "/data/smartalarm" {
		t.Errorf("Storage.Dir: got %q", cfg.Storage.Dir)
	}
}

func TestNormalize_FillsEmptyHTTPAddr(t *testing.T) {
	cfg := Default()
	cfg.HTTPAddr = ""
	Normalize(&cfg)
	if cfg.HTTPAddr != Default().HTTPAddr {
		t.Errorf("HTTPAddr: got %q, want %q", cfg.HTTPAddr, Default().HTTPAddr)
	}
}

func TestNormalize_DropsCapacityOverrideEqualToDefault(t *testing.T) {
	cfg := Default()
	cfg.Storage.CapacityOverride = 480
	Normalize(&cfg)
	if cfg.Storage.CapacityOverride != 0 {
		t.Errorf("CapacityOverride: got %d, want 0", cfg.Storage.CapacityOverride)
	}
}

func TestNormalize_TrimsBrokerWhitespace(t *testing.T) {
	cfg := Default()
	cfg.Bus.Broker = "  tcp://192.168.1.50:1883  "
	Normalize(&cfg)
	if cfg.Bus.Broker != "tcp://192.168.1.50:1883" {
		t.Errorf("Bus.Broker: got %q", cfg.Bus.Broker)
	}
}

func TestNormalize_NilConfigIsNoop(t *testing.T) {
	Normalize(nil)
}
