package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of the settings file. It carries only the
// one key the alarm core touches; a real device's full settings store has
// many more, out of scope here.
type document struct {
	HeartRateBackgroundIntervalSeconds *uint16 `yaml:"heart_rate_background_interval_seconds,omitempty"`
}

// RealStore persists the background HR interval to a small YAML file,
// in the same load/decode-into-struct style used across this codebase's
// other YAML-backed config.
type RealStore struct {
	path string
}

// NewRealStore creates a RealStore backed by the file at path.
func NewRealStore(path string) *RealStore {
	return &RealStore{path: path}
}

func (s *RealStore) load() (document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return document{}, nil
		}
		return document{}, fmt.Errorf("settings: read %s: %w", s.path, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("settings: parse %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *RealStore) save(doc document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	return nil
}

func (s *RealStore) GetHeartRateBackgroundInterval() (*uint16, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.HeartRateBackgroundIntervalSeconds, nil
}

func (s *RealStore) SetHeartRateBackgroundInterval(v *uint16) error {
	doc, err := s.load()
	if err != nil {
		// Treat an unreadable prior file as empty; we're about to
		// overwrite it with the new value anyway.
		doc = document{}
	}
	doc.HeartRateBackgroundIntervalSeconds = v
	return s.save(doc)
}
