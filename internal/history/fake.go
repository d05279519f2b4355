package history

import "time"

// WakeRecord is one recorded call, for test assertions.
type WakeRecord struct {
	At    time.Time
	Phase string
	Early bool
}

// FakeRecorder records every call for test assertions.
type FakeRecorder struct {
	Records []WakeRecord
	Err     error
}

// NewFakeRecorder creates an empty FakeRecorder.
func NewFakeRecorder() *FakeRecorder {
	return &FakeRecorder{}
}

func (f *FakeRecorder) RecordWake(at time.Time, phase string, early bool) error {
	if f.Err != nil {
		return f.Err
	}
	f.Records = append(f.Records, WakeRecord{At: at, Phase: phase, Early: early})
	return nil
}
