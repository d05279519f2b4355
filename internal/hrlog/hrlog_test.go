package hrlog

import (
	"testing"
	"time"

	"github.com/infinitime/smartalarm/internal/clock"
	"github.com/infinitime/smartalarm/internal/storage"
)

func newTestLog(start time.Time) (*Log, *clock.Fake, *storage.FakeFS) {
	fs := storage.NewFakeFS()
	clk := clock.NewFake(start)
	l := New(fs, clk, "/.system")
	l.Init()
	return l, clk, fs
}

func TestInitEmptyIsDefaults(t *testing.T) {
	l, _, _ := newTestLog(time.Unix(1000, 0))
	if l.EntryCount() != 0 {
		t.Fatalf("expected empty log, got count %d", l.EntryCount())
	}
	if got := l.RecentEntries(10); got != nil {
		t.Fatalf("expected nil entries, got %v", got)
	}
}

func TestAddMeasurementIgnoresZero(t *testing.T) {
	l, _, _ := newTestLog(time.Unix(1000, 0))
	l.AddMeasurement(0)
	if l.EntryCount() != 0 {
		t.Fatalf("expected bpm=0 to be ignored, got count %d", l.EntryCount())
	}
}

func TestThrottleDropsSamplesWithin30Seconds(t *testing.T) {
	l, clk, _ := newTestLog(time.Unix(1000, 0))

	l.AddMeasurement(60)
	if l.EntryCount() != 1 {
		t.Fatalf("first sample should be accepted, got count %d", l.EntryCount())
	}

	clk.Advance(10 * time.Second)
	l.AddMeasurement(61)
	if l.EntryCount() != 1 {
		t.Fatalf("sample within 30s should be throttled, got count %d", l.EntryCount())
	}

	clk.Advance(20 * time.Second) // total 30s since first accepted sample
	l.AddMeasurement(62)
	if l.EntryCount() != 2 {
		t.Fatalf("sample at exactly 30s should be accepted, got count %d", l.EntryCount())
	}
}

func TestFirstSampleAfterRestartIsAlwaysAccepted(t *testing.T) {
	// lastLogTimestamp is RAM-only: a freshly constructed Log (simulating
	// a reboot) must accept its very first sample regardless of how
	// recently the persisted log was last written.
	fs := storage.NewFakeFS()
	clk := clock.NewFake(time.Unix(1000, 0))
	l1 := New(fs, clk, "/.system")
	l1.Init()
	l1.AddMeasurement(60)

	clk.Advance(1 * time.Second) // well within the 30s throttle window

	l2 := New(fs, clk, "/.system")
	l2.Init()
	l2.AddMeasurement(61)
	if l2.EntryCount() != 2 {
		t.Fatalf("expected 2 entries across simulated restart, got %d", l2.EntryCount())
	}
}

func TestRecentEntriesChronologicalBeforeWrap(t *testing.T) {
	l, clk, _ := newTestLog(time.Unix(0, 0))

	for i := 0; i < 5; i++ {
		l.AddMeasurement(uint8(60 + i))
		clk.Advance(30 * time.Second)
	}

	entries := l.RecentEntries(10)
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.BPM != uint8(60+i) {
			t.Errorf("entry %d: expected bpm %d, got %d", i, 60+i, e.BPM)
		}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp < entries[i-1].Timestamp {
			t.Fatalf("entries not chronological at index %d", i)
		}
	}
}

func TestRecentEntriesRespectsMax(t *testing.T) {
	l, clk, _ := newTestLog(time.Unix(0, 0))
	for i := 0; i < 5; i++ {
		l.AddMeasurement(uint8(60 + i))
		clk.Advance(30 * time.Second)
	}

	entries := l.RecentEntries(2)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Should be the 2 newest, chronologically ordered.
	if entries[0].BPM != 63 || entries[1].BPM != 64 {
		t.Fatalf("expected newest 2 samples [63,64], got [%d,%d]", entries[0].BPM, entries[1].BPM)
	}
}

func TestWrapAroundKeepsNewestCapacitySamples(t *testing.T) {
	l, clk, _ := newTestLog(time.Unix(0, 0))

	total := Capacity + 1
	for i := 0; i < total; i++ {
		l.AddMeasurement(1) // value irrelevant; timestamps carry the order
		clk.Advance(30 * time.Second)
	}

	if l.EntryCount() != Capacity {
		t.Fatalf("expected count==Capacity after wrap, got %d", l.EntryCount())
	}

	entries := l.RecentEntries(Capacity)
	if len(entries) != Capacity {
		t.Fatalf("expected %d entries, got %d", Capacity, len(entries))
	}

	// Sample i (0-indexed) was written at timestamp i*30; the oldest
	// surviving sample after (Capacity+1) writes is sample index 1.
	wantFirst := uint32(30)
	if entries[0].Timestamp != wantFirst {
		t.Fatalf("expected first surviving timestamp %d, got %d", wantFirst, entries[0].Timestamp)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp != entries[i-1].Timestamp+30 {
			t.Fatalf("entries not contiguous at index %d", i)
		}
	}
}

func TestClearResetsAndDeletesFile(t *testing.T) {
	l, clk, fs := newTestLog(time.Unix(0, 0))
	l.AddMeasurement(60)
	clk.Advance(30 * time.Second)
	l.AddMeasurement(61)

	l.Clear()

	if l.EntryCount() != 0 {
		t.Fatalf("expected count 0 after Clear, got %d", l.EntryCount())
	}
	if l.RecentEntries(10) != nil {
		t.Fatal("expected no entries after Clear")
	}
	if fs.Exists("/.system/hrlog.dat") {
		t.Fatal("expected Clear to delete the backing file")
	}
	// AddMeasurement after Clear starts a fresh ring at slot 0.
	l.AddMeasurement(70)
	entries := l.RecentEntries(1)
	if len(entries) != 1 || entries[0].BPM != 70 {
		t.Fatalf("expected single fresh entry with bpm 70, got %v", entries)
	}
	_ = fs
}

func TestCorruptHeaderRecoversToEmpty(t *testing.T) {
	fs := storage.NewFakeFS()
	clk := clock.NewFake(time.Unix(0, 0))

	// Write a header with an out-of-range writeIndex directly, simulating
	// on-disk corruption.
	bad := header{Version: Version, WriteIndex: 9999, Count: 10}
	if err := fs.WriteFileAt("/.system/hrlog.dat", 0, encodeHeader(bad)); err != nil {
		t.Fatalf("setup write failed: %v", err)
	}

	l := New(fs, clk, "/.system")
	l.Init()
	if l.EntryCount() != 0 {
		t.Fatalf("expected corrupt header to reset to empty, got count %d", l.EntryCount())
	}

	l.AddMeasurement(50)
	entries := l.RecentEntries(1)
	if len(entries) != 1 || entries[0].BPM != 50 {
		t.Fatalf("expected first write after corruption recovery to succeed, got %v", entries)
	}
}

func TestPersistThenLoadRoundTrip(t *testing.T) {
	fs := storage.NewFakeFS()
	clk := clock.NewFake(time.Unix(100, 0))

	l1 := New(fs, clk, "/.system")
	l1.Init()
	for i := 0; i < 3; i++ {
		l1.AddMeasurement(uint8(70 + i))
		clk.Advance(30 * time.Second)
	}

	l2 := New(fs, clk, "/.system")
	l2.Init()
	got := l2.RecentEntries(3)
	want := l1.RecentEntries(3)
	if len(got) != len(want) {
		t.Fatalf("round-trip entry count mismatch: %d vs %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestFailedWriteLosesSampleWithoutCorruptingState(t *testing.T) {
	fs := storage.NewFakeFS()
	clk := clock.NewFake(time.Unix(0, 0))
	l := New(fs, clk, "/.system")
	l.Init()

	fs.WriteFileAtErr = map[string]error{"/.system/hrlog.dat": errWriteFailed}
	l.AddMeasurement(60)
	if l.EntryCount() != 0 {
		t.Fatalf("expected failed write to leave count at 0, got %d", l.EntryCount())
	}

	delete(fs.WriteFileAtErr, "/.system/hrlog.dat")
	l.AddMeasurement(61)
	if l.EntryCount() != 1 {
		t.Fatalf("expected subsequent successful write to land in slot 0, got count %d", l.EntryCount())
	}
	entries := l.RecentEntries(1)
	if len(entries) != 1 || entries[0].BPM != 61 {
		t.Fatalf("expected recovered write to contain bpm 61, got %v", entries)
	}
}

func TestNewWithCapacityOverridesRingSize(t *testing.T) {
	fs := storage.NewFakeFS()
	clk := clock.NewFake(time.Unix(0, 0))
	l := NewWithCapacity(fs, clk, "/.system", 4)
	l.Init()

	for i := 0; i < 5; i++ {
		l.AddMeasurement(uint8(60 + i))
		clk.Advance(30 * time.Second)
	}

	if l.EntryCount() != 4 {
		t.Fatalf("expected count capped at overridden capacity 4, got %d", l.EntryCount())
	}

	entries := l.RecentEntries(4)
	if len(entries) != 4 || entries[0].BPM != 61 || entries[3].BPM != 64 {
		t.Fatalf("expected newest 4 samples [61..64] after wrap on a 4-slot ring, got %v", entries)
	}
}

func TestNewWithCapacityZeroFallsBackToDefault(t *testing.T) {
	fs := storage.NewFakeFS()
	clk := clock.NewFake(time.Unix(0, 0))
	l := NewWithCapacity(fs, clk, "/.system", 0)
	if l.capacity != Capacity {
		t.Fatalf("expected capacity 0 to fall back to default %d, got %d", Capacity, l.capacity)
	}
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

var errWriteFailed = simpleErr("simulated write failure")
