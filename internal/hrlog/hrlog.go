// Package hrlog implements the bounded, persistent heart-rate sample ring
// buffer: a fixed-capacity ring of (timestamp, bpm) records backed by
// storage.FS, throttled on write, with chronological "most recent N"
// reads that handle wrap-around.
//
// Single-writer (sensor feed), single-reader (controller) contract: Log
// does not lock internally. Callers must serialize AddMeasurement against
// RecentEntries/EntryCount themselves.
package hrlog

import (
	"encoding/binary"
	"time"

	"github.com/infinitime/smartalarm/internal/clock"
	"github.com/infinitime/smartalarm/internal/storage"
)

// Capacity is the compile-time ring size (480 in the original firmware).
const Capacity = 480

// Version is the current on-disk header version.
const Version uint8 = 1

// throttle is the minimum spacing between accepted samples.
const throttle = 30 * time.Second

const (
	headerSize = 1 + 2 + 2 // version + writeIndex + count
	entrySize  = 4 + 1     // timestamp + bpm
)

// Entry is a single (timestamp, bpm) sample.
type Entry struct {
	Timestamp uint32
	BPM       uint8
}

type header struct {
	Version    uint8
	WriteIndex uint16
	Count      uint16
}

func defaultHeader() header {
	return header{Version: Version}
}

// Log is the bounded, persistent HR sample ring.
type Log struct {
	fs   storage.FS
	clk  clock.Source
	dir  string
	path string

	capacity uint16

	hdr              header
	lastLogTimestamp uint32
}

// New creates a Log backed by fs, rooted at dir (the header/entries file
// lives at dir+"/hrlog.dat"), with the compiled-in Capacity. Call Init
// before use.
func New(fs storage.FS, clk clock.Source, dir string) *Log {
	return NewWithCapacity(fs, clk, dir, Capacity)
}

// NewWithCapacity is New with an overridden ring capacity, for test builds
// that need a small ring to exercise wrap-around quickly without writing
// hundreds of entries. A capacity of 0, or one above Capacity, falls back
// to Capacity.
func NewWithCapacity(fs storage.FS, clk clock.Source, dir string, capacity uint16) *Log {
	if capacity == 0 || capacity > Capacity {
		capacity = Capacity
	}
	return &Log{
		fs:       fs,
		clk:      clk,
		dir:      dir,
		path:     dir + "/hrlog.dat",
		capacity: capacity,
		hdr:      defaultHeader(),
	}
}

// Init loads the persisted header. A missing, unreadable, or corrupt
// header (wrong version, writeIndex >= Capacity, or count > Capacity)
// leaves the log at its empty defaults — Init never fails to the caller.
func (l *Log) Init() {
	data, err := l.fs.ReadFileAt(l.path, 0, headerSize)
	if err != nil {
		return
	}
	h, ok := decodeHeader(data)
	if !ok {
		return
	}
	if h.Version != Version || h.WriteIndex >= l.capacity || h.Count > l.capacity {
		return
	}
	l.hdr = h
}

// AddMeasurement appends bpm at the current clock time, subject to the
// zero-value and 30-second throttle rules. lastLogTimestamp lives only in
// RAM: it is intentionally not persisted, so the first sample after any
// reboot is always accepted.
func (l *Log) AddMeasurement(bpm uint8) {
	if bpm == 0 {
		return
	}

	now := uint32(l.clk.Now().Unix())
	if l.lastLogTimestamp != 0 && now-l.lastLogTimestamp < uint32(throttle.Seconds()) {
		return
	}
	// The throttle clock advances whether or not the write below
	// succeeds — matching the original, which sets lastLogTimestamp
	// before attempting the write.
	l.lastLogTimestamp = now

	entry := Entry{Timestamp: now, BPM: bpm}
	if err := l.writeEntry(l.hdr.WriteIndex, entry); err != nil {
		// Lose this one sample; header (and therefore ring state)
		// stays untouched, so it is never corrupted by a failed write.
		return
	}

	l.hdr.WriteIndex = (l.hdr.WriteIndex + 1) % l.capacity
	if l.hdr.Count < l.capacity {
		l.hdr.Count++
	}
	l.saveHeader()
}

// RecentEntries returns up to min(max, EntryCount()) entries in
// chronological order (oldest first) — the toRead newest samples. Any
// filesystem failure during the read returns zero entries rather than a
// partial or corrupt result.
func (l *Log) RecentEntries(max int) []Entry {
	if max <= 0 || l.hdr.Count == 0 {
		return nil
	}

	toRead := max
	if toRead > int(l.hdr.Count) {
		toRead = int(l.hdr.Count)
	}

	var start int
	if int(l.hdr.Count) < int(l.capacity) {
		start = int(l.hdr.Count) - toRead
	} else {
		start = (int(l.hdr.WriteIndex) + int(l.capacity) - toRead) % int(l.capacity)
	}

	entries := make([]Entry, toRead)
	for i := 0; i < toRead; i++ {
		idx := (start + i) % int(l.capacity)
		offset := int64(headerSize) + int64(idx)*int64(entrySize)
		data, err := l.fs.ReadFileAt(l.path, offset, entrySize)
		if err != nil {
			return nil
		}
		entries[i] = decodeEntry(data)
	}
	return entries
}

// EntryCount returns the number of valid entries currently stored.
func (l *Log) EntryCount() int {
	return int(l.hdr.Count)
}

// Clear resets the log to empty, both in RAM and on disk, and deletes the
// backing file.
func (l *Log) Clear() {
	l.hdr = defaultHeader()
	l.lastLogTimestamp = 0
	l.saveHeader()
	l.fs.Remove(l.path)
}

func (l *Log) writeEntry(idx uint16, e Entry) error {
	l.fs.MkdirAll(l.dir)
	offset := int64(headerSize) + int64(idx)*int64(entrySize)
	return l.fs.WriteFileAt(l.path, offset, encodeEntry(e))
}

func (l *Log) saveHeader() error {
	l.fs.MkdirAll(l.dir)
	return l.fs.WriteFileAt(l.path, 0, encodeHeader(l.hdr))
}

func encodeHeader(h header) []byte {
	buf := make([]byte, headerSize)
	buf[0] = h.Version
	binary.LittleEndian.PutUint16(buf[1:3], h.WriteIndex)
	binary.LittleEndian.PutUint16(buf[3:5], h.Count)
	return buf
}

func decodeHeader(buf []byte) (header, bool) {
	if len(buf) < headerSize {
		return header{}, false
	}
	return header{
		Version:    buf[0],
		WriteIndex: binary.LittleEndian.Uint16(buf[1:3]),
		Count:      binary.LittleEndian.Uint16(buf[3:5]),
	}, true
}

func encodeEntry(e Entry) []byte {
	buf := make([]byte, entrySize)
	binary.LittleEndian.PutUint32(buf[0:4], e.Timestamp)
	buf[4] = e.BPM
	return buf
}

func decodeEntry(buf []byte) Entry {
	return Entry{
		Timestamp: binary.LittleEndian.Uint32(buf[0:4]),
		BPM:       buf[4],
	}
}
