package timer

import (
	"time"

	"github.com/infinitime/smartalarm/internal/clock"
)

type fakeEntry struct {
	periodic bool
	period   time.Duration
	cb       func()
	active   bool
	fireAt   time.Time
}

// FakeService is a virtual timer service driven by a shared clock.Fake.
// Advance moves the clock forward and fires every timer whose deadline
// falls within the advanced interval, in deadline order, exactly the way
// a real scheduler would — letting controller tests replay a whole night
// in one call instead of sleeping.
type FakeService struct {
	clk     *clock.Fake
	entries map[Handle]*fakeEntry
	nextID  uint64
}

// NewFakeService creates a FakeService driven by clk.
func NewFakeService(clk *clock.Fake) *FakeService {
	return &FakeService{clk: clk, entries: make(map[Handle]*fakeEntry)}
}

func (s *FakeService) newHandle() Handle {
	s.nextID++
	return Handle(s.nextID)
}

func (s *FakeService) NewOneShot(name string, cb func()) Handle {
	h := s.newHandle()
	s.entries[h] = &fakeEntry{cb: cb}
	return h
}

func (s *FakeService) NewPeriodic(name string, period time.Duration, cb func()) Handle {
	h := s.newHandle()
	s.entries[h] = &fakeEntry{periodic: true, period: period, cb: cb}
	return h
}

func (s *FakeService) Start(h Handle, delay time.Duration) {
	e, ok := s.entries[h]
	if !ok {
		return
	}
	if e.periodic {
		e.fireAt = s.clk.Now().Add(e.period)
	} else {
		e.fireAt = s.clk.Now().Add(delay)
	}
	e.active = true
}

func (s *FakeService) Stop(h Handle) {
	e, ok := s.entries[h]
	if !ok {
		return
	}
	e.active = false
}

// Advance moves the clock forward by d, firing every due timer along the
// way (earliest deadline first) before leaving the clock at exactly
// now+d.
func (s *FakeService) Advance(d time.Duration) {
	end := s.clk.Now().Add(d)
	for {
		var due *fakeEntry
		for _, e := range s.entries {
			if !e.active || e.fireAt.After(end) {
				continue
			}
			if due == nil || e.fireAt.Before(due.fireAt) {
				due = e
			}
		}
		if due == nil {
			break
		}
		s.clk.Set(due.fireAt)
		if due.periodic {
			due.fireAt = due.fireAt.Add(due.period)
		} else {
			due.active = false
		}
		due.cb()
	}
	s.clk.Set(end)
}
