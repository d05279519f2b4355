package timer

import (
	"sync"
	"time"
)

type entry struct {
	name     string
	periodic bool
	period   time.Duration
	cb       func()

	oneShot *time.Timer
	ticker  *time.Ticker
	stopCh  chan struct{}
}

// RealService drives timers with the host runtime's time.Timer/time.Ticker.
// All callbacks are funneled through a single dispatcher goroutine so they
// never run concurrently with each other, approximating single-task
// serialization even though the underlying timers fire on their own
// goroutines.
type RealService struct {
	mu      sync.Mutex
	entries map[Handle]*entry
	nextID  uint64

	events chan func()
	done   chan struct{}
}

// NewRealService creates a RealService and starts its dispatcher goroutine.
// Close stops the dispatcher.
func NewRealService() *RealService {
	s := &RealService{
		entries: make(map[Handle]*entry),
		events:  make(chan func(), 16),
		done:    make(chan struct{}),
	}
	go s.dispatch()
	return s
}

func (s *RealService) dispatch() {
	for {
		select {
		case cb := <-s.events:
			cb()
		case <-s.done:
			return
		}
	}
}

// Close stops the dispatcher goroutine. Pending timers are not explicitly
// canceled; callers should Stop each handle first.
func (s *RealService) Close() {
	close(s.done)
}

func (s *RealService) newHandle() Handle {
	s.nextID++
	return Handle(s.nextID)
}

func (s *RealService) NewOneShot(name string, cb func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.newHandle()
	s.entries[h] = &entry{name: name, cb: cb}
	return h
}

func (s *RealService) NewPeriodic(name string, period time.Duration, cb func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.newHandle()
	s.entries[h] = &entry{name: name, periodic: true, period: period, cb: cb}
	return h
}

func (s *RealService) Start(h Handle, delay time.Duration) {
	s.mu.Lock()
	e, ok := s.entries[h]
	s.mu.Unlock()
	if !ok {
		return
	}

	s.stopEntry(e)

	cb := e.cb
	if e.periodic {
		stopCh := make(chan struct{})
		e.stopCh = stopCh
		e.ticker = time.NewTicker(e.period)
		ticker := e.ticker
		go func() {
			for {
				select {
				case <-ticker.C:
					s.events <- cb
				case <-stopCh:
					return
				}
			}
		}()
		return
	}

	e.oneShot = time.AfterFunc(delay, func() {
		s.events <- cb
	})
}

func (s *RealService) Stop(h Handle) {
	s.mu.Lock()
	e, ok := s.entries[h]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.stopEntry(e)
}

func (s *RealService) stopEntry(e *entry) {
	if e.oneShot != nil {
		e.oneShot.Stop()
		e.oneShot = nil
	}
	if e.ticker != nil {
		e.ticker.Stop()
		close(e.stopCh)
		e.ticker = nil
		e.stopCh = nil
	}
}
