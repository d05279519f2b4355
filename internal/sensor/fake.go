package sensor

// FakeSource is a scripted test double. Feed pushes a BPM value onto the
// readings channel synchronously, grounded on gpio.FakeReader's
// scripted-samples style.
type FakeSource struct {
	ch     chan uint8
	closed bool
}

// NewFakeSource creates a FakeSource with a buffered channel of the given
// capacity.
func NewFakeSource(capacity int) *FakeSource {
	return &FakeSource{ch: make(chan uint8, capacity)}
}

// Feed pushes bpm onto the readings channel.
func (f *FakeSource) Feed(bpm uint8) {
	f.ch <- bpm
}

func (f *FakeSource) Readings() <-chan uint8 {
	return f.ch
}

func (f *FakeSource) Close() error {
	if !f.closed {
		close(f.ch)
		f.closed = true
	}
	return nil
}
