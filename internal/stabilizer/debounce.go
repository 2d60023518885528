package stabilizer

import "github.com/ayusman/librasio/internal/gesture"

// DebounceHold commits a raw label once it has repeated hold more times,
// i.e. after hold+1 consecutive identical frames.
type DebounceHold struct {
	hold   int
	last   gesture.Label
	count  int
	seen   bool
	stable gesture.Label
}

// NewDebounceHold creates a debouncer. Negative holds use DefaultHold.
func NewDebounceHold(hold int) *DebounceHold {
	if hold < 0 {
		hold = DefaultHold
	}
	return &DebounceHold{hold: hold}
}

// Push records raw and returns the committed label.
func (d *DebounceHold) Push(raw gesture.Label) gesture.Label {
	if d.seen && raw == d.last {
		d.count++
	} else {
		d.last = raw
		d.count = 0
		d.seen = true
	}
	if d.count >= d.hold {
		d.stable = d.last
	}
	return d.stable
}

// Current returns the committed label.
func (d *DebounceHold) Current() gesture.Label {
	return d.stable
}

// Reset forgets the run and the committed label.
func (d *DebounceHold) Reset() {
	d.last = gesture.Unknown
	d.count = 0
	d.seen = false
	d.stable = gesture.Unknown
}
