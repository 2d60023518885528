package stabilizer

import "github.com/ayusman/librasio/internal/gesture"

// MajorityWindow reports the most frequent label among the last W raw labels.
// Ties go to the label that first reaches the top count when the window is
// read oldest to newest.
type MajorityWindow struct {
	size   int
	window []gesture.Label
	stable gesture.Label
}

// NewMajorityWindow creates a window of the given size. Sizes below one use
// DefaultWindow.
func NewMajorityWindow(size int) *MajorityWindow {
	if size < 1 {
		size = DefaultWindow
	}
	return &MajorityWindow{
		size:   size,
		window: make([]gesture.Label, 0, size),
	}
}

// Push appends raw, evicting the oldest label when the window is full.
func (m *MajorityWindow) Push(raw gesture.Label) gesture.Label {
	if len(m.window) == m.size {
		copy(m.window, m.window[1:])
		m.window = m.window[:m.size-1]
	}
	m.window = append(m.window, raw)
	m.stable = m.majority()
	return m.stable
}

func (m *MajorityWindow) majority() gesture.Label {
	counts := make(map[gesture.Label]int, len(m.window))
	top := 0
	for _, l := range m.window {
		counts[l]++
		if counts[l] > top {
			top = counts[l]
		}
	}

	running := make(map[gesture.Label]int, len(counts))
	for _, l := range m.window {
		running[l]++
		if running[l] == top {
			return l
		}
	}
	return gesture.Unknown
}

// Current returns the last computed majority.
func (m *MajorityWindow) Current() gesture.Label {
	return m.stable
}

// Reset empties the window.
func (m *MajorityWindow) Reset() {
	m.window = m.window[:0]
	m.stable = gesture.Unknown
}

// Len returns the number of labels held.
func (m *MajorityWindow) Len() int {
	return len(m.window)
}
