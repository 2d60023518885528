package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

var (
	boxColor   = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// FrameTap keeps the latest processed frame, annotated and JPEG encoded.
// Publishing overwrites the held frame; a frame replaced before any reader
// fetched it counts as dropped.
type FrameTap struct {
	mu       sync.Mutex
	jpeg     []byte
	seq      uint64
	consumed bool
	changed  chan struct{}

	drops atomic.Uint64
}

// NewFrameTap creates an empty tap.
func NewFrameTap() *FrameTap {
	return &FrameTap{changed: make(chan struct{}), consumed: true}
}

// Publish draws o over a copy of frame and stores it as the latest frame.
func (t *FrameTap) Publish(frame *gocv.Mat, o Overlay) error {
	if frame == nil || frame.Empty() {
		return nil
	}

	annotated := frame.Clone()
	defer annotated.Close()
	drawOverlay(&annotated, o)

	buf, err := gocv.IMEncode(".jpg", annotated)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	t.PublishJPEG(data)
	return nil
}

// PublishJPEG stores an already encoded frame. data must not be modified
// afterwards.
func (t *FrameTap) PublishJPEG(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.consumed {
		t.drops.Add(1)
	}
	t.jpeg = data
	t.seq++
	t.consumed = false

	close(t.changed)
	t.changed = make(chan struct{})
}

// Latest returns the newest frame and its sequence number. seq is 0 before
// the first publish.
func (t *FrameTap) Latest() (data []byte, seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seq > 0 {
		t.consumed = true
	}
	return t.jpeg, t.seq
}

// Next blocks until a frame newer than after is available.
func (t *FrameTap) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		t.mu.Lock()
		if t.seq > after {
			t.consumed = true
			data, seq := t.jpeg, t.seq
			t.mu.Unlock()
			return data, seq, nil
		}
		changed := t.changed
		t.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-changed:
		}
	}
}

// Dropped returns how many frames were overwritten unread.
func (t *FrameTap) Dropped() uint64 {
	return t.drops.Load()
}

func drawOverlay(img *gocv.Mat, o Overlay) {
	origin := image.Pt(10, 30)
	if o.Box != nil {
		r := image.Rect(o.Box.X, o.Box.Y, o.Box.X+o.Box.Width, o.Box.Y+o.Box.Height)
		gocv.Rectangle(img, r, boxColor, 2)
		if r.Min.Y > 20 {
			origin = image.Pt(r.Min.X, r.Min.Y-10)
		}
	}
	gocv.PutText(img, o.Label, origin, gocv.FontHersheySimplex, 1.0, labelColor, 2)
}
