package app

import (
	"context"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestFrameTap_OverwriteCountsDrops(t *testing.T) {
	tap := NewFrameTap()

	if data, seq := tap.Latest(); data != nil || seq != 0 {
		t.Fatalf("empty tap returned (%v, %d)", data, seq)
	}

	tap.PublishJPEG([]byte{1})
	tap.PublishJPEG([]byte{2})
	tap.PublishJPEG([]byte{3})

	if got := tap.Dropped(); got != 2 {
		t.Errorf("Dropped() = %d, want 2", got)
	}

	data, seq := tap.Latest()
	if seq != 3 || len(data) != 1 || data[0] != 3 {
		t.Errorf("Latest() = (%v, %d), want ([3], 3)", data, seq)
	}

	tap.PublishJPEG([]byte{4})
	if got := tap.Dropped(); got != 2 {
		t.Errorf("a consumed frame must not count as dropped, got %d", got)
	}
}

func TestFrameTap_Next(t *testing.T) {
	tap := NewFrameTap()

	go func() {
		time.Sleep(10 * time.Millisecond)
		tap.PublishJPEG([]byte{7})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	data, seq, err := tap.Next(ctx, 0)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if seq != 1 || data[0] != 7 {
		t.Errorf("Next() = (%v, %d), want ([7], 1)", data, seq)
	}

	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	if _, _, err := tap.Next(short, seq); err == nil {
		t.Error("Next() should fail when no newer frame arrives before the deadline")
	}
}

func TestFrameTap_Publish(t *testing.T) {
	tap := NewFrameTap()

	if err := tap.Publish(nil, Overlay{}); err != nil {
		t.Fatalf("Publish(nil) error = %v", err)
	}
	if _, seq := tap.Latest(); seq != 0 {
		t.Error("nil frame should not be stored")
	}

	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	o := Overlay{Label: "A", Box: &Rect{X: 40, Y: 20, Width: 80, Height: 80}}
	if err := tap.Publish(&frame, o); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	data, seq := tap.Latest()
	if seq != 1 {
		t.Fatalf("seq = %d, want 1", seq)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("published frame is not a JPEG")
	}

	decoded, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		t.Fatalf("IMDecode() error = %v", err)
	}
	defer decoded.Close()
	if decoded.Cols() != 160 || decoded.Rows() != 120 {
		t.Errorf("decoded size = %dx%d, want 160x120", decoded.Cols(), decoded.Rows())
	}
}
