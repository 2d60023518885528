package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/librasio/internal/classifier"
	"github.com/ayusman/librasio/internal/crop"
	"github.com/ayusman/librasio/internal/detector"
	"github.com/ayusman/librasio/internal/gesture"
	"github.com/ayusman/librasio/internal/logger"
	"github.com/ayusman/librasio/internal/metrics"
	"github.com/ayusman/librasio/internal/stabilizer"
)

// ErrUnknownStream is returned for a stream id the app does not run.
var ErrUnknownStream = errors.New("app: unknown stream")

// StreamID names a classification stream.
type StreamID string

const (
	StreamAlphabet StreamID = "alphabet"
	StreamWords    StreamID = "words"
)

// StreamIDs lists the streams in display order.
var StreamIDs = []StreamID{StreamAlphabet, StreamWords}

// ParseStreamID validates s as a stream id.
func ParseStreamID(s string) (StreamID, error) {
	for _, id := range StreamIDs {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStream, s)
}

// Result is the raw outcome of recognizing one frame. Crop is set when an
// image model consumed a normalized region of the frame.
type Result struct {
	Raw        gesture.Label
	Box        image.Rectangle
	Crop       *crop.Box
	Hand       *detector.HandLandmarks
	Confidence float32
}

// Recognizer turns a frame into a raw label.
type Recognizer interface {
	Recognize(ctx context.Context, frame *gocv.Mat) (Result, error)
}

// Rect is a pixel rectangle in overlay messages.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func rectFrom(r image.Rectangle) *Rect {
	if r.Empty() {
		return nil
	}
	return &Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Overlay describes what to draw over the frame of one pass.
type Overlay struct {
	Stream     StreamID           `json:"stream"`
	Label      string             `json:"label"`
	Raw        string             `json:"raw"`
	Box        *Rect              `json:"box,omitempty"`
	Crop       *crop.Box          `json:"crop,omitempty"`
	Landmarks  []detector.Point3D `json:"landmarks,omitempty"`
	Confidence float32            `json:"confidence,omitempty"`
}

// StreamOptions holds the render settings of a stream.
type StreamOptions struct {
	// Unknown is displayed while the stable label is unknown.
	Unknown string
	// Language selects the word vocabulary; letters are never translated.
	Language string
}

// Stream owns the recognizer and stabilizer state of one classification
// stream. It is driven by a single goroutine.
type Stream struct {
	id         StreamID
	recognizer Recognizer
	stabilizer stabilizer.Stabilizer
	opts       StreamOptions

	display DisplaySink
	overlay OverlaySink
	metrics *metrics.Metrics
	logger  *zap.Logger

	raw    gesture.Label
	stable gesture.Label
}

// StreamConfig wires a stream.
type StreamConfig struct {
	ID         StreamID
	Recognizer Recognizer
	Stabilizer stabilizer.Stabilizer
	Options    StreamOptions
	Display    DisplaySink
	Overlay    OverlaySink
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// NewStream creates a stream whose committed label starts unknown.
func NewStream(c StreamConfig) (*Stream, error) {
	if _, err := ParseStreamID(string(c.ID)); err != nil {
		return nil, err
	}
	if c.Recognizer == nil {
		return nil, fmt.Errorf("stream %s: nil recognizer", c.ID)
	}
	if c.Stabilizer == nil {
		return nil, fmt.Errorf("stream %s: nil stabilizer", c.ID)
	}
	if c.Options.Unknown == "" {
		c.Options.Unknown = gesture.DefaultPlaceholder
	}
	if c.Options.Language == "" {
		c.Options.Language = gesture.LangEnglish
	}
	if c.Display == nil {
		c.Display = MultiDisplay{}
	}
	if c.Overlay == nil {
		c.Overlay = nopOverlay{}
	}

	return &Stream{
		id:         c.ID,
		recognizer: c.Recognizer,
		stabilizer: c.Stabilizer,
		opts:       c.Options,
		display:    c.Display,
		overlay:    c.Overlay,
		metrics:    c.Metrics,
		logger:     logger.OrNop(c.Logger).With(zap.String("stream", string(c.ID))),
		raw:        gesture.Unknown,
		stable:     gesture.Unknown,
	}, nil
}

// ID returns the stream id.
func (s *Stream) ID() StreamID { return s.id }

// Raw returns the raw label of the last pass.
func (s *Stream) Raw() gesture.Label { return s.raw }

// Stable returns the committed label.
func (s *Stream) Stable() gesture.Label { return s.stable }

// Render returns the committed label as displayed.
func (s *Stream) Render() string {
	return s.render(s.stable)
}

func (s *Stream) render(l gesture.Label) string {
	if l.IsUnknown() {
		return s.opts.Unknown
	}
	return gesture.Translate(l, s.opts.Language)
}

// Reset clears the stabilizer and labels. The display shows unknown again.
func (s *Stream) Reset() {
	s.stabilizer.Reset()
	s.raw = gesture.Unknown
	s.stable = gesture.Unknown
	s.display.SetLabel(s.id, s.render(s.stable))
}

// Step runs one pass over frame: recognize, stabilize, then publish the
// committed label and overlay. Recognition failures count as unknown and
// never abort the pass.
func (s *Stream) Step(ctx context.Context, frame *gocv.Mat) Overlay {
	start := time.Now()

	res, err := s.recognizer.Recognize(ctx, frame)
	if err != nil {
		s.recordError(err)
		res = Result{Raw: gesture.Unknown}
	}

	prev := s.stable
	s.raw = res.Raw
	s.stable = s.stabilizer.Push(res.Raw)
	if s.stable != prev {
		s.metrics.LabelChanged(string(s.id))
		s.logger.Debug("label changed",
			zap.Stringer("from", prev),
			zap.Stringer("to", s.stable),
		)
	}

	text := s.render(s.stable)
	s.display.SetLabel(s.id, text)

	o := Overlay{
		Stream:     s.id,
		Label:      text,
		Raw:        s.render(res.Raw),
		Box:        rectFrom(res.Box),
		Crop:       res.Crop,
		Confidence: res.Confidence,
	}
	if res.Hand != nil {
		o.Landmarks = res.Hand.Points[:]
	}
	s.overlay.DrawOverlay(s.id, o)

	s.metrics.ObservePass(string(s.id), time.Since(start))
	return o
}

func (s *Stream) recordError(err error) {
	kind := "recognize"
	switch {
	case errors.Is(err, context.Canceled):
		kind = "canceled"
	case errors.Is(err, gesture.ErrInvalidObservation), errors.Is(err, detector.ErrInvalidObservation):
		kind = "invalid_observation"
	case errors.Is(err, classifier.ErrClassifierUnavailable):
		kind = "classifier_unavailable"
	case errors.Is(err, crop.ErrInvalidFrame):
		kind = "invalid_frame"
	case errors.Is(err, context.DeadlineExceeded):
		kind = "canceled"
	}
	s.metrics.FrameError(string(s.id), kind)

	switch kind {
	case "invalid_observation":
		s.logger.Debug("discarding observation", zap.Error(err))
		return
	case "canceled":
		s.logger.Debug("pass canceled", zap.Error(err))
		return
	}
	s.logger.Warn("recognition failed", zap.String("kind", kind), zap.Error(err))
}
