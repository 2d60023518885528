// Package detector provides hand detection interfaces and landmark types for sign recognition.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrInvalidObservation is returned when a landmark set is not a usable hand.
// Callers treat it as "no hand detected".
var ErrInvalidObservation = errors.New("invalid hand observation")

// Point3D represents a landmark with normalized x, y in [0,1] (y grows
// downward) and relative depth z.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// NewObservation builds a hand observation from a landmark slice.
// The slice must hold exactly NumLandmarks finite points.
func NewObservation(points []Point3D) (*HandLandmarks, error) {
	if len(points) != NumLandmarks {
		return nil, fmt.Errorf("%w: got %d landmarks, want %d", ErrInvalidObservation, len(points), NumLandmarks)
	}

	h := &HandLandmarks{}
	copy(h.Points[:], points)

	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate reports whether every landmark holds finite coordinates.
func (h *HandLandmarks) Validate() error {
	if h == nil {
		return fmt.Errorf("%w: nil observation", ErrInvalidObservation)
	}
	for i, p := range h.Points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return fmt.Errorf("%w: landmark %d is not finite", ErrInvalidObservation, i)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Distance2D returns the Euclidean distance between two landmarks in the image plane.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// HandSize returns the wrist to middle finger MCP distance in the image plane.
// It is the reference length used to normalize distances.
func (h *HandLandmarks) HandSize() float64 {
	return Distance2D(h.Points[Wrist], h.Points[MiddleMCP])
}

// Normalize returns a copy of the hand translated so the wrist is the origin
// and scaled by HandSize, so the image-plane wrist to middle MCP length is 1.
// Depth is scaled by the same factor. A collapsed hand is only translated.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	out := &HandLandmarks{Handedness: h.Handedness, Score: h.Score}
	scale := h.HandSize()
	if scale < 1e-10 {
		scale = 1
	}

	wrist := h.Points[Wrist]
	for i, p := range h.Points {
		out.Points[i] = Point3D{
			X: (p.X - wrist.X) / scale,
			Y: (p.Y - wrist.Y) / scale,
			Z: (p.Z - wrist.Z) / scale,
		}
	}
	return out
}
