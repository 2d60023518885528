// Package crop selects the square frame region fed to the image classifier
// and converts it into a model input tensor.
package crop

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ayusman/librasio/internal/detector"
)

// ErrInvalidFrame is returned for non-positive frame sizes or fractions outside (0,1].
var ErrInvalidFrame = errors.New("crop: invalid frame")

const (
	// DefaultFraction is the crop side relative to the shorter frame side.
	DefaultFraction = 0.5
	// WideFraction trades resolution for a larger signing area.
	WideFraction = 0.7
	// DefaultPadding pads the landmark bounding box, in pixels.
	DefaultPadding = 20
)

// Region is a square in pixel coordinates.
type Region struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Box is a region in normalized [0,1] coordinates, ordered the way image
// models expect crop boxes.
type Box struct {
	Y1 float64 `json:"y1"`
	X1 float64 `json:"x1"`
	Y2 float64 `json:"y2"`
	X2 float64 `json:"x2"`
}

// Compute returns the centered square whose side is fraction of the shorter
// frame side.
func Compute(width, height int, fraction float64) (Region, error) {
	if width <= 0 || height <= 0 {
		return Region{}, fmt.Errorf("%w: %dx%d", ErrInvalidFrame, width, height)
	}
	if !(fraction > 0 && fraction <= 1) {
		return Region{}, fmt.Errorf("%w: fraction %g", ErrInvalidFrame, fraction)
	}

	w, h := float64(width), float64(height)
	size := math.Min(w, h) * fraction
	return Region{
		X:    (w - size) / 2,
		Y:    (h - size) / 2,
		Size: size,
	}, nil
}

// Normalized divides the region by the frame dimensions.
func (r Region) Normalized(width, height int) Box {
	w, h := float64(width), float64(height)
	return Box{
		Y1: r.Y / h,
		X1: r.X / w,
		Y2: (r.Y + r.Size) / h,
		X2: (r.X + r.Size) / w,
	}
}

// Rect maps the box back onto a width x height frame.
func (b Box) Rect(width, height int) image.Rectangle {
	w, h := float64(width), float64(height)
	return image.Rect(
		int(math.Round(b.X1*w)), int(math.Round(b.Y1*h)),
		int(math.Round(b.X2*w)), int(math.Round(b.Y2*h)),
	)
}

// Rect returns the pixel rectangle covered by the region.
func (r Region) Rect() image.Rectangle {
	x, y := int(math.Round(r.X)), int(math.Round(r.Y))
	s := int(math.Round(r.Size))
	return image.Rect(x, y, x+s, y+s)
}

// BoundingBox returns the rectangle around a hand's landmarks, grown by
// padding pixels and clamped to the frame.
func BoundingBox(hand *detector.HandLandmarks, width, height, padding int) image.Rectangle {
	if hand == nil {
		return image.Rectangle{}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range hand.Points {
		minX = math.Min(minX, p.X*float64(width))
		minY = math.Min(minY, p.Y*float64(height))
		maxX = math.Max(maxX, p.X*float64(width))
		maxY = math.Max(maxY, p.Y*float64(height))
	}

	box := image.Rect(
		int(minX)-padding, int(minY)-padding,
		int(math.Ceil(maxX))+padding, int(math.Ceil(maxY))+padding,
	)
	return box.Intersect(image.Rect(0, 0, width, height))
}
