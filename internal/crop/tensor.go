package crop

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultInputSize is the side of the classifier's square input.
const DefaultInputSize = 128

// Tensor is an HWC float32 image with RGB channels scaled to [0,1].
type Tensor struct {
	Data     []float32 `json:"data"`
	Height   int       `json:"height"`
	Width    int       `json:"width"`
	Channels int       `json:"channels"`
}

// Shape returns the tensor shape with a leading batch dimension.
func (t Tensor) Shape() []int {
	return []int{1, t.Height, t.Width, t.Channels}
}

// Extract crops the normalized box b from a BGR frame, resizes it to
// size x size and converts it to a normalized RGB tensor.
func Extract(frame gocv.Mat, b Box, size int) (Tensor, error) {
	if frame.Empty() {
		return Tensor{}, fmt.Errorf("%w: empty frame", ErrInvalidFrame)
	}
	if size <= 0 {
		size = DefaultInputSize
	}

	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	want := b.Rect(frame.Cols(), frame.Rows())
	rect := want.Intersect(bounds)
	if rect.Empty() {
		return Tensor{}, fmt.Errorf("%w: box %v outside %v", ErrInvalidFrame, want, bounds)
	}

	roi := frame.Region(rect)
	defer roi.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	if err := gocv.Resize(roi, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationLinear); err != nil {
		return Tensor{}, fmt.Errorf("resize crop: %w", err)
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	if err := gocv.CvtColor(resized, &rgb, gocv.ColorBGRToRGB); err != nil {
		return Tensor{}, fmt.Errorf("convert crop to RGB: %w", err)
	}

	raw := rgb.ToBytes()
	data := make([]float32, len(raw))
	for i, v := range raw {
		data[i] = float32(v) / 255
	}

	return Tensor{
		Data:     data,
		Height:   size,
		Width:    size,
		Channels: rgb.Channels(),
	}, nil
}
