// Package testdata builds synthetic camera frames for tests.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Frame returns a width x height BGR frame filled with gray.
func Frame(width, height int) *gocv.Mat {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 128, 128, 0), height, width, gocv.MatTypeCV8UC3)
	return &mat
}

// Sequence returns n frames with a white square moving right by step
// pixels per frame, for motion tests.
func Sequence(n, width, height, step int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		f := Frame(width, height)
		x := (i * step) % width
		gocv.Rectangle(f, image.Rect(x, height/3, x+width/8, height/3+width/8), color.RGBA{R: 255, G: 255, B: 255}, -1)
		frames = append(frames, f)
	}
	return frames
}

// Close releases every frame.
func Close(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
