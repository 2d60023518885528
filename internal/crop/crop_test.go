package crop

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/librasio/internal/detector"
)

const tolerance = 1e-9

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		fraction float64
		want     Region
	}{
		{"landscape default", 640, 480, DefaultFraction, Region{X: 200, Y: 120, Size: 240}},
		{"landscape wide", 1280, 720, WideFraction, Region{X: 388, Y: 108, Size: 504}},
		{"portrait", 480, 640, DefaultFraction, Region{X: 120, Y: 200, Size: 240}},
		{"full square", 300, 300, 1, Region{X: 0, Y: 0, Size: 300}},
		{"odd sizes", 641, 479, DefaultFraction, Region{X: 200.75, Y: 119.75, Size: 239.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.w, tt.h, tt.fraction)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.X, got.X, tolerance)
			assert.InDelta(t, tt.want.Y, got.Y, tolerance)
			assert.InDelta(t, tt.want.Size, got.Size, tolerance)
		})
	}
}

func TestCompute_CenteredAndContained(t *testing.T) {
	for w := 1; w <= 2000; w += 37 {
		for h := 1; h <= 2000; h += 41 {
			for _, fraction := range []float64{0.1, DefaultFraction, WideFraction, 1} {
				r, err := Compute(w, h, fraction)
				require.NoError(t, err)

				assert.InDelta(t, float64(w)/2, r.X+r.Size/2, tolerance)
				assert.InDelta(t, float64(h)/2, r.Y+r.Size/2, tolerance)
				if r.X < 0 || r.Y < 0 || r.X+r.Size > float64(w)+tolerance || r.Y+r.Size > float64(h)+tolerance {
					t.Fatalf("region %+v escapes %dx%d", r, w, h)
				}
			}
		}
	}
}

func TestCompute_Invalid(t *testing.T) {
	cases := []struct {
		w, h     int
		fraction float64
	}{
		{0, 480, 0.5},
		{640, -1, 0.5},
		{640, 480, 0},
		{640, 480, 1.5},
		{640, 480, math.NaN()},
	}
	for _, c := range cases {
		_, err := Compute(c.w, c.h, c.fraction)
		assert.True(t, errors.Is(err, ErrInvalidFrame), "Compute(%d, %d, %g) = %v", c.w, c.h, c.fraction, err)
	}
}

func TestRegion_Normalized(t *testing.T) {
	r, err := Compute(640, 480, DefaultFraction)
	require.NoError(t, err)

	box := r.Normalized(640, 480)
	assert.InDelta(t, 0.25, box.Y1, tolerance)
	assert.InDelta(t, 0.3125, box.X1, tolerance)
	assert.InDelta(t, 0.75, box.Y2, tolerance)
	assert.InDelta(t, 0.6875, box.X2, tolerance)

	assert.Equal(t, r.Rect(), box.Rect(640, 480))
	assert.Equal(t, image.Rect(0, 0, 100, 50), Box{Y2: 0.5, X2: 1}.Rect(100, 100))
}

func TestBoundingBox(t *testing.T) {
	hand := detector.OpenPalmLandmarks()

	box := BoundingBox(&hand, 1000, 1000, DefaultPadding)
	// x spans 0.34..0.73, y spans 0.28..0.80
	assert.Equal(t, image.Rect(320, 260, 750, 820), box)

	t.Run("clamped to frame", func(t *testing.T) {
		edge := detector.OpenPalmLandmarks()
		edge.Points[detector.ThumbTip].X = 0.999
		box := BoundingBox(&edge, 1000, 1000, DefaultPadding)
		assert.Equal(t, 1000, box.Max.X)
	})

	t.Run("nil hand", func(t *testing.T) {
		assert.True(t, BoundingBox(nil, 640, 480, DefaultPadding).Empty())
	})
}

func TestExtract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	// BGR fill: blue=0, green=128, red=255
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 128, 255, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	r, err := Compute(640, 480, DefaultFraction)
	require.NoError(t, err)

	tensor, err := Extract(frame, r.Normalized(640, 480), DefaultInputSize)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 128, 128, 3}, tensor.Shape())
	require.Len(t, tensor.Data, 128*128*3)
	assert.InDelta(t, 1.0, tensor.Data[0], 1e-6)
	assert.InDelta(t, 128.0/255, tensor.Data[1], 1e-6)
	assert.InDelta(t, 0.0, tensor.Data[2], 1e-6)

	for _, v := range tensor.Data {
		if v < 0 || v > 1 {
			t.Fatalf("value %f outside [0,1]", v)
		}
	}
}

func TestExtract_Invalid(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	empty := gocv.NewMat()
	defer empty.Close()
	_, err := Extract(empty, Box{Y2: 0.5, X2: 0.5}, DefaultInputSize)
	assert.ErrorIs(t, err, ErrInvalidFrame)

	frame := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
	defer frame.Close()
	_, err = Extract(frame, Box{Y1: 2, X1: 2, Y2: 2.5, X2: 2.5}, DefaultInputSize)
	assert.ErrorIs(t, err, ErrInvalidFrame)

	_, err = Extract(frame, Box{Y1: 0.5, X1: 0.5, Y2: 0.5, X2: 0.9}, DefaultInputSize)
	assert.ErrorIs(t, err, ErrInvalidFrame, "zero-height box")
}
