package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
	// DefaultMotionThreshold is the percentage of changed pixels that counts as motion.
	DefaultMotionThreshold = 1.0
	// DefaultStillAfter is how long a scene must stay unchanged to be still.
	DefaultStillAfter = 2 * time.Second
)

// MotionGate tells whether the signer is moving. A scene is moving from
// the first frame until no frame changed more than the threshold for
// stillAfter. The loop uses it to slow down over a still scene.
type MotionGate struct {
	threshold  float64
	stillAfter time.Duration

	mu          sync.Mutex
	prevGray    gocv.Mat
	initialized bool
	lastMotion  time.Time
}

// NewMotionGate creates a gate. threshold is a percentage of pixels, so 1.0
// means 1% of the frame must change. Non-positive values use the defaults.
func NewMotionGate(threshold float64, stillAfter time.Duration) *MotionGate {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	if stillAfter <= 0 {
		stillAfter = DefaultStillAfter
	}
	return &MotionGate{
		threshold:  threshold,
		stillAfter: stillAfter,
		prevGray:   gocv.NewMat(),
	}
}

// Observe compares frame with the previous one at time now. It returns
// whether the scene counts as moving and the percentage of changed pixels.
// An empty frame leaves the state untouched.
func (m *MotionGate) Observe(frame *gocv.Mat, now time.Time) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return m.movingAt(now), 0
	}

	blurred := grayBlur(frame)
	defer blurred.Close()

	if !m.initialized {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		m.lastMotion = now
		return true, 0
	}

	change := changedPercent(blurred, m.prevGray)
	blurred.CopyTo(&m.prevGray)

	if change > m.threshold {
		m.lastMotion = now
	}
	return m.movingAt(now), change
}

func (m *MotionGate) movingAt(now time.Time) bool {
	return m.initialized && now.Sub(m.lastMotion) <= m.stillAfter
}

// grayBlur converts frame to grayscale and blurs it to suppress sensor noise.
func grayBlur(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)
	return blurred
}

// changedPercent returns the share of pixels differing by more than
// DiffThreshold, in percent.
func changedPercent(a, b gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	total := thresh.Rows() * thresh.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(thresh)) / float64(total) * 100.0
}

// Reset forgets the baseline frame. The next frame counts as moving.
func (m *MotionGate) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// Close releases the baseline frame.
func (m *MotionGate) Close() {
	m.Reset()
}

// Threshold returns the motion threshold in percent.
func (m *MotionGate) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}
