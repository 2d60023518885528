// Package capture supplies frames to the classification loop: a GoCV webcam,
// a scripted mock, and a motion gate that tells the loop when the scene is
// still enough to tick slowly.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Capture defaults. 1280x720 leaves the centered 0.5 crop at 360 px, well
// above the 128 px classifier input.
const (
	DefaultFPS    = 5
	DefaultWidth  = 1280
	DefaultHeight = 720
)

var (
	// ErrCameraNotOpen is returned by ReadFrame before Open or after Close.
	ErrCameraNotOpen = errors.New("capture: camera is not open")
	// ErrReadFailed is returned when the device stops delivering frames.
	ErrReadFailed = errors.New("capture: read failed")
	// ErrEmptyFrame is returned when the device delivers a frame with no pixels.
	ErrEmptyFrame = errors.New("capture: empty frame")
)

// Camera is the frame source of the loop. Every frame returned by ReadFrame
// belongs to the caller, which must Close it once the pass is done. The loop
// lowers the rate with SetFPS while idle.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

type webcam struct {
	device        int
	width, height int

	mu  sync.Mutex
	vc  *gocv.VideoCapture
	fps int
}

// NewCamera returns a webcam on device, requesting width x height once
// opened. A non-positive dimension selects DefaultWidth x DefaultHeight.
func NewCamera(device, width, height int) Camera {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	return &webcam{device: device, width: width, height: height, fps: DefaultFPS}
}

// Open starts capture. Opening an open camera is a no-op. The requested
// size and rate are hints; devices keep their native mode when they
// cannot honor them.
func (c *webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.device)
	if err != nil {
		return fmt.Errorf("capture: open device %d: %w", c.device, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(c.width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(c.height))
	vc.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.vc = vc
	return nil
}

// Close releases the device. Closing a closed camera returns nil.
func (c *webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return nil
	}
	err := c.vc.Close()
	c.vc = nil
	return err
}

// ReadFrame grabs the next BGR frame.
func (c *webcam) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if !c.vc.Read(&mat) {
		mat.Close()
		return nil, fmt.Errorf("%w: device %d", ErrReadFailed, c.device)
	}
	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}
	return &mat, nil
}

// SetFPS records the capture rate and forwards it to an open device.
// Non-positive rates are ignored.
func (c *webcam) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.vc != nil {
		c.vc.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *webcam) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vc != nil
}
