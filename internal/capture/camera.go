// Package capture reads frames from a camera device using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture resolution.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Camera is the frame source of a session.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller closes it.
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// Config selects the device and the requested resolution.
type Config struct {
	Device int
	Width  int
	Height int
}

// DefaultConfig returns device 0 at 1280x720.
func DefaultConfig() Config {
	return Config{Width: DefaultWidth, Height: DefaultHeight}
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	config  Config
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a Camera for config. Non-positive dimensions fall back
// to the defaults.
func NewCamera(config Config) Camera {
	if config.Width <= 0 {
		config.Width = DefaultWidth
	}
	if config.Height <= 0 {
		config.Height = DefaultHeight
	}
	return &cameraImpl{config: config}
}

// Open opens the device and requests the configured resolution. Devices
// that cannot honour it keep their native size.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.config.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.config.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open camera %d: device unavailable", c.config.Device)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// Mirror flips frame horizontally in place.
func Mirror(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	gocv.Flip(*frame, frame, 1)
}

// Size returns the frame dimensions as a point (cols, rows).
func Size(frame *gocv.Mat) image.Point {
	if frame == nil {
		return image.Point{}
	}
	return image.Pt(frame.Cols(), frame.Rows())
}
