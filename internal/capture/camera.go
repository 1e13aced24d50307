// Package capture wraps the webcam behind a frame-producing interface so the
// rest of the system only sees encoded images.
package capture

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrNoFrame is returned when the device produces an empty frame.
var ErrNoFrame = errors.New("camera produced no frame")

// Camera reads JPEG frames from a video capture device.
type Camera struct {
	device *gocv.VideoCapture
}

func Open(deviceID int) (*Camera, error) {
	device, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("opening camera device %d: %w", deviceID, err)
	}
	return &Camera{device: device}, nil
}

// ReadFrame grabs one frame and returns it JPEG-encoded.
func (c *Camera) ReadFrame() ([]byte, error) {
	frame := gocv.NewMat()
	defer frame.Close()

	if ok := c.device.Read(&frame); !ok || frame.Empty() {
		return nil, ErrNoFrame
	}

	encoded, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return nil, fmt.Errorf("encoding camera frame: %w", err)
	}
	defer encoded.Close()

	return append([]byte(nil), encoded.GetBytes()...), nil
}

func (c *Camera) Close() error {
	return c.device.Close()
}
