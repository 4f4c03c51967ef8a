package capture

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

var (
	ErrOpenSource = errors.New("can not open video capture source")
	ErrReadFrame  = errors.New("can not receive frame")
)

// VideoStreamer delivers frames on FrameChan until the source ends, fails or
// is stopped. Ownership of every received Mat passes to the receiver, which
// must Close it.
type VideoStreamer interface {
	Start() error
	Stop()
	FrameChan() <-chan gocv.Mat
	ErrorChan() <-chan error
}

// frameReader is the part of gocv.VideoCapture the read loops need.
type frameReader interface {
	Read(m *gocv.Mat) bool
	Close() error
}

// fitFrame resizes frame to width x height when either side differs. A
// non-positive target leaves the frame untouched.
func fitFrame(frame *gocv.Mat, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if frame.Cols() == width && frame.Rows() == height {
		return
	}

	resized := gocv.NewMat()
	gocv.Resize(*frame, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	frame.Close()
	*frame = resized
}
