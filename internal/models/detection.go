package models

import (
	"image"
	"time"
)

// FrameStats counts what the cascades found in one frame.
type FrameStats struct {
	Faces int `json:"faces"`
	Eyes  int `json:"eyes"`
}

type FaceDetection struct {
	Face image.Rectangle   `json:"face"`
	Eyes []image.Rectangle `json:"eyes"`
}

// FrameResult is one processed frame, ready for display.
type FrameResult struct {
	Source   image.Image
	Modified image.Image
	Stats    FrameStats
	Latency  time.Duration
}
