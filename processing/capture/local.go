package capture

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const standardFps uint = 30

// LocalFileStreamer plays a video file at the target FPS. Reaching the end
// of the file closes the frame channel without an error.
type LocalFileStreamer struct {
	stopOnce sync.Once

	path      string
	targetFPS uint

	width  int
	height int

	capture   frameReader
	frameChan chan gocv.Mat
	errChan   chan error
	stopChan  chan struct{}
}

func NewLocalStreamer(path string, targetFPS uint, scaledWidth int, scaledHeight int) *LocalFileStreamer {
	return &LocalFileStreamer{
		path:      path,
		targetFPS: targetFPS,
		width:     scaledWidth,
		height:    scaledHeight,
		frameChan: make(chan gocv.Mat, 10),
		errChan:   make(chan error, 1),
		stopChan:  make(chan struct{}),
	}
}

func (ls *LocalFileStreamer) Start() error {
	vc, err := gocv.VideoCaptureFile(ls.path)
	if err != nil {
		if vc != nil {
			vc.Close()
		}
		return fmt.Errorf("%w: %s: %v", ErrOpenSource, ls.path, err)
	}

	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("%w: %s", ErrOpenSource, ls.path)
	}

	if ls.targetFPS == 0 {
		ls.targetFPS = standardFps
		if fps := vc.Get(gocv.VideoCaptureFPS); fps >= 1 {
			ls.targetFPS = uint(fps)
		}
	}

	ls.capture = vc
	log.WithFields(log.Fields{"path": ls.path, "fps": ls.targetFPS}).Info("video file opened")

	go ls.readFrames()

	return nil
}

func (ls *LocalFileStreamer) readFrames() {
	defer close(ls.frameChan)
	defer close(ls.errChan)
	defer ls.capture.Close()

	frameDuration := time.Second / time.Duration(ls.targetFPS)
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ls.stopChan:
			return

		case <-ticker.C:
			frame := gocv.NewMat()
			if ok := ls.capture.Read(&frame); !ok || frame.Empty() {
				frame.Close()
				log.WithField("path", ls.path).Info("end of video file")
				return
			}

			fitFrame(&frame, ls.width, ls.height)

			select {
			case ls.frameChan <- frame:
			case <-ls.stopChan:
				frame.Close()
				return
			}
		}
	}
}

func (ls *LocalFileStreamer) Stop() {
	ls.stopOnce.Do(func() {
		close(ls.stopChan)
	})
}

func (ls *LocalFileStreamer) FrameChan() <-chan gocv.Mat {
	return ls.frameChan
}

func (ls *LocalFileStreamer) ErrorChan() <-chan error {
	return ls.errChan
}
