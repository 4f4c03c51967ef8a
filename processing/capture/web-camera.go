package capture

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

type WebcamStreamer struct {
	stopOnce sync.Once

	deviceID int
	width    int
	height   int

	capture   frameReader
	frameChan chan gocv.Mat
	errChan   chan error
	stopChan  chan struct{}
}

func NewWebcamStreamer(deviceID int, scaledWidth int, scaledHeight int) *WebcamStreamer {
	return &WebcamStreamer{
		deviceID: deviceID,
		width:    scaledWidth,
		height:   scaledHeight,

		frameChan: make(chan gocv.Mat),
		errChan:   make(chan error, 1),
		stopChan:  make(chan struct{}),
	}
}

func (ws *WebcamStreamer) Start() error {
	vc, err := gocv.VideoCaptureDevice(ws.deviceID)
	if err != nil {
		if vc != nil {
			vc.Close()
		}
		return fmt.Errorf("%w: device %d: %v", ErrOpenSource, ws.deviceID, err)
	}

	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("%w: device %d", ErrOpenSource, ws.deviceID)
	}

	ws.capture = vc
	log.WithField("device", ws.deviceID).Info("camera opened")

	go ws.readLoop()

	return nil
}

func (ws *WebcamStreamer) readLoop() {
	defer close(ws.frameChan)
	defer close(ws.errChan)
	defer ws.capture.Close()

	for {
		select {
		case <-ws.stopChan:
			return
		default:
		}

		frame := gocv.NewMat()
		if ok := ws.capture.Read(&frame); !ok || frame.Empty() {
			frame.Close()
			select {
			case <-ws.stopChan:
			default:
				ws.errChan <- fmt.Errorf("%w: device %d", ErrReadFrame, ws.deviceID)
			}
			return
		}

		fitFrame(&frame, ws.width, ws.height)

		// the consumer is still busy with the previous frame
		select {
		case ws.frameChan <- frame:
		default:
			frame.Close()
		}
	}
}

func (ws *WebcamStreamer) Stop() {
	ws.stopOnce.Do(func() {
		close(ws.stopChan)
	})
}

func (ws *WebcamStreamer) FrameChan() <-chan gocv.Mat { return ws.frameChan }
func (ws *WebcamStreamer) ErrorChan() <-chan error    { return ws.errChan }

// ListCameras returns the ids of the capture devices that can be offered to
// the user. Only Linux exposes devices we can enumerate without opening them.
func ListCameras() ([]string, error) {
	if runtime.GOOS != "linux" {
		return []string{"0", "1"}, nil
	}

	matches, err := filepath.Glob("/dev/video*")
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(m), "video"))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	cameras := make([]string, 0, len(ids))
	for _, id := range ids {
		cameras = append(cameras, strconv.Itoa(id))
	}

	return cameras, nil
}
