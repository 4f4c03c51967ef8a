package processing

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"facecam/internal/config"
	"facecam/internal/models"
	stream "facecam/processing/capture"
	"facecam/processing/modifier"
)

type FrameDetector interface {
	Detect(frame *gocv.Mat) models.FrameStats
}

// StatsSink receives the counts of every processed frame.
type StatsSink interface {
	Add(stats models.FrameStats)
}

// Processor runs one capture session: it reads frames from the streamer,
// preprocesses a copy, detects on it and publishes both images.
type Processor struct {
	InImageStream  stream.VideoStreamer
	OutImageStream chan models.FrameResult

	ErrChan chan error

	det       FrameDetector
	modifiers []modifier.Modifier
	sink      StatsSink

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}

	mu       sync.RWMutex
	latency  time.Duration
	fps      uint
	isActive bool
}

func NewProcessor(cfg *config.Config, in stream.VideoStreamer, det FrameDetector, modifiers []modifier.Modifier, sink StatsSink) *Processor {
	buffer := cfg.GetFPS()
	if buffer == 0 {
		buffer = 1
	}

	return &Processor{
		InImageStream:  in,
		OutImageStream: make(chan models.FrameResult, buffer),
		ErrChan:        make(chan error, 1),
		det:            det,
		modifiers:      modifiers,
		sink:           sink,
		stopChan:       make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (p *Processor) Start() {
	p.setActive(true)
	go p.run()
}

func (p *Processor) run() {
	defer close(p.done)
	defer p.setActive(false)
	defer p.release()

	frames := p.InImageStream.FrameChan()
	errs := p.InImageStream.ErrorChan()

	var frameCount uint = 0
	lastFpsUpdate := time.Now()

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				// the streamer closes its error channel before the frame channel
				select {
				case err, ok := <-errs:
					if ok && err != nil {
						p.fail(err)
					}
				default:
				}
				return
			}

			res, err := p.processFrame(frame)
			if err != nil {
				log.WithError(err).Warn("dropping frame")
				continue
			}

			select {
			case p.OutImageStream <- res:
			default:
			}

			frameCount++
			if time.Since(lastFpsUpdate) >= time.Second {
				p.mu.Lock()
				p.fps = frameCount
				p.mu.Unlock()
				frameCount = 0
				lastFpsUpdate = time.Now()
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			p.fail(err)
			return

		case <-p.stopChan:
			return
		}
	}
}

// processFrame takes ownership of frame.
func (p *Processor) processFrame(frame gocv.Mat) (models.FrameResult, error) {
	defer frame.Close()

	start := time.Now()

	modified := frame.Clone()
	defer func() { modified.Close() }()

	modifier.Apply(&modified, p.modifiers)
	stats := p.det.Detect(&modified)

	if p.sink != nil {
		p.sink.Add(stats)
	}

	src, err := frame.ToImage()
	if err != nil {
		return models.FrameResult{}, fmt.Errorf("convert source frame: %w", err)
	}

	mod, err := modified.ToImage()
	if err != nil {
		return models.FrameResult{}, fmt.Errorf("convert modified frame: %w", err)
	}

	latency := time.Since(start)
	p.mu.Lock()
	p.latency = latency
	p.mu.Unlock()

	return models.FrameResult{
		Source:   src,
		Modified: mod,
		Stats:    stats,
		Latency:  latency,
	}, nil
}

func (p *Processor) fail(err error) {
	log.WithError(err).Error("capture stopped")

	select {
	case p.ErrChan <- err:
	default:
	}
}

// release stops the streamer and closes any frames still queued in it.
func (p *Processor) release() {
	p.InImageStream.Stop()

	go func() {
		for frame := range p.InImageStream.FrameChan() {
			frame.Close()
		}
	}()
}

func (p *Processor) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
}

// Done is closed once the processing loop has exited.
func (p *Processor) Done() <-chan struct{} {
	return p.done
}

func (p *Processor) Latency() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latency
}

func (p *Processor) FPS() uint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fps
}

func (p *Processor) IsActive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isActive
}

func (p *Processor) setActive(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isActive = active
}
