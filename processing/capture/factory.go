package capture

import (
	"fmt"

	"facecam/internal/config"
	"facecam/internal/form"
)

func NewStreamer(cfg *config.Config, opts form.Options) (VideoStreamer, error) {
	switch opts.Source {
	case config.SourceCamera:
		return NewWebcamStreamer(cfg.GetDeviceID(), cfg.GetWidth(), cfg.GetHeight()), nil
	case config.SourceVideo:
		return NewLocalStreamer(opts.VideoPath, cfg.GetFPS(), cfg.GetWidth(), cfg.GetHeight()), nil
	default:
		return nil, fmt.Errorf("unknown capture source: %q", opts.Source)
	}
}
