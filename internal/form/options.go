// Package form turns the state of the run configuration form into validated
// run options.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"facecam/internal/config"
)

const MaxBrightness = 255

var (
	ErrNotInteger      = errors.New("value must be an integer")
	ErrBrightnessRange = errors.New("brightness value must be between 0 and 255")
	ErrKernelSize      = errors.New("gaussian kernel size must be a positive odd number")
	ErrTwoSources      = errors.New("it's not possible to choose two capture sources")
	ErrNoSource        = errors.New("choose one capture source")
	ErrNoVideo         = errors.New("choose a video")
)

// State mirrors the widgets of the form.
type State struct {
	BrightnessOn   bool
	BrightnessText string

	BlurOn     bool
	KernelText string

	CameraOn bool
	VideoOn  bool

	VideoPath string
	PlotOn    bool
}

// Options is a validated run request. A nil Brightness or BlurKernel means
// the modifier is disabled.
type Options struct {
	Source     config.SourceType
	VideoPath  string
	Brightness *uint8
	BlurKernel *int
	Plot       bool
}

func (s State) Validate() (Options, error) {
	var opts Options

	if s.BrightnessOn {
		b, err := ParseBrightness(s.BrightnessText)
		if err != nil {
			return Options{}, err
		}
		opts.Brightness = &b
	}

	if s.BlurOn {
		k, err := ParseKernel(s.KernelText)
		if err != nil {
			return Options{}, err
		}
		opts.BlurKernel = &k
	}

	switch {
	case s.CameraOn && s.VideoOn:
		return Options{}, ErrTwoSources
	case !s.CameraOn && !s.VideoOn:
		return Options{}, ErrNoSource
	case s.CameraOn:
		opts.Source = config.SourceCamera
	case strings.TrimSpace(s.VideoPath) == "":
		return Options{}, ErrNoVideo
	default:
		opts.Source = config.SourceVideo
		opts.VideoPath = s.VideoPath
	}

	opts.Plot = s.PlotOn

	return opts, nil
}

// ParseBrightness accepts an integer from 0 to MaxBrightness.
func ParseBrightness(text string) (uint8, error) {
	v, err := parseInt("brightness", text)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > MaxBrightness {
		return 0, ErrBrightnessRange
	}
	return uint8(v), nil
}

// ParseKernel accepts a positive odd integer.
func ParseKernel(text string) (int, error) {
	k, err := parseInt("kernel size", text)
	if err != nil {
		return 0, err
	}
	if k <= 0 || k%2 == 0 {
		return 0, ErrKernelSize
	}
	return k, nil
}

func parseInt(field, text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, text, ErrNotInteger)
	}
	return v, nil
}

// IsValidation reports whether err comes from Validate.
func IsValidation(err error) bool {
	for _, target := range []error{ErrNotInteger, ErrBrightnessRange, ErrKernelSize, ErrTwoSources, ErrNoSource, ErrNoVideo} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
