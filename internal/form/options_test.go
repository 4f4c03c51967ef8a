package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facecam/internal/config"
)

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		state State
		err   error
	}{
		{"brightness above range", State{BrightnessOn: true, BrightnessText: "256", CameraOn: true}, ErrBrightnessRange},
		{"brightness negative", State{BrightnessOn: true, BrightnessText: "-1", CameraOn: true}, ErrBrightnessRange},
		{"brightness not a number", State{BrightnessOn: true, BrightnessText: "bright", CameraOn: true}, ErrNotInteger},
		{"even kernel", State{BlurOn: true, KernelText: "4", CameraOn: true}, ErrKernelSize},
		{"zero kernel", State{BlurOn: true, KernelText: "0", CameraOn: true}, ErrKernelSize},
		{"empty kernel", State{BlurOn: true, KernelText: "", CameraOn: true}, ErrNotInteger},
		{"two sources", State{CameraOn: true, VideoOn: true, VideoPath: "a.mp4"}, ErrTwoSources},
		{"no source", State{}, ErrNoSource},
		{"video without path", State{VideoOn: true}, ErrNoVideo},
		// modifiers are checked before the source
		{"bad brightness and no source", State{BrightnessOn: true, BrightnessText: "300"}, ErrBrightnessRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.state.Validate()
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestValidate_Camera(t *testing.T) {
	opts, err := State{
		BrightnessOn:   true,
		BrightnessText: " 255 ",
		BlurOn:         true,
		KernelText:     "5",
		CameraOn:       true,
		PlotOn:         true,
	}.Validate()
	require.NoError(t, err)

	assert.Equal(t, config.SourceCamera, opts.Source)
	require.NotNil(t, opts.Brightness)
	assert.Equal(t, uint8(255), *opts.Brightness)
	require.NotNil(t, opts.BlurKernel)
	assert.Equal(t, 5, *opts.BlurKernel)
	assert.True(t, opts.Plot)
	assert.Empty(t, opts.VideoPath)
}

func TestValidate_VideoWithoutModifiers(t *testing.T) {
	// unchecked modifiers ignore whatever is typed in their entries
	opts, err := State{
		BrightnessText: "not used",
		KernelText:     "2",
		VideoOn:        true,
		VideoPath:      "/videos/clip.mp4",
	}.Validate()
	require.NoError(t, err)

	assert.Equal(t, config.SourceVideo, opts.Source)
	assert.Equal(t, "/videos/clip.mp4", opts.VideoPath)
	assert.Nil(t, opts.Brightness)
	assert.Nil(t, opts.BlurKernel)
	assert.False(t, opts.Plot)
}

func TestValidate_ZeroBrightnessIsEnabled(t *testing.T) {
	opts, err := State{BrightnessOn: true, BrightnessText: "0", CameraOn: true}.Validate()
	require.NoError(t, err)
	require.NotNil(t, opts.Brightness)
	assert.Equal(t, uint8(0), *opts.Brightness)
}

func TestIsValidation(t *testing.T) {
	_, err := State{}.Validate()
	assert.True(t, IsValidation(err))

	_, err = State{BlurOn: true, KernelText: "x", CameraOn: true}.Validate()
	assert.True(t, IsValidation(err))

	assert.False(t, IsValidation(errors.New("device busy")))
	assert.False(t, IsValidation(nil))
}

func TestParseBrightness(t *testing.T) {
	b, err := ParseBrightness("0")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), b)

	b, err = ParseBrightness("128")
	require.NoError(t, err)
	assert.Equal(t, uint8(128), b)

	_, err = ParseBrightness("256")
	assert.ErrorIs(t, err, ErrBrightnessRange)

	_, err = ParseBrightness("1.5")
	assert.ErrorIs(t, err, ErrNotInteger)
}

func TestParseKernel(t *testing.T) {
	k, err := ParseKernel("7")
	require.NoError(t, err)
	assert.Equal(t, 7, k)

	for _, text := range []string{"-3", "0", "2"} {
		_, err := ParseKernel(text)
		assert.ErrorIs(t, err, ErrKernelSize, text)
	}
}
