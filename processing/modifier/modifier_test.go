package modifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"facecam/internal/form"
)

func TestBrightness_Saturates(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(250, 10, 0, 0), 2, 2, gocv.MatTypeCV8UC3)
	defer frame.Close()

	Brightness{Value: 10}.Modify(&frame)

	px := frame.GetVecbAt(1, 1)
	assert.Equal(t, []uint8{255, 20, 10}, []uint8(px))
	assert.Equal(t, gocv.MatTypeCV8UC3, frame.Type())
}

func TestBrightness_FullRange(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 1, 200, 0), 1, 1, gocv.MatTypeCV8UC3)
	defer frame.Close()

	Brightness{Value: 255}.Modify(&frame)

	assert.Equal(t, []uint8{255, 255, 255}, []uint8(frame.GetVecbAt(0, 0)))
}

func TestBrightness_Zero(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(7, 8, 9, 0), 1, 1, gocv.MatTypeCV8UC3)
	defer frame.Close()

	Brightness{}.Modify(&frame)

	assert.Equal(t, []uint8{7, 8, 9}, []uint8(frame.GetVecbAt(0, 0)))
}

func TestGaussianBlur_SpreadsIntensity(t *testing.T) {
	frame := gocv.NewMatWithSize(5, 5, gocv.MatTypeCV8UC1)
	defer frame.Close()
	frame.SetUCharAt(2, 2, 255)

	GaussianBlur{Kernel: 3}.Modify(&frame)

	assert.Less(t, frame.GetUCharAt(2, 2), uint8(255))
	assert.Greater(t, frame.GetUCharAt(2, 1), uint8(0))
	assert.Equal(t, 5, frame.Rows())
	assert.Equal(t, 5, frame.Cols())
}

func TestChain(t *testing.T) {
	assert.Empty(t, Chain(form.Options{}))

	b := uint8(40)
	k := 5
	chain := Chain(form.Options{Brightness: &b, BlurKernel: &k})
	require.Len(t, chain, 2)
	assert.Equal(t, Brightness{Value: 40}, chain[0])
	assert.Equal(t, GaussianBlur{Kernel: 5}, chain[1])
	assert.Equal(t, "Brightness(40)", chain[0].String())
	assert.Equal(t, "GaussianBlur(5x5)", chain[1].String())

	chain = Chain(form.Options{BlurKernel: &k})
	require.Len(t, chain, 1)
	assert.IsType(t, GaussianBlur{}, chain[0])
}

func TestApply_InOrder(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 100, 100, 0), 3, 3, gocv.MatTypeCV8UC3)
	defer frame.Close()

	Apply(&frame, []Modifier{Brightness{Value: 50}, GaussianBlur{Kernel: 3}})

	// a uniform frame stays uniform under blur
	assert.Equal(t, []uint8{150, 150, 150}, []uint8(frame.GetVecbAt(1, 1)))
}
