// Package modifier holds the optional per-frame preprocessing steps applied
// before detection.
package modifier

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"facecam/internal/form"
)

// Modifier changes a frame in place.
type Modifier interface {
	fmt.Stringer
	Modify(frame *gocv.Mat)
}

// Brightness adds Value to every channel, saturating at 255.
type Brightness struct {
	Value uint8
}

func (b Brightness) String() string {
	return fmt.Sprintf("Brightness(%d)", b.Value)
}

func (b Brightness) Modify(frame *gocv.Mat) {
	if b.Value == 0 {
		return
	}

	out := gocv.NewMat()
	frame.ConvertToWithParams(&out, frame.Type(), 1, float32(b.Value))
	frame.Close()
	*frame = out
}

// GaussianBlur blurs with a square Kernel x Kernel window and sigma derived
// from the kernel size. Kernel must be odd.
type GaussianBlur struct {
	Kernel int
}

func (g GaussianBlur) String() string {
	return fmt.Sprintf("GaussianBlur(%dx%d)", g.Kernel, g.Kernel)
}

func (g GaussianBlur) Modify(frame *gocv.Mat) {
	out := gocv.NewMat()
	gocv.GaussianBlur(*frame, &out, image.Pt(g.Kernel, g.Kernel), 0, 0, gocv.BorderDefault)
	frame.Close()
	*frame = out
}

// Chain returns the modifiers enabled in opts: brightness first, then blur.
func Chain(opts form.Options) []Modifier {
	var chain []Modifier

	if opts.Brightness != nil {
		chain = append(chain, Brightness{Value: *opts.Brightness})
	}

	if opts.BlurKernel != nil {
		chain = append(chain, GaussianBlur{Kernel: *opts.BlurKernel})
	}

	return chain
}

func Apply(frame *gocv.Mat, chain []Modifier) {
	for _, m := range chain {
		m.Modify(frame)
	}
}
