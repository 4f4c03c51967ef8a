// Package plot records per-frame detection counts and draws them as two
// stacked line plots sharing the iteration axis.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"time"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"facecam/internal/models"
)

const (
	initialMax = 2

	fileTimeLayout = "2006-01-02_15-04-05.000"
)

var (
	eyesColor = color.RGBA{R: 255, A: 255}
	faceColor = color.RGBA{B: 255, A: 255}
)

// Recorder is safe for concurrent use: the processor adds samples while the
// UI renders.
type Recorder struct {
	mu sync.Mutex

	eyes  []int
	faces []int

	maxEyes  int
	maxFaces int

	now func() time.Time
}

func NewRecorder() *Recorder {
	r := &Recorder{now: time.Now}
	r.reset()
	return r
}

func (r *Recorder) Add(stats models.FrameStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.eyes = append(r.eyes, stats.Eyes)
	r.faces = append(r.faces, stats.Faces)

	if stats.Eyes > r.maxEyes {
		r.maxEyes = stats.Eyes
	}
	if stats.Faces > r.maxFaces {
		r.maxFaces = stats.Faces
	}
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.eyes)
}

// Max returns the running maxima of the eye and face series.
func (r *Recorder) Max() (eyes, faces int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxEyes, r.maxFaces
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

func (r *Recorder) reset() {
	r.eyes = nil
	r.faces = nil
	r.maxEyes = initialMax
	r.maxFaces = initialMax
}

// Render draws the current samples into an image of w x h points.
func (r *Recorder) Render(w, h vg.Length) (image.Image, error) {
	c, err := r.draw(w, h)
	if err != nil {
		return nil, err
	}
	return c.Image(), nil
}

// Save writes the plot as a timestamped PNG in dir and returns its path.
func (r *Recorder) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create plot dir: %w", err)
	}

	c, err := r.draw(5*vg.Inch, 4*vg.Inch)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, r.now().Format(fileTimeLayout)+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create plot file: %w", err)
	}

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write plot: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close plot file: %w", err)
	}

	return path, nil
}

func (r *Recorder) draw(w, h vg.Length) (*vgimg.Canvas, error) {
	r.mu.Lock()
	eyes := series(r.eyes)
	faces := series(r.faces)
	maxEyes, maxFaces := r.maxEyes, r.maxFaces
	n := len(r.eyes)
	r.mu.Unlock()

	eyesPlot, err := newSeriesPlot(eyes, eyesColor, n, maxEyes)
	if err != nil {
		return nil, err
	}
	eyesPlot.Title.Text = "Dynamic Plot of Eyes Detection"
	eyesPlot.Y.Label.Text = "Number of Eyes Detected"

	facePlot, err := newSeriesPlot(faces, faceColor, n, maxFaces)
	if err != nil {
		return nil, err
	}
	facePlot.Title.Text = "Dynamic Plot of Face Detection"
	facePlot.Y.Label.Text = "Number of Faces Detected"
	facePlot.X.Label.Text = "Number of Iterations"

	c := vgimg.New(w, h)
	dc := draw.New(c)

	plots := [][]*gplot.Plot{{eyesPlot}, {facePlot}}
	canvases := gplot.Align(plots, draw.Tiles{Rows: 2, Cols: 1}, dc)
	eyesPlot.Draw(canvases[0][0])
	facePlot.Draw(canvases[1][0])

	return c, nil
}

func newSeriesPlot(xys plotter.XYs, col color.Color, n, max int) (*gplot.Plot, error) {
	p := gplot.New()
	p.X.Min = 0
	p.X.Max = float64(n)
	p.Y.Min = 0
	p.Y.Max = float64(max + 1)
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.X.Label.TextStyle.Font.Size = vg.Points(8)
	p.Y.Label.TextStyle.Font.Size = vg.Points(8)

	if len(xys) == 0 {
		return p, nil
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("build series: %w", err)
	}
	line.LineStyle.Color = col
	line.LineStyle.Width = vg.Points(0.2)
	points.GlyphStyle.Color = col
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(1)

	p.Add(line, points)

	return p, nil
}

func series(values []int) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i].X = float64(i)
		xys[i].Y = float64(v)
	}
	return xys
}
