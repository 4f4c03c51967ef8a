package processing

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"facecam/internal/config"
	"facecam/internal/models"
)

func TestNewCascadeDetector_MissingFile(t *testing.T) {
	cfg := config.NewDefaultConfig().Cascade
	cfg.Dir = t.TempDir()

	_, err := NewCascadeDetector(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "haarcascade_frontalface_default.xml")
}

func TestCascadeDetector_BlankFrame(t *testing.T) {
	cfg := config.NewDefaultConfig().Cascade
	if dir := os.Getenv("FACECAM_CASCADE_DIR"); dir != "" {
		cfg.Dir = dir
	}
	if _, err := os.Stat(filepath.Join(cfg.Dir, cfg.FaceFile)); err != nil {
		t.Skipf("haar cascades not installed in %s", cfg.Dir)
	}

	det, err := NewCascadeDetector(cfg)
	require.NoError(t, err)
	defer det.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	stats := det.Detect(&frame)
	assert.Equal(t, models.FrameStats{}, stats)
}

func TestCascadePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/cascades", "eye.xml"), cascadePath("/cascades", "eye.xml"))
	assert.Equal(t, "/abs/eye.xml", cascadePath("/cascades", "/abs/eye.xml"))
	assert.Equal(t, "eye.xml", cascadePath("", "eye.xml"))
}

func TestUpperHalf(t *testing.T) {
	assert.Equal(t, image.Rect(10, 20, 110, 70), upperHalf(image.Rect(10, 20, 110, 120)))
	// odd heights round half to even
	assert.Equal(t, image.Rect(0, 0, 10, 2), upperHalf(image.Rect(0, 0, 10, 5)))
	assert.Equal(t, image.Rect(0, 0, 10, 4), upperHalf(image.Rect(0, 0, 10, 7)))
	assert.Equal(t, image.Rect(0, 0, 10, 4), upperHalf(image.Rect(0, 0, 10, 9)))
	assert.Equal(t, image.Rect(5, 5, 15, 11), upperHalf(image.Rect(5, 5, 15, 16)))
}

func TestAnnotate(t *testing.T) {
	frame := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
	defer frame.Close()

	detections := []models.FaceDetection{{
		Face: image.Rect(10, 10, 90, 90),
		Eyes: []image.Rectangle{image.Rect(30, 30, 45, 45)},
	}}

	Annotate(&frame, detections)

	// BGR order
	assert.Equal(t, []uint8{255, 0, 0}, []uint8(frame.GetVecbAt(10, 50)))
	assert.Equal(t, []uint8{0, 0, 255}, []uint8(frame.GetVecbAt(30, 38)))
	assert.Equal(t, []uint8{0, 0, 0}, []uint8(frame.GetVecbAt(60, 60)))
}

func TestCount(t *testing.T) {
	stats := Count([]models.FaceDetection{
		{Eyes: make([]image.Rectangle, 2)},
		{Eyes: make([]image.Rectangle, 1)},
		{},
	})
	assert.Equal(t, models.FrameStats{Faces: 3, Eyes: 3}, stats)
	assert.Equal(t, models.FrameStats{}, Count(nil))
}
