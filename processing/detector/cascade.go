package processing

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"

	"gocv.io/x/gocv"

	"facecam/internal/config"
	"facecam/internal/models"
)

const rectThickness = 3

var (
	faceColor = color.RGBA{0, 0, 255, 0}
	eyeColor  = color.RGBA{255, 0, 0, 0}
)

// CascadeDetector finds faces and, inside the upper half of each face, eyes.
type CascadeDetector struct {
	face gocv.CascadeClassifier
	eye  gocv.CascadeClassifier

	scaleFactor  float64
	minNeighbors int
}

func NewCascadeDetector(cfg config.CascadeConfig) (*CascadeDetector, error) {
	facePath := cascadePath(cfg.Dir, cfg.FaceFile)
	eyePath := cascadePath(cfg.Dir, cfg.EyeFile)

	face := gocv.NewCascadeClassifier()
	if !face.Load(facePath) {
		face.Close()
		return nil, fmt.Errorf("unable to load face cascade %s", facePath)
	}

	eye := gocv.NewCascadeClassifier()
	if !eye.Load(eyePath) {
		face.Close()
		eye.Close()
		return nil, fmt.Errorf("unable to load eye cascade %s", eyePath)
	}

	return &CascadeDetector{
		face:         face,
		eye:          eye,
		scaleFactor:  cfg.ScaleFactor,
		minNeighbors: cfg.MinNeighbors,
	}, nil
}

func cascadePath(dir, file string) string {
	if dir == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// Detect finds faces and eyes in frame, draws them onto it and returns the
// counts.
func (d *CascadeDetector) Detect(frame *gocv.Mat) models.FrameStats {
	detections := d.DetectFaces(*frame)
	Annotate(frame, detections)
	return Count(detections)
}

// DetectFaces returns every face with its eyes in frame coordinates.
func (d *CascadeDetector) DetectFaces(frame gocv.Mat) []models.FaceDetection {
	faces := d.face.DetectMultiScaleWithParams(frame, d.scaleFactor, d.minNeighbors, 0, image.Point{}, image.Point{})
	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())

	detections := make([]models.FaceDetection, 0, len(faces))
	for _, f := range faces {
		det := models.FaceDetection{Face: f}

		roi := upperHalf(f).Intersect(bounds)
		if !roi.Empty() {
			region := frame.Region(roi)
			for _, e := range d.eye.DetectMultiScaleWithParams(region, d.scaleFactor, d.minNeighbors, 0, image.Point{}, image.Point{}) {
				det.Eyes = append(det.Eyes, e.Add(roi.Min))
			}
			region.Close()
		}

		detections = append(detections, det)
	}

	return detections
}

func (d *CascadeDetector) Close() error {
	if err := d.face.Close(); err != nil {
		return err
	}
	return d.eye.Close()
}

// upperHalf keeps the top half of a face box, where the eyes are. Odd
// heights round half to even.
func upperHalf(face image.Rectangle) image.Rectangle {
	h := int(math.RoundToEven(float64(face.Dy()) / 2))
	return image.Rect(face.Min.X, face.Min.Y, face.Max.X, face.Min.Y+h)
}

// Annotate draws faces in blue and eyes in red.
func Annotate(frame *gocv.Mat, detections []models.FaceDetection) {
	for _, det := range detections {
		gocv.Rectangle(frame, det.Face, faceColor, rectThickness)
		for _, e := range det.Eyes {
			gocv.Rectangle(frame, e, eyeColor, rectThickness)
		}
	}
}

func Count(detections []models.FaceDetection) models.FrameStats {
	stats := models.FrameStats{Faces: len(detections)}
	for _, det := range detections {
		stats.Eyes += len(det.Eyes)
	}
	return stats
}
