//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sort"

	"gocv.io/x/gocv"

	"face-quality-scan/internal/domain/entity"
)

// CascadeCapturer находит лица каскадами Хаара и глаза внутри каждого лица
type CascadeCapturer struct {
	preset CapturerPreset
	faces  gocv.CascadeClassifier
	eyes   gocv.CascadeClassifier
}

// NewCascadeCapturer загружает каскады пресета name из confDir или стандартных путей OpenCV
func NewCascadeCapturer(confDir, name string) (*CascadeCapturer, error) {
	preset, err := LookupPreset(name)
	if err != nil {
		return nil, err
	}

	faces := gocv.NewCascadeClassifier()
	if !loadCascade(&faces, confDir, preset.FaceCascade) {
		faces.Close()
		return nil, fmt.Errorf("cannot load face cascade %s", preset.FaceCascade)
	}
	eyes := gocv.NewCascadeClassifier()
	if !loadCascade(&eyes, confDir, preset.EyeCascade) {
		faces.Close()
		eyes.Close()
		return nil, fmt.Errorf("cannot load eye cascade %s", preset.EyeCascade)
	}

	return &CascadeCapturer{preset: preset, faces: faces, eyes: eyes}, nil
}

func loadCascade(c *gocv.CascadeClassifier, confDir, file string) bool {
	for _, path := range CascadePaths(confDir, file) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if c.Load(path) {
			return true
		}
	}
	return false
}

// Capture возвращает лица, отсортированные по убыванию площади
func (c *CascadeCapturer) Capture(ctx context.Context, encoded []byte) ([]entity.FaceRegion, error) {
	_ = ctx
	mat, err := decodeToMat(encoded)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	gocv.EqualizeHist(gray, &gray)

	minSide := minInt(gray.Cols(), gray.Rows())
	minFace := int(float64(minSide) * c.preset.MinFaceRatio)
	rects := c.faces.DetectMultiScaleWithParams(gray, c.preset.ScaleFactor, c.preset.MinNeighbors, 0,
		image.Pt(minFace, minFace), image.Pt(0, 0))

	regions := make([]entity.FaceRegion, 0, len(rects))
	for _, rect := range rects {
		eyes := c.detectEyes(gray, rect)
		regions = append(regions, entity.FaceRegion{
			Box:        rect,
			Confidence: Confidence(len(eyes)),
			Eyes:       eyes,
		})
	}

	// Первым идёт самое крупное лицо.
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Area() > regions[j].Area()
	})
	return regions, nil
}

// detectEyes ищет глаза в верхней половине лица и переводит их в координаты кадра
func (c *CascadeCapturer) detectEyes(gray gocv.Mat, face image.Rectangle) []image.Rectangle {
	upper := image.Rect(face.Min.X, face.Min.Y, face.Max.X, face.Min.Y+face.Dy()/2)
	if upper.Empty() {
		return nil
	}
	roi := gray.Region(upper)
	defer roi.Close()

	minEye := maxInt(face.Dx()/10, 1)
	found := c.eyes.DetectMultiScaleWithParams(roi, c.preset.ScaleFactor, c.preset.MinNeighbors, 0,
		image.Pt(minEye, minEye), image.Pt(0, 0))

	eyes := make([]image.Rectangle, 0, len(found))
	for _, e := range found {
		eyes = append(eyes, e.Add(upper.Min))
	}
	return eyes
}

func (c *CascadeCapturer) Close() error {
	return errors.Join(c.faces.Close(), c.eyes.Close())
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
