package engine

import (
	"context"
	"image"
	"sort"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
)

// Capturer находит лица и превращает их в объекты контекста
type Capturer struct {
	localizer port.FaceLocalizer
}

// Sample одно найденное лицо
type Sample struct {
	Region entity.FaceRegion
}

// Capture локализует лица на закодированном изображении
func (c *Capturer) Capture(ctx context.Context, encoded []byte) ([]Sample, error) {
	regions, err := c.localizer.Capture(ctx, encoded)
	if err != nil {
		return nil, err
	}
	samples := make([]Sample, 0, len(regions))
	for _, r := range regions {
		if r.Box.Empty() {
			continue
		}
		samples = append(samples, Sample{Region: r})
	}
	return samples, nil
}

func (c *Capturer) Close() error {
	return c.localizer.Close()
}

// ToContext описывает лицо в координатах, нормированных на размер изображения
func (s Sample) ToContext(width, height int) Context {
	w, h := float64(width), float64(height)
	box := s.Region.Box
	obj := Context{
		"class":      "face",
		"confidence": s.Region.Confidence,
		"bbox": []float64{
			float64(box.Min.X) / w, float64(box.Min.Y) / h,
			float64(box.Max.X) / w, float64(box.Max.Y) / h,
		},
	}

	left, right, ok := splitEyes(box, s.Region.Eyes)
	keypoints := Context{}
	if ok.left {
		keypoints["left_eye"] = Context{"proj": []float64{float64(left.X) / w, float64(left.Y) / h}}
	}
	if ok.right {
		keypoints["right_eye"] = Context{"proj": []float64{float64(right.X) / w, float64(right.Y) / h}}
	}
	obj["keypoints"] = keypoints
	return obj
}

type eyeSides struct{ left, right bool }

// splitEyes раскладывает найденные глаза по сторонам относительно центра лица.
// Левым считается глаз в левой половине кадра.
func splitEyes(face image.Rectangle, eyes []image.Rectangle) (left, right image.Point, ok eyeSides) {
	if len(eyes) == 0 {
		return left, right, ok
	}
	sorted := make([]image.Rectangle, len(eyes))
	copy(sorted, eyes)
	// крупные детекции надёжнее
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Dx()*sorted[i].Dy() > sorted[j].Dx()*sorted[j].Dy()
	})

	midX := face.Min.X + face.Dx()/2
	for _, e := range sorted {
		c := image.Pt(e.Min.X+e.Dx()/2, e.Min.Y+e.Dy()/2)
		if c.X < midX && !ok.left {
			left, ok.left = c, true
		} else if c.X >= midX && !ok.right {
			right, ok.right = c, true
		}
		if ok.left && ok.right {
			break
		}
	}
	return left, right, ok
}
