package engine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
)

// fakeLocalizer возвращает заранее заданные лица
type fakeLocalizer struct {
	mu      sync.Mutex
	regions []entity.FaceRegion
	err     error
	inputs  [][]byte
	closed  bool
}

func (f *fakeLocalizer) Capture(ctx context.Context, encoded []byte) ([]entity.FaceRegion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, encoded)
	return f.regions, f.err
}

func (f *fakeLocalizer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func withFake(f *fakeLocalizer) Option {
	return WithLocalizerFactory(func(cfg CapturerConfig) (port.FaceLocalizer, error) {
		return f, nil
	})
}

// fakeSDK создаёт на диске минимальную раскладку SDK для текущей платформы
func fakeSDK(t *testing.T, goos string) Layout {
	t.Helper()
	layout := ResolveLayout(t.TempDir(), goos)
	require.NoError(t, os.MkdirAll(filepath.Dir(layout.Library), 0o755))
	require.NoError(t, os.WriteFile(layout.Library, []byte("lib"), 0o644))
	require.NoError(t, os.MkdirAll(layout.ConfDir, 0o755))
	return layout
}

var (
	faceBox  = image.Rect(60, 40, 140, 140)
	leftEye  = image.Rect(72, 65, 88, 77)
	rightEye = image.Rect(112, 65, 128, 77)
)

// portrait рисует условный портрет 200x200: фон, лицо цвета кожи с текстурой, тёмные глаза и рот
func portrait() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 100, B: 110, A: 255})
		}
	}
	for y := faceBox.Min.Y; y < faceBox.Max.Y; y++ {
		for x := faceBox.Min.X; x < faceBox.Max.X; x++ {
			shade := uint8((x*7 + y*13) % 40)
			img.Set(x, y, color.RGBA{R: 180 + shade/2, G: 120 + shade/2, B: 90 + shade/3, A: 255})
		}
	}
	for _, eye := range []image.Rectangle{leftEye, rightEye} {
		for y := eye.Min.Y; y < eye.Max.Y; y++ {
			for x := eye.Min.X; x < eye.Max.X; x++ {
				img.Set(x, y, color.RGBA{R: 20, G: 20, B: 25, A: 255})
			}
		}
	}
	return img
}

func encodePNGBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func portraitRegion(confidence float64) entity.FaceRegion {
	return entity.FaceRegion{
		Box:        faceBox,
		Confidence: confidence,
		Eyes:       []image.Rectangle{leftEye, rightEye},
	}
}
