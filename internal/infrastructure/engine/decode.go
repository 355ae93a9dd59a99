package engine

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"

	_ "github.com/spakin/netpbm"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// decodedImage декодированный кадр и его каноническое RGB-представление
type decodedImage struct {
	img    *image.RGBA
	rgb    []byte
	width  int
	height int
}

// decodeRGB декодирует байты изображения в плотный RGB-массив
func decodeRGB(data []byte) (*decodedImage, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image")
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty %s image", format)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	w, h := b.Dx(), b.Dy()
	rgb := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		for x := 0; x < w; x++ {
			rgb = append(rgb, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return &decodedImage{img: rgba, rgb: rgb, width: w, height: h}, nil
}

// encodePNG кодирует кадр без потерь для локализатора
func (d *decodedImage) encodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, d.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// imageContext описывает кадр как NDARRAY [height, width, 3]
func (d *decodedImage) imageContext() map[string]any {
	return map[string]any{
		"blob":   d.rgb,
		"dtype":  "uint8_t",
		"format": "NDARRAY",
		"shape":  []int{d.height, d.width, 3},
	}
}
