package engine

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// rgbFrame изображение в виде плотного массива RGB, по 3 байта на пиксель
type rgbFrame struct {
	pix  []byte
	w, h int
}

func frameFromContext(img Context) (rgbFrame, error) {
	if dtype, _ := img["dtype"].(string); dtype != "uint8_t" {
		return rgbFrame{}, fmt.Errorf("unsupported dtype %q", dtype)
	}
	if format, _ := img["format"].(string); format != "NDARRAY" {
		return rgbFrame{}, fmt.Errorf("unsupported format %q", format)
	}
	shape, ok := img.Floats("shape")
	if !ok || len(shape) != 3 || shape[2] != 3 {
		return rgbFrame{}, errors.New("image shape must be [height, width, 3]")
	}
	blob, _ := img["blob"].([]byte)
	h, w := int(shape[0]), int(shape[1])
	if h <= 0 || w <= 0 || len(blob) != h*w*3 {
		return rgbFrame{}, fmt.Errorf("blob size %d does not match shape %dx%dx3", len(blob), h, w)
	}
	return rgbFrame{pix: blob, w: w, h: h}, nil
}

func (f rgbFrame) bounds() image.Rectangle {
	return image.Rect(0, 0, f.w, f.h)
}

func (f rgbFrame) rgb(x, y int) (r, g, b float64) {
	i := (y*f.w + x) * 3
	return float64(f.pix[i]), float64(f.pix[i+1]), float64(f.pix[i+2])
}

func (f rgbFrame) luma(x, y int) float64 {
	r, g, b := f.rgb(x, y)
	return 0.299*r + 0.587*g + 0.114*b
}

// plane яркость прямоугольной области, 0..255
type plane struct {
	v    []float64
	w, h int
}

func (f rgbFrame) lumaPlane(r image.Rectangle) plane {
	r = r.Intersect(f.bounds())
	p := plane{v: make([]float64, 0, r.Dx()*r.Dy()), w: r.Dx(), h: r.Dy()}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p.v = append(p.v, f.luma(x, y))
		}
	}
	return p
}

func (p plane) at(x, y int) float64 {
	return p.v[y*p.w+x]
}

func (p plane) mean() float64 {
	if len(p.v) == 0 {
		return 0
	}
	return stat.Mean(p.v, nil)
}

// laplacianVariance дисперсия лапласиана, мера резкости
func laplacianVariance(p plane) float64 {
	if p.w < 3 || p.h < 3 {
		return 0
	}
	lap := make([]float64, 0, (p.w-2)*(p.h-2))
	for y := 1; y < p.h-1; y++ {
		for x := 1; x < p.w-1; x++ {
			lap = append(lap, p.at(x-1, y)+p.at(x+1, y)+p.at(x, y-1)+p.at(x, y+1)-4*p.at(x, y))
		}
	}
	return stat.Variance(lap, nil)
}

// edgeRatio доля внутренних пикселей с модулем градиента Собеля выше порога
func edgeRatio(p plane, threshold float64) float64 {
	if p.w < 3 || p.h < 3 {
		return 0
	}
	var edges, total int
	for y := 1; y < p.h-1; y++ {
		for x := 1; x < p.w-1; x++ {
			gx := p.at(x+1, y-1) + 2*p.at(x+1, y) + p.at(x+1, y+1) -
				p.at(x-1, y-1) - 2*p.at(x-1, y) - p.at(x-1, y+1)
			gy := p.at(x-1, y+1) + 2*p.at(x, y+1) + p.at(x+1, y+1) -
				p.at(x-1, y-1) - 2*p.at(x, y-1) - p.at(x+1, y-1)
			if math.Hypot(gx, gy) > threshold {
				edges++
			}
			total++
		}
	}
	return float64(edges) / float64(total)
}

// noiseSigma быстрая оценка СКО шума по Иммеркеру
func noiseSigma(p plane) float64 {
	if p.w < 3 || p.h < 3 {
		return 0
	}
	var sum float64
	for y := 1; y < p.h-1; y++ {
		for x := 1; x < p.w-1; x++ {
			v := p.at(x-1, y-1) - 2*p.at(x, y-1) + p.at(x+1, y-1) -
				2*p.at(x-1, y) + 4*p.at(x, y) - 2*p.at(x+1, y) +
				p.at(x-1, y+1) - 2*p.at(x, y+1) + p.at(x+1, y+1)
			sum += math.Abs(v)
		}
	}
	return sum * math.Sqrt(math.Pi/2) / (6 * float64(p.w-2) * float64(p.h-2))
}

// percentileRange возвращает 1-й и 99-й перцентили яркости
func percentileRange(p plane) (lo, hi float64) {
	if len(p.v) == 0 {
		return 0, 0
	}
	sorted := make([]float64, len(p.v))
	copy(sorted, p.v)
	sort.Float64s(sorted)
	return stat.Quantile(0.01, stat.Empirical, sorted, nil), stat.Quantile(0.99, stat.Empirical, sorted, nil)
}

// halfMeans средняя яркость левой и правой половин
func halfMeans(p plane) (left, right float64) {
	if p.w < 2 {
		m := p.mean()
		return m, m
	}
	mid := p.w / 2
	var ls, rs []float64
	for y := 0; y < p.h; y++ {
		row := p.v[y*p.w : (y+1)*p.w]
		ls = append(ls, row[:mid]...)
		rs = append(rs, row[mid:]...)
	}
	return stat.Mean(ls, nil), stat.Mean(rs, nil)
}

// glareRatio доля ярких малонасыщенных пикселей (блики)
func glareRatio(f rgbFrame, r image.Rectangle) float64 {
	r = r.Intersect(f.bounds())
	if r.Empty() {
		return 0
	}
	var glare int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb := f.rgb(x, y)
			maxC := math.Max(cr, math.Max(cg, cb))
			minC := math.Min(cr, math.Min(cg, cb))
			if maxC < 245 {
				continue
			}
			if (maxC-minC)/maxC*255 < 40 {
				glare++
			}
		}
	}
	return float64(glare) / float64(r.Dx()*r.Dy())
}

// skinRatio доля пикселей, похожих на кожу (простое RGB-правило)
func skinRatio(f rgbFrame, r image.Rectangle) float64 {
	r = r.Intersect(f.bounds())
	if r.Empty() {
		return 0
	}
	var skin int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb := f.rgb(x, y)
			if cr > 95 && cg > 40 && cb > 20 && cr > cg && cr > cb && math.Abs(cr-cg) > 15 {
				skin++
			}
		}
	}
	return float64(skin) / float64(r.Dx()*r.Dy())
}

// bandRect возвращает горизонтальную полосу прямоугольника r от доли from до доли to высоты
func bandRect(r image.Rectangle, from, to float64) image.Rectangle {
	h := float64(r.Dy())
	return image.Rect(r.Min.X, r.Min.Y+int(h*from), r.Max.X, r.Min.Y+int(h*to))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
