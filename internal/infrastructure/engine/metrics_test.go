package engine

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func flatPlane(w, h int, v float64) plane {
	p := plane{v: make([]float64, w*h), w: w, h: h}
	for i := range p.v {
		p.v[i] = v
	}
	return p
}

func checkerPlane(w, h int) plane {
	p := plane{v: make([]float64, w*h), w: w, h: h}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				p.v[y*w+x] = 255
			}
		}
	}
	return p
}

func solidFrame(w, h int, r, g, b byte) rgbFrame {
	pix := make([]byte, 0, w*h*3)
	for i := 0; i < w*h; i++ {
		pix = append(pix, r, g, b)
	}
	return rgbFrame{pix: pix, w: w, h: h}
}

func TestLaplacianVariance(t *testing.T) {
	require.Zero(t, laplacianVariance(flatPlane(10, 10, 128)))
	require.Greater(t, laplacianVariance(checkerPlane(10, 10)), 1000.0)
	require.Zero(t, laplacianVariance(flatPlane(2, 2, 1)))
}

func TestNoiseSigma(t *testing.T) {
	require.Zero(t, noiseSigma(flatPlane(8, 8, 50)))
	require.Greater(t, noiseSigma(checkerPlane(8, 8)), 10.0)
}

func TestEdgeRatio(t *testing.T) {
	require.Zero(t, edgeRatio(flatPlane(8, 8, 50), 10))

	p := flatPlane(8, 8, 0)
	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			p.v[y*8+x] = 255
		}
	}
	// вертикальная граница даёт два столбца краёв из шести внутренних
	require.InDelta(t, 2.0/6.0, edgeRatio(p, 100), 1e-9)
}

func TestPercentileRange(t *testing.T) {
	p := plane{w: 100, h: 1}
	for i := 0; i < 100; i++ {
		p.v = append(p.v, float64(99-i))
	}
	lo, hi := percentileRange(p)
	require.InDelta(t, 0, lo, 1)
	require.InDelta(t, 99, hi, 1)
	require.Len(t, p.v, 100)
	require.Equal(t, 99.0, p.v[0], "input must stay unsorted")
}

func TestHalfMeans(t *testing.T) {
	p := flatPlane(4, 2, 0)
	p.v[2], p.v[3], p.v[6], p.v[7] = 100, 100, 100, 100
	l, r := halfMeans(p)
	require.Equal(t, 0.0, l)
	require.Equal(t, 100.0, r)
}

func TestGlareAndSkin(t *testing.T) {
	white := solidFrame(10, 10, 255, 255, 255)
	require.Equal(t, 1.0, glareRatio(white, white.bounds()))
	require.Zero(t, skinRatio(white, white.bounds()))

	skin := solidFrame(10, 10, 200, 140, 110)
	require.Zero(t, glareRatio(skin, skin.bounds()))
	require.Equal(t, 1.0, skinRatio(skin, image.Rect(0, 0, 5, 5)))
	require.Zero(t, skinRatio(skin, image.Rect(20, 20, 30, 30)))
}

func TestFrameFromContext_Validates(t *testing.T) {
	good := Context{"blob": make([]byte, 12), "dtype": "uint8_t", "format": "NDARRAY", "shape": []int{2, 2, 3}}
	f, err := frameFromContext(good)
	require.NoError(t, err)
	require.Equal(t, 2, f.w)

	bad := Context{"blob": make([]byte, 11), "dtype": "uint8_t", "format": "NDARRAY", "shape": []int{2, 2, 3}}
	_, err = frameFromContext(bad)
	require.Error(t, err)

	_, err = frameFromContext(Context{"blob": make([]byte, 12), "dtype": "float", "format": "NDARRAY", "shape": []int{2, 2, 3}})
	require.Error(t, err)
}

func TestTotalScoreBounds(t *testing.T) {
	var q qualityScores
	require.InDelta(t, 0.5/13, q.totalScore(), 1e-9)
	q.watermark = true
	require.Zero(t, q.totalScore())

	all := qualityScores{
		sharpness: 1, illumination: 1, dynamicRange: 1,
		isSharp: true, evenlyIlluminated: true, noFlare: true, leftEyeOpened: true, rightEyeOpened: true,
		rotationOK: true, notMasked: true, neutralEmotion: true, eyesDistanceOK: true, marginsOK: true,
		notNoisy: true, dynRangeOK: true,
	}
	require.Equal(t, 1.0, all.totalScore())
}
