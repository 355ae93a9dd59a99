package engine

import (
	"errors"
	"fmt"
	"image"
	"math"

	"face-quality-scan/internal/domain/entity"
)

// Thresholds пороги встроенного оценщика качества
type Thresholds struct {
	SharpnessScale           float64 // дисперсия лапласиана, при которой резкость = 0.5
	MinSharpness             float64
	MaxIlluminationImbalance float64 // разница яркости половин лица, доля от 255
	MaxGlareRatio            float64
	MaxRollDegrees           float64
	MinEyesDistance          float64 // в пикселях
	MarginRatio              float64 // запас вокруг лица, доля от размера лица
	MinLowerSkinShare        float64
	MouthEdgeThreshold       float64
	MaxMouthEdgeRatio        float64
	MaxNoiseSigma            float64
	WatermarkEdgeThreshold   float64
	MaxWatermarkEdgeRatio    float64
	WatermarkBand            float64 // высота полос сверху и снизу кадра
	MinDynamicRange          float64
}

// DefaultThresholds возвращает пороги по умолчанию
func DefaultThresholds() Thresholds {
	return Thresholds{
		SharpnessScale:           100,
		MinSharpness:             0.5,
		MaxIlluminationImbalance: 0.15,
		MaxGlareRatio:            0.08,
		MaxRollDegrees:           15,
		MinEyesDistance:          40,
		MarginRatio:              0.2,
		MinLowerSkinShare:        0.5,
		MouthEdgeThreshold:       100,
		MaxMouthEdgeRatio:        0.25,
		MaxNoiseSigma:            10,
		WatermarkEdgeThreshold:   120,
		MaxWatermarkEdgeRatio:    0.12,
		WatermarkBand:            0.12,
		MinDynamicRange:          0.5,
	}
}

// qualityBlock оценивает каждое лицо и пишет результат в object["quality"]
type qualityBlock struct {
	mode       entity.Mode
	cfg        BlockConfig
	thresholds Thresholds
}

func newQualityBlock(mode entity.Mode, cfg BlockConfig, t Thresholds) *qualityBlock {
	return &qualityBlock{mode: mode, cfg: cfg, thresholds: t}
}

func (b *qualityBlock) Close() error { return nil }

// Process читает image и objects из контекста и дополняет объекты на месте
func (b *qualityBlock) Process(ctx Context) error {
	img, ok := ctx.Sub("image")
	if !ok {
		return errors.New("context has no image")
	}
	frame, err := frameFromContext(img)
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}

	for i, obj := range ctx.Objects() {
		face, err := faceRect(obj, frame)
		if err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
		left, hasLeft := keypoint(obj, "left_eye", frame)
		right, hasRight := keypoint(obj, "right_eye", frame)

		q := evaluate(frame, face, eyes{left, right, hasLeft, hasRight}, b.thresholds)
		if b.mode == entity.ModeEstimation {
			obj["quality"] = Context{"total_score": q.total}
			continue
		}
		obj["quality"] = q.toContext()
	}
	return nil
}

func faceRect(obj Context, f rgbFrame) (image.Rectangle, error) {
	bbox, ok := obj.Floats("bbox")
	if !ok || len(bbox) != 4 {
		return image.Rectangle{}, errors.New("bbox is missing")
	}
	w, h := float64(f.w), float64(f.h)
	r := image.Rect(
		int(math.Round(bbox[0]*w)), int(math.Round(bbox[1]*h)),
		int(math.Round(bbox[2]*w)), int(math.Round(bbox[3]*h)),
	).Intersect(f.bounds())
	if r.Empty() {
		return image.Rectangle{}, errors.New("bbox is outside the image")
	}
	return r, nil
}

func keypoint(obj Context, name string, f rgbFrame) (image.Point, bool) {
	proj, ok := obj.Floats("keypoints", name, "proj")
	if !ok || len(proj) < 2 {
		return image.Point{}, false
	}
	return image.Pt(int(math.Round(proj[0]*float64(f.w))), int(math.Round(proj[1]*float64(f.h)))), true
}

type eyes struct {
	left, right       image.Point
	hasLeft, hasRight bool
}

type qualityScores struct {
	sharpness, illumination, dynamicRange float64

	isSharp, evenlyIlluminated, noFlare        bool
	leftEyeOpened, rightEyeOpened, rotationOK  bool
	notMasked, neutralEmotion, eyesDistanceOK  bool
	marginsOK, notNoisy, watermark, dynRangeOK bool

	eyesDistance float64
	total        float64
}

func evaluate(f rgbFrame, face image.Rectangle, e eyes, t Thresholds) qualityScores {
	var q qualityScores
	gray := f.lumaPlane(face)

	lapVar := laplacianVariance(gray)
	q.sharpness = clamp01(lapVar / (lapVar + t.SharpnessScale))
	q.isSharp = q.sharpness >= t.MinSharpness

	mean := gray.mean() / 255
	q.illumination = clamp01(1 - 2*math.Abs(mean-0.5))
	left, right := halfMeans(gray)
	q.evenlyIlluminated = math.Abs(left-right)/255 <= t.MaxIlluminationImbalance

	q.noFlare = glareRatio(f, face) <= t.MaxGlareRatio

	q.leftEyeOpened = e.hasLeft
	q.rightEyeOpened = e.hasRight
	if e.hasLeft && e.hasRight {
		dx := float64(e.right.X - e.left.X)
		dy := float64(e.right.Y - e.left.Y)
		q.eyesDistance = math.Round(math.Hypot(dx, dy))
		roll := math.Abs(math.Atan2(dy, math.Abs(dx)) * 180 / math.Pi)
		q.rotationOK = roll <= t.MaxRollDegrees
		q.eyesDistanceOK = q.eyesDistance >= t.MinEyesDistance
	}

	forehead := skinRatio(f, bandRect(face, 0.05, 0.3))
	lower := skinRatio(f, bandRect(face, 0.65, 1))
	q.notMasked = forehead == 0 || lower >= t.MinLowerSkinShare*forehead

	mouth := bandRect(face, 0.66, 1)
	mouth.Min.X += face.Dx() / 4
	mouth.Max.X -= face.Dx() / 4
	q.neutralEmotion = edgeRatio(f.lumaPlane(mouth), t.MouthEdgeThreshold) <= t.MaxMouthEdgeRatio

	mx := int(float64(face.Dx()) * t.MarginRatio)
	my := int(float64(face.Dy()) * t.MarginRatio)
	q.marginsOK = image.Rect(face.Min.X-mx, face.Min.Y-my, face.Max.X+mx, face.Max.Y+my).In(f.bounds())

	q.notNoisy = noiseSigma(gray) <= t.MaxNoiseSigma

	q.watermark = hasWatermark(f, t)

	lo, hi := percentileRange(gray)
	q.dynamicRange = clamp01((hi - lo) / 255)
	q.dynRangeOK = q.dynamicRange >= t.MinDynamicRange

	q.total = q.totalScore()
	return q
}

// hasWatermark ищет плотные контрастные штрихи в верхней и нижней полосах кадра
func hasWatermark(f rgbFrame, t Thresholds) bool {
	band := int(float64(f.h) * t.WatermarkBand)
	if band < 3 {
		return false
	}
	top := edgeRatio(f.lumaPlane(image.Rect(0, 0, f.w, band)), t.WatermarkEdgeThreshold)
	bottom := edgeRatio(f.lumaPlane(image.Rect(0, f.h-band, f.w, f.h)), t.WatermarkEdgeThreshold)
	return math.Max(top, bottom) > t.MaxWatermarkEdgeRatio
}

// totalScore половина веса у непрерывных оценок, половина у проверок
func (q qualityScores) totalScore() float64 {
	scores := (q.sharpness + q.illumination + q.dynamicRange) / 3
	checks := []bool{
		q.isSharp, q.evenlyIlluminated, q.noFlare, q.leftEyeOpened, q.rightEyeOpened,
		q.rotationOK, q.notMasked, q.neutralEmotion, q.eyesDistanceOK, q.marginsOK,
		q.notNoisy, !q.watermark, q.dynRangeOK,
	}
	var passed int
	for _, c := range checks {
		if c {
			passed++
		}
	}
	return clamp01(0.5*scores + 0.5*float64(passed)/float64(len(checks)))
}

func (q qualityScores) toContext() Context {
	return Context{
		"total_score":                 q.total,
		"is_sharp":                    q.isSharp,
		"sharpness_score":             q.sharpness,
		"is_evenly_illuminated":       q.evenlyIlluminated,
		"illumination_score":          q.illumination,
		"no_flare":                    q.noFlare,
		"is_left_eye_opened":          q.leftEyeOpened,
		"is_right_eye_opened":         q.rightEyeOpened,
		"is_rotation_acceptable":      q.rotationOK,
		"not_masked":                  q.notMasked,
		"is_neutral_emotion":          q.neutralEmotion,
		"is_eyes_distance_acceptable": q.eyesDistanceOK,
		"eyes_distance":               q.eyesDistance,
		"is_margins_acceptable":       q.marginsOK,
		"is_not_noisy":                q.notNoisy,
		"has_watermark":               q.watermark,
		"dynamic_range_score":         q.dynamicRange,
		"is_dynamic_range_acceptable": q.dynRangeOK,
	}
}
