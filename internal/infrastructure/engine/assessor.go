package engine

import (
	"context"
	"math"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
)

// Assessor оценивает качество лица на одном изображении.
// Экземпляр не потокобезопасен: для параллельной работы нужен свой Assessor на воркер.
type Assessor struct {
	mode     entity.Mode
	service  *Service
	block    ProcessingBlock
	capturer *Capturer
	log      logrus.FieldLogger
}

// NewAssessor поднимает движок из sdkPath в режиме modification.
// Ошибки конфигурации (нет библиотек, неизвестный режим) возвращаются с KindConfig.
func NewAssessor(sdkPath, modification string, log logrus.FieldLogger, opts ...Option) (*Assessor, error) {
	return NewAssessorWithLayout(ResolveLayout(sdkPath, runtime.GOOS), modification, log, opts...)
}

// NewAssessorWithLayout поднимает движок по готовой раскладке SDK
func NewAssessorWithLayout(layout Layout, modification string, log logrus.FieldLogger, opts ...Option) (*Assessor, error) {
	service, err := NewService(layout, opts...)
	if err != nil {
		return nil, err
	}

	block, err := service.CreateProcessingBlock(QualityBlockConfig(modification, layout))
	if err != nil {
		_ = service.Close()
		return nil, err
	}

	capturer, err := service.CreateCapturer(CapturerConfig{Name: DefaultCapturerConfig})
	if err != nil {
		_ = service.Close()
		return nil, err
	}

	return &Assessor{
		mode:     entity.Mode(modification),
		service:  service,
		block:    block,
		capturer: capturer,
		log:      log.WithField("mode", modification),
	}, nil
}

// Factory возвращает фабрику независимых оценщиков для параллельных воркеров
func Factory(sdkPath, modification string, log logrus.FieldLogger, opts ...Option) port.AssessorFactory {
	return func() (port.QualityAssessor, error) {
		return NewAssessor(sdkPath, modification, log, opts...)
	}
}

func (a *Assessor) Mode() entity.Mode {
	return a.mode
}

// Assess возвращает запись для первого найденного лица или false
func (a *Assessor) Assess(ctx context.Context, ref entity.ImageRef, data []byte) (entity.QualityRecord, bool) {
	log := a.log.WithField("image", ref.Path)

	frame, err := decodeRGB(data)
	if err != nil {
		log.WithError(err).Debug("image skipped: decode failed")
		return nil, false
	}
	encoded, err := frame.encodePNG()
	if err != nil {
		log.WithError(err).Debug("image skipped: png encode failed")
		return nil, false
	}

	samples, err := a.capturer.Capture(ctx, encoded)
	if err != nil {
		log.WithError(err).Debug("image skipped: face capture failed")
		return nil, false
	}

	ioData := a.service.CreateContext(map[string]any{"image": frame.imageContext()})
	ioData["objects"] = []Context{}
	for _, s := range samples {
		ioData.PushObject(s.ToContext(frame.width, frame.height))
	}

	if err := a.block.Process(ioData); err != nil {
		log.WithError(err).Debug("image skipped: quality block failed")
		return nil, false
	}

	objects := ioData.Objects()
	if len(objects) == 0 {
		log.Debug("image skipped: no face found")
		return nil, false
	}
	// Оценивается только первое лицо, остальные игнорируются.
	return recordFromObject(a.mode, ref.Name(), objects[0]), true
}

// Close освобождает движок
func (a *Assessor) Close() error {
	return a.service.Close()
}

// recordFromObject переводит поля контекста в запись отчёта
func recordFromObject(mode entity.Mode, filename string, obj Context) entity.QualityRecord {
	q, _ := obj.Sub("quality")
	score := func(key string) int {
		v, _ := q.Float(key)
		return scale(v)
	}
	check := func(key string) bool {
		v, _ := q.Bool(key)
		return v
	}

	if mode == entity.ModeEstimation {
		return &entity.EstimationRecord{Name: filename, Total: score("total_score")}
	}

	confidence, _ := obj.Float("confidence")
	eyesDistance, _ := q.Float("eyes_distance")
	return &entity.AssessmentRecord{
		Name:                     filename,
		Confidence:               formatConfidence(confidence),
		Total:                    score("total_score"),
		IsSharp:                  check("is_sharp"),
		SharpnessScore:           score("sharpness_score"),
		IsEvenlyIlluminated:      check("is_evenly_illuminated"),
		IlluminationScore:        score("illumination_score"),
		NoFlare:                  check("no_flare"),
		IsLeftEyeOpened:          check("is_left_eye_opened"),
		IsRightEyeOpened:         check("is_right_eye_opened"),
		IsRotationAcceptable:     check("is_rotation_acceptable"),
		NotMasked:                check("not_masked"),
		IsNeutralEmotion:         check("is_neutral_emotion"),
		IsEyesDistanceAcceptable: check("is_eyes_distance_acceptable"),
		EyesDistance:             eyesDistance,
		IsMarginsAcceptable:      check("is_margins_acceptable"),
		IsNotNoisy:               check("is_not_noisy"),
		HasWatermark:             check("has_watermark"),
		DynamicRangeScore:        score("dynamic_range_score"),
		IsDynamicRangeAcceptable: check("is_dynamic_range_acceptable"),
	}
}

// scale переводит оценку 0..1 в целое 0..100 с отбрасыванием дробной части
func scale(v float64) int {
	return int(v * 100)
}

// formatConfidence округляет до двух знаков и форматирует строкой
func formatConfidence(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}

// Проверка реализации интерфейса
var _ port.QualityAssessor = (*Assessor)(nil)
