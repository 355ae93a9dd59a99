package entity

import (
	"errors"
	"strconv"
)

// ErrSchemaMismatch возвращается при попытке смешать записи разных режимов.
var ErrSchemaMismatch = errors.New("record mode does not match batch mode")

// QualityRecord результат оценки одного изображения.
// Реализации ограничены этим пакетом: AssessmentRecord и EstimationRecord.
type QualityRecord interface {
	Mode() Mode
	Filename() string
	TotalScore() int
	// Values возвращает значения ячеек в порядке Mode().Columns()
	Values() []string

	sealed()
}

// AssessmentRecord полная запись режима assessment
type AssessmentRecord struct {
	Name                     string
	Confidence               string // уже отформатирована с двумя знаками
	Total                    int
	IsSharp                  bool
	SharpnessScore           int
	IsEvenlyIlluminated      bool
	IlluminationScore        int
	NoFlare                  bool
	IsLeftEyeOpened          bool
	IsRightEyeOpened         bool
	IsRotationAcceptable     bool
	NotMasked                bool
	IsNeutralEmotion         bool
	IsEyesDistanceAcceptable bool
	EyesDistance             float64 // сырое значение движка
	IsMarginsAcceptable      bool
	IsNotNoisy               bool
	HasWatermark             bool
	DynamicRangeScore        int
	IsDynamicRangeAcceptable bool
}

func (r *AssessmentRecord) Mode() Mode       { return ModeAssessment }
func (r *AssessmentRecord) Filename() string { return r.Name }
func (r *AssessmentRecord) TotalScore() int  { return r.Total }
func (r *AssessmentRecord) sealed()          {}

func (r *AssessmentRecord) Values() []string {
	return []string{
		r.Name,
		r.Confidence,
		strconv.Itoa(r.Total),
		flag(r.IsSharp),
		strconv.Itoa(r.SharpnessScore),
		flag(r.IsEvenlyIlluminated),
		strconv.Itoa(r.IlluminationScore),
		flag(r.NoFlare),
		flag(r.IsLeftEyeOpened),
		flag(r.IsRightEyeOpened),
		flag(r.IsRotationAcceptable),
		flag(r.NotMasked),
		flag(r.IsNeutralEmotion),
		flag(r.IsEyesDistanceAcceptable),
		strconv.FormatFloat(r.EyesDistance, 'f', -1, 64),
		flag(r.IsMarginsAcceptable),
		flag(r.IsNotNoisy),
		flag(r.HasWatermark),
		strconv.Itoa(r.DynamicRangeScore),
		flag(r.IsDynamicRangeAcceptable),
	}
}

// EstimationRecord минимальная запись режима estimation
type EstimationRecord struct {
	Name  string
	Total int
}

func (r *EstimationRecord) Mode() Mode       { return ModeEstimation }
func (r *EstimationRecord) Filename() string { return r.Name }
func (r *EstimationRecord) TotalScore() int  { return r.Total }
func (r *EstimationRecord) sealed()          {}

func (r *EstimationRecord) Values() []string {
	return []string{r.Name, strconv.Itoa(r.Total)}
}

// flag записывает логическое значение как 0/1
func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// BatchResult упорядоченный набор успешных записей одного режима
type BatchResult struct {
	Mode    Mode
	Records []QualityRecord
}

// NewBatchResult создаёт пустой результат для режима
func NewBatchResult(mode Mode) *BatchResult {
	return &BatchResult{Mode: mode}
}

// Append добавляет запись, проверяя совпадение режима
func (b *BatchResult) Append(rec QualityRecord) error {
	if rec == nil {
		return errors.New("nil record")
	}
	if rec.Mode() != b.Mode {
		return ErrSchemaMismatch
	}
	b.Records = append(b.Records, rec)
	return nil
}

// Len возвращает количество записей
func (b *BatchResult) Len() int {
	return len(b.Records)
}

// Scores возвращает итоговые баллы в порядке обработки
func (b *BatchResult) Scores() []float64 {
	out := make([]float64, len(b.Records))
	for i, r := range b.Records {
		out[i] = float64(r.TotalScore())
	}
	return out
}
