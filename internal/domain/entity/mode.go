package entity

import "fmt"

// Mode режим оценки качества, выбирается один раз на весь запуск
type Mode string

const (
	ModeAssessment Mode = "assessment" // полный набор метрик
	ModeEstimation Mode = "estimation" // только итоговый балл
)

// ColumnKind тип значения колонки отчёта
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindInt
	KindFloat
)

// Column описывает колонку отчёта
type Column struct {
	Name string
	Kind ColumnKind
}

var assessmentColumns = []Column{
	{"filename", KindString},
	{"confidence", KindString},
	{"totalScore", KindInt},
	{"isSharp", KindInt},
	{"sharpnessScore", KindInt},
	{"isEvenlyIlluminated", KindInt},
	{"illuminationScore", KindInt},
	{"noFlare", KindInt},
	{"isLeftEyeOpened", KindInt},
	{"isRightEyeOpened", KindInt},
	{"isRotationAcceptable", KindInt},
	{"notMasked", KindInt},
	{"isNeutralEmotion", KindInt},
	{"isEyesDistanceAcceptable", KindInt},
	{"eyesDistance", KindFloat},
	{"isMarginsAcceptable", KindInt},
	{"isNotNoisy", KindInt},
	{"hasWatermark", KindInt},
	{"dynamicRangeScore", KindInt},
	{"isDynamicRangeAcceptable", KindInt},
}

var estimationColumns = []Column{
	{"filename", KindString},
	{"totalScore", KindInt},
}

// ParseMode разбирает строку режима
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAssessment, ModeEstimation:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown modification %q", s)
	}
}

// Columns возвращает фиксированную схему отчёта для режима.
// Возвращается копия, чтобы вызывающий код не мог испортить схему.
func (m Mode) Columns() []Column {
	var src []Column
	switch m {
	case ModeAssessment:
		src = assessmentColumns
	case ModeEstimation:
		src = estimationColumns
	}
	out := make([]Column, len(src))
	copy(out, src)
	return out
}

// ColumnNames возвращает только имена колонок
func (m Mode) ColumnNames() []string {
	cols := m.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
