package entity

import (
	"fmt"
	"strconv"
	"time"
)

// Table табличное представление результата запуска
type Table struct {
	Columns []Column
	Rows    [][]string
}

// ColumnIndex ищет колонку по имени
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Floats разбирает числовую колонку
func (t *Table) Floats(name string) ([]float64, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]float64, 0, len(t.Rows))
	for i, row := range t.Rows {
		if idx >= len(row) {
			return nil, fmt.Errorf("row %d: missing column %q", i, name)
		}
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: column %q: %w", i, name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// RunSummary сводка по запуску
type RunSummary struct {
	RunID     string
	Mode      Mode
	Located   int // сколько изображений найдено
	Scored    int // сколько изображений оценено
	Duration  time.Duration
	MeanScore float64
	MinScore  float64
	MaxScore  float64
}

// Skipped возвращает число пропущенных изображений
func (s RunSummary) Skipped() int {
	return s.Located - s.Scored
}

func (s RunSummary) String() string {
	line := fmt.Sprintf("scored %d of %d images (%s mode)", s.Scored, s.Located, s.Mode)
	if s.Scored > 0 {
		line += fmt.Sprintf(", total score mean %.1f, min %.0f, max %.0f", s.MeanScore, s.MinScore, s.MaxScore)
	}
	return line
}
