package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
)

// CSVTable пишет и читает отчёт в CSV: заголовок и строки, разделитель запятая
type CSVTable struct{}

// NewCSVTable создаёт CSV-хранилище таблиц
func NewCSVTable() *CSVTable {
	return &CSVTable{}
}

// Write перезаписывает файл destination, создавая каталоги при необходимости
func (c *CSVTable) Write(table *entity.Table, destination string) error {
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	w := csv.NewWriter(f)
	header := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col.Name
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	return f.Close()
}

// Read читает CSV с заголовком. Типы колонок берутся из схемы режима,
// если заголовок с ней совпадает.
func (c *CSVTable) Read(source string) (*entity.Table, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return &entity.Table{}, nil
	}

	return &entity.Table{
		Columns: columnsFor(records[0]),
		Rows:    records[1:],
	}, nil
}

func columnsFor(header []string) []entity.Column {
	for _, mode := range []entity.Mode{entity.ModeAssessment, entity.ModeEstimation} {
		cols := mode.Columns()
		if sameNames(cols, header) {
			return cols
		}
	}
	cols := make([]entity.Column, len(header))
	for i, name := range header {
		cols[i] = entity.Column{Name: name, Kind: entity.KindString}
	}
	return cols
}

func sameNames(cols []entity.Column, names []string) bool {
	if len(cols) != len(names) {
		return false
	}
	for i := range cols {
		if cols[i].Name != names[i] {
			return false
		}
	}
	return true
}

var (
	_ port.TableWriter = (*CSVTable)(nil)
	_ port.TableReader = (*CSVTable)(nil)
)
