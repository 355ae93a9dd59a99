package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
)

// ParquetTable пишет отчёт в Parquet с типами колонок из схемы
type ParquetTable struct{}

// NewParquetTable создаёт Parquet-писатель
func NewParquetTable() *ParquetTable {
	return &ParquetTable{}
}

// Write собирает файл в памяти и перезаписывает destination
func (p *ParquetTable) Write(table *entity.Table, destination string) error {
	buf := &bytes.Buffer{}
	pfw := writerfile.NewWriterFile(buf)
	pw, err := writer.NewJSONWriter(BuildParquetSchema(table.Columns), pfw, 4)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, row := range table.Rows {
		doc, err := projectRow(table.Columns, row)
		if err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("row %d: %w", i, err)
		}
		if err := pw.Write(doc); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet: %w", err)
	}
	_ = pfw.Close()

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(destination, buf.Bytes(), 0o644)
}

// BuildParquetSchema строит JSON-схему parquet-go по колонкам отчёта
func BuildParquetSchema(cols []entity.Column) string {
	fields := make([]map[string]string, 0, len(cols))
	for _, c := range cols {
		fields = append(fields, map[string]string{
			"Tag": fmt.Sprintf("name=%s, %s, repetitiontype=REQUIRED", c.Name, parquetType(c.Kind)),
		})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func parquetType(kind entity.ColumnKind) string {
	switch kind {
	case entity.KindInt:
		return "type=INT64"
	case entity.KindFloat:
		return "type=DOUBLE"
	default:
		return "type=BYTE_ARRAY, convertedtype=UTF8"
	}
}

// projectRow превращает строку CSV-вида в JSON-документ с типизированными значениями
func projectRow(cols []entity.Column, row []string) (string, error) {
	if len(row) != len(cols) {
		return "", fmt.Errorf("expected %d values, got %d", len(cols), len(row))
	}
	doc := make(map[string]any, len(cols))
	for i, c := range cols {
		switch c.Kind {
		case entity.KindInt:
			v, err := strconv.ParseInt(row[i], 10, 64)
			if err != nil {
				return "", fmt.Errorf("column %s: %w", c.Name, err)
			}
			doc[c.Name] = v
		case entity.KindFloat:
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				return "", fmt.Errorf("column %s: %w", c.Name, err)
			}
			doc[c.Name] = v
		default:
			doc[c.Name] = row[i]
		}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var _ port.TableWriter = (*ParquetTable)(nil)
