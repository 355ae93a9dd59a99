package app

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
	apperrors "face-quality-scan/internal/errors"
)

const (
	ResultFileName    = "result.csv"
	ParquetFileName   = "result.parquet"
	HistogramFileName = "total_score_histogram.png"
	// ScoreField колонка, по которой строится гистограмма
	ScoreField = "totalScore"
)

// Output куда и чем сохранить таблицу
type Output struct {
	Writer      port.TableWriter
	Destination string
}

// ReportBuilder собирает таблицу, сохраняет её и рисует гистограмму
type ReportBuilder struct {
	reader    port.TableReader
	histogram port.HistogramRenderer
	log       logrus.FieldLogger
}

// NewReportBuilder создаёт построитель отчётов
func NewReportBuilder(reader port.TableReader, histogram port.HistogramRenderer, log logrus.FieldLogger) *ReportBuilder {
	return &ReportBuilder{reader: reader, histogram: histogram, log: log}
}

// Build превращает результат запуска в таблицу с колонками режима
func (b *ReportBuilder) Build(result *entity.BatchResult) *entity.Table {
	table := &entity.Table{
		Columns: result.Mode.Columns(),
		Rows:    make([][]string, 0, result.Len()),
	}
	for _, rec := range result.Records {
		table.Rows = append(table.Rows, rec.Values())
	}
	return table
}

// Persist сохраняет таблицу во все выходы и возвращает записанные пути
func (b *ReportBuilder) Persist(table *entity.Table, outputs ...Output) ([]string, error) {
	written := make([]string, 0, len(outputs))
	for _, out := range outputs {
		if err := out.Writer.Write(table, out.Destination); err != nil {
			return written, apperrors.Storage("ReportBuilder.Persist", "cannot write "+out.Destination, err)
		}
		b.log.WithFields(logrus.Fields{"path": out.Destination, "rows": len(table.Rows)}).Info("report saved")
		written = append(written, out.Destination)
	}
	return written, nil
}

// Histogram рисует гистограмму по колонке field. Если колонки нет
// или в ней нет значений, картинка не пишется и возвращается false.
func (b *ReportBuilder) Histogram(table *entity.Table, field string, bins int, destination string) (bool, error) {
	if _, ok := table.ColumnIndex(field); !ok {
		b.log.Warnf("The %s column was not found in the report", field)
		return false, nil
	}
	values, err := table.Floats(field)
	if err != nil {
		return false, apperrors.Wrap(apperrors.KindProcessing, "ReportBuilder.Histogram", "invalid "+field+" values", err)
	}
	if len(values) == 0 {
		b.log.Warnf("No %s values to plot, histogram is not written", field)
		return false, nil
	}
	if err := b.histogram.Render(values, bins, destination); err != nil {
		return false, apperrors.Storage("ReportBuilder.Histogram", "cannot write "+destination, err)
	}
	b.log.WithField("path", destination).Info("histogram saved")
	return true, nil
}

// HistogramFromCSV строит гистограмму по ранее сохранённому отчёту
func (b *ReportBuilder) HistogramFromCSV(source, field string, bins int, destination string) (bool, error) {
	table, err := b.reader.Read(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.log.Warnf("File %s not found.", source)
			return false, nil
		}
		return false, apperrors.Storage("ReportBuilder.HistogramFromCSV", "cannot read "+source, err)
	}
	if _, ok := table.ColumnIndex(field); !ok {
		b.log.Warnf("The %s column was not found in the %s file.", field, source)
		return false, nil
	}
	return b.Histogram(table, field, bins, destination)
}

// Summarize собирает сводку по запуску
func (b *ReportBuilder) Summarize(runID string, result *entity.BatchResult, located int, elapsed time.Duration) entity.RunSummary {
	summary := entity.RunSummary{
		RunID:    runID,
		Mode:     result.Mode,
		Located:  located,
		Scored:   result.Len(),
		Duration: elapsed,
	}
	scores := result.Scores()
	if len(scores) > 0 {
		summary.MeanScore = stat.Mean(scores, nil)
		summary.MinScore = floats.Min(scores)
		summary.MaxScore = floats.Max(scores)
	}
	return summary
}

// OutputPaths стандартные пути файлов отчёта в каталоге dir
type OutputPaths struct {
	CSV       string
	Parquet   string
	Histogram string
}

// ResultPaths возвращает пути отчётов внутри каталога результатов
func ResultPaths(dir string) OutputPaths {
	return OutputPaths{
		CSV:       filepath.Join(dir, ResultFileName),
		Parquet:   filepath.Join(dir, ParquetFileName),
		Histogram: filepath.Join(dir, HistogramFileName),
	}
}
