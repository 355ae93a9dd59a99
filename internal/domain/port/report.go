package port

import (
	"context"

	"face-quality-scan/internal/domain/entity"
)

// TableWriter сохраняет таблицу отчёта по указанному пути
type TableWriter interface {
	Write(table *entity.Table, destination string) error
}

// TableReader читает ранее сохранённую таблицу.
// Для отсутствующего файла ошибка должна удовлетворять errors.Is(err, fs.ErrNotExist).
type TableReader interface {
	Read(source string) (*entity.Table, error)
}

// HistogramRenderer рисует гистограмму и сохраняет картинку
type HistogramRenderer interface {
	Render(values []float64, bins int, destination string) error
}

// ObjectStore интерфейс объектного хранилища для публикации отчётов
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// RunNotifier отправляет сводку по запуску
type RunNotifier interface {
	Notify(ctx context.Context, summary entity.RunSummary, attachments ...string) error
}
