package port

import (
	"context"

	"face-quality-scan/internal/domain/entity"
)

// QualityAssessor интерфейс оценщика качества лица
type QualityAssessor interface {
	// Assess оценивает одно изображение. false означает отсутствие результата:
	// лицо не найдено или изображение не декодируется.
	Assess(ctx context.Context, ref entity.ImageRef, data []byte) (entity.QualityRecord, bool)

	// Mode возвращает режим, в котором создан оценщик
	Mode() entity.Mode

	// Close освобождает ресурсы движка
	Close() error
}

// AssessorFactory создаёт независимый оценщик со своим экземпляром движка
type AssessorFactory func() (QualityAssessor, error)

// FaceLocalizer интерфейс локализатора лиц
type FaceLocalizer interface {
	// Capture находит лица на закодированном изображении
	Capture(ctx context.Context, encoded []byte) ([]entity.FaceRegion, error)

	Close() error
}
