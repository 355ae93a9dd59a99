package app

import (
	"context"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
)

// ProgressFunc вызывается один раз на каждое успешно оценённое изображение
type ProgressFunc func(rec entity.QualityRecord)

// BatchRunner прогоняет список изображений через оценщик
type BatchRunner struct {
	log      logrus.FieldLogger
	readFile func(string) ([]byte, error)
}

// NewBatchRunner создаёт раннер, читающий файлы с диска
func NewBatchRunner(log logrus.FieldLogger) *BatchRunner {
	return &BatchRunner{log: log, readFile: os.ReadFile}
}

// Run обрабатывает изображения последовательно в порядке входа.
// Нечитаемые файлы и изображения без лица пропускаются. Отмена контекста
// проверяется между изображениями, при отмене возвращается частичный результат.
func (r *BatchRunner) Run(ctx context.Context, images []entity.ImageRef, assessor port.QualityAssessor, progress ProgressFunc) (*entity.BatchResult, error) {
	result := entity.NewBatchResult(assessor.Mode())

	for _, ref := range images {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rec, ok := r.assessOne(ctx, assessor, ref)
		if !ok {
			continue
		}
		if err := result.Append(rec); err != nil {
			return result, err
		}
		if progress != nil {
			progress(rec)
		}
	}

	r.log.WithFields(logrus.Fields{"scored": result.Len(), "total": len(images)}).Debug("batch finished")
	return result, nil
}

// RunParallel раздаёт изображения воркерам, у каждого свой оценщик из factory.
// Порядок записей совпадает с порядком входа.
func (r *BatchRunner) RunParallel(ctx context.Context, images []entity.ImageRef, factory port.AssessorFactory, workers int, progress ProgressFunc) (*entity.BatchResult, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(images) {
		workers = max(len(images), 1)
	}

	// Оценщики создаём заранее: ошибка конфигурации должна остановить запуск до обработки.
	assessors := make([]port.QualityAssessor, 0, workers)
	defer func() {
		for _, a := range assessors {
			if err := a.Close(); err != nil {
				r.log.WithError(err).Warn("failed to close assessor")
			}
		}
	}()
	for i := 0; i < workers; i++ {
		a, err := factory()
		if err != nil {
			return nil, err
		}
		assessors = append(assessors, a)
	}
	mode := assessors[0].Mode()

	slots := make([]entity.QualityRecord, len(images))
	jobs := make(chan int)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range images {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for _, a := range assessors {
		g.Go(func() error {
			for i := range jobs {
				rec, ok := r.assessOne(gctx, a, images[i])
				if !ok {
					continue
				}
				slots[i] = rec
				if progress != nil {
					mu.Lock()
					progress(rec)
					mu.Unlock()
				}
			}
			return nil
		})
	}
	// Ошибку может вернуть только раздача заданий, и только при отмене ctx.
	waitErr := g.Wait()

	result := entity.NewBatchResult(mode)
	for _, rec := range slots {
		if rec == nil {
			continue
		}
		if err := result.Append(rec); err != nil {
			return result, err
		}
	}
	return result, waitErr
}

func (r *BatchRunner) assessOne(ctx context.Context, assessor port.QualityAssessor, ref entity.ImageRef) (entity.QualityRecord, bool) {
	data, err := r.readFile(ref.Path)
	if err != nil {
		r.log.WithError(err).WithField("image", ref.Path).Debug("image skipped: cannot read file")
		return nil, false
	}
	return assessor.Assess(ctx, ref, data)
}
