package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
)

// ScanRequest параметры одного запуска
type ScanRequest struct {
	RunID     string
	ImagesDir string
	Limit     int
	Workers   int
	Bins      int
}

// ScanReport итог запуска
type ScanReport struct {
	Summary   entity.RunSummary
	Files     []string // записанные локально файлы
	Published []string // адреса в объектном хранилище
	Histogram bool
}

// ScanHooks обратные вызовы для отображения прогресса
type ScanHooks struct {
	Located  func(total int)
	Progress ProgressFunc
}

// ScanService проводит запуск целиком: поиск, оценка, отчёты, публикация
type ScanService struct {
	locator   *ImageLocator
	runner    *BatchRunner
	reports   *ReportBuilder
	assessors port.AssessorFactory
	outputs   []Output
	paths     OutputPaths
	publisher *ReportPublisher
	notifier  port.RunNotifier
	log       logrus.FieldLogger
}

// NewScanService создаёт сервис запуска. outputs должен содержать CSV по paths.CSV,
// гистограмма строится по нему.
func NewScanService(
	locator *ImageLocator,
	runner *BatchRunner,
	reports *ReportBuilder,
	assessors port.AssessorFactory,
	outputs []Output,
	paths OutputPaths,
	log logrus.FieldLogger,
) *ScanService {
	return &ScanService{
		locator:   locator,
		runner:    runner,
		reports:   reports,
		assessors: assessors,
		outputs:   outputs,
		paths:     paths,
		log:       log,
	}
}

// WithPublisher включает публикацию отчётов
func (s *ScanService) WithPublisher(p *ReportPublisher) *ScanService {
	s.publisher = p
	return s
}

// WithNotifier включает уведомления о завершении
func (s *ScanService) WithNotifier(n port.RunNotifier) *ScanService {
	s.notifier = n
	return s
}

// Scan выполняет запуск. При отмене контекста частичный результат
// всё равно сохраняется, а ошибка отмены возвращается вместе с отчётом.
func (s *ScanService) Scan(ctx context.Context, req ScanRequest, hooks ScanHooks) (ScanReport, error) {
	log := s.log.WithField("run_id", req.RunID)

	images, err := s.locator.Locate(ctx, req.ImagesDir, req.Limit)
	if err != nil {
		return ScanReport{}, err
	}
	log.WithField("images", len(images)).Info("images located")
	if hooks.Located != nil {
		hooks.Located(len(images))
	}

	start := time.Now()
	result, runErr := s.assess(ctx, images, req.Workers, hooks.Progress)
	if result == nil {
		return ScanReport{}, runErr
	}
	elapsed := time.Since(start)

	table := s.reports.Build(result)
	files, err := s.reports.Persist(table, s.outputs...)
	if err != nil {
		return ScanReport{}, err
	}

	drawn, err := s.reports.HistogramFromCSV(s.paths.CSV, ScoreField, req.Bins, s.paths.Histogram)
	if err != nil {
		return ScanReport{}, err
	}
	if drawn {
		files = append(files, s.paths.Histogram)
	}

	report := ScanReport{
		Summary:   s.reports.Summarize(req.RunID, result, len(images), elapsed),
		Files:     files,
		Histogram: drawn,
	}
	log.Info(report.Summary.String())

	if runErr != nil {
		return report, runErr
	}

	if s.publisher != nil {
		// Локальные отчёты уже записаны, сбой публикации не валит запуск.
		uris, err := s.publisher.Publish(ctx, req.RunID, files...)
		if err != nil {
			log.WithError(err).Error("failed to publish reports")
		}
		report.Published = uris
	}

	var attachments []string
	if drawn {
		attachments = append(attachments, s.paths.Histogram)
	}
	Notify(ctx, s.notifier, report.Summary, log, attachments...)

	return report, nil
}

func (s *ScanService) assess(ctx context.Context, images []entity.ImageRef, workers int, progress ProgressFunc) (*entity.BatchResult, error) {
	if workers > 1 {
		return s.runner.RunParallel(ctx, images, s.assessors, workers, progress)
	}

	assessor, err := s.assessors()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := assessor.Close(); err != nil {
			s.log.WithError(err).Warn("failed to close assessor")
		}
	}()
	return s.runner.Run(ctx, images, assessor, progress)
}
