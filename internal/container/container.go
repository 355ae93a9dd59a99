package container

import (
	"github.com/sirupsen/logrus"

	"face-quality-scan/config"
	telegram "face-quality-scan/internal/api"
	app "face-quality-scan/internal/application"
	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
	apperrors "face-quality-scan/internal/errors"
	"face-quality-scan/internal/infrastructure/chart"
	"face-quality-scan/internal/infrastructure/engine"
	"face-quality-scan/internal/infrastructure/storage"
)

type Container struct {
	Mode      entity.Mode
	Paths     app.OutputPaths
	Publisher *app.ReportPublisher // nil, если S3 не настроен
	Notifier  port.RunNotifier     // nil, если Telegram не настроен
	Scan      *app.ScanService
}

// Option переопределяет зависимости при сборке
type Option func(*options)

type options struct {
	assessors   port.AssessorFactory
	newNotifier func(cfg config.TelegramConfig, log logrus.FieldLogger) (port.RunNotifier, error)
}

// WithAssessorFactory подменяет фабрику оценщиков
func WithAssessorFactory(f port.AssessorFactory) Option {
	return func(o *options) { o.assessors = f }
}

// WithNotifierFactory подменяет создание уведомителя
func WithNotifierFactory(f func(cfg config.TelegramConfig, log logrus.FieldLogger) (port.RunNotifier, error)) Option {
	return func(o *options) { o.newNotifier = f }
}

func defaultNotifier(cfg config.TelegramConfig, log logrus.FieldLogger) (port.RunNotifier, error) {
	return telegram.NewNotifier(cfg.Token, cfg.ChatID, log)
}

// New собирает сервисы приложения по конфигурации
func New(cfg *config.Config, log logrus.FieldLogger, opts ...Option) (*Container, error) {
	o := options{newNotifier: defaultNotifier}
	for _, opt := range opts {
		opt(&o)
	}

	mode, err := entity.ParseMode(cfg.Modification)
	if err != nil {
		return nil, apperrors.Config("container.New", "invalid modification", err)
	}
	if o.assessors == nil {
		o.assessors = engine.Factory(cfg.SDKPath, string(mode), log)
	}

	csvTable := storage.NewCSVTable()
	paths := app.ResultPaths(cfg.ResultsDir)
	outputs := []app.Output{{Writer: csvTable, Destination: paths.CSV}}
	if cfg.Parquet {
		outputs = append(outputs, app.Output{Writer: storage.NewParquetTable(), Destination: paths.Parquet})
	}

	c := &Container{Mode: mode, Paths: paths}
	c.Scan = app.NewScanService(
		app.NewImageLocator(cfg.Seed, log),
		app.NewBatchRunner(log),
		app.NewReportBuilder(csvTable, chart.NewHistogramPNG(), log),
		o.assessors,
		outputs,
		paths,
		log,
	)

	if cfg.S3.Enabled() {
		store, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
		})
		if err != nil {
			return nil, apperrors.Config("container.New", "invalid s3 settings", err)
		}
		c.Publisher = app.NewReportPublisher(store, cfg.S3.Bucket, cfg.S3.Prefix, log)
		c.Scan.WithPublisher(c.Publisher)
	}

	if cfg.Telegram.Enabled() {
		notifier, err := o.newNotifier(cfg.Telegram, log)
		if err != nil {
			// Без уведомлений запуск всё равно полезен.
			log.WithError(err).Warn("telegram notifications are disabled")
		} else {
			c.Notifier = notifier
			c.Scan.WithNotifier(notifier)
		}
	}

	return c, nil
}
