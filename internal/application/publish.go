package app

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
	apperrors "face-quality-scan/internal/errors"
)

var contentTypes = map[string]string{
	".csv":     "text/csv",
	".png":     "image/png",
	".parquet": "application/vnd.apache.parquet",
}

// ReportPublisher выкладывает файлы отчёта в объектное хранилище
type ReportPublisher struct {
	store  port.ObjectStore
	bucket string
	prefix string
	log    logrus.FieldLogger
}

// NewReportPublisher создаёт публикатор для bucket с префиксом ключей prefix
func NewReportPublisher(store port.ObjectStore, bucket, prefix string, log logrus.FieldLogger) *ReportPublisher {
	return &ReportPublisher{store: store, bucket: bucket, prefix: strings.Trim(prefix, "/"), log: log}
}

// ObjectKey возвращает ключ объекта: <prefix>/<runID>/<имя файла>
func (p *ReportPublisher) ObjectKey(runID, file string) string {
	return path.Join(p.prefix, runID, filepath.Base(file))
}

// Publish загружает файлы и возвращает их адреса s3://bucket/key
func (p *ReportPublisher) Publish(ctx context.Context, runID string, files ...string) ([]string, error) {
	uris := make([]string, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return uris, apperrors.Storage("ReportPublisher.Publish", "cannot read "+file, err)
		}

		key := p.ObjectKey(runID, file)
		contentType, ok := contentTypes[strings.ToLower(filepath.Ext(file))]
		if !ok {
			contentType = "application/octet-stream"
		}
		if err := p.store.PutObject(ctx, p.bucket, key, data, contentType); err != nil {
			return uris, apperrors.Storage("ReportPublisher.Publish", "cannot upload "+key, err)
		}

		uri := fmt.Sprintf("s3://%s/%s", p.bucket, key)
		p.log.WithField("object", uri).Info("report published")
		uris = append(uris, uri)
	}
	return uris, nil
}

// Notify отправляет сводку, ошибки уведомления не прерывают запуск
func Notify(ctx context.Context, notifier port.RunNotifier, summary entity.RunSummary, log logrus.FieldLogger, attachments ...string) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, summary, attachments...); err != nil {
		log.WithError(err).Warn("failed to send run notification")
	}
}
