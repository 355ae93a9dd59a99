package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"face-quality-scan/internal/domain/entity"
	apperrors "face-quality-scan/internal/errors"
	"face-quality-scan/internal/infrastructure/storage"
	"face-quality-scan/internal/logger"
)

type recordingNotifier struct {
	summaries   []entity.RunSummary
	attachments [][]string
	err         error
}

func (n *recordingNotifier) Notify(_ context.Context, s entity.RunSummary, attachments ...string) error {
	n.summaries = append(n.summaries, s)
	n.attachments = append(n.attachments, attachments)
	return n.err
}

func TestReportPublisher_Publish(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "result.csv")
	pngPath := filepath.Join(dir, "total_score_histogram.png")
	require.NoError(t, os.WriteFile(csvPath, []byte("filename,totalScore\n"), 0o644))
	require.NoError(t, os.WriteFile(pngPath, []byte("png"), 0o644))

	store := storage.NewMemoryObjectStore()
	p := NewReportPublisher(store, "reports", "/face-quality/", logger.Discard())

	uris, err := p.Publish(context.Background(), "run-1", csvPath, pngPath)
	require.NoError(t, err)
	require.Equal(t, []string{
		"s3://reports/face-quality/run-1/result.csv",
		"s3://reports/face-quality/run-1/total_score_histogram.png",
	}, uris)

	obj, ok := store.Get("reports", "face-quality/run-1/result.csv")
	require.True(t, ok)
	require.Equal(t, "text/csv", obj.ContentType)
	require.Equal(t, "filename,totalScore\n", string(obj.Data))

	obj, ok = store.Get("reports", "face-quality/run-1/total_score_histogram.png")
	require.True(t, ok)
	require.Equal(t, "image/png", obj.ContentType)
}

func TestReportPublisher_MissingFile(t *testing.T) {
	store := storage.NewMemoryObjectStore()
	p := NewReportPublisher(store, "reports", "", logger.Discard())

	uris, err := p.Publish(context.Background(), "run", filepath.Join(t.TempDir(), "absent.csv"))
	require.Empty(t, uris)
	require.True(t, apperrors.IsKind(err, apperrors.KindStorage))
	require.Zero(t, store.Len())
}

func TestReportPublisher_ObjectKey(t *testing.T) {
	p := NewReportPublisher(nil, "b", "", logger.Discard())
	require.Equal(t, "run/result.csv", p.ObjectKey("run", "/tmp/results/result.csv"))
}

func TestNotify_FailureIsNotFatal(t *testing.T) {
	n := &recordingNotifier{err: errors.New("chat not found")}
	Notify(context.Background(), n, entity.RunSummary{RunID: "r"}, logger.Discard(), "h.png")
	require.Len(t, n.summaries, 1)
	require.Equal(t, []string{"h.png"}, n.attachments[0])

	// без уведомителя ничего не происходит
	Notify(context.Background(), nil, entity.RunSummary{}, logger.Discard())
}
