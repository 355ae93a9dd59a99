package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
	apperrors "face-quality-scan/internal/errors"
	"face-quality-scan/internal/infrastructure/storage"
	"face-quality-scan/internal/logger"
)

func writeImages(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

type scanFixture struct {
	service  *ScanService
	paths    OutputPaths
	renderer *fakeRenderer
}

func newScanFixture(t *testing.T, mode entity.Mode) scanFixture {
	t.Helper()
	log := logger.Discard()
	renderer := &fakeRenderer{}
	csvTable := storage.NewCSVTable()
	paths := ResultPaths(filepath.Join(t.TempDir(), "results"))

	factory := port.AssessorFactory(func() (port.QualityAssessor, error) {
		return &stubAssessor{mode: mode}, nil
	})
	service := NewScanService(
		NewImageLocator(1, log),
		NewBatchRunner(log),
		NewReportBuilder(csvTable, renderer, log),
		factory,
		[]Output{{Writer: csvTable, Destination: paths.CSV}},
		paths,
		log,
	)
	return scanFixture{service: service, paths: paths, renderer: renderer}
}

func TestScanService_FullRun(t *testing.T) {
	dir := writeImages(t, map[string]string{
		"a.png":     "score:80",
		"b.png":     "noface",
		"c.txt":     "score:10",
		"sub/d.jpg": "score:40",
	})
	f := newScanFixture(t, entity.ModeEstimation)

	store := storage.NewMemoryObjectStore()
	notifier := &recordingNotifier{}
	f.service.WithPublisher(NewReportPublisher(store, "reports", "scans", logger.Discard())).WithNotifier(notifier)

	var located, progressed int
	report, err := f.service.Scan(context.Background(),
		ScanRequest{RunID: "run-1", ImagesDir: dir, Workers: 1, Bins: 10},
		ScanHooks{
			Located:  func(total int) { located = total },
			Progress: func(entity.QualityRecord) { progressed++ },
		})
	require.NoError(t, err)

	require.Equal(t, 3, located)
	require.Equal(t, 2, progressed)
	require.Equal(t, 2, report.Summary.Scored)
	require.Equal(t, 3, report.Summary.Located)
	require.Equal(t, 60.0, report.Summary.MeanScore)
	require.True(t, report.Histogram)
	require.Equal(t, []string{f.paths.CSV, f.paths.Histogram}, report.Files)
	require.Equal(t, [][]float64{{80, 40}}, f.renderer.values)

	data, err := os.ReadFile(f.paths.CSV)
	require.NoError(t, err)
	require.Equal(t, "filename,totalScore\na.png,80\nd.jpg,40\n", string(data))

	require.Len(t, report.Published, 2)
	require.Equal(t, 2, store.Len())
	_, ok := store.Get("reports", "scans/run-1/result.csv")
	require.True(t, ok)

	require.Len(t, notifier.summaries, 1)
	require.Equal(t, "run-1", notifier.summaries[0].RunID)
	require.Equal(t, []string{f.paths.Histogram}, notifier.attachments[0])
}

func TestScanService_ParallelMatchesSequential(t *testing.T) {
	files := map[string]string{}
	for i, n := range []string{"a", "b", "c", "d", "e", "f"} {
		files[n+".png"] = fmt.Sprintf("score:%d", (i+1)*10)
	}
	dir := writeImages(t, files)

	seq := newScanFixture(t, entity.ModeAssessment)
	_, err := seq.service.Scan(context.Background(), ScanRequest{RunID: "s", ImagesDir: dir, Workers: 1, Bins: 4}, ScanHooks{})
	require.NoError(t, err)

	par := newScanFixture(t, entity.ModeAssessment)
	_, err = par.service.Scan(context.Background(), ScanRequest{RunID: "p", ImagesDir: dir, Workers: 3, Bins: 4}, ScanHooks{})
	require.NoError(t, err)

	want, err := os.ReadFile(seq.paths.CSV)
	require.NoError(t, err)
	got, err := os.ReadFile(par.paths.CSV)
	require.NoError(t, err)
	require.Equal(t, string(want), string(got))
}

func TestScanService_NoFacesWritesHeaderOnly(t *testing.T) {
	dir := writeImages(t, map[string]string{"a.png": "noface"})
	f := newScanFixture(t, entity.ModeEstimation)
	notifier := &recordingNotifier{}
	f.service.WithNotifier(notifier)

	report, err := f.service.Scan(context.Background(), ScanRequest{RunID: "r", ImagesDir: dir, Workers: 1, Bins: 10}, ScanHooks{})
	require.NoError(t, err)
	require.False(t, report.Histogram)
	require.Equal(t, []string{f.paths.CSV}, report.Files)
	require.NoFileExists(t, f.paths.Histogram)

	data, err := os.ReadFile(f.paths.CSV)
	require.NoError(t, err)
	require.Equal(t, "filename,totalScore\n", string(data))
	require.Empty(t, notifier.attachments[0])
}

func TestScanService_MissingImagesDir(t *testing.T) {
	f := newScanFixture(t, entity.ModeEstimation)
	_, err := f.service.Scan(context.Background(),
		ScanRequest{ImagesDir: filepath.Join(t.TempDir(), "nope"), Workers: 1, Bins: 10}, ScanHooks{})
	require.True(t, apperrors.IsKind(err, apperrors.KindStorage))
	require.NoFileExists(t, f.paths.CSV)
}

func TestScanService_CancelledRunKeepsPartialTable(t *testing.T) {
	dir := writeImages(t, map[string]string{"a.png": "score:1", "b.png": "score:2"})
	f := newScanFixture(t, entity.ModeEstimation)
	notifier := &recordingNotifier{}
	f.service.WithNotifier(notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	report, err := f.service.Scan(ctx, ScanRequest{RunID: "r", ImagesDir: dir, Workers: 1, Bins: 10},
		ScanHooks{Progress: func(entity.QualityRecord) { cancel() }})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, report.Summary.Scored)

	data, readErr := os.ReadFile(f.paths.CSV)
	require.NoError(t, readErr)
	require.Equal(t, "filename,totalScore\na.png,1\n", string(data))
	require.Empty(t, notifier.summaries)
}
