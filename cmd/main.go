package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"face-quality-scan/config"
	app "face-quality-scan/internal/application"
	"face-quality-scan/internal/container"
	"face-quality-scan/internal/domain/entity"
	apperrors "face-quality-scan/internal/errors"
	"face-quality-scan/internal/logger"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	runLog := log.WithFields(logrus.Fields{"run_id": runID, "mode": cfg.Modification})

	// Собираем сервисы приложения
	appContainer, err := container.New(cfg, runLog)
	if err != nil {
		runLog.Fatalf("Failed to initialize: %v", err)
	}

	var bar *progressbar.ProgressBar
	hooks := app.ScanHooks{
		Located: func(total int) {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("scoring"),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(100*time.Millisecond),
			)
		},
		Progress: func(entity.QualityRecord) {
			_ = bar.Add(1)
		},
	}

	runLog.Info("Scan is running...")
	report, err := appContainer.Scan.Scan(ctx, app.ScanRequest{
		RunID:     runID,
		ImagesDir: cfg.ImagesDir,
		Limit:     cfg.NumProcessed,
		Workers:   cfg.Workers,
		Bins:      cfg.HistogramBins,
	}, hooks)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		runLog.Warnf("Scan interrupted, partial results saved: %s", report.Summary)
		stop()
		os.Exit(130)
	case apperrors.IsKind(err, apperrors.KindConfig):
		runLog.Fatalf("Configuration error: %v", err)
	default:
		runLog.Fatalf("Scan error: %v", err)
	}

	fmt.Println(report.Summary.String())
	for _, uri := range report.Published {
		fmt.Println(uri)
	}
}
