package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"face-quality-scan/internal/domain/port"
)

// HistogramPNG рисует гистограмму с равными интервалами и сохраняет её в файл.
// Формат определяется расширением, по умолчанию используется png.
type HistogramPNG struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
}

// NewHistogramPNG создаёт рендерер с подписями для итогового балла
func NewHistogramPNG() *HistogramPNG {
	return &HistogramPNG{
		Title:  "Histogram of Total Scores",
		XLabel: "Total Score",
		YLabel: "Frequency",
		Width:  8 * vg.Inch,
		Height: 6 * vg.Inch,
	}
}

// Render строит гистограмму values с bins интервалами
func (h *HistogramPNG) Render(values []float64, bins int, destination string) error {
	if len(values) == 0 {
		return errors.New("no values to plot")
	}
	if bins < 1 {
		return fmt.Errorf("invalid bin count %d", bins)
	}

	p := plot.New()
	p.Title.Text = h.Title
	p.X.Label.Text = h.XLabel
	p.Y.Label.Text = h.YLabel

	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return fmt.Errorf("build histogram: %w", err)
	}
	p.Add(hist)

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := p.Save(h.Width, h.Height, destination); err != nil {
		return fmt.Errorf("save histogram: %w", err)
	}
	return nil
}

var _ port.HistogramRenderer = (*HistogramPNG)(nil)
