//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"face-quality-scan/internal/domain/entity"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

// CascadeCapturer заглушка локализатора (без OpenCV)
type CascadeCapturer struct {
	preset CapturerPreset
}

// NewCascadeCapturer возвращает ошибку, если сборка без тега gocv.
func NewCascadeCapturer(confDir, name string) (*CascadeCapturer, error) {
	_ = confDir
	if _, err := LookupPreset(name); err != nil {
		return nil, err
	}
	return nil, errNoGoCV
}

// Capture возвращает ошибку, если сборка без тега gocv.
func (c *CascadeCapturer) Capture(ctx context.Context, encoded []byte) ([]entity.FaceRegion, error) {
	_ = ctx
	_ = encoded
	return nil, errNoGoCV
}

func (c *CascadeCapturer) Close() error {
	return nil
}
