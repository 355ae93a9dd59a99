package engine

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"face-quality-scan/internal/domain/port"
	apperrors "face-quality-scan/internal/errors"
	"face-quality-scan/internal/logger"
)

func TestNewService_MissingLibrary(t *testing.T) {
	layout := ResolveLayout(filepath.Join(t.TempDir(), "nowhere"), "linux")
	_, err := NewService(layout)
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindConfig))
	require.Contains(t, err.Error(), "try checking the sdk_path")
}

func TestNewService_MissingConfDir(t *testing.T) {
	layout := fakeSDK(t, "windows")
	layout.ConfDir = filepath.Join(layout.Root, "conf", "absent")
	_, err := NewService(layout)
	require.True(t, apperrors.IsKind(err, apperrors.KindConfig))
}

func TestQualityBlockConfig(t *testing.T) {
	layout := ResolveLayout("/sdk", "linux")

	cfg := QualityBlockConfig("assessment", layout)
	require.Equal(t, UnitQualityAssessment, cfg.UnitType)
	require.Equal(t, AssessmentConfigName, cfg.ConfigName)
	require.Equal(t, layout.RuntimeDir, cfg.RuntimeLibraryPath)

	cfg = QualityBlockConfig("estimation", layout)
	require.Empty(t, cfg.ConfigName)
}

func TestCreateProcessingBlock_UnknownModification(t *testing.T) {
	svc, err := NewService(fakeSDK(t, "linux"))
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.CreateProcessingBlock(QualityBlockConfig("fast", svc.Layout()))
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindConfig))
	require.Contains(t, err.Error(), "unknown modification fast for QUALITY_ASSESSMENT_ESTIMATOR")

	_, err = svc.CreateProcessingBlock(BlockConfig{UnitType: "FACE_DETECTOR", Modification: "assessment"})
	require.True(t, apperrors.IsKind(err, apperrors.KindConfig))
}

func TestCreateCapturer_FactoryError(t *testing.T) {
	svc, err := NewService(fakeSDK(t, "linux"), WithLocalizerFactory(func(cfg CapturerConfig) (port.FaceLocalizer, error) {
		return nil, errors.New("gocv build tag is not enabled")
	}))
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.CreateCapturer(CapturerConfig{})
	require.True(t, apperrors.IsKind(err, apperrors.KindConfig))
	require.Contains(t, err.Error(), DefaultCapturerConfig)
}

func TestCreateCapturer_Defaults(t *testing.T) {
	var got CapturerConfig
	layout := fakeSDK(t, "linux")
	svc, err := NewService(layout, WithLocalizerFactory(func(cfg CapturerConfig) (port.FaceLocalizer, error) {
		got = cfg
		return &fakeLocalizer{}, nil
	}))
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.CreateCapturer(CapturerConfig{})
	require.NoError(t, err)
	require.Equal(t, DefaultCapturerConfig, got.Name)
	require.Equal(t, layout.ConfDir, got.ConfDir)
}

func TestServiceClose_ReleasesUnits(t *testing.T) {
	loc := &fakeLocalizer{}
	svc, err := NewService(fakeSDK(t, "linux"), withFake(loc))
	require.NoError(t, err)

	_, err = svc.CreateCapturer(CapturerConfig{})
	require.NoError(t, err)
	require.NoError(t, svc.Close())
	require.True(t, loc.closed)

	require.NoError(t, svc.Close())
	_, err = svc.CreateProcessingBlock(QualityBlockConfig("assessment", svc.Layout()))
	require.Error(t, err)
}

func TestNewAssessor_UnknownModeFailsBeforeCapturer(t *testing.T) {
	loc := &fakeLocalizer{}
	_, err := NewAssessorWithLayout(fakeSDK(t, "linux"), "quick", logger.Discard(), withFake(loc))
	require.True(t, apperrors.IsKind(err, apperrors.KindConfig))
	require.Empty(t, loc.inputs)
	require.False(t, loc.closed)
}

func TestCreateContext_NestsMaps(t *testing.T) {
	svc, err := NewService(fakeSDK(t, "linux"))
	require.NoError(t, err)
	defer svc.Close()

	ctx := svc.CreateContext(map[string]any{"image": map[string]any{"dtype": "uint8_t"}})
	img, ok := ctx.Sub("image")
	require.True(t, ok)
	require.Equal(t, "uint8_t", img["dtype"])
}
