package vision

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupPreset(t *testing.T) {
	p, err := LookupPreset("common_capturer_uld_fda.xml")
	require.NoError(t, err)
	require.Equal(t, "haarcascade_frontalface_default.xml", p.FaceCascade)
	require.Greater(t, p.ScaleFactor, 1.0)

	_, err = LookupPreset("missing.xml")
	require.Error(t, err)
}

func TestCascadePaths_SDKFirst(t *testing.T) {
	paths := CascadePaths("/opt/sdk/conf/facerec", "haarcascade_eye.xml")
	require.Equal(t, filepath.Join("/opt/sdk/conf/facerec", "haarcascade_eye.xml"), paths[0])
	require.Len(t, paths, 2+len(systemCascadeDirs))

	require.Len(t, CascadePaths("", "x.xml"), len(systemCascadeDirs))
}

func TestConfidence(t *testing.T) {
	require.InDelta(t, 0.5, Confidence(0), 1e-9)
	require.InDelta(t, 0.7, Confidence(1), 1e-9)
	require.InDelta(t, 0.9, Confidence(2), 1e-9)
	require.InDelta(t, 0.9, Confidence(5), 1e-9)
}
