package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFaceRegionCenter(t *testing.T) {
	f := FaceRegion{Box: image.Rect(10, 20, 18, 26)}
	x, y := f.Center()
	require.Equal(t, 14, x)
	require.Equal(t, 23, y)
	require.Equal(t, 48, f.Area())
}

func TestNewImageRef_LowercasesExtension(t *testing.T) {
	ref := NewImageRef("/data/faces/Person.JPG")
	require.Equal(t, "jpg", ref.Ext)
	require.Equal(t, "Person.JPG", ref.Name())
}

func TestIsRecognizedExt(t *testing.T) {
	for _, ext := range []string{"png", ".PNG", "Tiff", "jpeg", "ppm", "bmp"} {
		require.True(t, IsRecognizedExt(ext), ext)
	}
	for _, ext := range []string{"gif", "", "txt", "webp"} {
		require.False(t, IsRecognizedExt(ext), ext)
	}
}
