package vision

import (
	"fmt"
	"path/filepath"
)

// CapturerPreset параметры локализатора для именованной конфигурации
type CapturerPreset struct {
	FaceCascade  string
	EyeCascade   string
	ScaleFactor  float64
	MinNeighbors int
	MinFaceRatio float64 // минимальная сторона лица относительно меньшей стороны кадра
}

var presets = map[string]CapturerPreset{
	"common_capturer_uld_fda.xml": {
		FaceCascade:  "haarcascade_frontalface_default.xml",
		EyeCascade:   "haarcascade_eye.xml",
		ScaleFactor:  1.1,
		MinNeighbors: 5,
		MinFaceRatio: 0.05,
	},
	"common_capturer_refa_fda_a.xml": {
		FaceCascade:  "haarcascade_frontalface_alt2.xml",
		EyeCascade:   "haarcascade_eye_tree_eyeglasses.xml",
		ScaleFactor:  1.05,
		MinNeighbors: 4,
		MinFaceRatio: 0.1,
	},
}

var systemCascadeDirs = []string{
	"/usr/share/opencv4/haarcascades",
	"/usr/local/share/opencv4/haarcascades",
	"/usr/share/opencv/haarcascades",
	"/opt/homebrew/share/opencv4/haarcascades",
}

// LookupPreset возвращает пресет по имени конфигурации
func LookupPreset(name string) (CapturerPreset, error) {
	p, ok := presets[name]
	if !ok {
		return CapturerPreset{}, fmt.Errorf("unknown capturer config %s", name)
	}
	return p, nil
}

// CascadePaths перечисляет кандидатов для файла каскада: сначала каталог SDK, потом системные
func CascadePaths(confDir, file string) []string {
	var paths []string
	if confDir != "" {
		paths = append(paths, filepath.Join(confDir, file), filepath.Join(confDir, "haarcascades", file))
	}
	for _, dir := range systemCascadeDirs {
		paths = append(paths, filepath.Join(dir, file))
	}
	return paths
}

// Confidence уверенность по числу найденных глаз
func Confidence(eyes int) float64 {
	if eyes > 2 {
		eyes = 2
	}
	return 0.5 + 0.2*float64(eyes)
}
