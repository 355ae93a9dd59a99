package engine

import "path/filepath"

// Layout расположение файлов SDK на диске
type Layout struct {
	Root       string
	Library    string // динамическая библиотека движка
	RuntimeDir string // каталог с ONNX runtime
	ConfDir    string // каталог конфигураций движка
	LicenseDir string
}

// ResolveLayout вычисляет пути SDK для платформы goos
func ResolveLayout(sdkPath, goos string) Layout {
	l := Layout{
		Root:       sdkPath,
		ConfDir:    filepath.Join(sdkPath, "conf", "facerec"),
		LicenseDir: filepath.Join(sdkPath, "license"),
	}
	if goos == "windows" {
		l.Library = filepath.Join(sdkPath, "bin", "facerec.dll")
		l.RuntimeDir = filepath.Join(sdkPath, "bin")
	} else {
		l.Library = filepath.Join(sdkPath, "lib", "libfacerec.so")
		l.RuntimeDir = filepath.Join(sdkPath, "lib")
	}
	return l
}
