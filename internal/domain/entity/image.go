package entity

import (
	"path/filepath"
	"strings"
)

// RecognizedExtensions расширения, которые считаются изображениями.
var RecognizedExtensions = []string{"png", "bmp", "tif", "tiff", "jpg", "jpeg", "ppm"}

// ImageRef путь к найденному файлу изображения
type ImageRef struct {
	Path string // путь, как его вернул обход каталога
	Ext  string // расширение в нижнем регистре без точки
}

// NewImageRef создаёт ссылку на изображение по пути
func NewImageRef(path string) ImageRef {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return ImageRef{Path: path, Ext: strings.ToLower(ext)}
}

// Name возвращает имя файла без каталога
func (r ImageRef) Name() string {
	return filepath.Base(r.Path)
}

// IsRecognizedExt проверяет расширение без учёта регистра
func IsRecognizedExt(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, known := range RecognizedExtensions {
		if ext == known {
			return true
		}
	}
	return false
}
