package app

import (
	"context"
	"io/fs"
	"math/rand/v2"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"face-quality-scan/internal/domain/entity"
	apperrors "face-quality-scan/internal/errors"
)

// ImageLocator ищет изображения в дереве каталогов
type ImageLocator struct {
	rnd *rand.Rand
	log logrus.FieldLogger
}

// NewImageLocator создаёт локатор. seed == 0 означает случайную выборку,
// любое другое значение даёт воспроизводимую выборку.
func NewImageLocator(seed int64, log logrus.FieldLogger) *ImageLocator {
	var src rand.Source
	if seed == 0 {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	} else {
		src = rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	}
	return NewImageLocatorWithRand(rand.New(src), log)
}

// NewImageLocatorWithRand создаёт локатор с заданным генератором
func NewImageLocatorWithRand(rnd *rand.Rand, log logrus.FieldLogger) *ImageLocator {
	return &ImageLocator{rnd: rnd, log: log}
}

// Locate возвращает изображения под root. При limit > 0 и большем числе
// найденных файлов возвращается равномерная выборка без повторов.
func (l *ImageLocator) Locate(ctx context.Context, root string, limit int) ([]entity.ImageRef, error) {
	var images []entity.ImageRef

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Корень недоступен, это ошибка запуска, вложенные каталоги пропускаем.
			if path == root {
				return err
			}
			l.log.WithError(err).WithField("path", path).Warn("skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if entity.IsRecognizedExt(filepath.Ext(d.Name())) {
			images = append(images, entity.NewImageRef(path))
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, apperrors.Storage("ImageLocator.Locate", "cannot walk images directory "+root, err)
	}

	l.log.WithFields(logrus.Fields{"root": root, "found": len(images)}).Debug("images located")

	if limit > 0 && len(images) > limit {
		images = l.sample(images, limit)
	}
	return images, nil
}

// sample делает частичную перестановку Фишера–Йетса по копии списка
func (l *ImageLocator) sample(images []entity.ImageRef, k int) []entity.ImageRef {
	pool := make([]entity.ImageRef, len(images))
	copy(pool, images)
	for i := 0; i < k; i++ {
		j := i + l.rnd.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
