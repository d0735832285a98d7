package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"puck-scanner/internal/domain/port"
)

const jpegQuality = 90

// FileImageStore сохраняет кадры планшетов в JPEG-файлы
type FileImageStore struct {
	dir string
}

// NewFileImageStore создаёт хранилище в каталоге dir
func NewFileImageStore(dir string) *FileImageStore {
	return &FileImageStore{dir: dir}
}

func (s *FileImageStore) Save(ctx context.Context, id string, img image.Image) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create image directory: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", nil, fmt.Errorf("encode jpeg: %w", err)
	}

	path := filepath.Join(s.dir, id+".jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", nil, fmt.Errorf("write image: %w", err)
	}
	return path, buf.Bytes(), nil
}

var _ port.ImageStore = (*FileImageStore)(nil)
