package port

import (
	"context"
	"image"

	"puck-scanner/internal/domain/entity"
)

// RecordRepository интерфейс хранилища результатов сканирования
type RecordRepository interface {
	// Save сохраняет запись
	Save(ctx context.Context, record *entity.ScanRecord) error

	// Get возвращает запись по ID
	Get(ctx context.Context, id string) (*entity.ScanRecord, error)

	// List возвращает последние записи, новые первыми
	List(ctx context.Context, limit int) ([]*entity.ScanRecord, error)
}

// ImageStore интерфейс хранилища изображений планшетов
type ImageStore interface {
	// Save кодирует изображение, сохраняет его и возвращает путь и байты файла
	Save(ctx context.Context, id string, img image.Image) (string, []byte, error)
}
