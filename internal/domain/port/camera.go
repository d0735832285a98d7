package port

import (
	"context"

	"puck-scanner/internal/domain/entity"
)

// FrameSource интерфейс источника кадров
type FrameSource interface {
	// Read блокируется до получения следующего кадра
	Read(ctx context.Context) (*entity.Frame, error)

	// Close освобождает устройство
	Close() error
}

// FrameSourceOpener открывает источник кадров по номеру устройства
type FrameSourceOpener interface {
	Open(device int) (FrameSource, error)
}

// Key клавиша, нажатая в окне просмотра
type Key int

const (
	KeyNone  Key = iota
	KeyQuit      // выход из режима сканирования
	KeyReset     // ожидается новый планшет
)

// Display интерфейс вывода видео с подсветкой
type Display interface {
	// Show показывает кадр с подсветкой и возвращает нажатую клавишу
	Show(frame *entity.Frame, overlay entity.Overlay) Key

	// Close закрывает окно
	Close() error
}
