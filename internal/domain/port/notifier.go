package port

import (
	"context"
	"time"

	"puck-scanner/internal/domain/entity"
)

// ToneEmitter интерфейс звукового сигнала
type ToneEmitter interface {
	// Beep издаёт сигнал заданной частоты
	Beep(hz int, duration time.Duration) error
}

// ResultNotifier интерфейс уведомления о сохранённом результате
type ResultNotifier interface {
	// NotifyRecord сообщает операторам о новом планшете
	NotifyRecord(ctx context.Context, record *entity.ScanRecord, image []byte) error
}
