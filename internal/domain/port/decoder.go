package port

import (
	"context"

	"puck-scanner/internal/domain/entity"
)

// SlotDecoder интерфейс чтения штрихкода в области слота
type SlotDecoder interface {
	// Decode пытается прочитать штрихкод. Ошибки чтения выражаются итогом, а не error.
	Decode(ctx context.Context, frame *entity.Frame, slot int, region entity.Region) entity.DecodeResult
}
