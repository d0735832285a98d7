package port

import (
	"context"

	"puck-scanner/internal/domain/entity"
)

// GeometryAligner интерфейс совмещения геометрии планшета с кадром
type GeometryAligner interface {
	// Align находит планшет на кадре и возвращает области слотов в порядке индексов
	Align(ctx context.Context, frame *entity.Frame) (*entity.Alignment, error)
}
