//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"puck-scanner/internal/domain/entity"
)

type CircleAligner struct {
	PlateType            entity.PlateType
	MaxSide              int
	MinPlateRatio        float64
	MaxPlateRatio        float64
	MaxOverexposedRatio  float64
	MaxUnderexposedRatio float64
}

// NewCircleAligner создаёт выравниватель-заглушку (без OpenCV).
func NewCircleAligner(pt entity.PlateType) *CircleAligner {
	return &CircleAligner{
		PlateType:            pt,
		MaxSide:              640,
		MinPlateRatio:        0.15,
		MaxPlateRatio:        0.5,
		MaxOverexposedRatio:  0.35,
		MaxUnderexposedRatio: 0.45,
	}
}

// Align возвращает ошибку, если сборка без тега gocv.
func (a *CircleAligner) Align(ctx context.Context, frame *entity.Frame) (*entity.Alignment, error) {
	_ = ctx
	_ = frame
	return nil, errors.New("gocv build tag is not enabled")
}
