//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

// CircleAligner находит окружность планшета преобразованием Хафа
// и раскладывает по ней слоты типа планшета.
type CircleAligner struct {
	PlateType            entity.PlateType
	MaxSide              int     // кадр уменьшается до этого размера перед поиском
	MinPlateRatio        float64 // минимальный радиус планшета в долях меньшей стороны
	MaxPlateRatio        float64 // максимальный радиус планшета в долях меньшей стороны
	MaxOverexposedRatio  float64
	MaxUnderexposedRatio float64
}

// NewCircleAligner создаёт выравниватель для типа планшета
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

// Align ищет планшет на кадре
func (a *CircleAligner) Align(ctx context.Context, frame *entity.Frame) (*entity.Alignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gray, err := gocv.ImageGrayToMatGray(frame.Gray())
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer gray.Close()

	if gray.Empty() {
		return nil, errors.New("empty frame")
	}
	if err := a.checkExposure(gray); err != nil {
		return nil, err
	}

	// Поиск на уменьшенном кадре, координаты потом масштабируются обратно
	scale := 1.0
	work := gray
	if side := max(gray.Cols(), gray.Rows()); side > a.MaxSide {
		scale = float64(a.MaxSide) / float64(side)
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(gray, &resized, image.Pt(int(float64(gray.Cols())*scale), int(float64(gray.Rows())*scale)), 0, 0, gocv.InterpolationArea)
		work = resized
	}

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.MedianBlur(work, &blur, 5)

	minSide := float64(min(blur.Cols(), blur.Rows()))
	circles := gocv.NewMat()
	defer circles.Close()
	gocv.HoughCirclesWithParams(blur, &circles, gocv.HoughGradient, 1, minSide/2, 100, 40,
		int(minSide*a.MinPlateRatio), int(minSide*a.MaxPlateRatio))

	if circles.Empty() || circles.Cols() == 0 {
		return nil, errors.New("no plate circle found")
	}

	// Первая окружность набрала больше всего голосов
	v := circles.GetVecfAt(0, 0)
	center := entity.Point{X: float64(v[0]) / scale, Y: float64(v[1]) / scale}
	radius := float64(v[2]) / scale

	return &entity.Alignment{
		Center:  center,
		Radius:  radius,
		Regions: SlotRegions(a.PlateType, center, radius),
	}, nil
}

// checkExposure отбрасывает пересвеченные и тёмные кадры
func (a *CircleAligner) checkExposure(gray gocv.Mat) error {
	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 250, 255, gocv.ThresholdBinary)
	if ratio := ratioOfMask(bright); ratio > a.MaxOverexposedRatio {
		return fmt.Errorf("overexposed frame (ratio=%.4f)", ratio)
	}

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 20, 255, gocv.ThresholdBinaryInv)
	if ratio := ratioOfMask(dark); ratio > a.MaxUnderexposedRatio {
		return fmt.Errorf("underexposed frame (ratio=%.4f)", ratio)
	}
	return nil
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}

var _ port.GeometryAligner = (*CircleAligner)(nil)
