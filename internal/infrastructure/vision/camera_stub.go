//go:build !gocv
// +build !gocv

package vision

import (
	"errors"

	"puck-scanner/internal/domain/port"
)

type CameraOpener struct {
	Width  int
	Height int
}

// NewCameraOpener создаёт открыватель-заглушку (без OpenCV).
func NewCameraOpener(width, height int) *CameraOpener {
	return &CameraOpener{Width: width, Height: height}
}

// Open возвращает ошибку, если сборка без тега gocv.
func (o *CameraOpener) Open(device int) (port.FrameSource, error) {
	_ = device
	return nil, errors.New("gocv build tag is not enabled")
}
