//go:build !gocv
// +build !gocv

package vision

import (
	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

// Window без OpenCV ничего не показывает
type Window struct{}

// NewWindow создаёт окно-заглушку (без OpenCV).
func NewWindow() *Window {
	return &Window{}
}

func (w *Window) Show(frame *entity.Frame, overlay entity.Overlay) port.Key {
	_ = frame
	_ = overlay
	return port.KeyNone
}

func (w *Window) Close() error {
	return nil
}
