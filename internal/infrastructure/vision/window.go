//go:build gocv
// +build gocv

package vision

import (
	"image"
	"math"
	"time"

	"gocv.io/x/gocv"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

// Window показывает видео с подсветкой слотов в окне OpenCV
type Window struct {
	window *gocv.Window
	now    func() time.Time
}

// NewWindow создаёт окно просмотра
func NewWindow() *Window {
	return &Window{window: gocv.NewWindow(windowTitle), now: time.Now}
}

// Show рисует подсветку на копии кадра, показывает её в половинном размере и опрашивает клавиатуру
func (w *Window) Show(frame *entity.Frame, overlay entity.Overlay) port.Key {
	mat, err := gocv.ImageToMatRGB(frame.Image)
	if err != nil {
		return port.KeyNone
	}
	defer mat.Close()

	now := w.now()
	for _, mark := range OverlayMarks(overlay, now) {
		c := mark.Region.Center.Image()
		radius := int(math.Round(mark.Region.Radius))
		gocv.Circle(&mat, c, radius, mark.Color, 2)
		gocv.PutText(&mat, mark.Label, image.Pt(c.X-radius/2, c.Y+radius/4), gocv.FontHersheyPlain, 1.5, mark.Color, 2)
	}
	if text, c, ok := OverlayText(overlay, now); ok {
		gocv.PutText(&mat, text, image.Pt(20, 60), gocv.FontHersheyPlain, 4, c, 4)
	}
	gocv.PutText(&mat, exitHint, image.Pt(20, mat.Rows()-20), gocv.FontHersheyPlain, 2, entity.ColorBlue, 2)

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(mat, &small, image.Point{}, displayScale, displayScale, gocv.InterpolationLinear)

	w.window.IMShow(small)

	switch w.window.WaitKey(1) & 0xFF {
	case 'q', 'Q':
		return port.KeyQuit
	case 'r', 'R':
		return port.KeyReset
	default:
		return port.KeyNone
	}
}

// Close закрывает окно
func (w *Window) Close() error {
	return w.window.Close()
}

var _ port.Display = (*Window)(nil)
