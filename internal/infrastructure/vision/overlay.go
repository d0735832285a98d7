package vision

import (
	"fmt"
	"image/color"
	"time"

	"puck-scanner/internal/domain/entity"
)

const (
	windowTitle  = "Barcode Scanner"
	exitHint     = "Press 'q' to exit scanning mode, 'r' for a new plate"
	displayScale = 0.5
)

// SlotColor цвет подсветки слота по его состоянию
func SlotColor(state entity.SlotStatus) color.RGBA {
	switch state {
	case entity.SlotValid:
		return entity.ColorGreen
	case entity.SlotEmpty:
		return entity.ColorGrey
	default:
		return entity.ColorRed
	}
}

// SlotMark кружок, который рисуется поверх слота
type SlotMark struct {
	Region entity.Region
	Color  color.RGBA
	Label  string
}

// OverlayMarks возвращает кружки слотов для активной подсветки
func OverlayMarks(o entity.Overlay, now time.Time) []SlotMark {
	if o.Expired(now) || o.Plate == nil {
		return nil
	}

	marks := make([]SlotMark, 0, o.Plate.NumSlots())
	for _, slot := range o.Plate.Slots() {
		region, ok := slot.Bounds()
		if !ok {
			continue
		}
		if center, ok := slot.BarcodeCenter(); ok {
			region.Center = center
		}
		marks = append(marks, SlotMark{
			Region: region,
			Color:  SlotColor(slot.State()),
			Label:  fmt.Sprintf("%d", slot.Index()+1),
		})
	}
	return marks
}

// OverlayText возвращает статусное сообщение активной подсветки
func OverlayText(o entity.Overlay, now time.Time) (string, color.RGBA, bool) {
	if o.Expired(now) || o.Text == "" {
		return "", color.RGBA{}, false
	}
	return o.Text, o.Color, true
}
