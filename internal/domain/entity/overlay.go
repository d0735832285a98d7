package entity

import (
	"image/color"
	"time"
)

// OverlayLifetime время показа подсветки
const OverlayLifetime = time.Second

// Overlay подсветка, которую поток захвата рисует поверх видео
type Overlay struct {
	Plate     *Plate     // копия снимка для подсветки слотов
	Alignment *Alignment // геометрия планшета на кадре
	Text      string     // статусное сообщение
	Color     color.RGBA // цвет сообщения
	CreatedAt time.Time
}

// PlateOverlay создаёт подсветку планшета
func PlateOverlay(plate *Plate, alignment *Alignment, now time.Time) Overlay {
	return Overlay{Plate: plate, Alignment: alignment, CreatedAt: now}
}

// TextOverlay создаёт текстовое сообщение
func TextOverlay(text string, c color.RGBA, now time.Time) Overlay {
	return Overlay{Text: text, Color: c, CreatedAt: now}
}

// Expired сообщает, что подсветка больше не показывается
func (o Overlay) Expired(now time.Time) bool {
	return o.CreatedAt.IsZero() || now.Sub(o.CreatedAt) >= OverlayLifetime
}

// Цвета статусных сообщений
var (
	ColorGreen = color.RGBA{G: 255, A: 255}
	ColorRed   = color.RGBA{R: 255, A: 255}
	ColorBlue  = color.RGBA{B: 255, A: 255}
	ColorGrey  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	ColorBlack = color.RGBA{A: 255}
)
