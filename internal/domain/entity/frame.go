package entity

import (
	"image"
	"image/draw"
	"sync"
	"time"
)

// Frame кадр камеры, переданный на сканирование.
// Image не изменяется после постановки кадра в очередь.
type Frame struct {
	Seq       uint64      // порядковый номер захваченного кадра
	Timestamp time.Time   // время захвата
	Image     image.Image // исходное изображение

	grayOnce sync.Once
	gray     *image.Gray
}

// Gray возвращает кадр в оттенках серого. Преобразование выполняется один раз.
func (f *Frame) Gray() *image.Gray {
	f.grayOnce.Do(func() {
		if g, ok := f.Image.(*image.Gray); ok {
			f.gray = g
			return
		}
		b := f.Image.Bounds()
		g := image.NewGray(b)
		draw.Draw(g, b, f.Image, b.Min, draw.Src)
		f.gray = g
	})
	return f.gray
}
