package entity

import (
	"image"
	"math"
)

// Point точка в координатах кадра
type Point struct {
	X float64
	Y float64
}

// Image возвращает точку в целых координатах изображения
func (p Point) Image() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// Region представляет область слота, предсказанную геометрией
type Region struct {
	Center Point   // центр слота
	Radius float64 // радиус слота в пикселях
}

// Bounds возвращает описанный квадрат области
func (r Region) Bounds() image.Rectangle {
	c := r.Center.Image()
	rad := int(math.Ceil(r.Radius))
	return image.Rect(c.X-rad, c.Y-rad, c.X+rad, c.Y+rad)
}

// Grow возвращает область с радиусом не меньше minRadius
func (r Region) Grow(minRadius float64) Region {
	if r.Radius < minRadius {
		r.Radius = minRadius
	}
	return r
}

// Contains сообщает, попадает ли точка внутрь области
func (r Region) Contains(p Point) bool {
	dx, dy := p.X-r.Center.X, p.Y-r.Center.Y
	return dx*dx+dy*dy <= r.Radius*r.Radius
}
