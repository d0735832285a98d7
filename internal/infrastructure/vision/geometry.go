package vision

import (
	"math"

	"puck-scanner/internal/domain/entity"
)

// SlotRegions раскладывает слоты типа планшета по найденной окружности планшета.
// Индексы идут по кольцам изнутри наружу, внутри кольца по часовой стрелке от Offset.
func SlotRegions(pt entity.PlateType, center entity.Point, radius float64) []entity.Region {
	regions := make([]entity.Region, 0, pt.NumSlots())
	for _, ring := range pt.Rings {
		step := 2 * math.Pi / float64(ring.Count)
		start := ring.Offset * math.Pi / 180
		for k := 0; k < ring.Count; k++ {
			angle := start + step*float64(k)
			regions = append(regions, entity.Region{
				Center: entity.Point{
					X: center.X + ring.Radius*radius*math.Cos(angle),
					Y: center.Y + ring.Radius*radius*math.Sin(angle),
				},
				Radius: ring.SlotRadius * radius,
			})
		}
	}
	return regions
}
