package entity

import (
	"fmt"
	"sort"
)

// SlotRing описывает кольцо слотов на планшете в долях радиуса планшета
type SlotRing struct {
	Count      int     `yaml:"count"`       // число слотов в кольце
	Radius     float64 `yaml:"radius"`      // расстояние от центра до центров слотов
	SlotRadius float64 `yaml:"slot_radius"` // радиус одного слота
	Offset     float64 `yaml:"offset"`      // угол первого слота в градусах
}

// PlateType описывает тип планшета с фиксированным числом слотов
type PlateType struct {
	Name  string     `yaml:"name"`
	Rings []SlotRing `yaml:"rings"`
}

// NumSlots возвращает общее число слотов
func (t PlateType) NumSlots() int {
	n := 0
	for _, r := range t.Rings {
		n += r.Count
	}
	return n
}

// Validate проверяет описание типа планшета
func (t PlateType) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("plate type: name is required")
	}
	if len(t.Rings) == 0 {
		return fmt.Errorf("plate type %q: at least one ring is required", t.Name)
	}
	for i, r := range t.Rings {
		if r.Count <= 0 {
			return fmt.Errorf("plate type %q: ring %d has no slots", t.Name, i)
		}
		if r.Radius < 0 || r.Radius > 1 || r.SlotRadius <= 0 || r.SlotRadius > 1 {
			return fmt.Errorf("plate type %q: ring %d radii must be fractions of the plate radius", t.Name, i)
		}
	}
	return nil
}

// Встроенные типы планшетов
var (
	CPSPuck = PlateType{
		Name: "CPS_Puck",
		Rings: []SlotRing{
			{Count: 5, Radius: 0.293, SlotRadius: 0.135, Offset: -90},
			{Count: 11, Radius: 0.684, SlotRadius: 0.135, Offset: -90},
		},
	}
	Unipuck = PlateType{
		Name: "Unipuck",
		Rings: []SlotRing{
			{Count: 5, Radius: 0.329, SlotRadius: 0.126, Offset: -90},
			{Count: 11, Radius: 0.718, SlotRadius: 0.126, Offset: -90},
		},
	}
)

// PlateTypes реестр известных типов планшетов
type PlateTypes map[string]PlateType

// DefaultPlateTypes возвращает реестр со встроенными типами
func DefaultPlateTypes() PlateTypes {
	return PlateTypes{
		CPSPuck.Name: CPSPuck,
		Unipuck.Name: Unipuck,
	}
}

// Lookup ищет тип планшета по имени
func (p PlateTypes) Lookup(name string) (PlateType, error) {
	t, ok := p[name]
	if !ok {
		return PlateType{}, fmt.Errorf("unknown plate type %q (known: %v)", name, p.Names())
	}
	return t, nil
}

// Names возвращает отсортированные имена типов
func (p PlateTypes) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
