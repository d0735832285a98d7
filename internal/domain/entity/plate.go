package entity

// Plate снимок состояния всех слотов планшета после очередного кадра
type Plate struct {
	plateType   string
	slots       []*Slot
	AlignmentOK bool

	numValid      int
	numEmpty      int
	numUnreadable int
}

// NewPlate создаёт снимок с numSlots слотами без результата
func NewPlate(plateType string, numSlots int) *Plate {
	slots := make([]*Slot, numSlots)
	for i := range slots {
		slots[i] = NewSlot(i)
	}
	return &Plate{plateType: plateType, slots: slots}
}

// PlateType возвращает имя типа планшета
func (p *Plate) PlateType() string {
	return p.plateType
}

// NumSlots возвращает число слотов
func (p *Plate) NumSlots() int {
	return len(p.slots)
}

// Slot возвращает слот по индексу
func (p *Plate) Slot(i int) *Slot {
	return p.slots[i]
}

// Slots возвращает слоты в порядке индексов
func (p *Plate) Slots() []*Slot {
	return p.slots
}

// NewFrame сбрасывает покадровые флаги всех слотов
func (p *Plate) NewFrame() {
	for _, s := range p.slots {
		s.NewFrame()
	}
}

// Recount пересчитывает производные счётчики
func (p *Plate) Recount() {
	p.numValid, p.numEmpty, p.numUnreadable = 0, 0, 0
	for _, s := range p.slots {
		switch s.State() {
		case SlotValid:
			p.numValid++
		case SlotEmpty:
			p.numEmpty++
		case SlotUnreadable:
			p.numUnreadable++
		}
	}
}

func (p *Plate) NumValid() int      { return p.numValid }
func (p *Plate) NumEmpty() int      { return p.numEmpty }
func (p *Plate) NumUnreadable() int { return p.numUnreadable }

// NumResolved возвращает число слотов с окончательным результатом
func (p *Plate) NumResolved() int {
	return p.numValid + p.numEmpty + p.numUnreadable
}

// IsResolved сообщает, что ни один слот не остался без результата
func (p *Plate) IsResolved() bool {
	return p.NumResolved() == len(p.slots)
}

// IsFullValid сообщает, что все слоты прочитаны
func (p *Plate) IsFullValid() bool {
	return p.numValid == len(p.slots)
}

// AnyValid сообщает, что прочитан хотя бы один штрихкод
func (p *Plate) AnyValid() bool {
	return p.numValid > 0
}

// AnyNewBarcodes сообщает, что на текущем кадре прочитан хотя бы один новый штрихкод
func (p *Plate) AnyNewBarcodes() bool {
	for _, s := range p.slots {
		if s.State() == SlotValid && s.BarcodeThisFrame() {
			return true
		}
	}
	return false
}

// EmptyFraction возвращает долю слотов без прочитанного штрихкода
func (p *Plate) EmptyFraction() float64 {
	if len(p.slots) == 0 {
		return 0
	}
	return float64(len(p.slots)-p.numValid) / float64(len(p.slots))
}

// HasSlotsInCommon сообщает, что каждый прочитанный штрихкод снимка совпадает
// со штрихкодом other в том же слоте. Сравнение по индексам, не по множеству.
func (p *Plate) HasSlotsInCommon(other *Plate) bool {
	if other == nil || other.NumSlots() != p.NumSlots() {
		return false
	}
	for i, s := range p.slots {
		if s.State() != SlotValid {
			continue
		}
		o := other.slots[i]
		if o.State() != SlotValid || o.barcode.Data() != s.barcode.Data() {
			return false
		}
	}
	return true
}

// Barcodes возвращает строковое представление всех слотов
func (p *Plate) Barcodes() []string {
	out := make([]string, len(p.slots))
	for i, s := range p.slots {
		out[i] = s.Data()
	}
	return out
}

// Clone возвращает глубокую копию снимка
func (p *Plate) Clone() *Plate {
	if p == nil {
		return nil
	}
	c := *p
	c.slots = make([]*Slot, len(p.slots))
	for i, s := range p.slots {
		c.slots[i] = s.clone()
	}
	return &c
}
