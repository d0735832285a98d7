package app

import "puck-scanner/internal/domain/entity"

// DuplicateDetector помнит последний отправленный планшет, чтобы не отправлять его повторно,
// пока он остаётся перед камерой.
type DuplicateDetector struct {
	last *entity.Plate
}

// NewDuplicateDetector создаёт детектор без запомненного планшета
func NewDuplicateDetector() *DuplicateDetector {
	return &DuplicateDetector{}
}

// IsDuplicate сообщает, что каждый прочитанный штрихкод кандидата совпадает с запомненным планшетом
// в том же слоте. Кандидат без прочитанных штрихкодов дубликатом не считается.
func (d *DuplicateDetector) IsDuplicate(candidate *entity.Plate) bool {
	if d.last == nil || candidate == nil || !candidate.AnyValid() {
		return false
	}
	return candidate.HasSlotsInCommon(d.last)
}

// Remember запоминает копию отправленного планшета
func (d *DuplicateDetector) Remember(plate *entity.Plate) {
	d.last = plate.Clone()
}

// Last возвращает запомненный планшет
func (d *DuplicateDetector) Last() *entity.Plate {
	return d.last
}

// Forget забывает запомненный планшет
func (d *DuplicateDetector) Forget() {
	d.last = nil
}
