package app

import (
	"context"
	"errors"
	"fmt"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/domain/port"
)

// ErrAlignment геометрия планшета не совмещена с кадром
var ErrAlignment = errors.New("plate alignment failed")

// PlateMerger объединяет новый кадр с последним известным снимком планшета.
// Прочитанные слоты повторно не декодируются.
type PlateMerger struct {
	plateType entity.PlateType
	aligner   port.GeometryAligner
	decoder   port.SlotDecoder
}

// NewPlateMerger создаёт движок слияния для типа планшета
func NewPlateMerger(plateType entity.PlateType, aligner port.GeometryAligner, decoder port.SlotDecoder) *PlateMerger {
	return &PlateMerger{
		plateType: plateType,
		aligner:   aligner,
		decoder:   decoder,
	}
}

// PlateType возвращает тип планшета движка
func (m *PlateMerger) PlateType() entity.PlateType {
	return m.plateType
}

// Merge совмещает геометрию и обновляет снимок. При неудаче совмещения previous
// возвращается без изменений вместе с ошибкой ErrAlignment.
func (m *PlateMerger) Merge(ctx context.Context, previous *entity.Plate, frame *entity.Frame) (*entity.Plate, *entity.Alignment, error) {
	alignment, err := m.aligner.Align(ctx, frame)
	if err != nil {
		return previous, nil, fmt.Errorf("%w: %w", ErrAlignment, err)
	}

	n := m.plateType.NumSlots()
	if alignment == nil || len(alignment.Regions) != n {
		got := 0
		if alignment != nil {
			got = len(alignment.Regions)
		}
		return previous, nil, fmt.Errorf("%w: expected %d slot regions, got %d", ErrAlignment, n, got)
	}

	plate := previous
	if plate == nil || plate.NumSlots() != n {
		plate = entity.NewPlate(m.plateType.Name, n)
	}

	plate.NewFrame()
	plate.AlignmentOK = true

	for i, slot := range plate.Slots() {
		region := alignment.Regions[i]
		slot.SetBounds(region)

		// Чтение дорогое: прочитанный слот больше не трогаем
		if slot.State() == entity.SlotValid {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		applyDecode(slot, m.decoder.Decode(ctx, frame, i, region))
	}

	plate.Recount()
	return plate, alignment, nil
}

func applyDecode(slot *entity.Slot, res entity.DecodeResult) {
	if res.Center != nil {
		slot.SetBarcodeCenter(*res.Center)
	}

	switch {
	case res.Outcome == entity.DecodeValid && res.Data != "":
		slot.SetBarcode(entity.NewBarcode(res.Data))
	case res.Outcome == entity.DecodeUnreadable:
		slot.SetBarcode(entity.UnreadableBarcode())
	case res.Outcome == entity.DecodeEmpty:
		slot.SetEmpty()
	default:
		// Найденный ранее символ не теряется из-за кадра без сигнала
		if slot.State() != entity.SlotUnreadable {
			slot.SetNoResult()
		}
	}
}
