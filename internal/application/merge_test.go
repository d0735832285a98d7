package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"puck-scanner/internal/domain/entity"
)

func TestPlateMerger_FirstFrameAllocatesPlate(t *testing.T) {
	dec := newFakeDecoder().on(1, 0, entity.Valid("A"))
	m := NewPlateMerger(grid8, newFakeAligner(8), dec)

	plate, alignment, err := m.Merge(context.Background(), nil, testFrame(1))
	require.NoError(t, err)
	require.NotNil(t, alignment)
	require.Equal(t, 8, plate.NumSlots())
	require.Equal(t, "Grid8", plate.PlateType())
	require.True(t, plate.AlignmentOK)
	require.Equal(t, 1, plate.NumValid())
	require.True(t, plate.AnyNewBarcodes())

	region, ok := plate.Slot(3).Bounds()
	require.True(t, ok)
	require.Equal(t, alignment.Regions[3], region)
}

func TestPlateMerger_ValidSlotsAreNotDecodedAgain(t *testing.T) {
	dec := newFakeDecoder().
		on(1, 0, entity.Valid("A")).
		on(2, 0, entity.Valid("CHANGED"))
	m := NewPlateMerger(grid8, newFakeAligner(8), dec)
	ctx := context.Background()

	plate, _, err := m.Merge(ctx, nil, testFrame(1))
	require.NoError(t, err)

	plate, _, err = m.Merge(ctx, plate, testFrame(2))
	require.NoError(t, err)
	require.Equal(t, 1, dec.callsFor(0))
	require.Equal(t, 2, dec.callsFor(1))
	require.Equal(t, "A", plate.Slot(0).Data())
	require.False(t, plate.Slot(0).BarcodeThisFrame())
	require.False(t, plate.AnyNewBarcodes())
	require.Equal(t, 2, plate.Slot(0).TotalFrames())
}

func TestPlateMerger_AlignmentFailureLeavesPlateUntouched(t *testing.T) {
	aligner := newFakeAligner(8)
	aligner.fail[2] = errors.New("no plate circle found")
	dec := newFakeDecoder().on(1, 0, entity.Valid("A"))
	m := NewPlateMerger(grid8, aligner, dec)
	ctx := context.Background()

	plate, _, err := m.Merge(ctx, nil, testFrame(1))
	require.NoError(t, err)
	decodes := dec.callsFor(1)

	got, alignment, err := m.Merge(ctx, plate, testFrame(2))
	require.ErrorIs(t, err, ErrAlignment)
	require.ErrorContains(t, err, "no plate circle found")
	require.Nil(t, alignment)
	require.Same(t, plate, got)
	require.Equal(t, 1, got.NumValid())
	require.Equal(t, 1, got.Slot(0).TotalFrames())
	require.Equal(t, decodes, dec.callsFor(1))
}

func TestPlateMerger_RegionCountMismatch(t *testing.T) {
	m := NewPlateMerger(grid8, newFakeAligner(5), newFakeDecoder())

	plate, _, err := m.Merge(context.Background(), nil, testFrame(1))
	require.ErrorIs(t, err, ErrAlignment)
	require.ErrorContains(t, err, "expected 8 slot regions, got 5")
	require.Nil(t, plate)
}

func TestPlateMerger_UnreadableIsNotLostOnNoResult(t *testing.T) {
	dec := newFakeDecoder().
		on(1, 2, entity.Unreadable()).
		on(3, 2, entity.Valid("C"))
	m := NewPlateMerger(grid8, newFakeAligner(8), dec)
	ctx := context.Background()

	plate, _, err := m.Merge(ctx, nil, testFrame(1))
	require.NoError(t, err)
	require.Equal(t, entity.SlotUnreadable, plate.Slot(2).State())
	require.Equal(t, 1, plate.NumUnreadable())

	plate, _, err = m.Merge(ctx, plate, testFrame(2))
	require.NoError(t, err)
	require.Equal(t, entity.SlotUnreadable, plate.Slot(2).State())

	plate, _, err = m.Merge(ctx, plate, testFrame(3))
	require.NoError(t, err)
	require.Equal(t, entity.SlotValid, plate.Slot(2).State())
	require.Equal(t, 0, plate.NumUnreadable())
}

func TestPlateMerger_ValidWithoutDataCountsAsNoResult(t *testing.T) {
	dec := newFakeDecoder().
		on(1, 2, entity.Unreadable()).
		on(2, 2, entity.Valid("")).
		on(2, 4, entity.Valid(""))
	m := NewPlateMerger(grid8, newFakeAligner(8), dec)
	ctx := context.Background()

	plate, _, err := m.Merge(ctx, nil, testFrame(1))
	require.NoError(t, err)

	plate, _, err = m.Merge(ctx, plate, testFrame(2))
	require.NoError(t, err)
	require.Equal(t, entity.SlotUnreadable, plate.Slot(2).State())
	require.Equal(t, entity.SlotNoResult, plate.Slot(4).State())
	require.Equal(t, 0, plate.NumValid())
	require.False(t, plate.AnyNewBarcodes())
}

func TestPlateMerger_EmptySlotsAreRetried(t *testing.T) {
	dec := newFakeDecoder().
		on(1, 4, entity.Empty()).
		on(2, 4, entity.Valid("E"))
	m := NewPlateMerger(grid8, newFakeAligner(8), dec)
	ctx := context.Background()

	plate, _, err := m.Merge(ctx, nil, testFrame(1))
	require.NoError(t, err)
	require.Equal(t, entity.SlotEmpty, plate.Slot(4).State())
	require.Equal(t, entity.EmptySymbol, plate.Slot(4).Data())

	plate, _, err = m.Merge(ctx, plate, testFrame(2))
	require.NoError(t, err)
	require.Equal(t, entity.SlotValid, plate.Slot(4).State())
	require.Equal(t, "E", plate.Slot(4).Data())
}

func TestPlateMerger_BarcodeCenter(t *testing.T) {
	res := entity.Valid("A")
	res.Center = &entity.Point{X: 11, Y: 12}
	dec := newFakeDecoder().on(1, 0, res)
	m := NewPlateMerger(grid8, newFakeAligner(8), dec)

	plate, _, err := m.Merge(context.Background(), nil, testFrame(1))
	require.NoError(t, err)
	c, ok := plate.Slot(0).BarcodeCenter()
	require.True(t, ok)
	require.Equal(t, entity.Point{X: 11, Y: 12}, c)
}

func TestPlateMerger_CancelledContextStopsDecoding(t *testing.T) {
	dec := newFakeDecoder()
	m := NewPlateMerger(grid8, newFakeAligner(8), dec)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plate, _, err := m.Merge(ctx, nil, testFrame(1))
	require.NoError(t, err)
	require.Equal(t, 0, plate.NumResolved())
	require.Equal(t, 0, dec.callsFor(0))
}
