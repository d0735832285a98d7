package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func plateWith(data ...string) *Plate {
	p := NewPlate("test", len(data))
	for i, d := range data {
		switch d {
		case "":
		case EmptySymbol:
			p.Slot(i).SetEmpty()
		case UnreadableSymbol:
			p.Slot(i).SetBarcode(UnreadableBarcode())
		default:
			p.Slot(i).SetBarcode(NewBarcode(d))
		}
	}
	p.Recount()
	return p
}

func TestPlate_Counts(t *testing.T) {
	p := plateWith("A", "", EmptySymbol, UnreadableSymbol)
	require.Equal(t, 4, p.NumSlots())
	require.Equal(t, 1, p.NumValid())
	require.Equal(t, 1, p.NumEmpty())
	require.Equal(t, 1, p.NumUnreadable())
	require.Equal(t, 3, p.NumResolved())
	require.False(t, p.IsResolved())
	require.False(t, p.IsFullValid())
	require.True(t, p.AnyValid())
	require.Equal(t, 0.75, p.EmptyFraction())
}

func TestPlate_ResolvedVsFullValid(t *testing.T) {
	p := plateWith("A", EmptySymbol, UnreadableSymbol)
	require.True(t, p.IsResolved())
	require.False(t, p.IsFullValid())

	p = plateWith("A", "B")
	require.True(t, p.IsResolved())
	require.True(t, p.IsFullValid())
}

func TestPlate_AnyNewBarcodes(t *testing.T) {
	p := plateWith("A", "")
	require.True(t, p.AnyNewBarcodes())

	p.NewFrame()
	require.False(t, p.AnyNewBarcodes())

	p.Slot(1).SetBarcode(UnreadableBarcode())
	require.False(t, p.AnyNewBarcodes())
}

func TestPlate_HasSlotsInCommon(t *testing.T) {
	reported := plateWith("X", "Y", EmptySymbol, "Z")

	require.True(t, plateWith("X", "", EmptySymbol, "Z").HasSlotsInCommon(reported))
	require.True(t, plateWith("X", "Y", EmptySymbol, "Z").HasSlotsInCommon(reported))
	require.False(t, plateWith("X", "Q", EmptySymbol, "Z").HasSlotsInCommon(reported))
	// сравнение по индексам, а не по множеству
	require.False(t, plateWith("Y", "X", EmptySymbol, "Z").HasSlotsInCommon(reported))
	require.False(t, plateWith("X", "", "W", "Z").HasSlotsInCommon(reported))
	require.False(t, plateWith("X", "Y").HasSlotsInCommon(reported))
	require.False(t, plateWith("X").HasSlotsInCommon(nil))
}

func TestPlate_CloneIsDeep(t *testing.T) {
	p := plateWith("A", "")
	c := p.Clone()

	p.Slot(0).SetEmpty()
	p.Slot(1).SetBarcode(NewBarcode("B"))
	p.Recount()

	require.Equal(t, SlotValid, c.Slot(0).State())
	require.Equal(t, "A", c.Slot(0).Data())
	require.Equal(t, SlotNoResult, c.Slot(1).State())
	require.Equal(t, 1, c.NumValid())
}

func TestPlate_Barcodes(t *testing.T) {
	p := plateWith("A", "", EmptySymbol, UnreadableSymbol)
	require.Equal(t, []string{"A", NotFoundSymbol, EmptySymbol, UnreadableSymbol}, p.Barcodes())
}

func TestPlateTypes_Lookup(t *testing.T) {
	types := DefaultPlateTypes()
	pt, err := types.Lookup("CPS_Puck")
	require.NoError(t, err)
	require.Equal(t, 16, pt.NumSlots())
	require.NoError(t, pt.Validate())

	_, err = types.Lookup("nope")
	require.Error(t, err)
	require.Equal(t, []string{"CPS_Puck", "Unipuck"}, types.Names())
}

func TestPlateType_Validate(t *testing.T) {
	require.Error(t, PlateType{}.Validate())
	require.Error(t, PlateType{Name: "x"}.Validate())
	require.Error(t, PlateType{Name: "x", Rings: []SlotRing{{Count: 0, Radius: 0.5, SlotRadius: 0.1}}}.Validate())
	require.Error(t, PlateType{Name: "x", Rings: []SlotRing{{Count: 4, Radius: 1.5, SlotRadius: 0.1}}}.Validate())
	require.NoError(t, PlateType{Name: "x", Rings: []SlotRing{{Count: 4, Radius: 0.5, SlotRadius: 0.1}}}.Validate())
}
