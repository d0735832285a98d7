package app

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"puck-scanner/internal/domain/entity"
)

// WriteFrameSummary печатает сводку по кадру: итог и состояние каждого слота
func WriteFrameSummary(w io.Writer, frame *entity.Frame, res entity.ScanResult, took time.Duration) error {
	if !res.Success() {
		_, err := fmt.Fprintf(w, "Frame %d: %s (%v) in %s\n", frame.Seq, res.Outcome, res.Err, took.Round(time.Millisecond))
		return err
	}

	plate := res.Plate
	if _, err := fmt.Fprintf(w, "Frame %d: %s, valid %d/%d, empty %d, unreadable %d in %s\n",
		frame.Seq, res.Outcome, plate.NumValid(), plate.NumSlots(), plate.NumEmpty(), plate.NumUnreadable(),
		took.Round(time.Millisecond)); err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Slot", "State", "Data", "New"})
	for _, s := range plate.Slots() {
		fresh := ""
		if s.BarcodeThisFrame() {
			fresh = "*"
		}
		tw.AppendRow(table.Row{strconv.Itoa(s.Index() + 1), s.State().String(), s.Data(), fresh})
	}
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
