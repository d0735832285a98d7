package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"puck-scanner/internal/domain/entity"
	"puck-scanner/internal/infrastructure/storage"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect stored scan results",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store *storage.SQLiteStore) error {
				records, err := store.Records().List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scans stored")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRecords(records))
				return nil
			})
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of scans to show")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show barcodes of a stored scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store *storage.SQLiteStore) error {
				record, err := store.Records().Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRecord(record))
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func renderRecords(records []*entity.ScanRecord) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Scanned", "Plate", "Valid", "Image"})
	for _, r := range records {
		tw.AppendRow(table.Row{
			r.ID,
			r.ScannedAt.Local().Format("2006-01-02 15:04:05"),
			r.PlateType,
			fmt.Sprintf("%d/%d", r.NumValid, r.NumSlots),
			r.ImagePath,
		})
	}
	return tw.Render()
}

func renderRecord(r *entity.ScanRecord) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("%s  %s  %s", r.ID, r.PlateType, r.ScannedAt.Local().Format("2006-01-02 15:04:05")))
	tw.AppendHeader(table.Row{"Slot", "Barcode"})
	for i, code := range r.Barcodes {
		tw.AppendRow(table.Row{strconv.Itoa(i + 1), code})
	}
	return tw.Render()
}
