package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"puck-scanner/internal/domain/entity"
)

func newPlatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plates",
		Short: "List known plate types",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPlateTypes(cfg.KnownPlateTypes(), cfg.PlateType))
			return nil
		},
	}
}

func renderPlateTypes(types entity.PlateTypes, selected string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Name", "Slots", "Rings", "Selected"})
	for _, name := range types.Names() {
		pt := types[name]
		rings := make([]string, len(pt.Rings))
		for i, r := range pt.Rings {
			rings[i] = fmt.Sprintf("%d@%.3f", r.Count, r.Radius)
		}
		mark := ""
		if name == selected {
			mark = "*"
		}
		tw.AppendRow(table.Row{name, pt.NumSlots(), strings.Join(rings, " "), mark})
	}
	return tw.Render()
}
