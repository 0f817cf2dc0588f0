package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-mrcz/mrcz"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "print the header and metadata of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := mrcz.ReadHeader(args[0])
			if err != nil {
				return err
			}
			printHeader(cmd.OutOrStdout(), args[0], h)
			return nil
		},
	}
}

func printHeader(w io.Writer, path string, h *mrcz.Header) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(path)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"dims (z,y,x)", fmt.Sprintf("%d x %d x %d", h.Dims[0], h.Dims[1], h.Dims[2])},
		{"kind", h.Kind},
		{"compressor", h.Compressor},
	})
	if h.Compressor != "none" {
		t.AppendRows([]table.Row{
			{"level", h.Level},
			{"block size", h.BlockSize},
			{"blocks", h.BlockCount},
			{"shuffled", h.Shuffled},
			{"ratio", fmt.Sprintf("%.2f", h.Ratio())},
		})
	}
	t.AppendRows([]table.Row{
		{"payload bytes", h.PayloadBytes()},
		{"stored bytes", h.StoredBytes},
		{"pixel size", fmt.Sprintf("%g %g %g %s", h.PixelSize[0], h.PixelSize[1], h.PixelSize[2], h.PixelUnit)},
		{"voltage (kV)", h.Voltage},
		{"C3 (mm)", h.C3},
		{"gain", h.Gain},
		{"min / max", fmt.Sprintf("%g / %g", h.Min, h.Max)},
		{"mean / rms", fmt.Sprintf("%g / %g", h.Mean, h.RMS)},
	})
	if h.HasChecksum {
		t.AppendRow(table.Row{"checksum", fmt.Sprintf("%08x", h.Checksum)})
	}
	if len(h.Labels) > 0 {
		t.AppendRow(table.Row{"labels", strings.Join(h.Labels, "\n")})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
	})
	t.Render()

	if h.Meta.Len() == 0 {
		return
	}
	mt := table.NewWriter()
	mt.SetOutputMirror(w)
	mt.AppendHeader(table.Row{"Key", "Type", "Value"})
	for _, k := range h.Meta.Keys() {
		v, _ := h.Meta.Get(k)
		mt.AppendRow(table.Row{k, v.Kind(), v})
	}
	mt.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 3, AlignHeader: text.AlignCenter},
	})
	mt.Render()
}
