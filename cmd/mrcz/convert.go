package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-mrcz/mrcz"
)

type convertFlags struct {
	input      string
	output     string
	compressor string
	level      int
	blockSize  int
	threads    int
	config     string
}

func newConvertCommand() *cobra.Command {
	f := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "convert -i IN -o OUT",
		Short: "re-encode a file with another compressor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.input == "" || f.output == "" {
				return errors.New("both --input and --output are required")
			}
			opts, err := f.writeOptions(cmd)
			if err != nil {
				return err
			}
			arr, h, err := mrcz.ReadFile(f.input, mrcz.WithReadThreads(f.threads))
			if err != nil {
				return err
			}
			opts = append(carryHeader(h), opts...)
			if err := mrcz.WriteFile(f.output, arr, opts...); err != nil {
				return err
			}

			out, err := mrcz.ReadHeader(f.output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %s, %d -> %d bytes\n",
				f.input, f.output, out.Compressor, h.StoredBytes, out.StoredBytes)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "", "input file")
	flags.StringVarP(&f.output, "output", "o", "", "output file")
	flags.StringVarP(&f.compressor, "compressor", "c", "none", "none, zstd or lz4")
	flags.IntVarP(&f.level, "level", "l", mrcz.DefaultLevel, "compression level")
	flags.IntVarP(&f.blockSize, "blocksize", "B", mrcz.DefaultBlockSize, "block size in bytes")
	flags.IntVarP(&f.threads, "threads", "n", 0, "worker threads, 0 for one per CPU")
	flags.StringVar(&f.config, "config", "", "YAML file with write settings")
	return cmd
}

// writeOptions layers flags given on the command line over the config file.
func (f *convertFlags) writeOptions(cmd *cobra.Command) ([]mrcz.WriteOption, error) {
	var opts []mrcz.WriteOption
	if f.config != "" {
		c, err := mrcz.LoadConfig(f.config)
		if err != nil {
			return nil, err
		}
		opts = c.WriteOptions()
	}

	flags := cmd.Flags()
	if f.config == "" || flags.Changed("compressor") {
		opts = append(opts, mrcz.WithCompressor(f.compressor))
	}
	if f.config == "" || flags.Changed("level") {
		opts = append(opts, mrcz.WithLevel(f.level))
	}
	if flags.Changed("blocksize") {
		opts = append(opts, mrcz.WithBlockSize(f.blockSize))
	}
	if flags.Changed("threads") {
		opts = append(opts, mrcz.WithThreads(f.threads))
	}
	return opts, nil
}

// carryHeader keeps the calibration, labels and metadata of the source file.
func carryHeader(h *mrcz.Header) []mrcz.WriteOption {
	opts := []mrcz.WriteOption{
		mrcz.WithPixelSize(h.PixelSize[0], h.PixelSize[1], h.PixelSize[2]),
		mrcz.WithPixelUnit(h.PixelUnit),
		mrcz.WithVoltage(h.Voltage),
		mrcz.WithC3(h.C3),
		mrcz.WithGain(h.Gain),
		mrcz.WithMetadata(h.Meta),
	}
	for _, l := range h.Labels {
		opts = append(opts, mrcz.WithLabel(l))
	}
	return opts
}
