package main

import (
	"fmt"

	"github.com/Noofbiz/scribeData/datasets"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dataset split sizes and the saved iterator position",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := requireOptions()
			if err != nil {
				return err
			}

			raw, err := datasets.EnsureCache(opts.CachePath(), opts.BuildOptions())
			if err != nil {
				return err
			}
			split, err := datasets.LoadSplit(raw, opts.LoadOptions())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "samples: %d\n", raw.Len())
			_, _ = fmt.Fprintf(out, "train: %d\n", len(split.Train))
			_, _ = fmt.Fprintf(out, "valid: %d\n", len(split.Valid))
			_, _ = fmt.Fprintf(out, "batches: %d\n", split.NumBatches)
			_, _ = fmt.Fprintf(out, "points per char: %.2f\n", datasets.AveragePointsPerChar(raw))

			store := opts.Store()
			if cursor, err := store.LoadCursor(); err == nil {
				_, _ = fmt.Fprintf(out, "cursor: %d\n", cursor)
			} else {
				_, _ = fmt.Fprintln(out, "cursor: none")
			}
			return nil
		},
	}
}
