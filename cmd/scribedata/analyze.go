package main

import (
	"fmt"

	"github.com/Noofbiz/scribeData/datasets"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Write the per-length letter report and chart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := requireOptions()
			if err != nil {
				return err
			}

			raw, err := datasets.EnsureCache(opts.CachePath(), opts.BuildOptions())
			if err != nil {
				return err
			}
			buckets, err := datasets.WriteAnalysis(raw, opts.Alphabet, opts.ReportPath, opts.PlotPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "report: %s (%d lengths)\n", opts.ReportPath, len(buckets))
			if opts.PlotPath != "" && len(buckets) > 0 {
				_, _ = fmt.Fprintf(out, "plot: %s\n", opts.PlotPath)
			}
			_, _ = fmt.Fprintf(out, "points per char: %.2f\n", datasets.AveragePointsPerChar(raw))
			return nil
		},
	}
}
