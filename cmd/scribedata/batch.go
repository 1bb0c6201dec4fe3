package main

import (
	"fmt"
	"io"

	"github.com/Noofbiz/scribeData/datasets"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	var (
		count      int
		validation bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Serve batches and print their tensor shapes",
		Long: "Serve batches from the persisted training order and print their tensor shapes.\n" +
			"Training batches advance the saved cursor; validation batches do not.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			opts, err := requireOptions()
			if err != nil {
				return err
			}

			l, err := datasets.Open(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i := range count {
				var b *datasets.Batch
				if validation {
					b, err = l.Batches.ValidationBatch()
				} else {
					b, err = l.Batches.NextBatch()
				}
				if err != nil {
					return err
				}
				if err := printBatch(out, i, b, opts); err != nil {
					return err
				}
			}

			st := l.Batches.State()
			_, _ = fmt.Fprintf(out, "cursor: %d/%d\n", st.Cursor, len(st.Permutation))
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 1, "Number of batches to serve")
	cmd.Flags().BoolVar(&validation, "validation", false, "Serve validation batches instead of training batches")

	return cmd
}

func printBatch(w io.Writer, i int, b *datasets.Batch, opts datasets.Options) error {
	x, y, oneHots, err := b.ToGomlxTensors()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "batch %d: x=%v y=%v one_hot=%v\n",
		i, x.Shape().Dimensions, y.Shape().Dimensions, oneHots.Shape().Dimensions)
	if b.Len() > 0 {
		_, _ = fmt.Fprintf(w, "  label: %q\n", b.Labels[0])
		_, _ = fmt.Fprintf(w, "  sequence: %v\n", datasets.Sequence(b.Labels[0], opts.ASCIISteps, opts.Alphabet))
	}
	return nil
}
