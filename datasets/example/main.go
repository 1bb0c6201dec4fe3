package main

// Example command that opens the handwriting stroke dataset, serves a few
// training batches and converts them into gomlx tensors.
//
// The first run parses the raw ink and label files under ./data into the
// gob cache; later runs load the cache and resume the shuffled pass where
// the previous run stopped.
//
// Usage:
//   go run ./datasets/example
//
// Note: this example expects lineStrokes/*.inkml and ascii/*.upx files under
// ./data. If none are found the example will print an error and exit.

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/Noofbiz/scribeData/config"
	"github.com/Noofbiz/scribeData/datasets"
	"github.com/Noofbiz/scribeData/label"
)

func main() {
	cfg := config.DefaultConfig()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	l, err := datasets.Open(datasets.Options{
		Dir:             cfg.Data.Dir,
		CacheFile:       cfg.Data.CacheFile,
		PermutationFile: cfg.Data.PermutationFile,
		CursorFile:      cfg.Data.CursorFile,
		InkMarker:       cfg.Data.InkMarker,
		LabelMarker:     cfg.Data.LabelMarker,
		Alphabet:        cfg.Text.Alphabet,
		KnownChars:      cfg.Text.KnownChars(),
		Filter:          cfg.Text.Filter,
		LabelPatch:      label.PatchWarn,
		BatchSize:       cfg.Batch.Size,
		TSteps:          cfg.Batch.TSteps,
		ASCIISteps:      cfg.Batch.ASCIISteps(),
		Scale:           cfg.Preprocess.Scale,
		Limit:           cfg.Preprocess.Limit,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("failed to open dataset: %v", err)
	}
	fmt.Printf("Samples in cache: %d\n", l.Raw.Len())
	fmt.Printf("Train: %d, validation: %d, batches per pass: %d\n",
		len(l.Split.Train), len(l.Split.Valid), l.Batches.NumBatches())

	n := min(3, l.Batches.NumBatches())
	for i := range n {
		b, err := l.Batches.NextBatch()
		if err != nil {
			log.Fatalf("failed to serve batch: %v", err)
		}
		x, y, oneHots, err := b.ToGomlxTensors()
		if err != nil {
			log.Fatalf("failed to convert batch to gomlx tensors: %v", err)
		}
		fmt.Printf("Batch %d\n", i)
		fmt.Printf("  x shape: %v\n", x.Shape().Dimensions)
		fmt.Printf("  y shape: %v\n", y.Shape().Dimensions)
		fmt.Printf("  one-hot shape: %v\n", oneHots.Shape().Dimensions)
		fmt.Printf("  first label: %q\n", b.Labels[0])
	}

	if len(l.Split.Valid) > 0 {
		vb, err := l.Batches.ValidationBatch()
		if err != nil {
			log.Fatalf("failed to serve validation batch: %v", err)
		}
		fmt.Printf("Validation batch of %d samples, first label %q\n", vb.Len(), vb.Labels[0])
	}

	st := l.Batches.State()
	fmt.Printf("\nCursor saved at %d of %d\n", st.Cursor, len(st.Permutation))
}
