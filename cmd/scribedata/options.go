package main

import (
	"log/slog"

	"github.com/Noofbiz/scribeData/config"
	"github.com/Noofbiz/scribeData/datasets"
	"github.com/Noofbiz/scribeData/label"
)

// datasetOptions maps the loaded configuration onto datasets.Options.
func datasetOptions(cfg config.Config) (datasets.Options, error) {
	mode, err := label.ParsePatchMode(cfg.Text.LabelPatch)
	if err != nil {
		return datasets.Options{}, err
	}

	return datasets.Options{
		Dir:             cfg.Data.Dir,
		CacheFile:       cfg.Data.CacheFile,
		PermutationFile: cfg.Data.PermutationFile,
		CursorFile:      cfg.Data.CursorFile,
		InkMarker:       cfg.Data.InkMarker,
		LabelMarker:     cfg.Data.LabelMarker,

		Alphabet:   cfg.Text.Alphabet,
		KnownChars: cfg.Text.KnownChars(),
		Filter:     cfg.Text.Filter,
		LabelPatch: mode,
		BatchSize:  cfg.Batch.Size,
		TSteps:     cfg.Batch.TSteps,
		ASCIISteps: cfg.Batch.ASCIISteps(),
		Scale:      cfg.Preprocess.Scale,
		Limit:      cfg.Preprocess.Limit,
		Seed:       cfg.Batch.Seed,

		Analysis:   cfg.Analysis.Enabled,
		ReportPath: cfg.Analysis.ReportPath,
		PlotPath:   cfg.Analysis.PlotPath,

		Logger: slog.Default(),
	}, nil
}

func requireOptions() (datasets.Options, error) {
	cfg, err := requireConfig()
	if err != nil {
		return datasets.Options{}, err
	}
	return datasetOptions(cfg)
}
