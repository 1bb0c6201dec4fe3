package datasets

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Noofbiz/scribeData/label"
)

// Options gathers everything Open needs.
type Options struct {
	Dir             string
	CacheFile       string
	PermutationFile string
	CursorFile      string
	InkMarker       string
	LabelMarker     string

	Alphabet   string
	KnownChars string
	Filter     string
	LabelPatch label.PatchMode
	BatchSize  int
	TSteps     int
	ASCIISteps int
	Scale      float64
	Limit      int
	Seed       int64

	// Analysis writes the letter report (and chart) after loading.
	Analysis   bool
	ReportPath string
	PlotPath   string

	Logger *slog.Logger
}

// Loader is an opened dataset: the raw cache, its split and a batch source
// positioned where the previous run left off.
type Loader struct {
	Raw     *RawCache
	Split   *Split
	Batches *BatchSource
}

// CachePath is where the raw cache lives.
func (o Options) CachePath() string {
	return filepath.Join(o.Dir, o.CacheFile)
}

// Store returns the file store for the iterator state.
func (o Options) Store() *FileStateStore {
	return NewFileStateStore(o.Dir, o.PermutationFile, o.CursorFile)
}

// BuildOptions derives the builder configuration.
func (o Options) BuildOptions() BuildOptions {
	return BuildOptions{
		Root:        o.Dir,
		InkMarker:   o.InkMarker,
		LabelMarker: o.LabelMarker,
		Labels:      &label.Parser{Known: o.KnownChars, Mode: o.LabelPatch, Logger: o.Logger},
		Logger:      o.Logger,
	}
}

// LoadOptions derives the loader configuration.
func (o Options) LoadOptions() LoadOptions {
	return LoadOptions{
		Alphabet:   o.Alphabet,
		Filter:     o.Filter,
		TSteps:     o.TSteps,
		ASCIISteps: o.ASCIISteps,
		Scale:      o.Scale,
		Limit:      o.Limit,
		BatchSize:  o.BatchSize,
		Logger:     o.Logger,
	}
}

// BatchOptions derives the batch source configuration.
func (o Options) BatchOptions() BatchOptions {
	return BatchOptions{
		BatchSize:  o.BatchSize,
		TSteps:     o.TSteps,
		ASCIISteps: o.ASCIISteps,
		Alphabet:   o.Alphabet,
		Seed:       o.Seed,
		Logger:     o.Logger,
	}
}

// Open builds the cache when missing, loads and splits it, optionally writes
// the analysis report, and restores the batch source.
func Open(opts Options) (*Loader, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	raw, err := EnsureCache(opts.CachePath(), opts.BuildOptions())
	if err != nil {
		return nil, err
	}

	split, err := LoadSplit(raw, opts.LoadOptions())
	if err != nil {
		return nil, err
	}

	if opts.Analysis {
		if _, err := WriteAnalysis(raw, opts.Alphabet, opts.ReportPath, opts.PlotPath); err != nil {
			return nil, fmt.Errorf("dataset analysis: %w", err)
		}
		opts.Logger.Info("wrote dataset analysis", "report", opts.ReportPath, "plot", opts.PlotPath)
	}

	batches, err := NewBatchSource(split, opts.Store(), opts.BatchOptions())
	if err != nil {
		return nil, err
	}
	return &Loader{Raw: raw, Split: split, Batches: batches}, nil
}
