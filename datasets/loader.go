package datasets

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// ValidationEvery sends every n-th accepted sample to the validation split.
const ValidationEvery = 20

// DefaultLimit clips offsets larger than this many pixels; such jumps are
// recording noise rather than pen movement.
const DefaultLimit = 500

// LoadOptions configures LoadSplit.
type LoadOptions struct {
	Alphabet   string
	Filter     string
	TSteps     int
	ASCIISteps int
	Scale      float64
	// Limit defaults to DefaultLimit when zero.
	Limit     int
	BatchSize int
	Logger    *slog.Logger
}

// Split holds the accepted samples of a RawCache.
type Split struct {
	Train      []Sample
	Valid      []Sample
	NumBatches int
}

// LoadSplit filters, clips and scales the raw samples. A sample is kept
// when it has more than TSteps+2 points and its filtered label has more than
// ASCIISteps characters. Accepted samples are counted from 1 and every
// ValidationEvery-th one goes to Valid with its label reduced to the alphabet
// and space.
func LoadSplit(raw *RawCache, opts LoadOptions) (*Split, error) {
	if len(raw.Strokes) != len(raw.Labels) {
		return nil, fmt.Errorf("%w: %d strokes, %d labels", ErrCountMismatch, len(raw.Strokes), len(raw.Labels))
	}
	if opts.Scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %v", opts.Scale)
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	split := &Split{}
	accepted := 0
	for i, rows := range raw.Strokes {
		text := removeChars(raw.Labels[i], opts.Filter)
		if len(rows) <= opts.TSteps+2 || utf8.RuneCountInString(text) <= opts.ASCIISteps {
			continue
		}

		data := make([][3]float32, len(rows))
		for j, r := range rows {
			data[j] = [3]float32{
				float32(clip(r[0], limit)) / float32(opts.Scale),
				float32(clip(r[1], limit)) / float32(opts.Scale),
				float32(clip(r[2], limit)),
			}
		}

		accepted++
		if accepted%ValidationEvery == 0 {
			split.Valid = append(split.Valid, Sample{Strokes: data, Label: keepChars(text, opts.Alphabet+" ")})
		} else {
			split.Train = append(split.Train, Sample{Strokes: data, Label: text})
		}
	}

	split.NumBatches = len(split.Train) / opts.BatchSize
	logger.Info("loaded dataset",
		"train", len(split.Train),
		"valid", len(split.Valid),
		"batches", split.NumBatches)
	return split, nil
}

func clip(v int32, limit int) int32 {
	l := int32(limit)
	return min(max(v, -l), l)
}

// removeChars deletes every rune of set from s.
func removeChars(s, set string) string {
	if set == "" {
		return s
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(set, r) {
			return -1
		}
		return r
	}, s)
}

// keepChars deletes every rune of s that is not in set.
func keepChars(s, set string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(set, r) {
			return r
		}
		return -1
	}, s)
}
