package datasets

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Noofbiz/scribeData/ink"
	"github.com/Noofbiz/scribeData/label"
)

// cacheVersion is incremented when the on-disk cache format changes.
const cacheVersion = 1

var (
	// ErrUnpaired is returned when an ink or label file has no partner.
	ErrUnpaired = errors.New("datasets: unpaired ink/label file")
	// ErrDuplicateKey is returned when two files of one kind share a key.
	ErrDuplicateKey = errors.New("datasets: duplicate pairing key")
	// ErrCountMismatch is returned when strokes and labels differ in length.
	ErrCountMismatch = errors.New("datasets: strokes and labels differ in count")
)

// FilePair is an ink file and the label file sharing its key.
type FilePair struct {
	Key       string
	InkPath   string
	LabelPath string
}

// RawCache is the preprocessed dataset: Strokes[i] is labelled by Labels[i].
type RawCache struct {
	Version   int
	CreatedAt int64 // unix timestamp when the cache was built
	Strokes   []ink.Encoded
	Labels    []string
}

// Len returns the number of samples.
func (c *RawCache) Len() int { return len(c.Strokes) }

// BuildOptions configures Build.
type BuildOptions struct {
	Root        string
	InkMarker   string
	LabelMarker string

	// Labels parses label files; a zero Parser is used when nil.
	Labels *label.Parser
	Logger *slog.Logger
}

// PairFiles walks root and joins ink files with label files on their key.
// Every file must have exactly one partner; the pairs come back sorted by key.
func PairFiles(root, inkMarker, labelMarker string) ([]FilePair, error) {
	inks, labels, err := walkMarked(root, inkMarker, labelMarker)
	if err != nil {
		return nil, err
	}

	inkByKey, err := indexByKey(inks, inkMarker)
	if err != nil {
		return nil, err
	}
	labelByKey, err := indexByKey(labels, labelMarker)
	if err != nil {
		return nil, err
	}

	var unmatched []string
	pairs := make([]FilePair, 0, len(inkByKey))
	for key, inkPath := range inkByKey {
		labelPath, ok := labelByKey[key]
		if !ok {
			unmatched = append(unmatched, inkPath)
			continue
		}
		pairs = append(pairs, FilePair{Key: key, InkPath: inkPath, LabelPath: labelPath})
	}
	for key, labelPath := range labelByKey {
		if _, ok := inkByKey[key]; !ok {
			unmatched = append(unmatched, labelPath)
		}
	}
	if len(unmatched) > 0 {
		sort.Strings(unmatched)
		return nil, fmt.Errorf("%w: %s", ErrUnpaired, strings.Join(unmatched, ", "))
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, nil
}

func indexByKey(paths []string, marker string) (map[string]string, error) {
	byKey := make(map[string]string, len(paths))
	for _, p := range paths {
		key := pairKey(p, marker)
		if prev, ok := byKey[key]; ok {
			return nil, fmt.Errorf("%w %q: %s and %s", ErrDuplicateKey, key, prev, p)
		}
		byKey[key] = p
	}
	return byKey, nil
}

// Build parses every pair under opts.Root. The first unreadable file aborts
// the build.
func Build(opts BuildOptions) (*RawCache, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parser := opts.Labels
	if parser == nil {
		parser = &label.Parser{Logger: logger}
	}

	logger.Info("parsing dataset", "root", opts.Root)
	pairs, err := PairFiles(opts.Root, opts.InkMarker, opts.LabelMarker)
	if err != nil {
		return nil, err
	}

	cache := &RawCache{
		Version: cacheVersion,
		Strokes: make([]ink.Encoded, 0, len(pairs)),
		Labels:  make([]string, 0, len(pairs)),
	}
	for i, p := range pairs {
		strokes, err := ink.ParseFile(p.InkPath)
		if err != nil {
			return nil, err
		}
		text, err := parser.ParseFile(p.LabelPath)
		if err != nil {
			return nil, err
		}
		cache.Strokes = append(cache.Strokes, ink.Encode(strokes))
		cache.Labels = append(cache.Labels, text)
		logger.Debug("parsed sample", "index", i, "key", p.Key)
	}

	if len(cache.Strokes) != len(cache.Labels) {
		return nil, fmt.Errorf("%w: %d strokes, %d labels", ErrCountMismatch, len(cache.Strokes), len(cache.Labels))
	}
	cache.CreatedAt = time.Now().Unix()
	return cache, nil
}

// SaveCache writes the cache to path with encoding/gob.
func SaveCache(path string, c *RawCache) error {
	if len(c.Strokes) != len(c.Labels) {
		return fmt.Errorf("%w: %d strokes, %d labels", ErrCountMismatch, len(c.Strokes), len(c.Labels))
	}
	if err := saveGob(path, c); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}

// LoadCache reads a cache written by SaveCache and checks its version.
func LoadCache(path string) (*RawCache, error) {
	var c RawCache
	if err := loadGob(path, &c); err != nil {
		return nil, fmt.Errorf("load cache %s: %w", path, err)
	}
	if c.Version != cacheVersion {
		return nil, fmt.Errorf("cache version mismatch: cache=%d expected=%d", c.Version, cacheVersion)
	}
	if len(c.Strokes) != len(c.Labels) {
		return nil, fmt.Errorf("%w in %s: %d strokes, %d labels", ErrCountMismatch, path, len(c.Strokes), len(c.Labels))
	}
	return &c, nil
}

// EnsureCache loads the cache at path, building and saving it first when
// the file does not exist.
func EnsureCache(path string, opts BuildOptions) (*RawCache, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(path); err == nil {
		return LoadCache(path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat cache %s: %w", path, err)
	}

	logger.Info("creating training data cache from raw source", "cache", path)
	c, err := Build(opts)
	if err != nil {
		return nil, err
	}
	if err := SaveCache(path, c); err != nil {
		return nil, err
	}
	logger.Info("finished parsing dataset", "lines", c.Len())
	return c, nil
}
