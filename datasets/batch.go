package datasets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/train"
)

var (
	// ErrNoState is returned by a StateStore holding no persisted value.
	ErrNoState = errors.New("datasets: no persisted iterator state")
	// ErrEmptySplit is returned when a batch is requested from an empty split.
	ErrEmptySplit = errors.New("datasets: split has no samples")
)

var (
	_ Source        = (*BatchSource)(nil)
	_ train.Dataset = (*BatchSource)(nil)
)

// IteratorState is the position of a BatchSource in its training order:
// Permutation[Cursor] is the next training sample served.
type IteratorState struct {
	Permutation []int
	Cursor      int
}

// StateStore persists IteratorState. The permutation and the cursor are
// stored separately; loading a missing value returns ErrNoState.
//
// A store assumes a single BatchSource uses it at a time.
type StateStore interface {
	LoadPermutation() ([]int, error)
	SavePermutation(perm []int) error
	LoadCursor() (int, error)
	SaveCursor(cursor int) error
	// Clear removes both values.
	Clear() error
}

// FileStateStore keeps the permutation and the cursor in two gob files.
type FileStateStore struct {
	PermutationPath string
	CursorPath      string
}

// NewFileStateStore stores state as permutationFile and cursorFile in dir.
func NewFileStateStore(dir, permutationFile, cursorFile string) *FileStateStore {
	return &FileStateStore{
		PermutationPath: filepath.Join(dir, permutationFile),
		CursorPath:      filepath.Join(dir, cursorFile),
	}
}

func (s *FileStateStore) LoadPermutation() ([]int, error) {
	var v []int
	if err := s.load(s.PermutationPath, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *FileStateStore) SavePermutation(perm []int) error {
	return saveGob(s.PermutationPath, perm)
}

func (s *FileStateStore) LoadCursor() (int, error) {
	var v int
	if err := s.load(s.CursorPath, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func (s *FileStateStore) SaveCursor(cursor int) error {
	return saveGob(s.CursorPath, cursor)
}

func (s *FileStateStore) Clear() error {
	for _, p := range []string{s.PermutationPath, s.CursorPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func (s *FileStateStore) load(path string, v any) error {
	err := loadGob(path, v)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoState
	}
	return err
}

// BatchOptions configures a BatchSource.
type BatchOptions struct {
	BatchSize  int
	TSteps     int
	ASCIISteps int
	Alphabet   string
	// Seed for permutations; zero means time based.
	Seed   int64
	Logger *slog.Logger
}

// Batch is one batch of next-step prediction windows: Y[i] is X[i] shifted
// forward by one point.
type Batch struct {
	X       [][][3]float32
	Y       [][][3]float32
	Labels  []string
	OneHots [][][]float32
}

// Len returns the number of samples in the batch.
func (b *Batch) Len() int { return len(b.X) }

// BatchSource serves training batches in a persisted shuffled order and
// validation batches in a fixed order.
type BatchSource struct {
	split *Split
	opts  BatchOptions
	store StateStore
	state IteratorState

	rand   *rand.Rand
	logger *slog.Logger
}

// NewBatchSource restores the iterator state from store. A missing
// permutation is drawn fresh and a missing cursor starts at 0; both are
// saved before returning. A persisted state that does not fit the current
// training split is discarded.
func NewBatchSource(split *Split, store StateStore, opts BatchOptions) (*BatchSource, error) {
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.TSteps <= 0 {
		return nil, fmt.Errorf("tsteps must be positive, got %d", opts.TSteps)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &BatchSource{
		split:  split,
		opts:   opts,
		store:  store,
		rand:   rand.New(rand.NewSource(seed)),
		logger: logger,
	}
	if err := b.restore(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *BatchSource) restore() error {
	perm, err := b.store.LoadPermutation()
	switch {
	case errors.Is(err, ErrNoState):
		return b.reshuffle()
	case err != nil:
		return fmt.Errorf("load permutation: %w", err)
	}

	cursor, err := b.store.LoadCursor()
	switch {
	case errors.Is(err, ErrNoState):
		cursor = 0
		if err := b.store.SaveCursor(cursor); err != nil {
			return fmt.Errorf("save cursor: %w", err)
		}
	case err != nil:
		return fmt.Errorf("load cursor: %w", err)
	}

	if !validPermutation(perm, len(b.split.Train)) || cursor < 0 || cursor >= max(len(perm), 1) {
		b.logger.Warn("discarding persisted iterator state",
			"permutation_len", len(perm),
			"cursor", cursor,
			"train", len(b.split.Train))
		if err := b.store.Clear(); err != nil {
			return err
		}
		return b.reshuffle()
	}

	b.state = IteratorState{Permutation: perm, Cursor: cursor}
	return nil
}

// reshuffle draws a fresh permutation, rewinds the cursor and saves both.
func (b *BatchSource) reshuffle() error {
	b.state = IteratorState{Permutation: b.rand.Perm(len(b.split.Train))}
	if err := b.store.SavePermutation(b.state.Permutation); err != nil {
		return fmt.Errorf("save permutation: %w", err)
	}
	if err := b.store.SaveCursor(0); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

func validPermutation(perm []int, n int) bool {
	if len(perm) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range perm {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// State returns a copy of the current iterator state.
func (b *BatchSource) State() IteratorState {
	return IteratorState{
		Permutation: append([]int(nil), b.state.Permutation...),
		Cursor:      b.state.Cursor,
	}
}

// NumBatches returns the number of full training batches per pass.
func (b *BatchSource) NumBatches() int {
	return len(b.split.Train) / b.opts.BatchSize
}

// NextBatch serves the next BatchSize training samples in permutation order.
// Passing the end of the permutation clears the store and draws a new one.
// The cursor is saved after every batch.
func (b *BatchSource) NextBatch() (*Batch, error) {
	if len(b.split.Train) == 0 {
		return nil, fmt.Errorf("training %w", ErrEmptySplit)
	}

	batch := b.newBatch()
	for range b.opts.BatchSize {
		b.appendSample(batch, b.split.Train[b.state.Permutation[b.state.Cursor]])
		if err := b.tick(); err != nil {
			return nil, err
		}
	}
	if err := b.Checkpoint(); err != nil {
		return nil, err
	}
	return batch, nil
}

func (b *BatchSource) tick() error {
	b.state.Cursor++
	if b.state.Cursor < len(b.state.Permutation) {
		return nil
	}
	if err := b.store.Clear(); err != nil {
		return err
	}
	return b.reshuffle()
}

// Checkpoint saves the cursor.
func (b *BatchSource) Checkpoint() error {
	if err := b.store.SaveCursor(b.state.Cursor); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

// ValidationBatch serves validation samples 0..BatchSize-1, wrapping around
// the validation split. It does not touch the training state.
func (b *BatchSource) ValidationBatch() (*Batch, error) {
	if len(b.split.Valid) == 0 {
		return nil, fmt.Errorf("validation %w", ErrEmptySplit)
	}
	batch := b.newBatch()
	for i := range b.opts.BatchSize {
		b.appendSample(batch, b.split.Valid[i%len(b.split.Valid)])
	}
	return batch, nil
}

func (b *BatchSource) newBatch() *Batch {
	n := b.opts.BatchSize
	return &Batch{
		X:       make([][][3]float32, 0, n),
		Y:       make([][][3]float32, 0, n),
		Labels:  make([]string, 0, n),
		OneHots: make([][][]float32, 0, n),
	}
}

// appendSample adds the window sample[0:TSteps] and its target
// sample[1:TSteps+1], both copied and clamped to the sample length.
func (b *BatchSource) appendSample(batch *Batch, s Sample) {
	n := len(s.Strokes)
	x := append([][3]float32(nil), s.Strokes[:min(b.opts.TSteps, n)]...)
	y := append([][3]float32(nil), s.Strokes[min(1, n):min(b.opts.TSteps+1, n)]...)
	batch.X = append(batch.X, x)
	batch.Y = append(batch.Y, y)
	batch.Labels = append(batch.Labels, s.Label)
	batch.OneHots = append(batch.OneHots, OneHot(s.Label, b.opts.ASCIISteps, b.opts.Alphabet))
}

// Name implements train.Dataset.
func (b *BatchSource) Name() string {
	return "HandwritingStrokes"
}

// Reset implements train.Dataset by starting a freshly shuffled pass.
func (b *BatchSource) Reset() {
	if err := b.store.Clear(); err != nil {
		b.logger.Error("failed to clear iterator state", "error", err)
		return
	}
	if err := b.reshuffle(); err != nil {
		b.logger.Error("failed to reshuffle", "error", err)
	}
}

// Yield implements train.Dataset. Inputs are the stroke windows and the
// one-hot labels; the label is the shifted window. It never returns io.EOF:
// passes roll over into a new permutation.
func (b *BatchSource) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	batch, err := b.NextBatch()
	if err != nil {
		return nil, nil, nil, err
	}
	x, y, oneHots, err := batch.ToGomlxTensors()
	if err != nil {
		return nil, nil, nil, err
	}
	return b, []*tensors.Tensor{x, oneHots}, []*tensors.Tensor{y}, nil
}

// ToGomlxTensors converts the batch into x and y tensors of shape
// (batch, tsteps, 3) and a one-hot tensor of shape
// (batch, ascii_steps, alphabet+1). All windows must have the same length.
func (b *Batch) ToGomlxTensors() (x, y, oneHots *tensors.Tensor, err error) {
	if b.Len() == 0 {
		return nil, nil, nil, fmt.Errorf("empty batch")
	}
	xs, err := windows(b.X)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("x: %w", err)
	}
	ys, err := windows(b.Y)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("y: %w", err)
	}
	return tensors.FromAnyValue(xs), tensors.FromAnyValue(ys), tensors.FromAnyValue(b.OneHots), nil
}

// windows reshapes fixed-size rows into nested slices, checking that every
// window has the length of the first.
func windows(ws [][][3]float32) ([][][]float32, error) {
	steps := len(ws[0])
	out := make([][][]float32, len(ws))
	for i, w := range ws {
		if len(w) != steps {
			return nil, fmt.Errorf("inconsistent window length at example %d: expected %d, got %d", i, steps, len(w))
		}
		out[i] = make([][]float32, steps)
		for j := range w {
			out[i][j] = w[j][:]
		}
	}
	return out, nil
}
