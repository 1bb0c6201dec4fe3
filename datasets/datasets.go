package datasets

import "github.com/gomlx/gomlx/pkg/core/tensors"

// This package turns a directory of InkML trace files and UPX label files
// into numeric training batches for a handwriting sequence model.
//
// Pipeline:
//
//   - Build walks the data directory, joins every ink file with its label
//     file on a key derived from the file name, parses both, encodes the
//     strokes and returns a RawCache. SaveCache persists it with gob.
//   - LoadSplit filters, clips and rescales the raw samples and assigns every
//     20th accepted sample to validation.
//   - BatchSource serves shuffled next-step windows from the training split
//     and fixed windows from the validation split. Its permutation and
//     cursor live in a StateStore so iteration resumes across restarts.
//   - OneHot converts labels into fixed-size character matrices.
//
// Open wires all of these together from a single Options value.

// Sample is one accepted line of handwriting: scaled (dx, dy, eos) rows and
// the filtered label.
type Sample struct {
	Strokes [][3]float32
	Label   string
}

// Len returns the number of stroke points.
func (s Sample) Len() int { return len(s.Strokes) }

// Source is implemented by anything serving training batches; BatchSource
// additionally satisfies gomlx's train.Dataset.
type Source interface {
	NextBatch() (*Batch, error)
	ValidationBatch() (*Batch, error)

	// To implement gomlx's train.Dataset interface
	Name() string
	Reset()
	Yield() (any, []*tensors.Tensor, []*tensors.Tensor, error)
}
