package datasets

import "github.com/Noofbiz/scribeData/shaping"

// MaxLabelRunes caps the label length read by OneHot.
const MaxLabelRunes = 3000

// OneHot encodes s as an (asciiSteps, len(alphabet)+1) matrix. Row r holds
// a single 1 at column alphabet.index(rune r)+1, or at column 0 when the rune
// is not in the alphabet or the label is shorter than asciiSteps.
//
// s is unshaped first; Unshape leaves logical text unchanged, so labels that
// are already logical encode the same either way.
func OneHot(s string, asciiSteps int, alphabet string) [][]float32 {
	index := alphabetIndex(alphabet)
	width := len(index.order) + 1

	runes := []rune(shaping.Unshape(s))
	if len(runes) > MaxLabelRunes {
		runes = runes[:MaxLabelRunes]
	}

	out := make([][]float32, asciiSteps)
	for r := range out {
		row := make([]float32, width)
		col := 0
		if r < len(runes) {
			col = index.column(runes[r])
		}
		row[col] = 1
		out[r] = row
	}
	return out
}

// Sequence returns the column OneHot sets for each of the first asciiSteps
// runes of s, padded with 0.
func Sequence(s string, asciiSteps int, alphabet string) []int {
	m := OneHot(s, asciiSteps, alphabet)
	seq := make([]int, len(m))
	for i, row := range m {
		for j, v := range row {
			if v == 1 {
				seq[i] = j
				break
			}
		}
	}
	return seq
}

type runeIndex struct {
	order []rune
	pos   map[rune]int
}

func alphabetIndex(alphabet string) runeIndex {
	idx := runeIndex{pos: make(map[rune]int)}
	for _, r := range alphabet {
		if _, ok := idx.pos[r]; !ok {
			idx.pos[r] = len(idx.order)
		}
		idx.order = append(idx.order, r)
	}
	return idx
}

// column is 1 + the first position of r in the alphabet, or 0 when absent.
func (idx runeIndex) column(r rune) int {
	if p, ok := idx.pos[r]; ok {
		return p + 1
	}
	return 0
}
