package shaping

import "strings"

// Contextual form offsets from the isolated presentation form.
const (
	isolated = 0
	final    = 1
	initial  = 2
	medial   = 3
)

type letter struct {
	// isolated presentation form; final is +1, initial +2, medial +3
	form rune
	// dual joining letters connect on both sides, the others only to the
	// preceding letter.
	dual bool
}

var letters = map[rune]letter{
	'ء': {0xFE80, false}, // hamza, never joins
	'آ': {0xFE81, false},
	'أ': {0xFE83, false},
	'ؤ': {0xFE85, false},
	'إ': {0xFE87, false},
	'ئ': {0xFE89, true},
	'ا': {0xFE8D, false},
	'ب': {0xFE8F, true},
	'ة': {0xFE93, false},
	'ت': {0xFE95, true},
	'ث': {0xFE99, true},
	'ج': {0xFE9D, true},
	'ح': {0xFEA1, true},
	'خ': {0xFEA5, true},
	'د': {0xFEA9, false},
	'ذ': {0xFEAB, false},
	'ر': {0xFEAD, false},
	'ز': {0xFEAF, false},
	'س': {0xFEB1, true},
	'ش': {0xFEB5, true},
	'ص': {0xFEB9, true},
	'ض': {0xFEBD, true},
	'ط': {0xFEC1, true},
	'ظ': {0xFEC5, true},
	'ع': {0xFEC9, true},
	'غ': {0xFECD, true},
	'ف': {0xFED1, true},
	'ق': {0xFED5, true},
	'ك': {0xFED9, true},
	'ل': {0xFEDD, true},
	'م': {0xFEE1, true},
	'ن': {0xFEE5, true},
	'ه': {0xFEE9, true},
	'و': {0xFEED, false},
	'ى': {0xFEEF, false},
	'ي': {0xFEF1, true},
}

// lam followed by one of these alefs renders as a single ligature (isolated
// form; final is +1).
var lamAlef = map[rune]rune{
	'آ': 0xFEF5,
	'أ': 0xFEF7,
	'إ': 0xFEF9,
	'ا': 0xFEFB,
}

const lam = 'ل'

// hamza cannot join in either direction.
const hamza = 'ء'

// shape is the forward transform used to build shaped fixtures: Arabic
// letters become their contextual presentation forms and lam-alef pairs
// join into ligatures. Harakat are transparent to joining.
func shape(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(rs); i++ {
		r := rs[i]
		l, ok := letters[r]
		if !ok {
			b.WriteRune(r)
			continue
		}
		joinsPrev := joinsBackward(rs, i)

		if r == lam {
			if j := nextLetter(rs, i); j >= 0 {
				if lig, ok := lamAlef[rs[j]]; ok {
					if joinsPrev {
						lig += final
					}
					b.WriteRune(lig)
					// keep harakat sitting between lam and alef
					for _, h := range rs[i+1 : j] {
						b.WriteRune(h)
					}
					i = j
					continue
				}
			}
		}

		joinsNext := l.dual && nextLetter(rs, i) >= 0 && r != hamza
		switch {
		case joinsPrev && joinsNext:
			b.WriteRune(l.form + medial)
		case joinsPrev:
			b.WriteRune(l.form + final)
		case joinsNext:
			b.WriteRune(l.form + initial)
		default:
			b.WriteRune(l.form + isolated)
		}
	}
	return b.String()
}

// nextLetter returns the index of the joining letter after i, skipping
// harakat, or -1 when the next non-transparent rune cannot join.
func nextLetter(rs []rune, i int) int {
	for j := i + 1; j < len(rs); j++ {
		if isTransparent(rs[j]) {
			continue
		}
		if _, ok := letters[rs[j]]; ok && rs[j] != hamza {
			return j
		}
		return -1
	}
	return -1
}

// joinsBackward reports whether the letter at i connects to a dual joining
// letter before it.
func joinsBackward(rs []rune, i int) bool {
	if rs[i] == hamza {
		return false
	}
	for j := i - 1; j >= 0; j-- {
		if isTransparent(rs[j]) {
			continue
		}
		l, ok := letters[rs[j]]
		return ok && l.dual
	}
	return false
}
