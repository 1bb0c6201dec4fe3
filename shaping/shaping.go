// Package shaping converts Arabic text between its logical character
// sequence and the contextual presentation forms used when it is rendered.
//
// Label files store the shaped form. Unshape folds it back; a lam-alef
// ligature unshapes to two runes, so the rune count of shaped and logical
// text can differ.
package shaping

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

func isTransparent(r rune) bool {
	return (r >= 0x0610 && r <= 0x061A) || (r >= 0x064B && r <= 0x065F) || r == 0x0670
}

// IsPresentationForm reports whether r lies in the Arabic Presentation
// Forms-A or -B blocks.
func IsPresentationForm(r rune) bool {
	return (r >= 0xFB50 && r <= 0xFDFF) || (r >= 0xFE70 && r <= 0xFEFF)
}

// Unshape folds presentation forms back into logical Arabic letters. Other
// runes pass through untouched, so Unshape is idempotent. Standalone harakat
// forms fold to the bare haraka.
func Unshape(s string) string {
	if !strings.ContainsFunc(s, IsPresentationForm) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if IsPresentationForm(r) {
			b.WriteString(fold(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// tatweel is the joining stroke NFKC puts in front of medial harakat forms.
const tatweel = '\u0640'

// fold returns the NFKC folding of r without the carrier space or tatweel
// that NFKC emits for isolated and medial harakat forms.
func fold(r rune) string {
	f := norm.NFKC.String(string(r))
	marks := strings.TrimLeft(f, " "+string(tatweel))
	if marks == f || marks == "" {
		return f
	}
	for _, m := range marks {
		if !isTransparent(m) {
			return f
		}
	}
	return marks
}

// LengthChanged reports whether shaped and logical differ in rune count,
// which happens when ligatures were unfolded.
func LengthChanged(shaped, logical string) bool {
	return utf8.RuneCountInString(shaped) != utf8.RuneCountInString(logical)
}
