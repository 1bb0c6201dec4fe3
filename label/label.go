// Package label reads the transcription stored in a UPX label file and turns
// its shaped text into logical character order.
package label

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Noofbiz/scribeData/shaping"
	"golang.org/x/net/html/charset"
)

// ErrNoLabel is returned when the transcription element is missing.
var ErrNoLabel = errors.New("label: transcription value not found")

// PatchMode selects what ParseFile does when unshaping changes the length of
// the text.
type PatchMode int

const (
	// PatchWarn logs the mismatch and keeps the unshaped text.
	PatchWarn PatchMode = iota
	// PatchLegacy re-inserts shaped characters at every position holding a
	// character outside the known set.
	PatchLegacy
)

// ParsePatchMode maps "warn" (or "") and "legacy" to a PatchMode.
func ParsePatchMode(s string) (PatchMode, error) {
	switch strings.ToLower(s) {
	case "", "warn":
		return PatchWarn, nil
	case "legacy":
		return PatchLegacy, nil
	default:
		return PatchWarn, fmt.Errorf("unknown label patch mode %q (want warn|legacy)", s)
	}
}

// Parser reads label files.
type Parser struct {
	// Known is the character set left in place by PatchLegacy.
	Known  string
	Mode   PatchMode
	Logger *slog.Logger
}

// node is a generic element used to walk the UPX tree by position.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []node     `xml:",any"`
}

// ReadValue returns the "value" attribute of the transcription element. The
// element sits at the first-child chain below the third child of the root.
func ReadValue(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var root node
	if err := dec.Decode(&root); err != nil {
		return "", err
	}
	if len(root.Children) < 3 {
		return "", ErrNoLabel
	}
	n := root.Children[2]
	for range 3 {
		if len(n.Children) == 0 {
			return "", ErrNoLabel
		}
		n = n.Children[0]
	}
	for _, a := range n.Attrs {
		if a.Name.Local == "value" {
			return a.Value, nil
		}
	}
	return "", ErrNoLabel
}

// ParseFile reads the label at path and returns it in logical order.
func (p *Parser) ParseFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open label file %s: %w", path, err)
	}
	defer f.Close()

	shaped, err := ReadValue(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse label file %s: %w", path, err)
	}
	return p.Unshape(path, shaped), nil
}

// Unshape converts shaped text read from source into logical order, applying
// the parser's PatchMode when the rune count changes.
func (p *Parser) Unshape(source, shaped string) string {
	logical := shaping.Unshape(shaped)
	if !shaping.LengthChanged(shaped, logical) {
		return logical
	}

	if p.Mode == PatchLegacy {
		return legacyPatch(shaped, logical, p.Known)
	}
	p.logger().Warn("label length changed while unshaping",
		"file", source,
		"shaped_runes", len([]rune(shaped)),
		"logical_runes", len([]rune(logical)))
	return logical
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// legacyPatch collects every position of logical holding a rune outside
// known, then inserts the shaped rune of the same position in front of it,
// one position at a time against the growing text. Positions past the end of
// either text are skipped.
func legacyPatch(shaped, logical, known string) string {
	src := []rune(shaped)
	out := []rune(logical)

	var positions []int
	for i, r := range out {
		if !strings.ContainsRune(known, r) {
			positions = append(positions, i)
		}
	}

	for _, i := range positions {
		if i >= len(src) || i > len(out) {
			continue
		}
		out = append(out[:i], append([]rune{src[i]}, out[i:]...)...)
	}
	return string(out)
}
