// Package ink reads InkML trace files and encodes their strokes as rows of
// relative pen offsets.
package ink

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// InkMLNamespace is the XML namespace of trace elements.
const InkMLNamespace = "http://www.w3.org/2003/InkML"

// OffsetPadding is added to the maximum x and y of a file before every point
// is shifted by that offset.
const OffsetPadding = 100.0

// ErrNoTraces is returned when a file holds no trace element with points.
var ErrNoTraces = errors.New("ink: no trace points found")

// Point is an absolute (x, y) pen position.
type Point [2]float64

// Stroke is a continuous pen-down path.
type Stroke []Point

// ParseFile reads the InkML file at path.
func ParseFile(path string) ([]Stroke, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ink file %s: %w", path, err)
	}
	defer f.Close()

	strokes, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ink file %s: %w", path, err)
	}
	return strokes, nil
}

// Parse decodes every trace element in r into a stroke and shifts all points
// by (max x + OffsetPadding, max y + OffsetPadding), so coordinates end up
// negative and anchored to the bottom-right corner of the line.
func Parse(r io.Reader) ([]Stroke, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var strokes []Stroke
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || !isTrace(start.Name) {
			continue
		}

		var trace struct {
			Text string `xml:",chardata"`
		}
		if err := dec.DecodeElement(&trace, &start); err != nil {
			return nil, fmt.Errorf("failed to decode trace: %w", err)
		}
		stroke, err := parseTrace(trace.Text)
		if err != nil {
			return nil, fmt.Errorf("trace %d: %w", len(strokes), err)
		}
		if len(stroke) > 0 {
			strokes = append(strokes, stroke)
		}
	}

	if len(strokes) == 0 {
		return nil, ErrNoTraces
	}

	shiftToOrigin(strokes)
	return strokes, nil
}

func isTrace(name xml.Name) bool {
	return name.Local == "trace" && (name.Space == InkMLNamespace || name.Space == "")
}

// parseTrace reads comma separated points; each point lists whitespace
// separated channels of which the first two are x and y.
func parseTrace(text string) (Stroke, error) {
	var stroke Stroke
	for _, raw := range strings.Split(text, ",") {
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("point %q has fewer than two coordinates", strings.TrimSpace(raw))
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse x in %q: %w", strings.TrimSpace(raw), err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse y in %q: %w", strings.TrimSpace(raw), err)
		}
		stroke = append(stroke, Point{x, y})
	}
	return stroke, nil
}

func shiftToOrigin(strokes []Stroke) {
	maxX, maxY := strokes[0][0][0], strokes[0][0][1]
	for _, s := range strokes {
		for _, p := range s {
			maxX = max(maxX, p[0])
			maxY = max(maxY, p[1])
		}
	}
	offX := maxX + OffsetPadding
	offY := maxY + OffsetPadding

	for _, s := range strokes {
		for j := range s {
			s[j] = Point{s[j][0] - offX, s[j][1] - offY}
		}
	}
}
