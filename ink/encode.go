package ink

// Row is one encoded point: dx, dy and an end-of-stroke flag (0 or 1).
type Row [3]int32

// Encoded is a line of handwriting as relative integer offsets.
type Encoded []Row

// Len returns the number of points.
func (e Encoded) Len() int { return len(e) }

// Encode flattens strokes into rows of offsets from the previous point. The
// first point is taken relative to the origin. Coordinates are truncated to
// integers before differencing, and the last point of every stroke carries
// flag 1.
func Encode(strokes []Stroke) Encoded {
	n := 0
	for _, s := range strokes {
		n += len(s)
	}

	out := make(Encoded, 0, n)
	var prevX, prevY int32
	for _, s := range strokes {
		for k, p := range s {
			x, y := int32(p[0]), int32(p[1])
			var eos int32
			if k == len(s)-1 {
				eos = 1
			}
			out = append(out, Row{x - prevX, y - prevY, eos})
			prevX, prevY = x, y
		}
	}
	return out
}

// Absolute rebuilds the truncated absolute positions by summing offsets.
func (e Encoded) Absolute() []Point {
	pts := make([]Point, len(e))
	var x, y int32
	for i, r := range e {
		x += r[0]
		y += r[1]
		pts[i] = Point{float64(x), float64(y)}
	}
	return pts
}
