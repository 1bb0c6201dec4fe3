package datasets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile creates path (and its parent directories) with content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// writeInk writes an InkML file holding one trace per stroke.
func writeInk(t *testing.T, path string, strokes [][][2]int) {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<ink xmlns="http://www.w3.org/2003/InkML">` + "\n")
	for _, s := range strokes {
		pts := make([]string, len(s))
		for i, p := range s {
			pts[i] = fmt.Sprintf("%d %d", p[0], p[1])
		}
		b.WriteString("  <trace>" + strings.Join(pts, ", ") + "</trace>\n")
	}
	b.WriteString("</ink>\n")
	writeFile(t, path, b.String())
}

// writeLabel writes a UPX file whose transcription value is text.
func writeLabel(t *testing.T, path, text string) {
	t.Helper()
	writeFile(t, path, `<?xml version="1.0" encoding="UTF-8"?>
<unipen>
  <header/>
  <source/>
  <hierarchy><page><line><word value="`+text+`"/></line></page></hierarchy>
</unipen>
`)
}

// line returns a single stroke of n points moving right by one unit.
func line(n int) [][][2]int {
	s := make([][2]int, n)
	for i := range s {
		s[i] = [2]int{i, i % 7}
	}
	return [][][2]int{s}
}

// writePair writes data/lineStrokes/<key>.inkml and data/ascii/<key>.upx.
func writePair(t *testing.T, root, key string, points int, text string) {
	t.Helper()
	writeInk(t, filepath.Join(root, "lineStrokes", key+".inkml"), line(points))
	writeLabel(t, filepath.Join(root, "ascii", key+".upx"), text)
}
