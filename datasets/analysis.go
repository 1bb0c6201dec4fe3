package datasets

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// LengthBucket counts letters over the labels with at least Length
// characters, looking only at their first Length characters.
type LengthBucket struct {
	Length int
	// Words is the number of labels with at least Length characters.
	Words int
	// Letters[0] counts runes outside the alphabet; Letters[i+1] counts
	// alphabet rune i.
	Letters []int
}

// Loaded is the number of characters the bucket covers.
func (b LengthBucket) Loaded() int { return b.Words * b.Length }

// AnalyzeLetters returns one bucket per length from 1 to the longest label.
func AnalyzeLetters(labels []string, alphabet string) []LengthBucket {
	index := alphabetIndex(alphabet)

	longest := 0
	runes := make([][]rune, len(labels))
	for i, l := range labels {
		runes[i] = []rune(l)
		longest = max(longest, len(runes[i]))
	}

	buckets := make([]LengthBucket, longest)
	for n := 1; n <= longest; n++ {
		b := LengthBucket{Length: n, Letters: make([]int, len(index.order)+1)}
		for _, rs := range runes {
			if len(rs) < n {
				continue
			}
			b.Words++
			for _, r := range rs[:n] {
				b.Letters[index.column(r)]++
			}
		}
		buckets[n-1] = b
	}
	return buckets
}

// WriteAnalysisReport writes the buckets as a fixed-width text report.
func WriteAnalysisReport(w io.Writer, buckets []LengthBucket, alphabet string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "Info of dataset \n\n")

	letters := []rune(alphabet)
	for _, b := range buckets {
		fmt.Fprintf(bw, "%20s%-10d%-20s%-10d%-10s%-10d%s\n\n",
			fmt.Sprintf("%-10s", "For"), b.Length, "character in", b.Words, "words", b.Loaded(),
			"character will be loaded")
		for i, r := range letters {
			writeLetterLine(bw, string(r), fmt.Sprintf("\\u%04x", r), b.Letters[i+1])
		}
		writeLetterLine(bw, "Unknown", "Unknown", b.Letters[0])
		fmt.Fprint(bw, "\n\n\n\n")
	}
	return bw.Flush()
}

func writeLetterLine(w io.Writer, letter, escaped string, count int) {
	// pad by runes so that Arabic letters line up like Latin ones
	pad := max(0, 10-utf8.RuneCountInString(letter))
	fmt.Fprintf(w, "%30s%s%s%-20s%-10s%-30s%-10d\n",
		fmt.Sprintf("%-10s", "Letter"), letter, strings.Repeat(" ", pad),
		"Unicode", escaped, "Number of repetition", count)
}

// PlotLengthHistogram writes a PNG bar chart of the number of labels per
// length bucket.
func PlotLengthHistogram(path string, buckets []LengthBucket) error {
	if len(buckets) == 0 {
		return fmt.Errorf("no length buckets to plot")
	}

	values := make(plotter.Values, len(buckets))
	names := make([]string, len(buckets))
	for i, b := range buckets {
		values[i] = float64(b.Words)
		names[i] = strconv.Itoa(b.Length)
	}

	p := plot.New()
	p.Title.Text = "Labels with at least n characters"
	p.X.Label.Text = "n"
	p.Y.Label.Text = "labels"

	bars, err := plotter.NewBarChart(values, vg.Points(8))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 20, G: 80, B: 200, A: 220}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.Add(plotter.NewGrid())
	p.NominalX(names...)

	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

// AveragePointsPerChar is the mean over samples of stroke points per
// non-space label character. Labels without such characters are skipped.
func AveragePointsPerChar(raw *RawCache) float64 {
	var sum float64
	n := 0
	for i, rows := range raw.Strokes {
		chars := utf8.RuneCountInString(strings.ReplaceAll(raw.Labels[i], " ", ""))
		if chars == 0 {
			continue
		}
		sum += float64(len(rows)) / float64(chars)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// WriteAnalysis analyzes raw's labels and writes the text report to
// reportPath and, when plotPath is set, the bucket chart.
func WriteAnalysis(raw *RawCache, alphabet, reportPath, plotPath string) ([]LengthBucket, error) {
	buckets := AnalyzeLetters(raw.Labels, alphabet)

	if err := ensureDir(filepath.Dir(reportPath)); err != nil {
		return nil, err
	}
	f, err := os.Create(reportPath)
	if err != nil {
		return nil, fmt.Errorf("create report %s: %w", reportPath, err)
	}
	defer f.Close()
	if err := WriteAnalysisReport(f, buckets, alphabet); err != nil {
		return nil, fmt.Errorf("write report %s: %w", reportPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	if plotPath != "" && len(buckets) > 0 {
		if err := PlotLengthHistogram(plotPath, buckets); err != nil {
			return nil, fmt.Errorf("plot %s: %w", plotPath, err)
		}
	}
	return buckets, nil
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
