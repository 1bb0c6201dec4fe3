package datasets

import (
	"fmt"
	"testing"

	"github.com/Noofbiz/scribeData/ink"
)

// rawSamples builds a cache of n samples with the given number of points;
// the first dx of sample i is i so samples can be identified after loading.
func rawSamples(n, points int, label func(i int) string) *RawCache {
	raw := &RawCache{Version: cacheVersion}
	for i := range n {
		rows := make(ink.Encoded, points)
		for j := range rows {
			rows[j] = ink.Row{1, -1, 0}
		}
		rows[0] = ink.Row{int32(i), 0, 0}
		rows[points-1][2] = 1
		raw.Strokes = append(raw.Strokes, rows)
		raw.Labels = append(raw.Labels, label(i))
	}
	return raw
}

func TestLoadSplit_KeepsOnlyLongSamples(t *testing.T) {
	root := t.TempDir()
	writePair(t, root, "a01-short", 100, "a long enough label")
	writePair(t, root, "a02-long", 160, "abcdefgh")

	raw, err := Build(BuildOptions{Root: root, InkMarker: "inkml", LabelMarker: "upx"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	split, err := LoadSplit(raw, LoadOptions{
		Alphabet:   "abcdefgh",
		TSteps:     150,
		ASCIISteps: 6,
		Scale:      50,
		BatchSize:  1,
	})
	if err != nil {
		t.Fatalf("LoadSplit failed: %v", err)
	}
	if len(split.Train) != 1 || len(split.Valid) != 0 {
		t.Fatalf("expected 1 train and 0 valid samples, got %d and %d", len(split.Train), len(split.Valid))
	}
	if split.Train[0].Len() != 160 || split.Train[0].Label != "abcdefgh" {
		t.Fatalf("kept the wrong sample: %d points, label %q", split.Train[0].Len(), split.Train[0].Label)
	}
	if split.NumBatches != 1 {
		t.Fatalf("expected 1 batch, got %d", split.NumBatches)
	}
}

func TestLoadSplit_LengthBoundaries(t *testing.T) {
	opts := LoadOptions{Alphabet: "abc", TSteps: 10, ASCIISteps: 3, Scale: 1, BatchSize: 1}
	cases := []struct {
		name   string
		points int
		label  string
		keep   bool
	}{
		{"points equal tsteps+2", 12, "abcd", false},
		{"points above tsteps+2", 13, "abcd", true},
		{"label equal ascii steps", 13, "abc", false},
		{"label shortened by filter", 13, "a.b.c", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts.Filter = "."
			raw := rawSamples(1, tc.points, func(int) string { return tc.label })
			split, err := LoadSplit(raw, opts)
			if err != nil {
				t.Fatalf("LoadSplit failed: %v", err)
			}
			if got := len(split.Train) == 1; got != tc.keep {
				t.Fatalf("keep = %v, want %v", got, tc.keep)
			}
		})
	}
}

func TestLoadSplit_EveryTwentiethIsValidation(t *testing.T) {
	raw := rawSamples(40, 20, func(i int) string { return fmt.Sprintf("ab %02d-ca", i) })
	split, err := LoadSplit(raw, LoadOptions{
		Alphabet:   "abc",
		TSteps:     10,
		ASCIISteps: 3,
		Scale:      1,
		BatchSize:  4,
	})
	if err != nil {
		t.Fatalf("LoadSplit failed: %v", err)
	}
	if len(split.Train) != 38 || len(split.Valid) != 2 {
		t.Fatalf("expected 38/2 split, got %d/%d", len(split.Train), len(split.Valid))
	}
	// accepted samples 20 and 40 (1-based) carry ids 19 and 39
	for i, want := range []float32{19, 39} {
		if got := split.Valid[i].Strokes[0][0]; got != want {
			t.Fatalf("valid[%d] is sample %v, want %v", i, got, want)
		}
		if split.Valid[i].Label != "ab ca" {
			t.Fatalf("valid[%d] label %q, want %q", i, split.Valid[i].Label, "ab ca")
		}
	}
	for _, s := range split.Train {
		if id := s.Strokes[0][0]; id == 19 || id == 39 {
			t.Fatalf("sample %v should not be in train", id)
		}
	}
	if split.Train[0].Label != "ab 00-ca" {
		t.Fatalf("train labels keep non-alphabet characters, got %q", split.Train[0].Label)
	}
	if split.NumBatches != 9 {
		t.Fatalf("expected 9 batches, got %d", split.NumBatches)
	}
}

func TestLoadSplit_DiscardedSamplesDoNotAdvanceCounter(t *testing.T) {
	// every other sample is too short; the 20th accepted one is raw index 38
	raw := &RawCache{Version: cacheVersion}
	long := rawSamples(40, 20, func(int) string { return "abcd" })
	short := rawSamples(40, 5, func(int) string { return "abcd" })
	for i := range 40 {
		raw.Strokes = append(raw.Strokes, long.Strokes[i], short.Strokes[i])
		raw.Labels = append(raw.Labels, "abcd", "abcd")
	}
	split, err := LoadSplit(raw, LoadOptions{Alphabet: "abcd", TSteps: 10, ASCIISteps: 3, Scale: 1, BatchSize: 1})
	if err != nil {
		t.Fatalf("LoadSplit failed: %v", err)
	}
	if len(split.Valid) != 2 || split.Valid[0].Strokes[0][0] != 19 {
		t.Fatalf("unexpected validation split: %d samples", len(split.Valid))
	}
}

func TestLoadSplit_ClipsAndScales(t *testing.T) {
	raw := rawSamples(1, 20, func(int) string { return "abcdef" })
	raw.Strokes[0][1] = ink.Row{900, -1200, 1}
	raw.Strokes[0][2] = ink.Row{250, -40, 0}

	const limit, scale = 500, 50.0
	split, err := LoadSplit(raw, LoadOptions{Alphabet: "abcdef", TSteps: 10, ASCIISteps: 3, Scale: scale, Limit: limit, BatchSize: 1})
	if err != nil {
		t.Fatalf("LoadSplit failed: %v", err)
	}
	data := split.Train[0].Strokes
	if data[1] != [3]float32{10, -10, 1} {
		t.Fatalf("row 1 = %v, want clipped and scaled [10 -10 1]", data[1])
	}
	if data[2] != [3]float32{5, -0.8, 0} {
		t.Fatalf("row 2 = %v, want [5 -0.8 0]", data[2])
	}
	bound := float32(limit / scale)
	for i, r := range data {
		for c := 0; c < 2; c++ {
			if r[c] < -bound || r[c] > bound {
				t.Fatalf("row %d col %d = %v outside [-%v, %v]", i, c, r[c], bound, bound)
			}
		}
	}
}

func TestLoadSplit_RejectsBadOptions(t *testing.T) {
	raw := rawSamples(1, 20, func(int) string { return "abcdef" })
	if _, err := LoadSplit(raw, LoadOptions{Scale: 0, BatchSize: 1}); err == nil {
		t.Fatal("expected error for zero scale")
	}
	if _, err := LoadSplit(raw, LoadOptions{Scale: 1, BatchSize: 0}); err == nil {
		t.Fatal("expected error for zero batch size")
	}
	raw.Labels = nil
	if _, err := LoadSplit(raw, LoadOptions{Scale: 1, BatchSize: 1}); err == nil {
		t.Fatal("expected error for uneven cache")
	}
}
