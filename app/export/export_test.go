package export

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ohler55/ojg/oj"

	"labeledit/app/store"
)

const noseCSV = `scorer,DLC_resnet50,DLC_resnet50,DLC_resnet50
bodyparts,nose,nose,nose
coords,x,y,likelihood
0,10,10,0.9
1,,,0.5
2,30,30,0.8
`

func writeNoseTable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(noseCSV), 0o644); err != nil {
		t.Fatalf("Failed to write table: %v", err)
	}
	return path
}

func TestPrimaryPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain csv", "data/run1.csv", "data/run1_Fixed.csv"},
		{"already corrected", "data/run1_Fixed.csv", "data/run1_Fixed.csv"},
		{"gzip compressed", "data/run1.csv.gz", "data/run1_Fixed.csv.gz"},
		{"xz compressed", "data/run1.csv.xz", "data/run1_Fixed.csv.xz"},
		{"xlsx", "data/run1.xlsx", "data/run1_Fixed.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrimaryPath(tt.input); got != filepath.FromSlash(tt.want) {
				t.Errorf("PrimaryPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSecondaryPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain csv", "data/run1.csv", "data/run1.json"},
		{"corrected input keeps its base", "data/run1_Fixed.csv", "data/run1_Fixed.json"},
		{"gzip compressed", "data/run1.csv.gz", "data/run1.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SecondaryPath(tt.input); got != tt.want {
				t.Errorf("SecondaryPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRunSkipsWhenNoEdits(t *testing.T) {
	dir := t.TempDir()
	path := writeNoseTable(t, dir, "run1.csv")

	st, err := store.Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := New(nil).Run(st); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, out := range []string{PrimaryPath(path), SecondaryPath(path)} {
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Errorf("%s was written for an edit-free session", out)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeNoseTable(t, dir, "run1.csv")

	st, err := store.Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	st.SetCoordinate(1, 0, 15, 15)

	if err := New(nil).Run(st); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Reload the corrected file and check only frame 1 changed
	fixed, err := store.Load(PrimaryPath(path), nil)
	if err != nil {
		t.Fatalf("Failed to reload corrected table: %v", err)
	}
	checks := []struct {
		frame int
		x, y  float64
	}{
		{0, 10, 10},
		{1, 15, 15},
		{2, 30, 30},
	}
	for _, c := range checks {
		x, y, ok := fixed.Coordinate(c.frame, 0)
		if !ok || x != c.x || y != c.y {
			t.Errorf("frame %d = (%v,%v,%v), want (%v,%v,true)", c.frame, x, y, ok, c.x, c.y)
		}
	}
}

func TestSecondaryContainerContents(t *testing.T) {
	dir := t.TempDir()
	path := writeNoseTable(t, dir, "run1.csv")

	st, err := store.Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	st.SetCoordinate(1, 0, 15, 15)

	outPath, err := New(nil).WriteSecondary(st)
	if err != nil {
		t.Fatalf("WriteSecondary failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read container: %v", err)
	}
	parsed, err := oj.Parse(data)
	if err != nil {
		t.Fatalf("Container is not valid JSON: %v", err)
	}

	doc, ok := parsed.(map[string]any)
	if !ok {
		t.Fatalf("Container root is %T, want object", parsed)
	}
	nose, ok := doc["nose"].(map[string]any)
	if !ok {
		t.Fatalf("nose entry missing or wrong type: %v", doc)
	}

	wantX := []float64{10, 15, 30}
	if got := asFloats(t, nose["x"]); !reflect.DeepEqual(got, wantX) {
		t.Errorf("x = %v, want %v", got, wantX)
	}
	wantLik := []float64{0.9, 0.5, 0.8}
	if got := asFloats(t, nose["likelihood"]); !reflect.DeepEqual(got, wantLik) {
		t.Errorf("likelihood = %v, want %v", got, wantLik)
	}
}

// asFloats flattens a parsed JSON array to float64s; parsers may hand back
// integral values as int64.
func asFloats(t *testing.T, v any) []float64 {
	t.Helper()
	arr, ok := v.([]any)
	if !ok {
		t.Fatalf("value is %T, want array", v)
	}
	out := make([]float64, len(arr))
	for i, e := range arr {
		switch n := e.(type) {
		case float64:
			out[i] = n
		case int64:
			out[i] = float64(n)
		default:
			t.Fatalf("element %d is %T, want number", i, e)
		}
	}
	return out
}

func TestSecondaryMissingCellsBecomeNulls(t *testing.T) {
	dir := t.TempDir()
	path := writeNoseTable(t, dir, "run1.csv")

	st, err := store.Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	outPath, err := New(nil).WriteSecondary(st)
	if err != nil {
		t.Fatalf("WriteSecondary failed: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read container: %v", err)
	}
	parsed, err := oj.Parse(data)
	if err != nil {
		t.Fatalf("Container is not valid JSON: %v", err)
	}
	nose := parsed.(map[string]any)["nose"].(map[string]any)
	xs := nose["x"].([]any)
	if xs[1] != nil {
		t.Errorf("missing frame exported as %v, want null", xs[1])
	}
}

func TestGzipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run1.csv.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(noseCSV)); err != nil {
		t.Fatalf("Failed to compress fixture: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("Failed to close gzip writer: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	st, err := store.Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	st.SetCoordinate(0, 0, 99, 98)

	outPath, err := New(nil).WritePrimary(st)
	if err != nil {
		t.Fatalf("WritePrimary failed: %v", err)
	}
	if !strings.HasSuffix(outPath, "run1_Fixed.csv.gz") {
		t.Fatalf("corrected path = %q, want *_Fixed.csv.gz", outPath)
	}

	fixed, err := store.Load(outPath, nil)
	if err != nil {
		t.Fatalf("Failed to reload corrected table: %v", err)
	}
	x, y, ok := fixed.Coordinate(0, 0)
	if !ok || x != 99 || y != 98 {
		t.Errorf("frame 0 = (%v,%v,%v), want (99,98,true)", x, y, ok)
	}
}

func TestConvertSecondary(t *testing.T) {
	dir := t.TempDir()
	path := writeNoseTable(t, dir, "run1_Fixed.csv")

	outPath, err := ConvertSecondary(path, nil)
	if err != nil {
		t.Fatalf("ConvertSecondary failed: %v", err)
	}
	if outPath != filepath.Join(dir, "run1_Fixed.json") {
		t.Errorf("output path = %q, want run1_Fixed.json next to the input", outPath)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("container not written: %v", err)
	}
}
