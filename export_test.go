package ivp

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func readCSV(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestStreamStates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.csv")
	ch := make(chan State, 4)
	ch <- State{T: 0, Y: []float64{1, 2}, F: []float64{0.5, -1}}
	ch <- State{T: 0.25, Y: []float64{1.5, 1}, F: []float64{0.25, -2}}
	close(ch)

	if err := StreamStates(ExportConfig{Filename: path, Cols: []string{"pos", "vel"}}, ch); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("%d records, want header + 2 rows", len(records))
	}
	hdr := records[0]
	if hdr[0] != "t" || hdr[1] != "pos" || hdr[2] != "vel" || hdr[3] != "f0" {
		t.Fatalf("unexpected header %v", hdr)
	}
	if v, _ := strconv.ParseFloat(records[2][1], 64); v != 1.5 {
		t.Fatalf("row value %s, want 1.5", records[2][1])
	}
}

func TestStreamStatesDisabled(t *testing.T) {
	ch := make(chan State, 1)
	ch <- State{T: 0, Y: []float64{1}, F: []float64{1}}
	close(ch)
	if err := StreamStates(ExportConfig{}, ch); err != nil {
		t.Fatal(err)
	}
}

func TestExportSpline(t *testing.T) {
	r, states := expRun(t, NewRK45, 0, 1, nil)
	interp, err := r.Spline(states)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "spline.csv")
	if err := ExportSpline(ExportConfig{Filename: path}, interp, 0.125); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	// Header plus samples at 0, 0.125, ..., 1.
	if len(records) != 10 {
		t.Fatalf("%d records, want 10", len(records))
	}
	if records[0][0] != "t" || records[0][1] != "y0" {
		t.Fatalf("unexpected header %v", records[0])
	}
}

// A write error must not leave the producer blocked: the consumer keeps
// draining the channel to closure and reports the first error.
func TestStreamStatesDrainsOnError(t *testing.T) {
	ch := make(chan State)
	go func() {
		for i := 0; i < 2000; i++ {
			ch <- State{T: float64(i), Y: []float64{1}, F: []float64{1}}
		}
		close(ch)
	}()
	bad := filepath.Join(t.TempDir(), "missing", "out.csv")
	if err := StreamStates(ExportConfig{Filename: bad}, ch); err == nil {
		t.Fatal("no error for an uncreatable file")
	}
	if _, open := <-ch; open {
		t.Fatal("the state channel was not drained to closure")
	}
}

// A sampling step that does not divide the domain must still produce the
// final sample exactly on the boundary.
func TestExportSplineBoundarySample(t *testing.T) {
	r, states := expRun(t, NewRK45, 0, 0.7, nil)
	interp, err := r.Spline(states)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "spline.csv")
	if err := ExportSpline(ExportConfig{Filename: path}, interp, 0.1); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if len(records) != 9 {
		t.Fatalf("%d records, want header + 8 samples", len(records))
	}
	last := records[len(records)-1]
	if v, _ := strconv.ParseFloat(last[0], 64); v != 0.7 {
		t.Fatalf("last sample at t=%s, want 0.7", last[0])
	}
}

func TestExportSplineBadStep(t *testing.T) {
	r, states := expRun(t, NewRK23, 0, 1, nil)
	interp, err := r.Spline(states)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "spline.csv")
	if err := ExportSpline(ExportConfig{Filename: path}, interp, 0); err == nil {
		t.Fatal("zero sampling step accepted")
	}
}
