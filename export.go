package ivp

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// ExportConfig configures the CSV export of accepted states.
type ExportConfig struct {
	// Filename is the path of the CSV file to create. Empty disables export.
	Filename string
	// Cols optionally names the solution components for the header. When
	// nil or too short, components are named y0, y1, ...
	Cols []string
}

// IsUseless returns whether this configuration would export anything.
func (c ExportConfig) IsUseless() bool {
	return c.Filename == ""
}

// StreamStates writes every state received on the channel to the configured
// CSV file, one row per accepted state, until the channel is closed. It is
// meant to run in its own goroutine, fed by a Runner. The producer sends
// without checking on this consumer, so the channel is always drained to
// closure, even after a write error.
func StreamStates(conf ExportConfig, stateChan <-chan State) error {
	defer func() {
		for range stateChan {
		}
	}()
	if conf.IsUseless() {
		return nil
	}
	f, err := os.Create(conf.Filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	wroteHeader := false
	for state := range stateChan {
		if !wroteHeader {
			if err := w.Write(exportHeader(conf, len(state.Y), true)); err != nil {
				return err
			}
			wroteHeader = true
		}
		if err := w.Write(exportRecord(state.T, state.Y, state.F)); err != nil {
			return err
		}
	}
	return nil
}

// ExportSpline resamples an interpolant at a fixed interval and writes the
// samples to the configured CSV file, for plotting.
func ExportSpline(conf ExportConfig, interp Interpolant, step float64) error {
	if conf.IsUseless() {
		return nil
	}
	if step <= 0 {
		return fmt.Errorf("ivp: export sampling step must be positive, got %g", step)
	}
	f, err := os.Create(conf.Filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Samples are indexed rather than accumulated so rounding cannot drift
	// past the domain, and the last sample is clamped onto the boundary.
	t0, t1 := interp.Domain()
	var header bool
	for i := 0; ; i++ {
		t := t0 + float64(i)*step
		if t >= t1 {
			t = t1
		}
		y, err := interp.At(t)
		if err != nil {
			return err
		}
		if !header {
			if err := w.Write(exportHeader(conf, len(y), false)); err != nil {
				return err
			}
			header = true
		}
		if err := w.Write(exportRecord(t, y, nil)); err != nil {
			return err
		}
		if t == t1 {
			return nil
		}
	}
}

func exportHeader(conf ExportConfig, n int, withDeriv bool) []string {
	hdr := make([]string, 0, 2*n+1)
	hdr = append(hdr, "t")
	for i := 0; i < n; i++ {
		if i < len(conf.Cols) {
			hdr = append(hdr, conf.Cols[i])
		} else {
			hdr = append(hdr, fmt.Sprintf("y%d", i))
		}
	}
	if withDeriv {
		for i := 0; i < n; i++ {
			hdr = append(hdr, fmt.Sprintf("f%d", i))
		}
	}
	return hdr
}

func exportRecord(t float64, y, f []float64) []string {
	rec := make([]string, 0, len(y)+len(f)+1)
	rec = append(rec, strconv.FormatFloat(t, 'g', -1, 64))
	for _, v := range y {
		rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
	}
	for _, v := range f {
		rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return rec
}
