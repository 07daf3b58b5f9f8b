package ivp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// rmsNorm returns the size-independent root-mean-square norm of v: a vector
// of all ones of any length normalizes to 1.
func rmsNorm(v []float64) float64 {
	return floats.Norm(v, 2) / math.Sqrt(float64(len(v)))
}

// validateRtol checks the relative tolerance.
func validateRtol(rtol float64) (float64, error) {
	if rtol <= 0 || math.IsNaN(rtol) {
		return 0, fmt.Errorf("ivp: rtol must be positive, got %g", rtol)
	}
	return rtol, nil
}

// validateAtol expands the absolute tolerance to one entry per component.
// A single entry broadcasts to all components.
func validateAtol(atol []float64, n int) ([]float64, error) {
	out := make([]float64, n)
	switch len(atol) {
	case 1:
		for i := range out {
			out[i] = atol[0]
		}
	case n:
		copy(out, atol)
	default:
		return nil, fmt.Errorf("ivp: atol has %d entries, want 1 or %d", len(atol), n)
	}
	for i, v := range out {
		if v < 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("ivp: atol component %d is negative (%g)", i, v)
		}
	}
	return out, nil
}

// makeRectangular allocates a rows x cols matrix backed by a single slice.
func makeRectangular(rows, cols int) [][]float64 {
	arr := make([]float64, rows*cols)
	rect := make([][]float64, rows)
	for i := range rect {
		rect[i] = arr[:cols]
		arr = arr[cols:]
	}
	return rect
}

// selectInitialStep estimates a starting step magnitude from the size of the
// initial derivative and a trial explicit Euler step. It performs exactly one
// extra evaluation of fcn.
func selectInitialStep(fcn Func, t float64, y, f []float64, direction float64, order int, rtol float64, atol []float64, maxStep float64) float64 {
	n := len(y)

	var dnf, dny float64
	for i := 0; i < n; i++ {
		rc := atol[i] + rtol*math.Abs(y[i])
		dnf += (f[i] / rc) * (f[i] / rc)
		dny += (y[i] / rc) * (y[i] / rc)
	}

	var h float64
	if math.Min(dnf, dny) < 1e-10 {
		h = 1e-6
	} else {
		h = 1e-2 * math.Sqrt(dny/dnf)
	}
	h = math.Min(h, maxStep)

	// Explicit Euler trial step.
	y2 := make([]float64, n)
	copy(y2, y)
	floats.AddScaled(y2, h*direction, f)
	f2 := fcn(t+h*direction, y2)

	// Estimate of the second derivative.
	var der2 float64
	for i := 0; i < n; i++ {
		rc := atol[i] + rtol*math.Abs(y[i])
		der2 += ((f2[i] - f[i]) / rc) * ((f2[i] - f[i]) / rc)
	}
	der2 = math.Sqrt(der2) / h
	der12 := math.Max(der2, math.Sqrt(dnf))

	var h1 float64
	if der12 <= 1e-15 {
		h1 = math.Max(1e-6, h*1e-3)
	} else {
		h1 = math.Pow(1e-2/der12, 1/float64(order))
	}
	return math.Min(1e2*h, math.Min(h1, maxStep))
}
