package ivp

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Interpolant is a continuous extension of the solution: it evaluates y at
// any t inside its covered domain and rejects evaluation outside of it.
type Interpolant interface {
	// At evaluates the interpolant. Extrapolation is an error.
	At(t float64) ([]float64, error)
	// Domain returns the covered time interval.
	Domain() (t0, t1 float64)
}

// PPoly is a piecewise polynomial over a strictly increasing breakpoint
// sequence. Each segment is a polynomial in the local offset t - ts[seg],
// with coefficients stored highest degree first.
type PPoly struct {
	ts []float64
	cs []*mat.Dense // per segment: (degree+1) x n
}

// Domain returns the covered time interval.
func (p PPoly) Domain() (t0, t1 float64) {
	return p.ts[0], p.ts[len(p.ts)-1]
}

// Segments returns the number of polynomial pieces.
func (p PPoly) Segments() int {
	return len(p.cs)
}

// At evaluates the piecewise polynomial via Horner's rule on the segment
// whose time interval contains t.
func (p PPoly) At(t float64) ([]float64, error) {
	t0, t1 := p.Domain()
	if t < t0 || t > t1 {
		return nil, fmt.Errorf("ivp: t=%g outside of the covered domain [%g, %g]", t, t0, t1)
	}
	seg := sort.SearchFloat64s(p.ts, t) - 1
	if seg < 0 {
		seg = 0
	}
	if seg >= len(p.cs) {
		seg = len(p.cs) - 1
	}

	τ := t - p.ts[seg]
	c := p.cs[seg]
	deg, n := c.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		acc := c.At(0, i)
		for d := 1; d < deg; d++ {
			acc = acc*τ + c.At(d, i)
		}
		out[i] = acc
	}
	return out, nil
}

// PointSpline is the degenerate interpolant over a single accepted state: it
// only supports point evaluation at its own time.
type PointSpline struct {
	t float64
	y []float64
}

// NewPointSpline returns the single-point interpolant at (t, y).
func NewPointSpline(t float64, y []float64) PointSpline {
	yc := make([]float64, len(y))
	copy(yc, y)
	return PointSpline{t: t, y: yc}
}

// Domain returns the covered (zero-length) time interval.
func (p PointSpline) Domain() (t0, t1 float64) {
	return p.t, p.t
}

// At evaluates the interpolant, which is only defined at its own time.
func (p PointSpline) At(t float64) ([]float64, error) {
	if t != p.t {
		return nil, fmt.Errorf("ivp: t=%g outside of the covered domain [%g, %g]", t, p.t, p.t)
	}
	out := make([]float64, len(p.y))
	copy(out, p.y)
	return out, nil
}
