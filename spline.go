package ivp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Spline builds a continuous extension over a caller-collected sequence of
// accepted states. The states may be ordered in either time direction; the
// interpolant always covers [min(t), max(t)] and agrees with every state's
// solution and derivative at its own time.
//
// With midpoint coefficients (RK45), each segment is a quartic fit from the
// left endpoint value and slope, the right endpoint slope and the 4th-order
// midpoint value. Without them (RK23), each segment is a cubic Hermite.
func (r *RK) Spline(states []State) (Interpolant, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("ivp: cannot build a spline from zero states")
	}
	if len(states) == 1 {
		return NewPointSpline(states[0].T, states[0].Y), nil
	}

	nPts := len(states)
	ts := make([]float64, nPts)
	ys := make([][]float64, nPts)
	fs := make([][]float64, nPts)
	for i, st := range states {
		ts[i] = st.T
		ys[i] = st.Y
		fs[i] = st.F
	}

	// The very first state of a run carries no midpoint value, so the
	// midpoint of segment i belongs to the later state of the pair.
	var yms [][]float64
	if r.tb.M != nil {
		yms = make([][]float64, nPts-1)
		for i, st := range states[1:] {
			if st.YM == nil {
				return nil, fmt.Errorf("ivp: state at t=%g carries no midpoint value", st.T)
			}
			yms[i] = st.YM
		}
	}

	if ts[nPts-1] < ts[0] {
		reverseFloats(ts)
		reverseVecs(ys)
		reverseVecs(fs)
		if yms != nil {
			reverseVecs(yms)
		}
	}

	n := r.n
	cs := make([]*mat.Dense, nPts-1)
	for seg := 0; seg < nPts-1; seg++ {
		h := ts[seg+1] - ts[seg]
		y0, y1 := ys[seg], ys[seg+1]
		f0, f1 := fs[seg], fs[seg+1]

		var c *mat.Dense
		if yms == nil {
			// Cubic Hermite matching value and slope at both endpoints.
			c = mat.NewDense(4, n, nil)
			for i := 0; i < n; i++ {
				slope := (y1[i] - y0[i]) / h
				tt := (f0[i] + f1[i] - 2*slope) / h
				c.Set(0, i, tt/h)
				c.Set(1, i, (slope-f0[i])/h-tt)
				c.Set(2, i, f0[i])
				c.Set(3, i, y0[i])
			}
		} else {
			// Quartic matching y0, f0, f1 and the midpoint value.
			ym := yms[seg]
			c = mat.NewDense(5, n, nil)
			for i := 0; i < n; i++ {
				c.Set(0, i, (-8*y0[i]-8*y1[i]+16*ym[i])/(h*h*h*h)+(-2*f0[i]+2*f1[i])/(h*h*h))
				c.Set(1, i, (18*y0[i]+14*y1[i]-32*ym[i])/(h*h*h)+(5*f0[i]-3*f1[i])/(h*h))
				c.Set(2, i, (-11*y0[i]-5*y1[i]+16*ym[i])/(h*h)+(-4*f0[i]+f1[i])/h)
				c.Set(3, i, f0[i])
				c.Set(4, i, y0[i])
			}
		}
		cs[seg] = c
	}
	return PPoly{ts: ts, cs: cs}, nil
}

func reverseFloats(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

func reverseVecs(v [][]float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}
