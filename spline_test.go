package ivp

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func expRun(t *testing.T, newRK func(Func, []float64, float64, float64, *Config) (*RK, error), t0, tCrit float64, cfg *Config) (*RK, []State) {
	r, err := newRK(expFcn, []float64{1}, t0, tCrit, cfg)
	if err != nil {
		t.Fatal(err)
	}
	states := drive(t, r)
	if r.Status() != Finished {
		t.Fatalf("status %s, want finished", r.Status())
	}
	return r, states
}

// The interpolant must reproduce every stored state exactly at its own time:
// the left endpoint of each segment by construction, the right endpoint
// within rounding.
func TestSplineInterpolates(t *testing.T) {
	for _, newRK := range []func(Func, []float64, float64, float64, *Config) (*RK, error){NewRK23, NewRK45} {
		r, states := expRun(t, newRK, 0, 1, nil)
		interp, err := r.Spline(states)
		if err != nil {
			t.Fatal(err)
		}
		for i, st := range states {
			y, err := interp.At(st.T)
			if err != nil {
				t.Fatalf("state %d: %s", i, err)
			}
			if !scalar.EqualWithinAbs(y[0], st.Y[0], 1e-12) {
				t.Fatalf("%s state %d: interpolant %.15f, stored %.15f", r.tb.Name, i, y[0], st.Y[0])
			}
		}
		// First segment's left endpoint must be bit exact.
		y, _ := interp.At(states[0].T)
		if y[0] != states[0].Y[0] {
			t.Fatalf("left endpoint not exact: %v != %v", y[0], states[0].Y[0])
		}
	}
}

// The quartic passes through the 4th-order midpoint value of each segment.
func TestSplineMatchesMidpoint(t *testing.T) {
	r, states := expRun(t, NewRK45, 0, 1, nil)
	interp, err := r.Spline(states)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(states); i++ {
		tm := (states[i-1].T + states[i].T) / 2
		y, err := interp.At(tm)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinAbs(y[0], states[i].YM[0], 1e-12) {
			t.Fatalf("segment %d: interpolant %.15f at midpoint, stored ym %.15f", i-1, y[0], states[i].YM[0])
		}
	}
}

func TestSplineAccuracy(t *testing.T) {
	r, states := expRun(t, NewRK45, 0, 1, &Config{Rtol: 1e-8, Atol: []float64{1e-11}})
	interp, err := r.Spline(states)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= 1000; i++ {
		tq := float64(i) / 1000
		y, err := interp.At(tq)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinAbs(y[0], math.Exp(tq), 1e-6) {
			t.Fatalf("interpolant at t=%g is %.12f, want %.12f", tq, y[0], math.Exp(tq))
		}
	}
}

// Reversing a cubic Hermite state sequence must produce the same
// interpolant. Midpoint values are tied to their producing step, so this
// invariance only holds for methods without them.
func TestSplineReversedStates(t *testing.T) {
	r, states := expRun(t, NewRK23, 0, 1, nil)
	fwd, err := r.Spline(states)
	if err != nil {
		t.Fatal(err)
	}
	rev := make([]State, len(states))
	for i, st := range states {
		rev[len(states)-1-i] = st
	}
	bwd, err := r.Spline(rev)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= 100; i++ {
		tq := float64(i) / 100
		yf, _ := fwd.At(tq)
		yb, _ := bwd.At(tq)
		if yf[0] != yb[0] {
			t.Fatalf("forward and reversed interpolants differ at t=%g: %v vs %v", tq, yf[0], yb[0])
		}
	}
}

// Backward integration yields a decreasing-time history; the interpolant
// still covers [min(t), max(t)].
func TestSplineBackwardRun(t *testing.T) {
	r, states := expRun(t, NewRK45, 1, 0, nil)
	interp, err := r.Spline(states)
	if err != nil {
		t.Fatal(err)
	}
	t0, t1 := interp.Domain()
	if t0 != 0 || t1 != 1 {
		t.Fatalf("domain [%g, %g], want [0, 1]", t0, t1)
	}
	for i := 0; i <= 100; i++ {
		tq := float64(i) / 100
		y, err := interp.At(tq)
		if err != nil {
			t.Fatal(err)
		}
		// y(1) = 1 integrated backward follows exp(t-1).
		if !scalar.EqualWithinAbs(y[0], math.Exp(tq-1), 1e-3) {
			t.Fatalf("backward interpolant at t=%g is %.8f, want %.8f", tq, y[0], math.Exp(tq-1))
		}
	}
}

func TestSplineOutOfDomain(t *testing.T) {
	r, states := expRun(t, NewRK23, 0, 1, nil)
	interp, err := r.Spline(states)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := interp.At(-1e-9); err == nil {
		t.Fatal("no error below the covered domain")
	}
	if _, err := interp.At(1 + 1e-9); err == nil {
		t.Fatal("no error above the covered domain")
	}
	if _, err := interp.At(0); err != nil {
		t.Fatalf("left boundary rejected: %s", err)
	}
	if _, err := interp.At(1); err != nil {
		t.Fatalf("right boundary rejected: %s", err)
	}
}

func TestPointSpline(t *testing.T) {
	r, err := NewRK45(zeroFcn, []float64{1, 2}, 0.5, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	interp, err := r.Spline([]State{r.CurrentState()})
	if err != nil {
		t.Fatal(err)
	}
	t0, t1 := interp.Domain()
	if t0 != 0.5 || t1 != 0.5 {
		t.Fatalf("point domain [%g, %g], want [0.5, 0.5]", t0, t1)
	}
	y, err := interp.At(0.5)
	if err != nil {
		t.Fatal(err)
	}
	if y[0] != 1 || y[1] != 2 {
		t.Fatalf("point evaluation %v, want [1 2]", y)
	}
	if _, err := interp.At(0.5 + 1e-12); err == nil {
		t.Fatal("point spline must reject evaluation away from its point")
	}
}

func TestSplineErrors(t *testing.T) {
	r, err := NewRK45(expFcn, []float64{1}, 0, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Spline(nil); err == nil {
		t.Fatal("no error for an empty state sequence")
	}
	// RK45 states without midpoint values cannot feed a quartic.
	bad := []State{
		{T: 0, Y: []float64{1}, F: []float64{1}},
		{T: 1, Y: []float64{2}, F: []float64{2}},
	}
	if _, err := r.Spline(bad); err == nil {
		t.Fatal("no error for missing midpoint values")
	}
}
