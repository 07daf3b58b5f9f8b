package ivp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// safety biases accepted steps below the asymptotic optimum to reduce
	// the probability of the next step being rejected.
	safety = 0.9
	// maxFactor is the maximum allowed increase of the step size.
	maxFactor = 5.0
	// minFactor is the minimum allowed decrease of the step size.
	minFactor = 0.2
)

// Statistics tracks the work performed during a run.
type Statistics struct {
	// StepCount is the number of accepted steps.
	StepCount uint
	// RejectedCount is the number of trial steps rejected by the error test.
	RejectedCount uint
	// EvaluationCount is the number of right-hand-side evaluations.
	EvaluationCount uint
}

// RK is an adaptive-step explicit Runge-Kutta stepper with embedded error
// estimation. It is parameterized by a Tableau: the built-in pairs are
// BogackiShampine (RK23) and DormandPrince (RK45).
//
// RK is not safe for concurrent use: the stage scratch matrix is reused in
// place across steps.
type RK struct {
	solver
	tb      Tableau
	k       [][]float64 // stage scratch, (stages+1) x n, overwritten every step
	hAbs    float64
	maxStep float64
	rtol    float64
	atol    []float64
	stats   Statistics
}

// NewRK23 returns a Bogacki-Shampine 3(2) stepper for dy/dt = fcn(t, y) from
// (t0, y0) to the boundary tCrit. A nil cfg selects defaults.
func NewRK23(fcn Func, y0 []float64, t0, tCrit float64, cfg *Config) (*RK, error) {
	return NewRK(fcn, y0, t0, tCrit, BogackiShampine(), cfg)
}

// NewRK45 returns a Dormand-Prince 5(4) stepper for dy/dt = fcn(t, y) from
// (t0, y0) to the boundary tCrit. A nil cfg selects defaults.
func NewRK45(fcn Func, y0 []float64, t0, tCrit float64, cfg *Config) (*RK, error) {
	return NewRK(fcn, y0, t0, tCrit, DormandPrince(), cfg)
}

// NewRK returns an adaptive stepper for an arbitrary embedded explicit pair.
func NewRK(fcn Func, y0 []float64, t0, tCrit float64, tb Tableau, cfg *Config) (*RK, error) {
	if err := tb.validate(); err != nil {
		return nil, err
	}
	base, err := checkArguments(fcn, y0, t0, tCrit)
	if err != nil {
		return nil, err
	}

	var conf Config
	if cfg != nil {
		conf = *cfg
	}
	conf = conf.withDefaults()

	rtol, err := validateRtol(conf.Rtol)
	if err != nil {
		return nil, err
	}
	atol, err := validateAtol(conf.Atol, base.n)
	if err != nil {
		return nil, err
	}
	if conf.MaxStep <= 0 || math.IsNaN(conf.MaxStep) {
		return nil, fmt.Errorf("ivp: max step must be positive, got %g", conf.MaxStep)
	}
	if conf.InitialStep < 0 || math.IsNaN(conf.InitialStep) {
		return nil, fmt.Errorf("ivp: initial step must not be negative, got %g", conf.InitialStep)
	}

	r := &RK{
		solver:  base,
		tb:      tb,
		k:       makeRectangular(tb.Stages()+1, base.n),
		maxStep: conf.MaxStep,
		rtol:    rtol,
		atol:    atol,
	}

	f0 := r.fcn(t0, r.state.Y)
	r.stats.EvaluationCount++
	if len(f0) != r.n {
		return nil, fmt.Errorf("ivp: derivative function returned %d components, want %d", len(f0), r.n)
	}
	r.state.F = f0

	hAbs := conf.InitialStep
	if hAbs == 0 {
		hAbs = selectInitialStep(r.fcn, t0, r.state.Y, f0, r.direction, tb.Order, rtol, atol, conf.MaxStep)
		r.stats.EvaluationCount++
	}
	r.hAbs = math.Min(hAbs, conf.MaxStep)
	r.status = Started
	return r, nil
}

// StepSize returns the magnitude of the next trial step.
func (r *RK) StepSize() float64 {
	return r.hAbs
}

// Stats returns the work counters accumulated so far.
func (r *RK) Stats() Statistics {
	return r.stats
}

// Tableau returns the coefficient set driving this stepper.
func (r *RK) Tableau() Tableau {
	return r.tb
}

// Step advances the solution by one accepted step. Trial steps failing the
// embedded error test are retried with a smaller step size; the retry loop
// is bounded only by the step size underflowing to the floating point
// spacing at t, which transitions the status to Failed. Callers must poll
// Status after every call.
func (r *RK) Step() {
	if r.status != Started && r.status != Running {
		// Only take a step if the solver is running.
		return
	}

	t := r.state.T
	y := r.state.Y
	f := r.state.F
	hAbs := r.hAbs
	s := r.direction
	b := r.tCrit
	d := math.Abs(b - t)

	var (
		tNew, h, errNorm float64
		yNew, fNew       []float64
	)

	// Loop until an appropriately small step is taken.
	for {
		if hAbs > d {
			// Clamp the trial step to land exactly on the boundary.
			hAbs = d
			tNew = b
			h = hAbs * s
		} else {
			h = hAbs * s
			tNew = t + h
		}

		var errVec []float64
		yNew, fNew, errVec = rkStep(r.fcn, t, y, f, h, r.tb, r.k)
		r.stats.EvaluationCount += uint(r.tb.Stages())

		scale := make([]float64, r.n)
		for i := range scale {
			scale[i] = r.atol[i] + r.rtol*math.Max(math.Abs(y[i]), math.Abs(yNew[i]))
			errVec[i] /= scale[i]
		}
		errNorm = rmsNorm(errVec)

		if errNorm > 1 {
			r.stats.RejectedCount++
			hAbs *= math.Max(minFactor, safety*math.Pow(errNorm, -1/float64(r.tb.Order)))
			continue
		}
		break
	}
	r.stats.StepCount++

	// Grow the step size for the next call. A zero error norm would blow up
	// the growth exponent, so it is treated as "grow by the maximum factor".
	if errNorm == 0 {
		hAbs *= maxFactor
	} else {
		hAbs *= math.Min(maxFactor, math.Max(1, safety*math.Pow(errNorm, -1/float64(r.tb.Order))))
	}
	hAbs = math.Min(hAbs, r.maxStep)

	// The midpoint value is reconstructed from the stage derivatives of the
	// accepted attempt: rejected attempts overwrite the scratch matrix, but
	// the accepted one is the last to have written it.
	var ym []float64
	if r.tb.M != nil {
		ym = make([]float64, r.n)
		copy(ym, y)
		for j, m := range r.tb.M {
			floats.AddScaled(ym, 0.5*h*m, r.k[j])
		}
	}

	r.state = State{T: tNew, Y: yNew, F: fNew, YM: ym}
	r.hAbs = hAbs

	switch {
	case tNew == b:
		r.status = Finished
	case tNew == t:
		// h is below the spacing between floating point numbers at t.
		r.status = Failed
	default:
		r.status = Running
	}
}

// rkStep performs a single explicit Runge-Kutta step from (t, y) with the
// signed step h and estimates the error of the embedded low-order method.
//
// f must equal fcn(t, y) from the previous accepted step, so the step costs
// Stages() new evaluations. k is caller-owned scratch with stages+1 rows of
// n columns: row 0 holds the derivative at the start of the step, the last
// row the derivative at its end, and every row is overwritten on each call.
func rkStep(fcn Func, t float64, y, f []float64, h float64, tb Tableau, k [][]float64) (yNew, fNew, errVec []float64) {
	n := len(y)
	stages := tb.Stages()
	copy(k[0], f)

	yStage := make([]float64, n)
	for s, a := range tb.A {
		copy(yStage, y)
		for j, aj := range a {
			floats.AddScaled(yStage, h*aj, k[j])
		}
		copy(k[s+1], fcn(t+tb.C[s]*h, yStage))
	}

	yNew = make([]float64, n)
	copy(yNew, y)
	for j, bj := range tb.B {
		floats.AddScaled(yNew, h*bj, k[j])
	}

	fNew = fcn(t+h, yNew)
	copy(k[stages], fNew)

	errVec = make([]float64, n)
	for j, ej := range tb.E {
		floats.AddScaled(errVec, h*ej, k[j])
	}
	return yNew, fNew, errVec
}
