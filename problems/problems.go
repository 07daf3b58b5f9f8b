// Package problems provides reference initial value problems for exercising
// and validating the integrators.
package problems

import (
	"math"

	"github.com/odeproject/ivp"
)

// Problem couples an ODE right-hand side with an initial condition and, when
// one exists, an analytic reference solution.
type Problem struct {
	Name   string
	Y0     []float64
	T0, T1 float64
	Fcn    ivp.Func
	// Sol is the analytic solution, nil when none is known in closed form.
	Sol func(t float64) []float64
}

// Exponential returns the scalar problem dy/dt = λy, y(0) = 1, with the
// analytic solution exp(λt).
func Exponential(λ float64) Problem {
	return Problem{
		Name: "exponential",
		Y0:   []float64{1},
		T0:   0,
		T1:   1,
		Fcn: func(t float64, y []float64) []float64 {
			return []float64{λ * y[0]}
		},
		Sol: func(t float64) []float64 {
			return []float64{math.Exp(λ * t)}
		},
	}
}

// HarmonicOscillator returns the undamped oscillator y'' = -ω²y written as a
// first-order system, started at y(0) = 1, y'(0) = 0.
func HarmonicOscillator(ω float64) Problem {
	return Problem{
		Name: "harmonic",
		Y0:   []float64{1, 0},
		T0:   0,
		T1:   2 * math.Pi / ω,
		Fcn: func(t float64, y []float64) []float64 {
			return []float64{y[1], -ω * ω * y[0]}
		},
		Sol: func(t float64) []float64 {
			sin, cos := math.Sincos(ω * t)
			return []float64{cos, -ω * sin}
		},
	}
}

// EarthMu is the gravitational parameter of Earth in km³/s².
const EarthMu = 398600.4415

// TwoBody returns Cartesian two-body gravity about a central body of
// gravitational parameter μ: the state is [rx ry rz vx vy vz] and the
// acceleration is -μ·r/|r|³. The initial condition is a circular orbit of
// the given radius (km) in the equatorial plane, integrated over one period.
func TwoBody(μ, radius float64) Problem {
	v := math.Sqrt(μ / radius)
	period := 2 * math.Pi * math.Sqrt(radius*radius*radius/μ)
	return Problem{
		Name: "twobody",
		Y0:   []float64{radius, 0, 0, 0, v, 0},
		T0:   0,
		T1:   period,
		Fcn: func(t float64, y []float64) []float64 {
			r := math.Sqrt(y[0]*y[0] + y[1]*y[1] + y[2]*y[2])
			bodyAcc := -μ / math.Pow(r, 3)
			return []float64{
				y[3], y[4], y[5],
				bodyAcc * y[0], bodyAcc * y[1], bodyAcc * y[2],
			}
		},
		Sol: func(t float64) []float64 {
			// Circular orbit: uniform angular motion.
			sin, cos := math.Sincos(v / radius * t)
			return []float64{radius * cos, radius * sin, 0, -v * sin, v * cos, 0}
		},
	}
}
