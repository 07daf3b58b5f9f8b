// Package ivp solves initial value problems for systems of first-order
// ordinary differential equations dy/dt = f(t, y) with adaptive-step
// explicit Runge-Kutta methods and continuous (dense) output.
package ivp

import (
	"fmt"
	"math"
)

// Func is the right-hand side of the system: it returns dy/dt at (t, y).
// It must be deterministic and must not retain or modify y.
type Func func(t float64, y []float64) []float64

// Status defines an enum of solver run statuses.
type Status uint8

const (
	// Created means the solver has been allocated but not initialized.
	Created Status = iota
	// Started means the solver is initialized and no step was taken yet.
	Started
	// Running means at least one step was accepted and the boundary is not reached.
	Running
	// Finished means the solution reached the integration boundary exactly.
	Finished
	// Failed means the step size underflowed below the floating point spacing.
	Failed
)

func (s Status) String() string {
	switch s {
	case Created:
		return "created"
	case Started:
		return "started"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	}
	panic("cannot stringify unknown solver status")
}

// State stores one accepted solution point.
type State struct {
	T float64
	Y []float64
	F []float64 // derivative at (T, Y)
	// YM is the 4th-order accurate midpoint value of the step which led to
	// this state. It is nil for the initial state and for methods without
	// midpoint coefficients.
	YM []float64
}

// solver is the lifecycle base embedded by the steppers: it owns the current
// state, the integration boundary and the run status.
type solver struct {
	fcn       Func
	state     State
	tCrit     float64
	direction float64
	n         int
	status    Status
}

// checkArguments validates the problem definition common to all steppers.
func checkArguments(fcn Func, y0 []float64, t0, tCrit float64) (solver, error) {
	var base solver
	if fcn == nil {
		return base, fmt.Errorf("ivp: no derivative function provided")
	}
	if len(y0) == 0 {
		return base, fmt.Errorf("ivp: initial vector is empty")
	}
	for i, v := range y0 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return base, fmt.Errorf("ivp: initial vector component %d is not finite (%g)", i, v)
		}
	}
	if math.IsNaN(t0) || math.IsInf(t0, 0) {
		return base, fmt.Errorf("ivp: initial time is not finite (%g)", t0)
	}
	if math.IsNaN(tCrit) {
		return base, fmt.Errorf("ivp: integration boundary is NaN")
	}
	direction := 1.0
	if tCrit < t0 {
		direction = -1.0
	}
	y := make([]float64, len(y0))
	copy(y, y0)
	base = solver{fcn: fcn, state: State{T: t0, Y: y}, tCrit: tCrit, direction: direction, n: len(y0), status: Created}
	return base, nil
}

// T returns the current value of the independent variable.
func (s *solver) T() float64 {
	return s.state.T
}

// Y returns the current solution vector. The caller must not modify it.
func (s *solver) Y() []float64 {
	return s.state.Y
}

// F returns the current derivative vector. The caller must not modify it.
func (s *solver) F() []float64 {
	return s.state.F
}

// CurrentState returns a copy of the current accepted state.
func (s *solver) CurrentState() State {
	return s.state
}

// Status returns the run status. Callers must poll it after every step.
func (s *solver) Status() Status {
	return s.status
}

// Direction returns the integration direction, +1 forward or -1 backward.
func (s *solver) Direction() float64 {
	return s.direction
}

// Dim returns the dimension of the solution vector.
func (s *solver) Dim() int {
	return s.n
}
