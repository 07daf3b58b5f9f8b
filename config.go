package ivp

import "math"

const (
	// DefaultRtol is the relative tolerance used when none is configured.
	DefaultRtol = 1e-3
	// DefaultAtol is the absolute tolerance used when none is configured.
	DefaultAtol = 1e-6
)

// Config configures an adaptive stepper. The zero value selects defaults.
type Config struct {
	// InitialStep is the magnitude of the first trial step. If zero, a
	// starting step is estimated from the initial derivative.
	InitialStep float64

	// MaxStep is the ceiling on the step magnitude. If zero, the step size
	// is unbounded.
	MaxStep float64

	// Rtol is the relative tolerance. If zero, DefaultRtol is used.
	Rtol float64

	// Atol is the absolute tolerance: either a single entry broadcast to
	// all components or one entry per component. If nil, DefaultAtol is used.
	Atol []float64
}

// withDefaults returns a copy of the configuration with zero values replaced.
func (c Config) withDefaults() Config {
	if c.Rtol == 0 {
		c.Rtol = DefaultRtol
	}
	if c.Atol == nil {
		c.Atol = []float64{DefaultAtol}
	}
	if c.MaxStep == 0 {
		c.MaxStep = math.Inf(1)
	}
	return c
}
