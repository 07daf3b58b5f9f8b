package ivp

import "fmt"

// Tableau holds the coefficients of an embedded explicit Runge-Kutta pair.
// Notation follows Hairer, Norsett & Wanner, "Solving Ordinary Differential
// Equations I: Nonstiff Problems", Sec. II.4.
type Tableau struct {
	Name string
	// C holds the fractional time offsets of the stages. The offset of the
	// first stage is always zero and is not stored.
	C []float64
	// A holds the stage combination coefficients as rows of strictly
	// increasing length, the lower triangle of an explicit method. The first
	// stage is always just f, so no row is stored for it.
	A [][]float64
	// B combines all stage derivatives into the high-order solution increment.
	B []float64
	// E estimates the local error: the difference between the B rows of the
	// high- and low-order methods, extended by one term for the derivative
	// at the end of the step.
	E []float64
	// M, when present, produces a 4th-order accurate midpoint value
	// y(t + h/2) from the stage derivatives, which enables quartic dense
	// output. Methods without M fall back to cubic Hermite dense output.
	M []float64
	// Order is the order of the local truncation error of the embedded
	// low-order estimate. It drives the adaptive step size exponent.
	Order int
}

// Stages returns the number of stages of the method.
func (tb Tableau) Stages() int {
	return len(tb.B)
}

// validate checks the structural invariants of the tableau.
func (tb Tableau) validate() error {
	stages := tb.Stages()
	if stages < 2 {
		return fmt.Errorf("ivp: tableau %s has %d stages, need at least 2", tb.Name, stages)
	}
	if len(tb.C) != stages-1 || len(tb.A) != stages-1 {
		return fmt.Errorf("ivp: tableau %s: C and A must have %d rows", tb.Name, stages-1)
	}
	for i, row := range tb.A {
		if len(row) != i+1 {
			return fmt.Errorf("ivp: tableau %s: A row %d has %d coefficients, want %d", tb.Name, i, len(row), i+1)
		}
	}
	if len(tb.E) != stages+1 {
		return fmt.Errorf("ivp: tableau %s: E must have %d coefficients", tb.Name, stages+1)
	}
	if tb.M != nil && len(tb.M) != stages+1 {
		return fmt.Errorf("ivp: tableau %s: M must have %d coefficients", tb.Name, stages+1)
	}
	if tb.Order < 1 {
		return fmt.Errorf("ivp: tableau %s: order must be at least 1", tb.Name)
	}
	return nil
}

// BogackiShampine returns the 3(2) embedded pair from Bogacki & Shampine,
// "A 3(2) Pair of Runge-Kutta Formulas", Appl. Math. Lett. 2 (1989).
// It has no midpoint coefficients, so dense output is a cubic Hermite.
func BogackiShampine() Tableau {
	return Tableau{
		Name:  "RK23",
		C:     []float64{1. / 2, 3. / 4},
		A:     [][]float64{{1. / 2}, {0, 3. / 4}},
		B:     []float64{2. / 9, 1. / 3, 4. / 9},
		E:     []float64{5. / 72, -1. / 12, -1. / 9, 1. / 8},
		Order: 3,
	}
}

// DormandPrince returns the 5(4) embedded pair from Dormand & Prince,
// "A family of embedded Runge-Kutta formulae", J. Comp. Appl. Math. 6 (1980).
// The midpoint coefficients are from Shampine, "Some Practical Runge-Kutta
// Formulas", Math. Comp. 46 (1986), and enable quartic dense output.
func DormandPrince() Tableau {
	return Tableau{
		Name: "RK45",
		C:    []float64{1. / 5, 3. / 10, 4. / 5, 8. / 9, 1},
		A: [][]float64{
			{1. / 5},
			{3. / 40, 9. / 40},
			{44. / 45, -56. / 15, 32. / 9},
			{19372. / 6561, -25360. / 2187, 64448. / 6561, -212. / 729},
			{9017. / 3168, -355. / 33, 46732. / 5247, 49. / 176, -5103. / 18656},
		},
		B:     []float64{35. / 384, 0, 500. / 1113, 125. / 192, -2187. / 6784, 11. / 84},
		E:     []float64{-71. / 57600, 0, 71. / 16695, -71. / 1920, 17253. / 339200, -22. / 525, 1. / 40},
		M:     []float64{613. / 3072, 0, 125. / 159, -125. / 1536, 8019. / 54272, -11. / 96, 1. / 16},
		Order: 5,
	}
}
