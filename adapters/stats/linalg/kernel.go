package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"gostat/domain/core"
	"gostat/domain/model"
	"gostat/internal"
	"gostat/internal/config"
)

// Kernel solves the least-squares normal equations X'X b = X'y. It refuses
// rank-deficient designs instead of returning garbage: an exact Cholesky
// failure or a condition number past the configured limit both surface as
// core.ErrSingularDesign.
type Kernel struct {
	conditionLimit float64
	log            *internal.Logger
}

// NewKernel creates a kernel with the default condition limit.
func NewKernel() *Kernel {
	return NewKernelWithConfig(config.Default())
}

// NewKernelWithConfig creates a kernel with explicit tolerances.
func NewKernelWithConfig(cfg *config.Config) *Kernel {
	return &Kernel{
		conditionLimit: cfg.ConditionLimit,
		log:            internal.DefaultLogger,
	}
}

// Solution is the output of one normal-equations solve.
type Solution struct {
	Coefficients []float64 // beta-hat, one per design column
	InverseDiag  []float64 // diagonal of (X'X)^-1, for SE scaling
	Condition    float64   // condition number of X'X
}

// SolveNormalEquations computes beta-hat for the design and response via a
// Cholesky factorization of X'X.
func (k *Kernel) SolveNormalEquations(d *model.Design, y []float64) (*Solution, error) {
	n, p := d.N(), d.P()
	if len(y) != n {
		return nil, core.NewDimensionMismatchError("response vector", len(y), n)
	}
	if n < p+1 {
		return nil, core.NewInsufficientDataError(n, p)
	}
	if err := k.checkConstantColumns(d); err != nil {
		return nil, err
	}

	flat := make([]float64, 0, n*p)
	for _, row := range d.Rows {
		flat = append(flat, row...)
	}
	x := mat.NewDense(n, p, flat)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			sym.SetSym(i, j, xtx.At(i, j))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, core.NewSingularDesignError("X'X is not positive definite")
	}
	cond := chol.Cond()
	if cond > k.conditionLimit {
		return nil, core.NewSingularDesignError(
			fmt.Sprintf("X'X condition number %.3g exceeds limit %.3g", cond, k.conditionLimit))
	}
	k.log.Debug("normal equations: n=%d p=%d cond(X'X)=%.3g", n, p, cond)

	xty := mat.NewVecDense(p, nil)
	xty.MulVec(x.T(), mat.NewVecDense(n, y))

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, xty); err != nil {
		return nil, core.NewSingularDesignError(err.Error())
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, core.NewSingularDesignError(err.Error())
	}

	sol := &Solution{
		Coefficients: make([]float64, p),
		InverseDiag:  make([]float64, p),
		Condition:    cond,
	}
	for j := 0; j < p; j++ {
		sol.Coefficients[j] = beta.AtVec(j)
		sol.InverseDiag[j] = inv.At(j, j)
	}
	return sol, nil
}

// checkConstantColumns fails fast on the cheap degeneracies: an all-zero
// column, or two constant columns (a constant predictor next to an
// intercept is exactly collinear with it).
func (k *Kernel) checkConstantColumns(d *model.Design) error {
	constants := 0
	for j, term := range d.Terms {
		first := d.Rows[0][j]
		constant := true
		for _, row := range d.Rows {
			if row[j] != first {
				constant = false
				break
			}
		}
		if !constant {
			continue
		}
		if first == 0 {
			return core.NewSingularDesignError(fmt.Sprintf("column %q is all zeros", term))
		}
		constants++
		if constants > 1 {
			return core.NewSingularDesignError(
				fmt.Sprintf("constant column %q is collinear with the intercept", term))
		}
	}
	return nil
}
