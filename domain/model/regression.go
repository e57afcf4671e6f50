package model

import (
	"fmt"
	"math"

	"gostat/domain/core"
)

// FittedModel holds every quantity derived from one least-squares fit.
// INVARIANTS:
// - per-coefficient slices all have length P, per-observation slices length N
// - DF = N - P and is >= 1
// - SSTotal = SSModel + SSError (floating tolerance)
// - every field is finite; p-values lie in [0, 1]
// Immutable once constructed: fit, read, discard. Safe for concurrent reads.
type FittedModel struct {
	Terms          []core.Term `json:"terms"`
	Coefficients   []float64   `json:"coefficients"`
	StandardErrors []float64   `json:"standard_errors"`
	TStatistics    []float64   `json:"t_statistics"`
	PValues        []float64   `json:"p_values"`

	Fitted    []float64 `json:"fitted"`
	Residuals []float64 `json:"residuals"`

	N  int `json:"n"`
	P  int `json:"p"`
	DF int `json:"df"`

	SSTotal float64 `json:"ss_total"`
	SSModel float64 `json:"ss_model"`
	SSError float64 `json:"ss_error"`

	MSError          float64 `json:"ms_error"`
	ResidualStdError float64 `json:"residual_std_error"`
	RSquared         float64 `json:"r_squared"`
	AdjRSquared      float64 `json:"adj_r_squared"`

	// Overall model test against the intercept-only model.
	FStatistic float64 `json:"f_statistic"`
	FPValue    float64 `json:"f_p_value"`

	// Diagonal of (X'X)^-1, kept for downstream SE scaling.
	XtXInvDiag []float64 `json:"xtx_inv_diag"`
}

// Coefficient returns the estimate for a named term.
func (m *FittedModel) Coefficient(term core.Term) (float64, bool) {
	for j, t := range m.Terms {
		if t == term {
			return m.Coefficients[j], true
		}
	}
	return 0, false
}

// HasTerm reports whether the model includes the named design column.
func (m *FittedModel) HasTerm(term core.Term) bool {
	_, ok := m.Coefficient(term)
	return ok
}

// Validate checks the structural invariants above. The regression engine
// calls this before releasing a model, so a caller never sees a partial fit.
func (m *FittedModel) Validate() error {
	if m.N <= m.P {
		return core.NewInsufficientDataError(m.N, m.P)
	}
	if m.DF != m.N-m.P {
		return fmt.Errorf("%w: df %d != n-p %d", core.ErrDimensionMismatch, m.DF, m.N-m.P)
	}
	for _, lp := range [][]float64{m.Coefficients, m.StandardErrors, m.TStatistics, m.PValues, m.XtXInvDiag} {
		if len(lp) != m.P {
			return core.NewDimensionMismatchError("coefficient slice", len(lp), m.P)
		}
	}
	for _, ln := range [][]float64{m.Fitted, m.Residuals} {
		if len(ln) != m.N {
			return core.NewDimensionMismatchError("observation slice", len(ln), m.N)
		}
	}
	for j, p := range m.PValues {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: p-value for %q is %v", core.ErrDimensionMismatch, m.Terms[j], p)
		}
	}
	for _, v := range []float64{m.SSTotal, m.SSModel, m.SSError, m.MSError, m.RSquared} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite summary statistic", core.ErrDimensionMismatch)
		}
	}
	return nil
}

// ModelComparison is the result of a nested-model F-test.
type ModelComparison struct {
	FStatistic     float64     `json:"f_statistic"`
	DF1            int         `json:"df1"`
	DF2            int         `json:"df2"`
	PValue         float64     `json:"p_value"`
	SSErrorFull    float64     `json:"ss_error_full"`
	SSErrorReduced float64     `json:"ss_error_reduced"`
	DroppedTerms   []core.Term `json:"dropped_terms"`
}
