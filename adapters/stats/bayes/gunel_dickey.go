package bayes

import (
	"fmt"
	"math"

	"gostat/domain/core"
	"gostat/domain/model"
	"gostat/internal"
	"gostat/internal/config"
	interrors "gostat/internal/errors"
)

// Test computes closed-form Gunel-Dickey Bayes factors contrasting
// association against independence for a contingency table. Cell and margin
// probabilities are integrated out analytically against a symmetric
// Dirichlet prior on the parameters native to the declared sampling plan,
// so K is a deterministic ratio of multivariate Beta functions - no
// sampling anywhere.
type Test struct {
	prior float64
	log   *internal.Logger
}

// NewTest creates a test with the default prior concentration (a = 1).
func NewTest() *Test {
	return NewTestWithConfig(config.Default())
}

// NewTestWithConfig creates a test with an explicit prior concentration.
func NewTestWithConfig(cfg *config.Config) *Test {
	return &Test{
		prior: cfg.PriorConcentration,
		log:   internal.DefaultLogger,
	}
}

// BayesFactor returns K = m(association) / m(independence) for the table
// under the given sampling plan. K > 1 favors association. Results from
// different plans are deliberately different numbers; the plan tag on the
// result is what makes two K values comparable.
//
// For the fixed-margin plan the ROW margins are the ones held fixed by
// design; transpose the table first when the fixed variable runs along the
// columns.
func (t *Test) BayesFactor(tab *model.ContingencyTable, plan model.SamplingPlan) (*model.BayesFactorResult, error) {
	if !plan.Valid() {
		return nil, interrors.InvalidInput(fmt.Sprintf("unknown sampling plan %q", plan))
	}
	if tab.Rows() < 2 || tab.Cols() < 2 {
		return nil, fmt.Errorf("%w: bayes factor needs at least a 2x2 table", core.ErrDimensionMismatch)
	}
	if tab.GrandTotal() == 0 {
		return nil, core.NewDegenerateMarginError("grand total", 0)
	}

	a := t.prior
	var logK float64
	switch plan {
	case model.PlanJointMultinomial:
		logK = t.logKJoint(tab, a)
	case model.PlanIndependentMultinomialFixedMargin:
		logK = t.logKIndependent(tab, a)
	}

	res := &model.BayesFactorResult{
		K:                  math.Exp(logK),
		LogK:               logK,
		Plan:               plan,
		PriorConcentration: a,
	}
	t.log.Debug("bayes factor: plan=%s a=%g logK=%.6g", plan, a, logK)
	return res, nil
}

// logKJoint: H1 puts Dir_rc(a) on the full cell simplex; H0 factorizes the
// cells into row and column margins with independent Dir_r(a) and Dir_c(a)
// priors. Both marginal likelihoods share the multinomial coefficient, so K
// reduces to a ratio of Beta-function ratios.
func (t *Test) logKJoint(tab *model.ContingencyTable, a float64) float64 {
	cells := make([]float64, 0, tab.Rows()*tab.Cols())
	for _, row := range tab.Counts {
		for _, c := range row {
			cells = append(cells, float64(c)+a)
		}
	}
	assoc := logMultiBeta(cells) - logSymBeta(len(cells), a)

	indep := logMultiBeta(addConst(tab.RowTotals(), a)) - logSymBeta(tab.Rows(), a)
	indep += logMultiBeta(addConst(tab.ColTotals(), a)) - logSymBeta(tab.Cols(), a)

	return assoc - indep
}

// logKIndependent: row totals are fixed by design. H1 gives every row its
// own conditional distribution with a Dir_c(a) prior; H0 makes all rows
// share a single Dir_c(a)-distributed conditional.
func (t *Test) logKIndependent(tab *model.ContingencyTable, a float64) float64 {
	c := tab.Cols()
	assoc := 0.0
	for _, row := range tab.Counts {
		assoc += logMultiBeta(addConst(row, a)) - logSymBeta(c, a)
	}

	indep := logMultiBeta(addConst(tab.ColTotals(), a)) - logSymBeta(c, a)

	return assoc - indep
}

// logMultiBeta is the log multivariate Beta function,
// sum(lgamma(alpha_i)) - lgamma(sum(alpha_i)).
func logMultiBeta(alpha []float64) float64 {
	sum := 0.0
	lg := 0.0
	for _, v := range alpha {
		sum += v
		l, _ := math.Lgamma(v)
		lg += l
	}
	lsum, _ := math.Lgamma(sum)
	return lg - lsum
}

// logSymBeta is logMultiBeta for a symmetric Dirichlet(a) over k categories.
func logSymBeta(k int, a float64) float64 {
	la, _ := math.Lgamma(a)
	lka, _ := math.Lgamma(float64(k) * a)
	return float64(k)*la - lka
}

func addConst(counts []int, a float64) []float64 {
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c) + a
	}
	return out
}
