package regression

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"gostat/adapters/stats/dist"
	"gostat/adapters/stats/linalg"
	"gostat/domain/core"
	"gostat/domain/model"
	"gostat/internal"
	"gostat/internal/config"
)

// Engine fits Gaussian-error linear models by least squares and compares
// nested fits with an F-test. Single- and multi-predictor designs go
// through the same matrix path, so for one predictor R-squared equals the
// squared Pearson correlation as an identity rather than by construction.
type Engine struct {
	kernel *linalg.Kernel
	dist   *dist.Distributions
	log    *internal.Logger
}

// NewEngine creates an engine with default tolerances.
func NewEngine() *Engine {
	return NewEngineWithConfig(config.Default())
}

// NewEngineWithConfig creates an engine with explicit tolerances.
func NewEngineWithConfig(cfg *config.Config) *Engine {
	return &Engine{
		kernel: linalg.NewKernelWithConfig(cfg),
		dist:   dist.New(),
		log:    internal.DefaultLogger,
	}
}

// Fit estimates the model with two-sided coefficient p-values.
func (e *Engine) Fit(d *model.Design, y []float64) (*model.FittedModel, error) {
	return e.FitTail(d, y, dist.TailTwoSided)
}

// FitTail estimates the model with an explicit alternative for the
// coefficient tests.
func (e *Engine) FitTail(d *model.Design, y []float64, tail dist.Tail) (*model.FittedModel, error) {
	sol, err := e.kernel.SolveNormalEquations(d, y)
	if err != nil {
		return nil, err
	}

	n, p := d.N(), d.P()
	df := n - p

	fitted := make([]float64, n)
	residuals := make([]float64, n)
	ssError := 0.0
	for i, row := range d.Rows {
		yhat := 0.0
		for j, b := range sol.Coefficients {
			yhat += row[j] * b
		}
		fitted[i] = yhat
		residuals[i] = y[i] - yhat
		ssError += residuals[i] * residuals[i]
	}

	ybar, err := stats.Mean(stats.Float64Data(y))
	if err != nil {
		return nil, core.NewDimensionMismatchError("response vector", len(y), n)
	}
	ssTotal := 0.0
	for _, yi := range y {
		dev := yi - ybar
		ssTotal += dev * dev
	}
	if ssTotal == 0 {
		return nil, fmt.Errorf("%w: response has zero variance", core.ErrInsufficientData)
	}
	ssModel := ssTotal - ssError

	msError := ssError / float64(df)
	residSE := math.Sqrt(msError)

	ses := make([]float64, p)
	ts := make([]float64, p)
	ps := make([]float64, p)
	for j, b := range sol.Coefficients {
		ses[j] = residSE * math.Sqrt(sol.InverseDiag[j])
		ts[j], ps[j] = e.coefficientTest(b, ses[j], df, tail)
	}

	r2 := ssModel / ssTotal
	adjR2 := 1 - (1-r2)*float64(n-1)/float64(df)

	fStat, fP := e.overallF(ssModel, msError, p, df)

	m := &model.FittedModel{
		Terms:            append([]core.Term{}, d.Terms...),
		Coefficients:     sol.Coefficients,
		StandardErrors:   ses,
		TStatistics:      ts,
		PValues:          ps,
		Fitted:           fitted,
		Residuals:        residuals,
		N:                n,
		P:                p,
		DF:               df,
		SSTotal:          ssTotal,
		SSModel:          ssModel,
		SSError:          ssError,
		MSError:          msError,
		ResidualStdError: residSE,
		RSquared:         r2,
		AdjRSquared:      adjR2,
		FStatistic:       fStat,
		FPValue:          fP,
		XtXInvDiag:       sol.InverseDiag,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	e.log.Debug("fit: n=%d p=%d R2=%.6f SSE=%.6g", n, p, r2, ssError)
	return m, nil
}

// coefficientTest turns an estimate and its standard error into a t
// statistic and p-value. A saturated fit has zero residual error; its
// nonzero coefficients are exact, so they get p = 0 rather than a NaN from
// dividing by a zero standard error.
func (e *Engine) coefficientTest(b, se float64, df int, tail dist.Tail) (t, p float64) {
	if se == 0 {
		if b == 0 {
			return 0, 1
		}
		return math.Inf(sign(b)), 0
	}
	t = b / se
	return t, e.dist.TTestPValue(t, df, tail)
}

// overallF tests the whole model against the intercept-only null.
func (e *Engine) overallF(ssModel, msError float64, p, df int) (float64, float64) {
	if p < 2 {
		return 0, 1
	}
	if msError == 0 {
		return math.Inf(1), 0
	}
	f := (ssModel / float64(p-1)) / msError
	return f, e.dist.FSurvival(f, p-1, df)
}

// Compare runs the nested-model F-test. The reduced model's terms must be a
// strict subset of the full model's and both fits must come from the same
// observations.
func (e *Engine) Compare(full, reduced *model.FittedModel) (*model.ModelComparison, error) {
	if full.N != reduced.N {
		return nil, core.NewNotNestedError(
			fmt.Sprintf("models fit to %d and %d observations", full.N, reduced.N))
	}
	if reduced.P >= full.P {
		return nil, core.NewNotNestedError("reduced model is not smaller than the full model")
	}
	dropped := make([]core.Term, 0, full.P-reduced.P)
	for _, t := range reduced.Terms {
		if !full.HasTerm(t) {
			return nil, core.NewNotNestedError(fmt.Sprintf("reduced term %q not in full model", t))
		}
	}
	for _, t := range full.Terms {
		if !reduced.HasTerm(t) {
			dropped = append(dropped, t)
		}
	}

	diff := reduced.SSError - full.SSError
	if diff < -comparisonSlack(full.SSError) {
		return nil, core.NewNotNestedError("reduced model has smaller error; fits do not share a response")
	}
	if diff < 0 {
		diff = 0
	}

	df1 := full.P - reduced.P
	df2 := full.DF
	var f float64
	switch {
	case full.MSError == 0 && diff == 0:
		f = 0
	case full.MSError == 0:
		f = math.Inf(1)
	default:
		f = (diff / float64(df1)) / full.MSError
	}

	cmp := &model.ModelComparison{
		FStatistic:     f,
		DF1:            df1,
		DF2:            df2,
		PValue:         e.dist.FSurvival(f, df1, df2),
		SSErrorFull:    full.SSError,
		SSErrorReduced: reduced.SSError,
		DroppedTerms:   dropped,
	}
	e.log.Debug("compare: F(%d,%d)=%.6g p=%.6g dropped=%v", df1, df2, f, cmp.PValue, dropped)
	return cmp, nil
}

// comparisonSlack is the rounding allowance before two SSEs are declared
// inconsistent rather than merely noisy.
func comparisonSlack(sse float64) float64 {
	return 1e-8 * math.Max(1, sse)
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
