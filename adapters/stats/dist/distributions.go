package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Tail selects the alternative for a coefficient test. Two-sided is the
// engine default; one-sided variants must be asked for explicitly.
type Tail string

const (
	TailTwoSided Tail = "two-sided"
	TailLeft     Tail = "left"
	TailRight    Tail = "right"
)

// Distributions provides the sampling-distribution functions the engines
// need: Student-t, chi-squared and F. All methods are pure and
// deterministic; the zero value is ready to use.
type Distributions struct{}

// New creates a new distributions utility.
func New() *Distributions {
	return &Distributions{}
}

// StudentTCDF returns P(T <= t) for a Student-t with df degrees of freedom.
func (d *Distributions) StudentTCDF(t float64, df int) float64 {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.CDF(t)
}

// StudentTQuantile returns the p-quantile of a Student-t with df degrees of
// freedom.
func (d *Distributions) StudentTQuantile(p float64, df int) float64 {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Quantile(p)
}

// TTestPValue converts a t statistic into a p-value for the given tail.
func (d *Distributions) TTestPValue(t float64, df int, tail Tail) float64 {
	if df <= 0 {
		return 1.0
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	switch tail {
	case TailLeft:
		return dist.CDF(t)
	case TailRight:
		return 1 - dist.CDF(t)
	default:
		return 2 * (1 - dist.CDF(math.Abs(t)))
	}
}

// ChiSquaredCDF returns P(X <= x) for a chi-squared with df degrees of
// freedom.
func (d *Distributions) ChiSquaredCDF(x float64, df int) float64 {
	if x <= 0 {
		return 0
	}
	return distuv.ChiSquared{K: float64(df)}.CDF(x)
}

// ChiSquaredSurvival returns the upper-tail probability P(X > x), which is
// the p-value of every chi-squared statistic in this package.
func (d *Distributions) ChiSquaredSurvival(x float64, df int) float64 {
	if df <= 0 {
		return 1.0
	}
	if x <= 0 {
		return 1.0
	}
	return distuv.ChiSquared{K: float64(df)}.Survival(x)
}

// ChiSquaredQuantile returns the p-quantile of a chi-squared with df
// degrees of freedom.
func (d *Distributions) ChiSquaredQuantile(p float64, df int) float64 {
	return distuv.ChiSquared{K: float64(df)}.Quantile(p)
}

// FCDF returns P(X <= x) for an F distribution with df1 and df2 degrees of
// freedom.
func (d *Distributions) FCDF(x float64, df1, df2 int) float64 {
	if x <= 0 {
		return 0
	}
	return distuv.F{D1: float64(df1), D2: float64(df2)}.CDF(x)
}

// FSurvival returns the upper-tail probability for an F statistic, the
// p-value of a nested-model comparison.
func (d *Distributions) FSurvival(x float64, df1, df2 int) float64 {
	if df1 <= 0 || df2 <= 0 {
		return 1.0
	}
	if x <= 0 {
		return 1.0
	}
	return 1 - distuv.F{D1: float64(df1), D2: float64(df2)}.CDF(x)
}
