package contingency

import (
	"fmt"
	"math"

	"gostat/adapters/stats/dist"
	"gostat/domain/core"
	"gostat/domain/model"
	"gostat/internal"
	"gostat/internal/config"
)

// Engine builds contingency tables from paired categorical observations and
// runs the classical chi-squared machinery over them: goodness of fit,
// independence, standardized residuals and the 2x2 odds ratio.
type Engine struct {
	dist          *dist.Distributions
	proportionTol float64
	log           *internal.Logger
}

// NewEngine creates an engine with default tolerances.
func NewEngine() *Engine {
	return NewEngineWithConfig(config.Default())
}

// NewEngineWithConfig creates an engine with explicit tolerances.
func NewEngineWithConfig(cfg *config.Config) *Engine {
	return &Engine{
		dist:          dist.New(),
		proportionTol: cfg.ProportionTolerance,
		log:           internal.DefaultLogger,
	}
}

// Tabulate cross-classifies two co-indexed categorical label sequences.
// Category order is order of first appearance, so the table is a
// deterministic function of the input.
func Tabulate(rowObs, colObs []string) (*model.ContingencyTable, error) {
	if len(rowObs) != len(colObs) {
		return nil, core.NewDimensionMismatchError("column observations", len(colObs), len(rowObs))
	}
	if len(rowObs) == 0 {
		return nil, fmt.Errorf("%w: no observations", core.ErrDimensionMismatch)
	}

	rowIdx := make(map[string]int)
	colIdx := make(map[string]int)
	var rowCats, colCats []string
	for i := range rowObs {
		if _, ok := rowIdx[rowObs[i]]; !ok {
			rowIdx[rowObs[i]] = len(rowCats)
			rowCats = append(rowCats, rowObs[i])
		}
		if _, ok := colIdx[colObs[i]]; !ok {
			colIdx[colObs[i]] = len(colCats)
			colCats = append(colCats, colObs[i])
		}
	}

	counts := make([][]int, len(rowCats))
	for i := range counts {
		counts[i] = make([]int, len(colCats))
	}
	for i := range rowObs {
		counts[rowIdx[rowObs[i]]][colIdx[colObs[i]]]++
	}
	return model.NewContingencyTable(rowCats, colCats, counts)
}

// UniformProportions returns the equal-expectation null for k categories.
func UniformProportions(k int) []float64 {
	p := make([]float64, k)
	for i := range p {
		p[i] = 1 / float64(k)
	}
	return p
}

// GoodnessOfFit tests observed category counts against expected
// proportions, which must be positive and sum to 1 within tolerance.
func (e *Engine) GoodnessOfFit(counts []int, expectedProportions []float64) (*model.GoodnessOfFitResult, error) {
	k := len(counts)
	if len(expectedProportions) != k {
		return nil, core.NewDimensionMismatchError("expected proportions", len(expectedProportions), k)
	}
	if k < 2 {
		return nil, fmt.Errorf("%w: need at least 2 categories", core.ErrDimensionMismatch)
	}

	total := 0
	for i, c := range counts {
		if c < 0 {
			return nil, fmt.Errorf("%w: negative count at category %d", core.ErrDimensionMismatch, i)
		}
		total += c
	}
	if total == 0 {
		return nil, core.NewDegenerateMarginError("category total", 0)
	}

	sum := 0.0
	for i, p := range expectedProportions {
		if p <= 0 {
			return nil, fmt.Errorf("%w: expected proportion for category %d is not positive", core.ErrDegenerateMargin, i)
		}
		sum += p
	}
	if math.Abs(sum-1) > e.proportionTol {
		return nil, fmt.Errorf("%w: expected proportions sum to %v, want 1", core.ErrDimensionMismatch, sum)
	}

	chiSq := 0.0
	expected := make([]float64, k)
	for i, c := range counts {
		expected[i] = expectedProportions[i] * float64(total)
		dev := float64(c) - expected[i]
		chiSq += dev * dev / expected[i]
	}

	df := k - 1
	res := &model.GoodnessOfFitResult{
		ChiSquare: chiSq,
		DF:        df,
		PValue:    e.dist.ChiSquaredSurvival(chiSq, df),
		Expected:  expected,
	}
	e.log.Debug("goodness of fit: chi2=%.6g df=%d p=%.6g", chiSq, df, res.PValue)
	return res, nil
}

// ExpectedUnderIndependence builds the expected-count table
// E[i][j] = rowTotal_i * colTotal_j / grandTotal. An empty marginal makes
// the chi-squared statistic undefined and is rejected.
func (e *Engine) ExpectedUnderIndependence(t *model.ContingencyTable) (*model.ExpectedTable, error) {
	rowTotals := t.RowTotals()
	colTotals := t.ColTotals()
	grand := t.GrandTotal()
	if grand == 0 {
		return nil, core.NewDegenerateMarginError("grand total", 0)
	}
	for i, rt := range rowTotals {
		if rt == 0 {
			return nil, core.NewDegenerateMarginError("row", i)
		}
	}
	for j, ct := range colTotals {
		if ct == 0 {
			return nil, core.NewDegenerateMarginError("column", j)
		}
	}

	values := make([][]float64, t.Rows())
	for i := range values {
		values[i] = make([]float64, t.Cols())
		for j := range values[i] {
			values[i][j] = float64(rowTotals[i]) * float64(colTotals[j]) / float64(grand)
		}
	}
	return &model.ExpectedTable{
		RowCategories: append([]string{}, t.RowCategories...),
		ColCategories: append([]string{}, t.ColCategories...),
		Values:        values,
	}, nil
}

// IndependenceTest runs the r x c chi-squared test of independence with
// df = (r-1)(c-1) and Cramer's V as effect size.
func (e *Engine) IndependenceTest(t *model.ContingencyTable) (*model.IndependenceResult, error) {
	if t.Rows() < 2 || t.Cols() < 2 {
		return nil, fmt.Errorf("%w: independence test needs at least a 2x2 table", core.ErrDimensionMismatch)
	}
	expected, err := e.ExpectedUnderIndependence(t)
	if err != nil {
		return nil, err
	}

	chiSq := 0.0
	for i, row := range t.Counts {
		for j, c := range row {
			dev := float64(c) - expected.Values[i][j]
			chiSq += dev * dev / expected.Values[i][j]
		}
	}

	df := (t.Rows() - 1) * (t.Cols() - 1)
	minDim := math.Min(float64(t.Rows()-1), float64(t.Cols()-1))
	cramersV := math.Sqrt(chiSq / (float64(t.GrandTotal()) * minDim))

	res := &model.IndependenceResult{
		ChiSquare: chiSq,
		DF:        df,
		PValue:    e.dist.ChiSquaredSurvival(chiSq, df),
		CramersV:  cramersV,
		Expected:  expected,
	}
	e.log.Debug("independence: chi2=%.6g df=%d p=%.6g V=%.4f", chiSq, df, res.PValue, cramersV)
	return res, nil
}

// StandardizedResiduals returns (observed - expected) / sqrt(expected) per
// cell under the independence null, read as approximate Z-scores.
func (e *Engine) StandardizedResiduals(t *model.ContingencyTable) (*model.ResidualTable, error) {
	expected, err := e.ExpectedUnderIndependence(t)
	if err != nil {
		return nil, err
	}
	values := make([][]float64, t.Rows())
	for i := range values {
		values[i] = make([]float64, t.Cols())
		for j := range values[i] {
			ex := expected.Values[i][j]
			values[i][j] = (float64(t.Counts[i][j]) - ex) / math.Sqrt(ex)
		}
	}
	return &model.ResidualTable{
		RowCategories: append([]string{}, t.RowCategories...),
		ColCategories: append([]string{}, t.ColCategories...),
		Values:        values,
	}, nil
}

// OddsRatio computes the ratio of row odds for a 2x2 table. Any zero cell
// makes the ratio infinite or undefined; the result says so explicitly
// instead of handing back a bare NaN.
func (e *Engine) OddsRatio(t *model.ContingencyTable) (*model.OddsRatioResult, error) {
	if t.Rows() != 2 || t.Cols() != 2 {
		return nil, core.NewShapeError("odds ratio", t.Rows(), t.Cols())
	}

	odds1 := float64(t.Counts[0][0]) / float64(t.Counts[0][1])
	odds2 := float64(t.Counts[1][0]) / float64(t.Counts[1][1])
	finite := t.Counts[0][0] > 0 && t.Counts[0][1] > 0 && t.Counts[1][0] > 0 && t.Counts[1][1] > 0

	return &model.OddsRatioResult{
		Value:    odds1 / odds2,
		OddsRow1: odds1,
		OddsRow2: odds2,
		Finite:   finite,
	}, nil
}
