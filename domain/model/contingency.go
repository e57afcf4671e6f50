package model

import (
	"fmt"

	"gostat/domain/core"
)

// ContingencyTable maps (row category, column category) pairs to
// non-negative counts. Category order is fixed at construction; marginals
// are recomputed on every read so they can never drift from the counts.
type ContingencyTable struct {
	RowCategories []string `json:"row_categories"`
	ColCategories []string `json:"col_categories"`
	Counts        [][]int  `json:"counts"`
}

// NewContingencyTable validates shape and non-negativity.
func NewContingencyTable(rowCats, colCats []string, counts [][]int) (*ContingencyTable, error) {
	if len(rowCats) == 0 || len(colCats) == 0 {
		return nil, fmt.Errorf("%w: empty category set", core.ErrDimensionMismatch)
	}
	if len(counts) != len(rowCats) {
		return nil, core.NewDimensionMismatchError("count rows", len(counts), len(rowCats))
	}
	for i, row := range counts {
		if len(row) != len(colCats) {
			return nil, core.NewDimensionMismatchError(fmt.Sprintf("count row %d", i), len(row), len(colCats))
		}
		for j, c := range row {
			if c < 0 {
				return nil, fmt.Errorf("%w: negative count at (%d,%d)", core.ErrDimensionMismatch, i, j)
			}
		}
	}
	return &ContingencyTable{RowCategories: rowCats, ColCategories: colCats, Counts: counts}, nil
}

func (t *ContingencyTable) Rows() int { return len(t.RowCategories) }
func (t *ContingencyTable) Cols() int { return len(t.ColCategories) }

// Cell returns the count at (i, j).
func (t *ContingencyTable) Cell(i, j int) int { return t.Counts[i][j] }

// RowTotals returns the row marginals, recomputed from the counts.
func (t *ContingencyTable) RowTotals() []int {
	totals := make([]int, t.Rows())
	for i, row := range t.Counts {
		for _, c := range row {
			totals[i] += c
		}
	}
	return totals
}

// ColTotals returns the column marginals, recomputed from the counts.
func (t *ContingencyTable) ColTotals() []int {
	totals := make([]int, t.Cols())
	for _, row := range t.Counts {
		for j, c := range row {
			totals[j] += c
		}
	}
	return totals
}

// GrandTotal returns the total observation count.
func (t *ContingencyTable) GrandTotal() int {
	total := 0
	for _, row := range t.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// Transpose swaps rows and columns. Used to point the fixed margin of the
// independent-multinomial sampling plan at the right variable.
func (t *ContingencyTable) Transpose() *ContingencyTable {
	counts := make([][]int, t.Cols())
	for j := range counts {
		counts[j] = make([]int, t.Rows())
		for i := range counts[j] {
			counts[j][i] = t.Counts[i][j]
		}
	}
	return &ContingencyTable{
		RowCategories: append([]string{}, t.ColCategories...),
		ColCategories: append([]string{}, t.RowCategories...),
		Counts:        counts,
	}
}

// ExpectedTable is the real-valued companion of a ContingencyTable: expected
// counts under a stated null, same shape and category order as its source.
type ExpectedTable struct {
	RowCategories []string    `json:"row_categories"`
	ColCategories []string    `json:"col_categories"`
	Values        [][]float64 `json:"values"`
}

// Cell returns the expected value at (i, j).
func (t *ExpectedTable) Cell(i, j int) float64 { return t.Values[i][j] }

// ResidualTable holds per-cell standardized residuals
// (observed - expected) / sqrt(expected), interpretable as approximate
// Z-scores. Same shape and category order as the source table.
type ResidualTable struct {
	RowCategories []string    `json:"row_categories"`
	ColCategories []string    `json:"col_categories"`
	Values        [][]float64 `json:"values"`
}

// Cell returns the standardized residual at (i, j).
func (t *ResidualTable) Cell(i, j int) float64 { return t.Values[i][j] }

// GoodnessOfFitResult pairs a one-way chi-squared statistic with its
// degrees of freedom, p-value and the expected counts it was computed from.
type GoodnessOfFitResult struct {
	ChiSquare float64   `json:"chi_square"`
	DF        int       `json:"df"`
	PValue    float64   `json:"p_value"`
	Expected  []float64 `json:"expected"`
}

// IndependenceResult is the outcome of a two-way chi-squared test of
// independence, with Cramer's V as a standardized effect size.
type IndependenceResult struct {
	ChiSquare float64        `json:"chi_square"`
	DF        int            `json:"df"`
	PValue    float64        `json:"p_value"`
	CramersV  float64        `json:"cramers_v"`
	Expected  *ExpectedTable `json:"expected"`
}

// OddsRatioResult reports the ratio of row odds in a 2x2 table. A zero cell
// makes the ratio infinite or undefined; Finite is the caller's cue to stop
// treating Value as a number.
type OddsRatioResult struct {
	Value    float64 `json:"value"`
	OddsRow1 float64 `json:"odds_row1"`
	OddsRow2 float64 `json:"odds_row2"`
	Finite   bool    `json:"finite"`
}
