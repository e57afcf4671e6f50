package model

import (
	"fmt"
	"math"

	"gostat/domain/core"
)

// InterceptTerm is the conventional name for a column of ones.
const InterceptTerm core.Term = "(intercept)"

// Design is an observation matrix: N rows of p real-valued predictor
// entries, one named term per column. Dummy coding and any intercept column
// are the caller's responsibility; WithInteraction and Drop only rearrange
// columns that already exist. Treat a constructed Design as read-only.
type Design struct {
	Terms []core.Term `json:"terms"`
	Rows  [][]float64 `json:"rows"`
}

// NewDesign validates and wraps a row-major observation matrix.
func NewDesign(terms []core.Term, rows [][]float64) (*Design, error) {
	if len(rows) == 0 {
		return nil, core.NewInsufficientDataError(0, len(terms))
	}
	p := len(terms)
	if p == 0 {
		return nil, fmt.Errorf("%w: design has no columns", core.ErrDimensionMismatch)
	}
	seen := make(map[core.Term]struct{}, p)
	for _, t := range terms {
		if _, dup := seen[t]; dup {
			return nil, fmt.Errorf("%w: duplicate term %q", core.ErrDimensionMismatch, t)
		}
		seen[t] = struct{}{}
	}
	for i, row := range rows {
		if len(row) != p {
			return nil, core.NewDimensionMismatchError(fmt.Sprintf("row %d", i), len(row), p)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite entry at row %d, column %q", core.ErrDimensionMismatch, i, terms[j])
			}
		}
	}
	return &Design{Terms: terms, Rows: rows}, nil
}

// NewDesignWithIntercept prepends a column of ones named InterceptTerm.
func NewDesignWithIntercept(terms []core.Term, rows [][]float64) (*Design, error) {
	withOnes := make([][]float64, len(rows))
	for i, row := range rows {
		withOnes[i] = append([]float64{1}, row...)
	}
	return NewDesign(append([]core.Term{InterceptTerm}, terms...), withOnes)
}

// N returns the number of observation rows.
func (d *Design) N() int { return len(d.Rows) }

// P returns the number of design columns.
func (d *Design) P() int { return len(d.Terms) }

// Column returns a copy of column j.
func (d *Design) Column(j int) []float64 {
	col := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		col[i] = row[j]
	}
	return col
}

// TermIndex returns the column index of term, or -1.
func (d *Design) TermIndex(term core.Term) int {
	for j, t := range d.Terms {
		if t == term {
			return j
		}
	}
	return -1
}

// InterceptIndex returns the index of the first constant nonzero column,
// or -1 when the design carries no intercept.
func (d *Design) InterceptIndex() int {
	for j := range d.Terms {
		c := d.Rows[0][j]
		if c == 0 {
			continue
		}
		constant := true
		for _, row := range d.Rows {
			if row[j] != c {
				constant = false
				break
			}
		}
		if constant {
			return j
		}
	}
	return -1
}

// WithInteraction returns a new design with an appended column holding the
// elementwise product of terms a and b, named "a:b".
func (d *Design) WithInteraction(a, b core.Term) (*Design, error) {
	ai, bi := d.TermIndex(a), d.TermIndex(b)
	if ai < 0 || bi < 0 {
		return nil, fmt.Errorf("%w: interaction parents %q, %q not both present", core.ErrDimensionMismatch, a, b)
	}
	terms := append(append([]core.Term{}, d.Terms...), core.Term(string(a)+":"+string(b)))
	rows := make([][]float64, len(d.Rows))
	for i, row := range d.Rows {
		rows[i] = append(append([]float64{}, row...), row[ai]*row[bi])
	}
	return NewDesign(terms, rows)
}

// Drop returns a new design without the named column. The result is nested
// inside the receiver, which is what Compare requires of a reduced model.
func (d *Design) Drop(term core.Term) (*Design, error) {
	idx := d.TermIndex(term)
	if idx < 0 {
		return nil, fmt.Errorf("%w: term %q not in design", core.ErrDimensionMismatch, term)
	}
	if d.P() == 1 {
		return nil, fmt.Errorf("%w: cannot drop the only column", core.ErrDimensionMismatch)
	}
	terms := make([]core.Term, 0, d.P()-1)
	terms = append(terms, d.Terms[:idx]...)
	terms = append(terms, d.Terms[idx+1:]...)
	rows := make([][]float64, len(d.Rows))
	for i, row := range d.Rows {
		rows[i] = make([]float64, 0, d.P()-1)
		rows[i] = append(rows[i], row[:idx]...)
		rows[i] = append(rows[i], row[idx+1:]...)
	}
	return NewDesign(terms, rows)
}
