package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input-validity errors. Every one of these is deterministic: the same
	// inputs always fail the same way, so callers must not retry.
	ErrInsufficientData  = errors.New("insufficient data for estimation")
	ErrSingularDesign    = errors.New("design matrix is rank deficient")
	ErrNotNested         = errors.New("models are not nested")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrDegenerateMargin  = errors.New("degenerate margin in contingency table")
	ErrShape             = errors.New("table has wrong shape for operation")
)

// Error constructors with context
func NewInsufficientDataError(n, p int) error {
	return fmt.Errorf("%w: %d observations for %d design columns (need at least %d)",
		ErrInsufficientData, n, p, p+1)
}

func NewSingularDesignError(detail string) error {
	return fmt.Errorf("%w: %s", ErrSingularDesign, detail)
}

func NewNotNestedError(detail string) error {
	return fmt.Errorf("%w: %s", ErrNotNested, detail)
}

func NewDimensionMismatchError(what string, got, want int) error {
	return fmt.Errorf("%w: %s has length %d, want %d", ErrDimensionMismatch, what, got, want)
}

func NewDegenerateMarginError(axis string, index int) error {
	return fmt.Errorf("%w: %s %d sums to zero", ErrDegenerateMargin, axis, index)
}

func NewShapeError(op string, rows, cols int) error {
	return fmt.Errorf("%w: %s requires a 2x2 table, got %dx%d", ErrShape, op, rows, cols)
}

// Error checking helpers
func IsInputValidityError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrSingularDesign) ||
		errors.Is(err, ErrNotNested) ||
		errors.Is(err, ErrDimensionMismatch) ||
		errors.Is(err, ErrDegenerateMargin) ||
		errors.Is(err, ErrShape)
}

func IsDesignError(err error) bool {
	return errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrSingularDesign)
}
