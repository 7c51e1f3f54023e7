package qtensor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension is matched by every state length validation failure.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrInvalidOperator is matched by every operator shape validation failure.
	ErrInvalidOperator = errors.New("invalid operator")
)

// DimensionError reports a state length that is not a positive power of two.
type DimensionError struct {
	Length int
}

func (e *DimensionError) Error() string {
	if e.Length <= 0 {
		return fmt.Sprintf("%s: state length %d, must hold at least one element", ErrInvalidDimension, e.Length)
	}
	return fmt.Sprintf("%s: state length %d is not a power of two", ErrInvalidDimension, e.Length)
}

func (e *DimensionError) Unwrap() error {
	return ErrInvalidDimension
}

/*
OperatorError reports an operator that is not exactly 2x2. Row is the index of
the first row with the wrong number of columns, or -1 when the row count itself
is wrong.
*/
type OperatorError struct {
	Rows int
	Cols int
	Row  int
}

func (e *OperatorError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("%s: expected a 2x2 matrix, got %d rows", ErrInvalidOperator, e.Rows)
	}
	return fmt.Sprintf("%s: expected a 2x2 matrix, row %d has %d columns", ErrInvalidOperator, e.Row, e.Cols)
}

func (e *OperatorError) Unwrap() error {
	return ErrInvalidOperator
}
