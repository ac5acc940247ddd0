package matrix

import (
	"errors"
	"fmt"
)

// Sentinels returned by every kernel function. Callers match with errors.Is.
var (
	ErrBadShape          = errors.New("matrix: invalid shape")
	ErrOutOfRange        = errors.New("matrix: index out of range")
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")
	ErrNonSquare         = errors.New("matrix: matrix is not square")
	ErrSingular          = errors.New("matrix: singular matrix")
	ErrNaNInf            = errors.New("matrix: NaN or Inf encountered")
	ErrCorrupt           = errors.New("matrix: corrupt encoding")
)

func matrixErrorf(op string, err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, err, fmt.Sprintf(format, args...))
}
