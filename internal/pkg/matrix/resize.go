package matrix

import (
	"fmt"
	"math"
)

// SelfCoefficientPolicy decides which of the two vectors handed to
// InsertRowAndColumn carries the new diagonal entry a[pos][pos].
type SelfCoefficientPolicy int

const (
	// SelfInRow: row has N values (diagonal at index pos), column has N-1
	// values for the other rows in order. N is the size after insertion.
	SelfInRow SelfCoefficientPolicy = iota
	// SelfInColumn: column has N values, row has N-1.
	SelfInColumn
)

func (p SelfCoefficientPolicy) String() string {
	switch p {
	case SelfInRow:
		return "self_in_row"
	case SelfInColumn:
		return "self_in_column"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseSelfCoefficientPolicy accepts the String forms; "" means SelfInRow.
func ParseSelfCoefficientPolicy(s string) (SelfCoefficientPolicy, error) {
	switch s {
	case "", "self_in_row":
		return SelfInRow, nil
	case "self_in_column":
		return SelfInColumn, nil
	default:
		return 0, matrixErrorf("ParseSelfCoefficientPolicy", ErrBadShape, "unknown policy %q", s)
	}
}

// InsertRowAndColumn grows the square a (n×n) to (n+1)×(n+1) with a new row
// and column at pos. The row holds a[pos][*] and the column a[*][pos].
func InsertRowAndColumn(a Dense, pos int, row, col []float64, policy SelfCoefficientPolicy) (Dense, error) {
	const op = "InsertRowAndColumn"
	if !a.IsSquare() {
		return Dense{}, matrixErrorf(op, ErrNonSquare, "%dx%d", a.rows, a.cols)
	}
	n := a.rows
	if pos < 0 || pos > n {
		return Dense{}, matrixErrorf(op, ErrOutOfRange, "pos %d for size %d", pos, n)
	}
	size := n + 1
	wantRow, wantCol := size, size-1
	if policy == SelfInColumn {
		wantRow, wantCol = size-1, size
	} else if policy != SelfInRow {
		return Dense{}, matrixErrorf(op, ErrBadShape, "unknown policy %v", policy)
	}
	if len(row) != wantRow || len(col) != wantCol {
		return Dense{}, matrixErrorf(op, ErrDimensionMismatch, "row %d/%d, col %d/%d", len(row), wantRow, len(col), wantCol)
	}
	if err := checkFinite(op, row); err != nil {
		return Dense{}, err
	}
	if err := checkFinite(op, col); err != nil {
		return Dense{}, err
	}

	// full row and full column of the grown matrix, diagonal included.
	fullRow := make([]float64, size)
	fullCol := make([]float64, size)
	switch policy {
	case SelfInRow:
		copy(fullRow, row)
		spliceInto(fullCol, col, pos, row[pos])
	case SelfInColumn:
		copy(fullCol, col)
		spliceInto(fullRow, row, pos, col[pos])
	}

	out := Zeros(size, size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			var v float64
			switch {
			case i == pos:
				v = fullRow[j]
			case j == pos:
				v = fullCol[i]
			default:
				v = a.data[shrink(i, pos)*n+shrink(j, pos)]
			}
			out.data[i*size+j] = v
		}
	}
	return out, nil
}

func DeleteRowAndColumn(a Dense, pos int) (Dense, error) {
	const op = "DeleteRowAndColumn"
	if !a.IsSquare() {
		return Dense{}, matrixErrorf(op, ErrNonSquare, "%dx%d", a.rows, a.cols)
	}
	n := a.rows
	if pos < 0 || pos >= n {
		return Dense{}, matrixErrorf(op, ErrOutOfRange, "pos %d for size %d", pos, n)
	}
	size := n - 1
	out := Zeros(size, size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			out.data[i*size+j] = a.data[grow(i, pos)*n+grow(j, pos)]
		}
	}
	return out, nil
}

// InsertRow inserts values (len m.Cols()) as row pos.
func InsertRow(m Dense, pos int, values []float64) (Dense, error) {
	const op = "InsertRow"
	if pos < 0 || pos > m.rows {
		return Dense{}, matrixErrorf(op, ErrOutOfRange, "pos %d for %d rows", pos, m.rows)
	}
	if len(values) != m.cols {
		return Dense{}, matrixErrorf(op, ErrDimensionMismatch, "want %d values, got %d", m.cols, len(values))
	}
	if err := checkFinite(op, values); err != nil {
		return Dense{}, err
	}
	out := Zeros(m.rows+1, m.cols)
	copy(out.data, m.data[:pos*m.cols])
	copy(out.data[pos*m.cols:], values)
	copy(out.data[(pos+1)*m.cols:], m.data[pos*m.cols:])
	return out, nil
}

func DeleteRow(m Dense, pos int) (Dense, error) {
	if pos < 0 || pos >= m.rows {
		return Dense{}, matrixErrorf("DeleteRow", ErrOutOfRange, "pos %d for %d rows", pos, m.rows)
	}
	out := Zeros(m.rows-1, m.cols)
	copy(out.data, m.data[:pos*m.cols])
	copy(out.data[pos*m.cols:], m.data[(pos+1)*m.cols:])
	return out, nil
}

// InsertColumn inserts values (len m.Rows()) as column pos.
func InsertColumn(m Dense, pos int, values []float64) (Dense, error) {
	const op = "InsertColumn"
	if pos < 0 || pos > m.cols {
		return Dense{}, matrixErrorf(op, ErrOutOfRange, "pos %d for %d cols", pos, m.cols)
	}
	if len(values) != m.rows {
		return Dense{}, matrixErrorf(op, ErrDimensionMismatch, "want %d values, got %d", m.rows, len(values))
	}
	if err := checkFinite(op, values); err != nil {
		return Dense{}, err
	}
	cols := m.cols + 1
	out := Zeros(m.rows, cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < cols; j++ {
			switch {
			case j == pos:
				out.data[i*cols+j] = values[i]
			default:
				out.data[i*cols+j] = m.data[i*m.cols+shrink(j, pos)]
			}
		}
	}
	return out, nil
}

func DeleteColumn(m Dense, pos int) (Dense, error) {
	if pos < 0 || pos >= m.cols {
		return Dense{}, matrixErrorf("DeleteColumn", ErrOutOfRange, "pos %d for %d cols", pos, m.cols)
	}
	cols := m.cols - 1
	out := Zeros(m.rows, cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < cols; j++ {
			out.data[i*cols+j] = m.data[i*m.cols+grow(j, pos)]
		}
	}
	return out, nil
}

// shrink maps an index of the grown matrix (≠ pos) back to the original.
func shrink(i, pos int) int {
	if i > pos {
		return i - 1
	}
	return i
}

// grow maps an index of the shrunk matrix to the original one.
func grow(i, pos int) int {
	if i >= pos {
		return i + 1
	}
	return i
}

// spliceInto writes short (len(dst)-1) into dst around pos, with self at pos.
func spliceInto(dst, short []float64, pos int, self float64) {
	for i := range dst {
		switch {
		case i < pos:
			dst[i] = short[i]
		case i == pos:
			dst[i] = self
		default:
			dst[i] = short[i-1]
		}
	}
}

func checkFinite(op string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return matrixErrorf(op, ErrNaNInf, "value %d", i)
		}
	}
	return nil
}
