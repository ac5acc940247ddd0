// Package matrix is the dense linear algebra kernel behind the model engine.
// A Dense is an explicit rows×cols shape over a flat row-major buffer. Every
// function returns a fresh matrix and leaves its arguments untouched.
package matrix

import (
	"fmt"
	"math"
	"strings"
)

type Dense struct {
	rows int
	cols int
	data []float64
}

// New wraps data (row-major, len rows*cols) without copying.
func New(rows, cols int, data []float64) (Dense, error) {
	if rows < 0 || cols < 0 {
		return Dense{}, matrixErrorf("New", ErrBadShape, "%dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return Dense{}, matrixErrorf("New", ErrDimensionMismatch, "want %d values, got %d", rows*cols, len(data))
	}
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Dense{}, matrixErrorf("New", ErrNaNInf, "%v", v)
		}
	}
	return Dense{rows: rows, cols: cols, data: data}, nil
}

func Zeros(rows, cols int) Dense {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return Dense{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func Identity(n int) Dense {
	m := Zeros(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// FromRows copies a jagged-checked [][]float64. An empty slice yields 0x0.
func FromRows(rows [][]float64) (Dense, error) {
	if len(rows) == 0 {
		return Dense{}, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return Dense{}, matrixErrorf("FromRows", ErrDimensionMismatch, "row %d has %d values, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return New(len(rows), cols, data)
}

func (m Dense) Rows() int { return m.rows }
func (m Dense) Cols() int { return m.cols }

func (m Dense) IsSquare() bool { return m.rows == m.cols }

func (m Dense) Dims() (int, int) { return m.rows, m.cols }

func (m Dense) At(i, j int) (float64, error) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return 0, matrixErrorf("At", ErrOutOfRange, "(%d,%d) in %dx%d", i, j, m.rows, m.cols)
	}
	return m.data[i*m.cols+j], nil
}

// Set mutates m in place. Only used while building fresh results.
func (m Dense) Set(i, j int, v float64) error {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return matrixErrorf("Set", ErrOutOfRange, "(%d,%d) in %dx%d", i, j, m.rows, m.cols)
	}
	m.data[i*m.cols+j] = v
	return nil
}

func (m Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.rows {
		return nil, matrixErrorf("Row", ErrOutOfRange, "row %d of %d", i, m.rows)
	}
	out := make([]float64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out, nil
}

func (m Dense) Col(j int) ([]float64, error) {
	if j < 0 || j >= m.cols {
		return nil, matrixErrorf("Col", ErrOutOfRange, "col %d of %d", j, m.cols)
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = m.data[i*m.cols+j]
	}
	return out, nil
}

func (m Dense) Clone() Dense {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return Dense{rows: m.rows, cols: m.cols, data: data}
}

func (m Dense) ToRows() [][]float64 {
	out := make([][]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		r := make([]float64, m.cols)
		copy(r, m.data[i*m.cols:(i+1)*m.cols])
		out[i] = r
	}
	return out
}

// Equal reports same shape and every entry within tol.
func (m Dense) Equal(o Dense, tol float64) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for k := range m.data {
		if math.Abs(m.data[k]-o.data[k]) > tol {
			return false
		}
	}
	return true
}

func (m Dense) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dense(%dx%d)", m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		fmt.Fprintf(&b, "\n  %v", m.data[i*m.cols:(i+1)*m.cols])
	}
	return b.String()
}
