package matrix

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Invert returns m⁻¹. A failed LU factorisation or an ill-conditioned
// input is reported as ErrSingular; no pseudo-inverse is ever substituted.
func Invert(m Dense) (Dense, error) {
	if !m.IsSquare() {
		return Dense{}, matrixErrorf("Invert", ErrNonSquare, "%dx%d", m.rows, m.cols)
	}
	n := m.rows
	if n == 0 {
		return Dense{}, nil
	}
	src := mat.NewDense(n, n, m.Clone().data)
	var inv mat.Dense
	if err := inv.Inverse(src); err != nil {
		return Dense{}, matrixErrorf("Invert", ErrSingular, "%v", err)
	}
	out := Dense{rows: n, cols: n, data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := inv.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Dense{}, matrixErrorf("Invert", ErrSingular, "non-finite entry at (%d,%d)", i, j)
			}
			out.data[i*n+j] = v
		}
	}
	return out, nil
}

// Leontief returns (I − A)⁻¹.
func Leontief(a Dense) (Dense, error) {
	if !a.IsSquare() {
		return Dense{}, matrixErrorf("Leontief", ErrNonSquare, "%dx%d", a.rows, a.cols)
	}
	n := a.rows
	ia := Identity(n)
	for k := range ia.data {
		ia.data[k] -= a.data[k]
	}
	return Invert(ia)
}

func Mul(x, y Dense) (Dense, error) {
	if x.cols != y.rows {
		return Dense{}, matrixErrorf("Mul", ErrDimensionMismatch, "%dx%d * %dx%d", x.rows, x.cols, y.rows, y.cols)
	}
	out := Zeros(x.rows, y.cols)
	for i := 0; i < x.rows; i++ {
		for k := 0; k < x.cols; k++ {
			xv := x.data[i*x.cols+k]
			if xv == 0 {
				continue
			}
			for j := 0; j < y.cols; j++ {
				out.data[i*y.cols+j] += xv * y.data[k*y.cols+j]
			}
		}
	}
	return out, nil
}

// MatVec returns m·v.
func MatVec(m Dense, v []float64) ([]float64, error) {
	if len(v) != m.cols {
		return nil, matrixErrorf("MatVec", ErrDimensionMismatch, "%dx%d * vec(%d)", m.rows, m.cols, len(v))
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		var sum float64
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, x := range v {
			sum += row[j] * x
		}
		out[i] = sum
	}
	return out, nil
}

// Perturb returns (1 + change) ⊙ a, elementwise.
func Perturb(a, change Dense) (Dense, error) {
	if a.rows != change.rows || a.cols != change.cols {
		return Dense{}, matrixErrorf("Perturb", ErrDimensionMismatch, "%dx%d vs change %dx%d", a.rows, a.cols, change.rows, change.cols)
	}
	out := Zeros(a.rows, a.cols)
	for k := range a.data {
		out.data[k] = (1 + change.data[k]) * a.data[k]
	}
	return out, nil
}

// WeightedRowSums returns out[r] = Σ_s y[s]·m[r][s]. This is how per-category
// impact is derived from sector output; it is not a matrix product with yᵗ.
func WeightedRowSums(m Dense, y []float64) ([]float64, error) {
	if len(y) != m.cols {
		return nil, matrixErrorf("WeightedRowSums", ErrDimensionMismatch, "%d columns vs vec(%d)", m.cols, len(y))
	}
	out := make([]float64, m.rows)
	for r := 0; r < m.rows; r++ {
		row := m.data[r*m.cols : (r+1)*m.cols]
		var acc float64
		for s := range row {
			acc += y[s] * row[s]
		}
		out[r] = acc
	}
	return out, nil
}
