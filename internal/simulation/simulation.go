// Package simulation runs what-if demand scenarios against a model snapshot.
package simulation

import (
	"fmt"

	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/engine"
	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
)

// Request is a sparse demand vector keyed by sector pos, plus an optional
// elementwise perturbation of the economic matrix.
type Request struct {
	Values map[int]float64 `json:"values"`
	Change *matrix.Dense   `json:"change,omitempty"`
}

type Result struct {
	Categories []types.Category `json:"categories"`
	Result     []float64        `json:"result"`
	Detailed   []float64        `json:"detailed"`
}

// Run computes y = L·x and the per-category detail. With a Change the
// Leontief matrix is recomputed from (1+change)⊙A for this call only; the
// snapshot is never modified.
func Run(s engine.Snapshot, req Request) (Result, error) {
	n := s.N()

	l := s.Leontief
	if req.Change != nil {
		if req.Change.Rows() != n || req.Change.Cols() != n {
			return Result{}, fmt.Errorf("change matrix %dx%d, model has %d sectors: %w",
				req.Change.Rows(), req.Change.Cols(), n, pkgerrors.ErrDimensionMismatch)
		}
		perturbed, err := matrix.Perturb(s.Economic, *req.Change)
		if err != nil {
			return Result{}, engine.Translate("perturb", err)
		}
		l, err = matrix.Leontief(perturbed)
		if err != nil {
			return Result{}, engine.Translate("perturbed leontief", err)
		}
	}

	x := make([]float64, n)
	for idx, v := range req.Values {
		if idx < 0 || idx >= n {
			return Result{}, fmt.Errorf("demand index %d for %d sectors: %w", idx, n, pkgerrors.ErrOutOfRange)
		}
		x[idx] = v
	}

	y, err := matrix.MatVec(l, x)
	if err != nil {
		return Result{}, engine.Translate("output", err)
	}

	impact := s.Impact
	if s.M() == 0 {
		impact = matrix.Zeros(0, n)
	}
	detailed, err := matrix.WeightedRowSums(impact, y)
	if err != nil {
		return Result{}, engine.Translate("detail", err)
	}

	cats := make([]types.Category, len(s.Categories))
	copy(cats, s.Categories)
	return Result{Categories: cats, Result: y, Detailed: detailed}, nil
}

// NeedsInversion reports whether Run will invert a matrix for req.
func NeedsInversion(req Request) bool { return req.Change != nil }
