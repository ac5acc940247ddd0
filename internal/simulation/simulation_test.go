package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/leontief-backend/internal/engine"
	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
)

func snapshot(t *testing.T) engine.Snapshot {
	t.Helper()
	s := engine.New()
	var err error
	s, err = engine.InsertSector(s, 0, engine.SectorInput{Name: "a", Outgoing: []float64{0}})
	require.NoError(t, err)
	s, err = engine.InsertSector(s, 1, engine.SectorInput{Name: "b", Outgoing: []float64{0.2, 0}, Incoming: []float64{0.5}})
	require.NoError(t, err)
	s, err = engine.InsertCategory(s, 0, engine.CategoryInput{Name: "jobs", Impact: []float64{0.01, 0.1}})
	require.NoError(t, err)
	s, err = engine.InsertCategory(s, 1, engine.CategoryInput{Name: "co2", Impact: []float64{2, 0}})
	require.NoError(t, err)
	return s
}

func TestRun_TwoSectorExample(t *testing.T) {
	s := snapshot(t)

	res, err := Run(s, Request{Values: map[int]float64{0: 100}})
	require.NoError(t, err)

	// L = (1/0.9)·[[1,0.5],[0.2,1]]
	require.Len(t, res.Result, 2)
	assert.InDelta(t, 111.1111111, res.Result[0], 1e-6)
	assert.InDelta(t, 22.2222222, res.Result[1], 1e-6)

	require.Len(t, res.Detailed, 2)
	assert.InDelta(t, 111.1111111*0.01+22.2222222*0.1, res.Detailed[0], 1e-6)
	assert.InDelta(t, 222.2222222, res.Detailed[1], 1e-6)

	require.Len(t, res.Categories, 2)
	assert.Equal(t, "jobs", res.Categories[0].Name)
	assert.Equal(t, "co2", res.Categories[1].Name)
}

func TestRun_EmptyDemandIsZero(t *testing.T) {
	s := snapshot(t)
	res, err := Run(s, Request{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, res.Result)
	assert.Equal(t, []float64{0, 0}, res.Detailed)
}

func TestRun_EmptyModel(t *testing.T) {
	res, err := Run(engine.New(), Request{})
	require.NoError(t, err)
	assert.Empty(t, res.Result)
	assert.Empty(t, res.Detailed)
}

func TestRun_Rejections(t *testing.T) {
	s := snapshot(t)

	_, err := Run(s, Request{Values: map[int]float64{2: 1}})
	require.ErrorIs(t, err, pkgerrors.ErrOutOfRange)

	_, err = Run(s, Request{Values: map[int]float64{-1: 1}})
	require.ErrorIs(t, err, pkgerrors.ErrOutOfRange)

	bad := matrix.Zeros(3, 3)
	_, err = Run(s, Request{Change: &bad})
	require.ErrorIs(t, err, pkgerrors.ErrDimensionMismatch)
}

func TestRun_ChangeDoesNotTouchStoredLeontief(t *testing.T) {
	s := snapshot(t)
	before := s.Leontief.Clone()

	// doubles A[0][1]: 0.5 -> 1.0, det(I-A') = 1 - 0.2 = 0.8
	change, err := matrix.FromRows([][]float64{{0, 1}, {0, 0}})
	require.NoError(t, err)

	res, err := Run(s, Request{Values: map[int]float64{0: 100}, Change: &change})
	require.NoError(t, err)
	assert.InDelta(t, 125, res.Result[0], 1e-9)
	assert.InDelta(t, 25, res.Result[1], 1e-9)

	assert.True(t, s.Leontief.Equal(before, 0))

	unchanged, err := Run(s, Request{Values: map[int]float64{0: 100}})
	require.NoError(t, err)
	assert.InDelta(t, 111.1111111, unchanged.Result[0], 1e-6)
}

func TestRun_SingularPerturbation(t *testing.T) {
	s := snapshot(t)
	// A' = [[0, 5],[0.2, 0]] → det(I-A') = 1 - 1 = 0
	change, err := matrix.FromRows([][]float64{{0, 9}, {0, 0}})
	require.NoError(t, err)

	_, err = Run(s, Request{Change: &change})
	require.ErrorIs(t, err, pkgerrors.ErrSingularMatrix)
}
