package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
	"github.com/yungbote/leontief-backend/internal/pkg/pointers"
)

const tol = 1e-9

// twoSector builds A = [[0,0.5],[0.2,0]] with one "jobs" category.
func twoSector(t *testing.T) Snapshot {
	t.Helper()
	s := New()
	var err error
	s, err = InsertSector(s, 0, SectorInput{Name: "agriculture", ValueAdded: 10, Outgoing: []float64{0}, Incoming: nil})
	require.NoError(t, err)
	s, err = InsertSector(s, 1, SectorInput{Name: "industry", ValueAdded: 20, Outgoing: []float64{0.2, 0}, Incoming: []float64{0.5}})
	require.NoError(t, err)
	s, err = InsertCategory(s, 0, CategoryInput{Name: "jobs", Unit: "fte", Impact: []float64{0.01, 0.02}})
	require.NoError(t, err)
	return s
}

func TestInsertSector_BuildsEconomicMatrix(t *testing.T) {
	s := twoSector(t)

	assert.Equal(t, [][]float64{{0, 0.5}, {0.2, 0}}, s.Economic.ToRows())
	require.NoError(t, Validate(s))
	require.NoError(t, VerifyLeontief(s, tol))

	l00, _ := s.Leontief.At(0, 0)
	assert.InDelta(t, 1/0.9, l00, tol)
	assert.Equal(t, "agriculture", s.Sectors[0].Name)
	assert.Equal(t, 1, s.Sectors[1].Pos)
}

func TestInsertSector_ShiftsLaterPositions(t *testing.T) {
	s := twoSector(t)

	out, err := InsertSector(s, 0, SectorInput{
		Name:     "services",
		Outgoing: []float64{0.1, 0, 0},
		Incoming: []float64{0.05, 0.05},
		Impact:   []float64{0.03},
	})
	require.NoError(t, err)

	names := []string{}
	for i, sec := range out.Sectors {
		assert.Equal(t, i, sec.Pos)
		names = append(names, sec.Name)
	}
	assert.Equal(t, []string{"services", "agriculture", "industry"}, names)
	assert.Equal(t, 3, out.Impact.Cols())
	require.NoError(t, VerifyLeontief(out, tol))

	// input snapshot untouched
	assert.Equal(t, 2, s.N())
	assert.Equal(t, "agriculture", s.Sectors[0].Name)
	assert.Equal(t, 0, s.Sectors[0].Pos)
}

func TestInsertSector_Rejections(t *testing.T) {
	s := twoSector(t)

	_, err := InsertSector(s, 3, SectorInput{Name: "x", Outgoing: []float64{0, 0, 0}, Incoming: []float64{0, 0}, Impact: []float64{0}})
	require.ErrorIs(t, err, pkgerrors.ErrOutOfRange)

	_, err = InsertSector(s, 1, SectorInput{Name: "x", Outgoing: []float64{0, 0}, Incoming: []float64{0, 0}, Impact: []float64{0}})
	require.ErrorIs(t, err, pkgerrors.ErrDimensionMismatch)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = InsertSector(s, 1, SectorInput{Name: "x", Outgoing: []float64{0, 0, 0}, Incoming: []float64{0, 0}})
	require.ErrorIs(t, err, pkgerrors.ErrDimensionMismatch)

	_, err = InsertSector(s, 1, SectorInput{Name: "  ", Outgoing: []float64{0, 0, 0}, Incoming: []float64{0, 0}, Impact: []float64{0}})
	require.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)

	// a self-coefficient of 1 makes I − A singular
	_, err = InsertSector(s, 2, SectorInput{Name: "x", Outgoing: []float64{0, 0, 1}, Incoming: []float64{0, 0}, Impact: []float64{0}})
	require.ErrorIs(t, err, pkgerrors.ErrSingularMatrix)
}

func TestInsertThenDeleteSectorRoundTrip(t *testing.T) {
	s := twoSector(t)
	for pos := 0; pos <= s.N(); pos++ {
		grown, err := InsertSector(s, pos, SectorInput{
			Name:     "tmp",
			Outgoing: []float64{0.1, 0.1, 0.1},
			Incoming: []float64{0.05, 0.05},
			Impact:   []float64{0.5},
		})
		require.NoError(t, err)

		back, err := DeleteSector(grown, pos)
		require.NoError(t, err)

		assert.True(t, back.Economic.Equal(s.Economic, 0), "pos %d", pos)
		assert.True(t, back.Leontief.Equal(s.Leontief, tol), "pos %d", pos)
		assert.True(t, back.Impact.Equal(s.Impact, 0), "pos %d", pos)
		assert.Equal(t, s.Sectors, back.Sectors)
	}
}

func TestDeleteSector_NotFound(t *testing.T) {
	s := twoSector(t)
	_, err := DeleteSector(s, 2)
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
	_, err = DeleteSector(New(), 0)
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestCategoryEditsLeaveEconomicUntouched(t *testing.T) {
	s := twoSector(t)

	out, err := InsertCategory(s, 0, CategoryInput{Name: "co2", Unit: "t", Impact: []float64{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {0.01, 0.02}}, out.Impact.ToRows())
	assert.Equal(t, "jobs", out.Categories[1].Name)
	assert.Equal(t, 1, out.Categories[1].Pos)
	assert.True(t, out.Economic.Equal(s.Economic, 0))
	assert.True(t, out.Leontief.Equal(s.Leontief, 0))

	out, err = DeleteCategory(out, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}}, out.Impact.ToRows())
	assert.Equal(t, 0, out.Categories[0].Pos)

	_, err = InsertCategory(s, 5, CategoryInput{Name: "x", Impact: []float64{0, 0}})
	require.ErrorIs(t, err, pkgerrors.ErrOutOfRange)
	_, err = InsertCategory(s, 0, CategoryInput{Name: "x", Impact: []float64{0}})
	require.ErrorIs(t, err, pkgerrors.ErrDimensionMismatch)
	_, err = DeleteCategory(s, 1)
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestModifySectorAndCategory(t *testing.T) {
	s := twoSector(t)

	out, err := ModifySector(s, 1, SectorPatch{Name: pointers.String("manufacturing"), ValueAdded: pointers.Float64(42)})
	require.NoError(t, err)
	assert.Equal(t, "manufacturing", out.Sectors[1].Name)
	assert.Equal(t, 42.0, out.Sectors[1].ValueAdded)
	assert.Equal(t, "industry", s.Sectors[1].Name)
	assert.True(t, out.Economic.Equal(s.Economic, 0))

	out, err = ModifyCategory(s, 0, CategoryPatch{Unit: pointers.String("persons")})
	require.NoError(t, err)
	assert.Equal(t, "persons", out.Categories[0].Unit)
	assert.Equal(t, "jobs", out.Categories[0].Name)

	_, err = ModifySector(s, 9, SectorPatch{})
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
	_, err = ModifyCategory(s, 0, CategoryPatch{Name: pointers.String("")})
	require.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)
}

func TestSetMatrices(t *testing.T) {
	s := twoSector(t)

	a, err := matrix.FromRows([][]float64{{0.1, 0.2}, {0.3, 0.1}})
	require.NoError(t, err)
	out, err := SetEconomicMatrix(s, a)
	require.NoError(t, err)
	require.NoError(t, VerifyLeontief(out, tol))

	_, err = SetEconomicMatrix(s, matrix.Zeros(3, 3))
	require.ErrorIs(t, err, pkgerrors.ErrDimensionMismatch)

	singular, _ := matrix.FromRows([][]float64{{1, 0}, {0, 0}})
	_, err = SetEconomicMatrix(s, singular)
	require.ErrorIs(t, err, pkgerrors.ErrSingularMatrix)

	c, _ := matrix.FromRows([][]float64{{5, 6}})
	out, err = SetImpactMatrix(s, c)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{5, 6}}, out.Impact.ToRows())

	_, err = SetImpactMatrix(s, matrix.Zeros(2, 2))
	require.ErrorIs(t, err, pkgerrors.ErrDimensionMismatch)
}

// Random structural edits must keep L = (I − A)⁻¹ and contiguous positions.
func TestRandomEditSequenceKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New()
	coeffs := func(n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = rng.Float64() * 0.1
		}
		return out
	}

	for step := 0; step < 200; step++ {
		var err error
		n, m := s.N(), s.M()
		switch op := rng.Intn(5); {
		case op == 0 || n == 0:
			if n >= 6 {
				continue
			}
			s, err = InsertSector(s, rng.Intn(n+1), SectorInput{
				Name:     "s",
				Outgoing: coeffs(n + 1),
				Incoming: coeffs(n),
				Impact:   coeffs(m),
			})
		case op == 1:
			s, err = DeleteSector(s, rng.Intn(n))
		case op == 2:
			s, err = InsertCategory(s, rng.Intn(m+1), CategoryInput{Name: "c", Impact: coeffs(n)})
		case op == 3 && m > 0:
			s, err = DeleteCategory(s, rng.Intn(m))
		default:
			a, ferr := matrix.New(n, n, coeffs(n*n))
			require.NoError(t, ferr)
			s, err = SetEconomicMatrix(s, a)
		}
		require.NoError(t, err, "step %d", step)
		require.NoError(t, Validate(s), "step %d", step)
		require.NoError(t, VerifyLeontief(s, 1e-9), "step %d", step)
	}
}
