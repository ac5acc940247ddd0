// Package engine keeps a model's economic, Leontief and impact matrices
// consistent with its sector and category lists under structural edits.
//
// Every operation takes a Snapshot by value, validates its inputs, and
// returns a new Snapshot. On error the input is returned untouched, so a
// caller can run the operation inside a transaction and persist the result
// only on success.
package engine

import (
	"errors"
	"fmt"
	"strings"

	types "github.com/yungbote/leontief-backend/internal/domain"
	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
	"github.com/yungbote/leontief-backend/internal/pkg/pointers"
)

type Snapshot struct {
	Economic   matrix.Dense
	Leontief   matrix.Dense
	Impact     matrix.Dense
	Sectors    []types.Sector
	Categories []types.Category
}

// New is the state of a freshly created model: no sectors, no categories.
func New() Snapshot {
	return Snapshot{
		Economic: matrix.Zeros(0, 0),
		Leontief: matrix.Zeros(0, 0),
		Impact:   matrix.Zeros(0, 0),
	}
}

// N is the sector count.
func (s Snapshot) N() int { return len(s.Sectors) }

// M is the category count.
func (s Snapshot) M() int { return len(s.Categories) }

// Clone deep-copies matrices and entity lists. Entity IDs and owner keys are
// kept; callers that re-home the rows reset them.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Economic:   s.Economic.Clone(),
		Leontief:   s.Leontief.Clone(),
		Impact:     s.Impact.Clone(),
		Sectors:    make([]types.Sector, len(s.Sectors)),
		Categories: make([]types.Category, len(s.Categories)),
	}
	copy(out.Sectors, s.Sectors)
	copy(out.Categories, s.Categories)
	return out
}

type SectorInput struct {
	Name       string
	ValueAdded float64
	// Outgoing becomes row pos of A, Incoming column pos. Which one carries
	// the diagonal entry is decided by Policy.
	Outgoing []float64
	Incoming []float64
	// Impact becomes column pos of C, one value per category.
	Impact []float64
	Policy matrix.SelfCoefficientPolicy
}

type SectorPatch struct {
	Name       *string
	ValueAdded *float64
}

type CategoryInput struct {
	Name        string
	Description string
	Unit        string
	// Impact becomes row pos of C, one value per sector.
	Impact []float64
}

type CategoryPatch struct {
	Name        *string
	Description *string
	Unit        *string
}

func InsertSector(s Snapshot, pos int, in SectorInput) (Snapshot, error) {
	n := s.N()
	if pos < 0 || pos > n {
		return s, fmt.Errorf("insert sector at %d of %d: %w", pos, n, pkgerrors.ErrOutOfRange)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return s, fmt.Errorf("insert sector: empty name: %w", pkgerrors.ErrInvalidArgument)
	}
	a, err := matrix.InsertRowAndColumn(s.Economic, pos, in.Outgoing, in.Incoming, in.Policy)
	if err != nil {
		return s, translate("insert sector", err)
	}
	c, err := matrix.InsertColumn(impactOf(s), pos, in.Impact)
	if err != nil {
		return s, translate("insert sector impact", err)
	}
	l, err := matrix.Leontief(a)
	if err != nil {
		return s, translate("insert sector", err)
	}

	sectors := make([]types.Sector, 0, n+1)
	sectors = append(sectors, s.Sectors[:pos]...)
	sectors = append(sectors, types.Sector{Name: name, ValueAdded: in.ValueAdded})
	sectors = append(sectors, s.Sectors[pos:]...)
	renumberSectors(sectors)

	return Snapshot{Economic: a, Leontief: l, Impact: c, Sectors: sectors, Categories: cloneCategories(s.Categories)}, nil
}

func DeleteSector(s Snapshot, pos int) (Snapshot, error) {
	n := s.N()
	if pos < 0 || pos >= n {
		return s, fmt.Errorf("delete sector at %d of %d: %w", pos, n, pkgerrors.ErrNotFound)
	}
	a, err := matrix.DeleteRowAndColumn(s.Economic, pos)
	if err != nil {
		return s, translate("delete sector", err)
	}
	c, err := matrix.DeleteColumn(impactOf(s), pos)
	if err != nil {
		return s, translate("delete sector impact", err)
	}
	l, err := matrix.Leontief(a)
	if err != nil {
		return s, translate("delete sector", err)
	}

	sectors := make([]types.Sector, 0, n-1)
	sectors = append(sectors, s.Sectors[:pos]...)
	sectors = append(sectors, s.Sectors[pos+1:]...)
	renumberSectors(sectors)

	return Snapshot{Economic: a, Leontief: l, Impact: c, Sectors: sectors, Categories: cloneCategories(s.Categories)}, nil
}

func ModifySector(s Snapshot, pos int, p SectorPatch) (Snapshot, error) {
	if pos < 0 || pos >= s.N() {
		return s, fmt.Errorf("modify sector at %d: %w", pos, pkgerrors.ErrNotFound)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return s, fmt.Errorf("modify sector: empty name: %w", pkgerrors.ErrInvalidArgument)
	}
	out := s
	out.Sectors = cloneSectors(s.Sectors)
	if p.Name != nil {
		out.Sectors[pos].Name = strings.TrimSpace(*p.Name)
	}
	out.Sectors[pos].ValueAdded = pointers.Deref(p.ValueAdded, out.Sectors[pos].ValueAdded)
	return out, nil
}

func InsertCategory(s Snapshot, pos int, in CategoryInput) (Snapshot, error) {
	m := s.M()
	if pos < 0 || pos > m {
		return s, fmt.Errorf("insert category at %d of %d: %w", pos, m, pkgerrors.ErrOutOfRange)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return s, fmt.Errorf("insert category: empty name: %w", pkgerrors.ErrInvalidArgument)
	}
	c, err := matrix.InsertRow(impactOf(s), pos, in.Impact)
	if err != nil {
		return s, translate("insert category", err)
	}

	cats := make([]types.Category, 0, m+1)
	cats = append(cats, s.Categories[:pos]...)
	cats = append(cats, types.Category{Name: name, Description: in.Description, Unit: in.Unit})
	cats = append(cats, s.Categories[pos:]...)
	renumberCategories(cats)

	return Snapshot{Economic: s.Economic, Leontief: s.Leontief, Impact: c, Sectors: cloneSectors(s.Sectors), Categories: cats}, nil
}

func DeleteCategory(s Snapshot, pos int) (Snapshot, error) {
	m := s.M()
	if pos < 0 || pos >= m {
		return s, fmt.Errorf("delete category at %d of %d: %w", pos, m, pkgerrors.ErrNotFound)
	}
	c, err := matrix.DeleteRow(s.Impact, pos)
	if err != nil {
		return s, translate("delete category", err)
	}

	cats := make([]types.Category, 0, m-1)
	cats = append(cats, s.Categories[:pos]...)
	cats = append(cats, s.Categories[pos+1:]...)
	renumberCategories(cats)

	return Snapshot{Economic: s.Economic, Leontief: s.Leontief, Impact: c, Sectors: cloneSectors(s.Sectors), Categories: cats}, nil
}

func ModifyCategory(s Snapshot, pos int, p CategoryPatch) (Snapshot, error) {
	if pos < 0 || pos >= s.M() {
		return s, fmt.Errorf("modify category at %d: %w", pos, pkgerrors.ErrNotFound)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return s, fmt.Errorf("modify category: empty name: %w", pkgerrors.ErrInvalidArgument)
	}
	out := s
	out.Categories = cloneCategories(s.Categories)
	if p.Name != nil {
		out.Categories[pos].Name = strings.TrimSpace(*p.Name)
	}
	out.Categories[pos].Description = pointers.Deref(p.Description, out.Categories[pos].Description)
	out.Categories[pos].Unit = pointers.Deref(p.Unit, out.Categories[pos].Unit)
	return out, nil
}

// SetEconomicMatrix replaces A (must be N×N) and recomputes L.
func SetEconomicMatrix(s Snapshot, a matrix.Dense) (Snapshot, error) {
	n := s.N()
	if a.Rows() != n || a.Cols() != n {
		return s, fmt.Errorf("economic matrix %dx%d, model has %d sectors: %w", a.Rows(), a.Cols(), n, pkgerrors.ErrDimensionMismatch)
	}
	l, err := matrix.Leontief(a)
	if err != nil {
		return s, translate("set economic matrix", err)
	}
	out := s
	out.Economic = a.Clone()
	out.Leontief = l
	return out, nil
}

// SetImpactMatrix replaces C (must be M×N). With no categories any
// zero-row matrix is accepted.
func SetImpactMatrix(s Snapshot, c matrix.Dense) (Snapshot, error) {
	m, n := s.M(), s.N()
	switch {
	case m == 0 && c.Rows() == 0:
		c = matrix.Zeros(0, n)
	case c.Rows() != m || c.Cols() != n:
		return s, fmt.Errorf("impact matrix %dx%d, want %dx%d: %w", c.Rows(), c.Cols(), m, n, pkgerrors.ErrDimensionMismatch)
	}
	out := s
	out.Impact = c.Clone()
	return out, nil
}

// Validate checks shapes and pos contiguity. It does not re-derive L; see
// VerifyLeontief.
func Validate(s Snapshot) error {
	n, m := s.N(), s.M()
	if s.Economic.Rows() != n || s.Economic.Cols() != n {
		return fmt.Errorf("economic matrix %dx%d for %d sectors: %w", s.Economic.Rows(), s.Economic.Cols(), n, pkgerrors.ErrDimensionMismatch)
	}
	if s.Leontief.Rows() != n || s.Leontief.Cols() != n {
		return fmt.Errorf("leontief matrix %dx%d for %d sectors: %w", s.Leontief.Rows(), s.Leontief.Cols(), n, pkgerrors.ErrDimensionMismatch)
	}
	if s.Impact.Rows() != m || (s.Impact.Cols() != n && !(m == 0 && s.Impact.Cols() == 0)) {
		return fmt.Errorf("impact matrix %dx%d, want %dx%d: %w", s.Impact.Rows(), s.Impact.Cols(), m, n, pkgerrors.ErrDimensionMismatch)
	}
	for i, sec := range s.Sectors {
		if sec.Pos != i {
			return fmt.Errorf("sector %q has pos %d at index %d: %w", sec.Name, sec.Pos, i, pkgerrors.ErrInvalidArgument)
		}
	}
	for i, cat := range s.Categories {
		if cat.Pos != i {
			return fmt.Errorf("category %q has pos %d at index %d: %w", cat.Name, cat.Pos, i, pkgerrors.ErrInvalidArgument)
		}
	}
	return nil
}

// VerifyLeontief reports whether L equals (I − A)⁻¹ within tol.
func VerifyLeontief(s Snapshot, tol float64) error {
	l, err := matrix.Leontief(s.Economic)
	if err != nil {
		return translate("verify leontief", err)
	}
	if !l.Equal(s.Leontief, tol) {
		return fmt.Errorf("leontief matrix out of sync with economic matrix: %w", pkgerrors.ErrInvalidArgument)
	}
	return nil
}

// impactOf returns C with an explicit 0×N shape when there are no categories.
func impactOf(s Snapshot) matrix.Dense {
	if s.M() == 0 && s.Impact.Cols() != s.N() {
		return matrix.Zeros(0, s.N())
	}
	return s.Impact
}

func renumberSectors(ss []types.Sector) {
	for i := range ss {
		ss[i].Pos = i
	}
}

func renumberCategories(cs []types.Category) {
	for i := range cs {
		cs[i].Pos = i
	}
}

func cloneSectors(in []types.Sector) []types.Sector {
	out := make([]types.Sector, len(in))
	copy(out, in)
	return out
}

func cloneCategories(in []types.Category) []types.Category {
	out := make([]types.Category, len(in))
	copy(out, in)
	return out
}

// translate maps kernel sentinels onto the service error taxonomy while
// keeping the original error in the chain.
func translate(op string, err error) error {
	var kind error
	switch {
	case errors.Is(err, matrix.ErrSingular):
		kind = pkgerrors.ErrSingularMatrix
	case errors.Is(err, matrix.ErrOutOfRange):
		kind = pkgerrors.ErrOutOfRange
	case errors.Is(err, matrix.ErrDimensionMismatch), errors.Is(err, matrix.ErrNonSquare):
		kind = pkgerrors.ErrDimensionMismatch
	default:
		kind = pkgerrors.ErrInvalidArgument
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Translate exposes the kernel error mapping to sibling packages.
func Translate(op string, err error) error { return translate(op, err) }
