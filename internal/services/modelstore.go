package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/leontief-backend/internal/access"
	"github.com/yungbote/leontief-backend/internal/data/repos"
	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/engine"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
	"github.com/yungbote/leontief-backend/internal/platform/ctxutil"
)

// target is a loaded permanent model or workspace. Exactly one of model and
// workspace is set.
type target struct {
	ref       types.ModelRef
	model     *types.Model
	workspace *types.Workspace
}

func (t *target) snapshot() engine.Snapshot {
	if t.workspace != nil {
		w := t.workspace
		return engine.Snapshot{
			Economic:   w.EconomicMatrix,
			Leontief:   w.LeontiefMatrix,
			Impact:     w.ImpactMatrix,
			Sectors:    w.Sectors,
			Categories: w.Categories,
		}
	}
	m := t.model
	return engine.Snapshot{
		Economic:   m.EconomicMatrix,
		Leontief:   m.LeontiefMatrix,
		Impact:     m.ImpactMatrix,
		Sectors:    m.Sectors,
		Categories: m.Categories,
	}
}

func (t *target) updatedAt() time.Time {
	if t.workspace != nil {
		return t.workspace.UpdatedAt
	}
	return t.model.UpdatedAt
}

func (t *target) view() *ModelView {
	if t.workspace != nil {
		w := t.workspace
		origin, owner := w.OriginID, w.OwnerID
		return &ModelView{
			ID:             t.ref.Encode(),
			Workspace:      true,
			OriginID:       &origin,
			OwnerID:        &owner,
			Name:           w.Name,
			Description:    w.Description,
			Sectors:        nonNilSectors(w.Sectors),
			Categories:     nonNilCategories(w.Categories),
			EconomicMatrix: w.EconomicMatrix,
			LeontiefMatrix: w.LeontiefMatrix,
			ImpactMatrix:   w.ImpactMatrix,
			UpdatedAt:      w.UpdatedAt,
		}
	}
	m := t.model
	return &ModelView{
		ID:             t.ref.Encode(),
		Name:           m.Name,
		Description:    m.Description,
		Sectors:        nonNilSectors(m.Sectors),
		Categories:     nonNilCategories(m.Categories),
		Roles:          m.Roles,
		EconomicMatrix: m.EconomicMatrix,
		LeontiefMatrix: m.LeontiefMatrix,
		ImpactMatrix:   m.ImpactMatrix,
		UpdatedAt:      m.UpdatedAt,
	}
}

// modelStore loads models and workspaces under the access rules and writes
// engine snapshots back. Shared by the model, workspace and simulation
// services.
type modelStore struct {
	db         *gorm.DB
	resolver   *access.Resolver
	models     repos.ModelRepo
	workspaces repos.WorkspaceRepo
	sectors    repos.SectorRepo
	categories repos.CategoryRepo
}

// readable returns NotFound both for unknown refs and for refs p may not see.
func (s *modelStore) readable(dbc dbctx.Context, p access.Principal, ref types.ModelRef) (*target, error) {
	if ref.IsWorkspace() {
		w, err := s.workspaces.GetByID(dbc, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", ref, err)
		}
		if w == nil || !s.resolver.CanViewWorkspace(p, w.OwnerID) {
			return nil, fmt.Errorf("%s: %w", ref, pkgerrors.ErrNotFound)
		}
		return &target{ref: ref, workspace: w}, nil
	}
	m, err := s.models.GetByID(dbc, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	if m == nil || !s.resolver.CanView(p, m.RoleIDs()) {
		return nil, fmt.Errorf("%s: %w", ref, pkgerrors.ErrNotFound)
	}
	return &target{ref: ref, model: m}, nil
}

var snapshotRead = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// consistent is readable with the model row and its sectors and categories
// loaded from one database snapshot.
func (s *modelStore) consistent(dbc dbctx.Context, p access.Principal, ref types.ModelRef) (*target, error) {
	var t *target
	err := dbc.Transaction(s.db, func(inner dbctx.Context) error {
		var err error
		t, err = s.readable(inner, p, ref)
		return err
	}, snapshotRead)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// writable additionally requires admin for permanent models. A workspace the
// caller can see is always writable by them.
func (s *modelStore) writable(dbc dbctx.Context, p access.Principal, ref types.ModelRef) (*target, error) {
	t, err := s.readable(dbc, p, ref)
	if err != nil {
		return nil, err
	}
	if !ref.IsWorkspace() && !s.resolver.IsAdmin(p) {
		return nil, fmt.Errorf("%s requires admin: %w", ref, pkgerrors.ErrUnauthorized)
	}
	return t, nil
}

// save writes next as the full state of t and refreshes t from it.
func (s *modelStore) save(dbc dbctx.Context, t *target, next engine.Snapshot) error {
	now := time.Now().UTC()
	if t.workspace != nil {
		w := t.workspace
		w.EconomicMatrix, w.LeontiefMatrix, w.ImpactMatrix = next.Economic, next.Leontief, next.Impact
		w.UpdatedAt = now
		if err := s.workspaces.Save(dbc, w); err != nil {
			return err
		}
	} else {
		m := t.model
		m.EconomicMatrix, m.LeontiefMatrix, m.ImpactMatrix = next.Economic, next.Leontief, next.Impact
		m.UpdatedAt = now
		if err := s.models.Save(dbc, m); err != nil {
			return err
		}
	}
	sectors, err := s.sectors.ReplaceForOwner(dbc, t.ref, next.Sectors)
	if err != nil {
		return err
	}
	categories, err := s.categories.ReplaceForOwner(dbc, t.ref, next.Categories)
	if err != nil {
		return err
	}
	if t.workspace != nil {
		t.workspace.Sectors, t.workspace.Categories = sectors, categories
	} else {
		t.model.Sectors, t.model.Categories = sectors, categories
	}
	return nil
}

func ctxOf(dbc dbctx.Context) context.Context { return ctxutil.Default(dbc.Ctx) }

func inversionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, pkgerrors.ErrSingularMatrix):
		return "singular"
	default:
		return "rejected"
	}
}

func emptySnapshotMatrices() (matrix.Dense, matrix.Dense, matrix.Dense) {
	s := engine.New()
	return s.Economic, s.Leontief, s.Impact
}
