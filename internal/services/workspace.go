package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/leontief-backend/internal/access"
	"github.com/yungbote/leontief-backend/internal/data/repos"
	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

// WorkspaceService runs the clone / persist / discard lifecycle. A workspace
// is a private, disconnected copy of a permanent model: edits to it never
// reach the origin until Persist, which creates a new permanent model.
type WorkspaceService interface {
	Clone(dbc dbctx.Context, p access.Principal, modelID uint) (*ModelView, error)
	Persist(dbc dbctx.Context, p access.Principal, workspaceID uint) (*ModelView, error)
	Discard(dbc dbctx.Context, p access.Principal, workspaceID uint) error
	ListMine(dbc dbctx.Context, p access.Principal) ([]ModelSummary, error)
}

type workspaceService struct {
	db    *gorm.DB
	log   *logger.Logger
	store *modelStore
}

func NewWorkspaceService(
	db *gorm.DB,
	log *logger.Logger,
	resolver *access.Resolver,
	modelRepo repos.ModelRepo,
	workspaceRepo repos.WorkspaceRepo,
	sectorRepo repos.SectorRepo,
	categoryRepo repos.CategoryRepo,
) WorkspaceService {
	return &workspaceService{
		db:  db,
		log: log.With("service", "WorkspaceService"),
		store: &modelStore{
			db:         db,
			resolver:   resolver,
			models:     modelRepo,
			workspaces: workspaceRepo,
			sectors:    sectorRepo,
			categories: categoryRepo,
		},
	}
}

// Clone copies A, L, C and every sector and category. L is copied as stored.
func (ws *workspaceService) Clone(dbc dbctx.Context, p access.Principal, modelID uint) (*ModelView, error) {
	if !p.IsAuthenticated() {
		return nil, fmt.Errorf("clone requires a signed-in user: %w", pkgerrors.ErrUnauthorized)
	}
	var out *ModelView
	err := ws.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		origin, err := ws.store.readable(inner, p, types.Permanent(modelID))
		if err != nil {
			return err
		}
		m := origin.model
		w := &types.Workspace{
			OriginID:       m.ID,
			OwnerID:        p.UserID,
			Name:           m.Name,
			Description:    m.Description,
			EconomicMatrix: m.EconomicMatrix.Clone(),
			LeontiefMatrix: m.LeontiefMatrix.Clone(),
			ImpactMatrix:   m.ImpactMatrix.Clone(),
		}
		if err := ws.store.workspaces.Create(inner, w); err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
		t := &target{ref: w.Ref(), workspace: w}
		if err := ws.store.save(inner, t, origin.snapshot()); err != nil {
			return fmt.Errorf("copy model %d into workspace: %w", m.ID, err)
		}
		out = t.view()
		return nil
	})
	if err != nil {
		return nil, err
	}
	ws.log.Info("workspace cloned", "model_id", modelID, "workspace_id", out.ID, "owner_id", p.UserID)
	return out, nil
}

// Persist turns the workspace into a new permanent model carrying the
// origin's roles, then deletes the workspace. A workspace whose origin was
// deleted cannot be persisted.
func (ws *workspaceService) Persist(dbc dbctx.Context, p access.Principal, workspaceID uint) (*ModelView, error) {
	var out *ModelView
	err := ws.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		src, err := ws.store.writable(inner, p, types.WorkspaceRef(workspaceID))
		if err != nil {
			return err
		}
		w := src.workspace
		origin, err := ws.store.models.GetByID(inner, w.OriginID)
		if err != nil {
			return fmt.Errorf("load origin model %d: %w", w.OriginID, err)
		}
		if origin == nil {
			return fmt.Errorf("origin model %d of %s: %w", w.OriginID, src.ref, pkgerrors.ErrNotFound)
		}

		m := &types.Model{
			Name:           w.Name,
			Description:    w.Description,
			EconomicMatrix: w.EconomicMatrix,
			LeontiefMatrix: w.LeontiefMatrix,
			ImpactMatrix:   w.ImpactMatrix,
		}
		if err := ws.store.models.Create(inner, m); err != nil {
			return fmt.Errorf("create model: %w", err)
		}
		dst := &target{ref: m.Ref(), model: m}
		if err := ws.store.save(inner, dst, src.snapshot()); err != nil {
			return fmt.Errorf("copy %s into model: %w", src.ref, err)
		}
		if err := ws.store.models.ReplaceRoles(inner, m, origin.Roles); err != nil {
			return fmt.Errorf("copy origin roles: %w", err)
		}
		m.Roles = origin.Roles
		if err := ws.store.workspaces.Delete(inner, w.ID); err != nil {
			return fmt.Errorf("delete %s: %w", src.ref, err)
		}
		out = dst.view()
		return nil
	})
	if err != nil {
		return nil, err
	}
	ws.log.Info("workspace persisted", "workspace_id", -int64(workspaceID), "model_id", out.ID)
	return out, nil
}

func (ws *workspaceService) Discard(dbc dbctx.Context, p access.Principal, workspaceID uint) error {
	return ws.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		t, err := ws.store.writable(inner, p, types.WorkspaceRef(workspaceID))
		if err != nil {
			return err
		}
		if err := ws.store.workspaces.Delete(inner, t.workspace.ID); err != nil {
			return fmt.Errorf("discard %s: %w", t.ref, err)
		}
		return nil
	})
}

func (ws *workspaceService) ListMine(dbc dbctx.Context, p access.Principal) ([]ModelSummary, error) {
	if !p.IsAuthenticated() {
		return nil, fmt.Errorf("workspaces require a signed-in user: %w", pkgerrors.ErrUnauthorized)
	}
	rows, err := ws.store.workspaces.ListByOwner(dbc, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	out := make([]ModelSummary, 0, len(rows))
	for _, w := range rows {
		out = append(out, summarizeWorkspace(w))
	}
	return out, nil
}
